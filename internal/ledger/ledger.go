package ledger

import (
	"errors"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

var (
	ErrInvalidAmount       = errors.New("invalid bet amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadySettled      = errors.New("round already settled")
	ErrUnknownRound        = errors.New("unknown round")
	ErrPersistenceFailure  = errors.New("balance write failed")
)

// Store is the external wallet boundary. GetBalance lazily creates the
// wallet with the configured starting balance; SetBalance is an
// unconditional overwrite computed from a balance read immediately prior;
// AppendAuditRecord is fire-and-forget, failures are logged, not surfaced.
type Store interface {
	GetBalance(playerID int64) (float64, error)
	SetBalance(playerID int64, balance float64) error
	AppendAuditRecord(playerID int64, delta float64, reason string)
}

const (
	// Duplicate settlement attempts arrive within seconds of the first
	// (a re-fired event, a raced retry); an hour of retention suppresses
	// them without the settled set growing for the life of the process.
	settledRetention = time.Hour

	lockStripes = 64
)

// BetLedger enforces the monetary discipline of a round: exactly one debit
// per bet, at most one credit per settlement, idempotent by round ID. It is
// the sole mutator of player balances in this service.
type BetLedger struct {
	store Store

	// Striped per-player locks: a player always maps to the same stripe,
	// so their read-then-overwrite balance writes serialize.
	locks [lockStripes]sync.Mutex

	mu      sync.Mutex
	funded  map[string]int64
	settled *cache.Cache

	retry *retryQueue
}

func New(store Store) *BetLedger {
	l := &BetLedger{
		store:   store,
		funded:  make(map[string]int64),
		settled: cache.New(settledRetention, settledRetention/4),
	}
	l.retry = newRetryQueue(l.applyCredit)
	return l
}

// Close stops the settlement retry worker.
func (l *BetLedger) Close() {
	l.retry.close()
}

func (l *BetLedger) playerLock(playerID int64) *sync.Mutex {
	return &l.locks[uint64(playerID)%lockStripes]
}

// PlaceBet debits the stake and marks the round funded. This is the only
// path that decrements a balance for a round. On any failure the balance
// is untouched and the round stays unfunded.
func (l *BetLedger) PlaceBet(playerID int64, roundID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	lock := l.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	balance, err := l.store.GetBalance(playerID)
	if err != nil {
		return 0, logger.WrapError(ErrPersistenceFailure, err.Error())
	}
	if amount > balance {
		return balance, ErrInsufficientBalance
	}

	newBalance := balance - amount
	if err := l.store.SetBalance(playerID, newBalance); err != nil {
		return balance, logger.WrapError(ErrPersistenceFailure, err.Error())
	}
	l.store.AppendAuditRecord(playerID, -amount, "bet:"+roundID)

	l.mu.Lock()
	l.funded[roundID] = playerID
	l.mu.Unlock()

	return newBalance, nil
}

// Settle resolves a funded round exactly once. A zero payout is a valid
// loss and issues no balance write. A failed credit is queued for retry;
// the round still counts as settled so a duplicate call can never
// double-apply it.
func (l *BetLedger) Settle(playerID int64, roundID string, payout float64) error {
	l.mu.Lock()
	if _, done := l.settled.Get(roundID); done {
		l.mu.Unlock()
		return ErrAlreadySettled
	}
	if _, ok := l.funded[roundID]; !ok {
		l.mu.Unlock()
		return ErrUnknownRound
	}
	l.settled.SetDefault(roundID, struct{}{})
	delete(l.funded, roundID)
	l.mu.Unlock()

	if payout == 0 {
		l.store.AppendAuditRecord(playerID, 0, "loss:"+roundID)
		return nil
	}

	if err := l.applyCredit(credit{playerID: playerID, roundID: roundID, amount: payout}); err != nil {
		logger.Error("settle credit failed for round %s, queued for retry: %v", roundID, err)
		l.retry.enqueue(credit{playerID: playerID, roundID: roundID, amount: payout})
		return logger.WrapError(ErrPersistenceFailure, err.Error())
	}
	return nil
}

func (l *BetLedger) applyCredit(c credit) error {
	lock := l.playerLock(c.playerID)
	lock.Lock()
	defer lock.Unlock()

	balance, err := l.store.GetBalance(c.playerID)
	if err != nil {
		return err
	}
	if err := l.store.SetBalance(c.playerID, balance+c.amount); err != nil {
		return err
	}
	l.store.AppendAuditRecord(c.playerID, c.amount, "win:"+c.roundID)
	return nil
}
