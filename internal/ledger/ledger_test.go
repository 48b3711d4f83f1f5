package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory wallet for tests. failWrites makes SetBalance
// fail until cleared, to exercise the retry path.
type memStore struct {
	mu         sync.Mutex
	balances   map[int64]float64
	audit      []string
	failWrites bool
	writes     int
}

func newMemStore() *memStore {
	return &memStore{balances: map[int64]float64{}}
}

func (s *memStore) GetBalance(playerID int64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.balances[playerID]; !ok {
		s.balances[playerID] = 1000
	}
	return s.balances[playerID], nil
}

func (s *memStore) SetBalance(playerID int64, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("connection refused")
	}
	s.balances[playerID] = balance
	s.writes++
	return nil
}

func (s *memStore) AppendAuditRecord(playerID int64, delta float64, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, fmt.Sprintf("%d %s %.0f", playerID, reason, delta))
}

func (s *memStore) setFailWrites(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = v
}

func (s *memStore) balance(playerID int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[playerID]
}

func TestPlaceBetValidation(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	tests := []struct {
		name   string
		amount float64
		want   error
	}{
		{"zero", 0, ErrInvalidAmount},
		{"negative", -10, ErrInvalidAmount},
		{"over balance", 1000.01, ErrInsufficientBalance},
		{"full balance", 1000, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.balances[7] = 1000
			_, err := l.PlaceBet(7, "round-"+tt.name, tt.amount)
			if !errors.Is(err, tt.want) {
				t.Errorf("PlaceBet(%v) error = %v, want %v", tt.amount, err, tt.want)
			}
		})
	}
}

func TestRejectedBetLeavesBalance(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	if _, err := l.PlaceBet(1, "r1", 5000); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if got := store.balance(1); got != 1000 {
		t.Errorf("balance after rejected bet = %v, want 1000", got)
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}

func TestSettleIdempotent(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	if _, err := l.PlaceBet(1, "r1", 200); err != nil {
		t.Fatal(err)
	}
	if err := l.Settle(1, "r1", 400); err != nil {
		t.Fatal(err)
	}
	if err := l.Settle(1, "r1", 400); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("duplicate Settle error = %v, want ErrAlreadySettled", err)
	}
	if got := store.balance(1); got != 1200 {
		t.Errorf("balance = %v, want 1200", got)
	}
}

func TestSettleUnknownRound(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	if err := l.Settle(1, "missing", 100); !errors.Is(err, ErrUnknownRound) {
		t.Errorf("Settle of unfunded round error = %v, want ErrUnknownRound", err)
	}
	if got := store.balance(1); got != 0 {
		t.Errorf("balance = %v, want untouched", got)
	}
}

func TestZeroPayoutNoWrite(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	if _, err := l.PlaceBet(1, "r1", 200); err != nil {
		t.Fatal(err)
	}
	writesAfterDebit := store.writes

	if err := l.Settle(1, "r1", 0); err != nil {
		t.Fatal(err)
	}
	if store.writes != writesAfterDebit {
		t.Errorf("loss settlement wrote a balance: %d -> %d writes", writesAfterDebit, store.writes)
	}
	if got := store.balance(1); got != 800 {
		t.Errorf("balance = %v, want 800", got)
	}
}

func TestFailedCreditRetriesOnce(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	if _, err := l.PlaceBet(1, "r1", 200); err != nil {
		t.Fatal(err)
	}

	store.setFailWrites(true)
	if err := l.Settle(1, "r1", 400); !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("Settle with failing store error = %v, want ErrPersistenceFailure", err)
	}
	// Settled regardless; no second attempt may double-credit.
	if err := l.Settle(1, "r1", 400); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("duplicate Settle error = %v, want ErrAlreadySettled", err)
	}

	store.setFailWrites(false)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if store.balance(1) == 1200 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if got := store.balance(1); got != 1200 {
		t.Fatalf("balance after retry = %v, want 1200", got)
	}

	// The retry applied the credit exactly once.
	time.Sleep(retryInterval + retryInterval/2)
	if got := store.balance(1); got != 1200 {
		t.Errorf("balance drifted after retry: %v", got)
	}
}

func TestSettledRoundRetentionExpires(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	if _, err := l.PlaceBet(1, "r1", 200); err != nil {
		t.Fatal(err)
	}
	if err := l.Settle(1, "r1", 400); err != nil {
		t.Fatal(err)
	}

	// Within the retention window a duplicate is suppressed.
	if err := l.Settle(1, "r1", 400); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("duplicate Settle error = %v, want ErrAlreadySettled", err)
	}

	// Force the entry past its retention. Once evicted the round id is
	// simply unknown; the credit is never re-applied.
	l.settled.Set("r1", struct{}{}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if err := l.Settle(1, "r1", 400); !errors.Is(err, ErrUnknownRound) {
		t.Errorf("Settle after eviction error = %v, want ErrUnknownRound", err)
	}
	if got := store.balance(1); got != 1200 {
		t.Errorf("balance = %v, want 1200", got)
	}
}

func TestBetThenWinEndToEnd(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	balance, err := l.PlaceBet(1, "r1", 200)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 800 {
		t.Errorf("balance after debit = %v, want 800", balance)
	}

	if err := l.Settle(1, "r1", 400); err != nil {
		t.Fatal(err)
	}
	if got := store.balance(1); got != 1200 {
		t.Errorf("balance after win = %v, want 1200", got)
	}
}

func TestConcurrentBetsOnePlayer(t *testing.T) {
	store := newMemStore()
	l := New(store)
	defer l.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.PlaceBet(1, fmt.Sprintf("r%d", i), 100)
		}(i)
	}
	wg.Wait()

	if got := store.balance(1); got != 0 {
		t.Errorf("balance after 10 x 100 bets = %v, want 0", got)
	}
}
