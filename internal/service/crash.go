package service

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	cache "github.com/patrickmn/go-cache"

	"github.com/leakagelink/spin-to-wealth-online-sub000/cmd/db"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/config"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/game"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/history"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/ledger"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/middleware"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/models"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

var validate = validator.New()

type CrashBetInput struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	AutoCashOut float64 `json:"auto_cash_out" validate:"omitempty,gte=1"`
}

type activeRound struct {
	roundID string
	amount  float64
	runner  *game.Runner
}

// CrashService runs one crash round per player: place debits through the
// ledger and starts the round's loop; the loop's events drive settlement,
// history and the live feed.
type CrashService struct {
	ledger   *ledger.BetLedger
	history  *history.Recorder
	hub      *CrashHub
	wins     *WinsFeed
	gameCfg  config.Game
	crashCfg game.CrashConfig
	rng      game.Source

	mu      sync.Mutex
	rounds  map[int64]*activeRound
	highest float64

	cooldown *cache.Cache
}

func NewCrashService(
	bl *ledger.BetLedger, rec *history.Recorder, hub *CrashHub,
	wins *WinsFeed, gameCfg config.Game) *CrashService {

	crashCfg := game.DefaultCrashConfig()
	crashCfg.BaseIncrease = gameCfg.BaseIncrease
	crashCfg.AccelExponent = gameCfg.AccelExponent

	return &CrashService{
		ledger:   bl,
		history:  rec,
		hub:      hub,
		wins:     wins,
		gameCfg:  gameCfg,
		crashCfg: crashCfg,
		rng:      game.NewCryptoSource(),
		rounds:   make(map[int64]*activeRound),
		highest:  1.0,
		cooldown: cache.New(gameCfg.BetCooldown, time.Minute),
	}
}

func (s *CrashService) PlaceCrashBet(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var input CrashBetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input"})
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if s.onCooldown(userID) {
		c.JSON(429, gin.H{"error": "Please wait before placing another bet"})
		return
	}

	proc := game.NewMultiplierProcess(s.rng, s.crashCfg)
	roundID, err := proc.Start(input.Amount)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	// Published fully initialized: CashOut may observe the reservation the
	// moment it lands in the map.
	runner := game.NewRunner(proc, s.gameCfg.TickInterval, input.AutoCashOut)
	ar := &activeRound{roundID: roundID, amount: input.Amount, runner: runner}

	s.mu.Lock()
	if _, exists := s.rounds[userID]; exists {
		s.mu.Unlock()
		c.JSON(400, gin.H{"error": "You already have an active bet"})
		return
	}
	s.rounds[userID] = ar
	s.mu.Unlock()

	newBalance, err := s.ledger.PlaceBet(userID, roundID, input.Amount)
	if err != nil {
		s.mu.Lock()
		delete(s.rounds, userID)
		s.mu.Unlock()
		runner.Stop()

		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			c.JSON(400, gin.H{"error": "Invalid bet amount"})
		case errors.Is(err, ledger.ErrInsufficientBalance):
			c.JSON(402, gin.H{"error": "Insufficient balance"})
		default:
			logger.Error("Failed to place crash bet: %v", err)
			c.Status(500)
		}
		return
	}
	s.markCooldown(userID)

	row := models.CrashRound{
		RoundID:     roundID,
		UserID:      userID,
		Amount:      input.Amount,
		AutoCashOut: input.AutoCashOut,
		Status:      "active",
		StartedAt:   time.Now(),
	}
	if err := db.DB.Create(&row).Error; err != nil {
		logger.Error("Failed to persist crash round %s: %v", roundID, err)
	}

	go runner.Run()
	go s.consume(userID, ar)

	s.hub.SendBetPlaced(userID, input.Amount, input.AutoCashOut)

	logger.Info("Crash bet placed: UserID=%d, Amount=%.2f, RoundID=%s", userID, input.Amount, roundID)
	c.JSON(200, gin.H{"round_id": roundID, "balance": newBalance})
}

func (s *CrashService) onCooldown(userID int64) bool {
	_, found := s.cooldown.Get(strconv.FormatInt(userID, 10))
	return found
}

// markCooldown starts the window only once a bet is actually funded; a
// rejected bet costs the player nothing.
func (s *CrashService) markCooldown(userID int64) {
	s.cooldown.SetDefault(strconv.FormatInt(userID, 10), struct{}{})
}

// consume drains one round's events until the loop closes them on the
// terminal transition.
func (s *CrashService) consume(userID int64, ar *activeRound) {
	for ev := range ar.runner.Events() {
		switch ev.Type {
		case game.EventTick:
			s.hub.SendMultiplierUpdate(userID, ev.Multiplier)
		case game.EventCashedOut:
			s.finishRound(userID, ar, ev, true)
		case game.EventCrashed:
			s.finishRound(userID, ar, ev, false)
		}
	}
}

func (s *CrashService) finishRound(userID int64, ar *activeRound, ev game.Event, won bool) {
	if err := s.ledger.Settle(userID, ar.roundID, ev.Settlement.Payout); err != nil {
		if errors.Is(err, ledger.ErrPersistenceFailure) {
			// credited later by the retry queue; round is resolved locally
			logger.Warn("Crash round %s settled locally, credit pending: %v", ar.roundID, err)
		} else {
			logger.Error("Failed to settle crash round %s: %v", ar.roundID, err)
		}
	}

	label := fmt.Sprintf("%.2fx", ev.Settlement.Multiplier)
	s.history.Record(ar.roundID, "crash", ar.amount, ev.Settlement.Payout, label)

	status := "lost"
	if won {
		status = "won"
	}
	if err := models.FinishCrashRound(ar.roundID, status, ev.Settlement.Multiplier, ev.Settlement.Payout); err != nil {
		logger.Error("%v", err)
	}

	s.mu.Lock()
	if ev.Settlement.Multiplier > s.highest {
		s.highest = ev.Settlement.Multiplier
	}
	delete(s.rounds, userID)
	s.mu.Unlock()

	if won {
		s.hub.BroadcastCashout(userID, ev.Settlement.Multiplier, ev.Settlement.Payout, ev.Auto)
		s.wins.Push(userID, "crash", ev.Settlement.Payout)
	} else {
		s.hub.SendCrash(userID, ev.Settlement.Multiplier)
	}

	logger.Info("Crash round %s finished: status=%s, multiplier=%.2f, payout=%.2f",
		ar.roundID, status, ev.Settlement.Multiplier, ev.Settlement.Payout)
}

// CashOut resolves the player's running round at the current multiplier.
// The settlement itself is applied by the round's event loop.
func (s *CrashService) CashOut(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	s.mu.Lock()
	ar := s.rounds[userID]
	s.mu.Unlock()

	if ar == nil {
		c.JSON(404, gin.H{"error": "no active bet found for this user"})
		return
	}

	settlement, err := ar.runner.RequestCashOut()
	if err != nil {
		if errors.Is(err, game.ErrNoActiveRound) {
			c.JSON(404, gin.H{"error": "no active bet found for this user"})
			return
		}
		logger.Error("Failed to process cashout: %v", err)
		c.JSON(500, gin.H{"error": "failed to process cashout"})
		return
	}

	c.JSON(200, gin.H{
		"status":     "cashout successful",
		"multiplier": settlement.Multiplier,
		"win_amount": settlement.Payout,
	})
}

func (s *CrashService) GetCrashHistory(c *gin.Context) {
	rounds, err := models.LastCrashRounds(50)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	c.JSON(200, gin.H{"results": rounds})
}

// GetCrashInfo exposes the client-facing tuning values and the all-time
// highest multiplier seen by this instance.
func (s *CrashService) GetCrashInfo(c *gin.Context) {
	s.mu.Lock()
	highest := s.highest
	s.mu.Unlock()

	c.JSON(200, gin.H{
		"tick_interval_ms":   s.gameCfg.TickInterval.Milliseconds(),
		"quick_bets":         s.gameCfg.QuickBets,
		"highest_multiplier": highest,
	})
}

// Shutdown stops every running round loop. Unresolved rounds are swept to
// lost by the cron job on the next run.
func (s *CrashService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ar := range s.rounds {
		if ar.runner != nil {
			ar.runner.Stop()
		}
	}
}
