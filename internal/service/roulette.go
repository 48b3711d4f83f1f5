package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

type RouletteBetInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Bet    string  `json:"bet" binding:"required,oneof=red black even odd low high"`
}

// RouletteService resolves single-shot wheel bets: debit, spin, settle,
// record. The wheel animation is the client's business; only the resolved
// outcome matters here.
type RouletteService struct {
	ledger   *ledger.BetLedger
	history  *history.Recorder
	wins     *WinsFeed
	wheel    *game.RouletteProcess
	gameCfg  config.Game
	cooldown *cache.Cache
}

func NewRouletteService(
	bl *ledger.BetLedger, rec *history.Recorder, wins *WinsFeed,
	gameCfg config.Game) *RouletteService {

	return &RouletteService{
		ledger:   bl,
		history:  rec,
		wins:     wins,
		wheel:    game.NewRouletteProcess(game.NewCryptoSource()),
		gameCfg:  gameCfg,
		cooldown: cache.New(gameCfg.BetCooldown, time.Minute),
	}
}

func (s *RouletteService) onCooldown(userID int64) bool {
	_, found := s.cooldown.Get(strconv.FormatInt(userID, 10))
	return found
}

// markCooldown starts the window only once a bet is actually funded; a
// rejected bet costs the player nothing.
func (s *RouletteService) markCooldown(userID int64) {
	s.cooldown.SetDefault(strconv.FormatInt(userID, 10), struct{}{})
}

func (s *RouletteService) PlaceRouletteBet(c *gin.Context) {
	var input RouletteBetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if s.onCooldown(userID) {
		c.JSON(429, gin.H{"error": "Please wait before placing another bet"})
		return
	}

	roundID := uuid.NewString()
	balanceAfterDebit, err := s.ledger.PlaceBet(userID, roundID, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			c.JSON(400, gin.H{"error": "Invalid bet amount"})
		case errors.Is(err, ledger.ErrInsufficientBalance):
			c.JSON(402, gin.H{"error": "Insufficient balance"})
		default:
			logger.Error("Failed to place roulette bet: %v", err)
			c.Status(500)
		}
		return
	}
	s.markCooldown(userID)

	outcome := s.wheel.Spin()
	color := game.ColorOf(outcome)

	var payout float64
	status := "lost"
	if game.CheckWin(outcome, input.Bet) {
		payout = input.Amount * s.gameCfg.RoulettePayout
		status = "won"
	}

	if err := s.ledger.Settle(userID, roundID, payout); err != nil {
		// resolved locally either way; a failed credit is queued for retry
		logger.Error("Failed to settle roulette round %s: %v", roundID, err)
	}

	spin := models.RouletteSpin{
		RoundID:   roundID,
		UserID:    userID,
		Amount:    input.Amount,
		BetKey:    input.Bet,
		Outcome:   outcome,
		Color:     color,
		Payout:    payout,
		Status:    status,
		CreatedAt: time.Now(),
	}
	if err := db.DB.Create(&spin).Error; err != nil {
		logger.Error("Failed to persist roulette spin %s: %v", roundID, err)
	}

	s.history.Record(roundID, "roulette", input.Amount, payout, fmt.Sprintf("%d %s", outcome, color))

	if payout > 0 {
		s.wins.Push(userID, "roulette", payout)
	}

	logger.Info("Roulette spin: UserID=%d, bet=%s, outcome=%d %s, payout=%.2f",
		userID, input.Bet, outcome, color, payout)

	c.JSON(200, gin.H{
		"bet_amount":     input.Amount,
		"bet":            input.Bet,
		"outcome":        status,
		"payout":         payout,
		"winning_number": outcome,
		"winning_color":  color,
		"balance":        balanceAfterDebit + payout,
	})
}

// GetRouletteInfo returns the static bet table and the quick-bet presets.
func (s *RouletteService) GetRouletteInfo(c *gin.Context) {
	c.JSON(200, gin.H{
		"options":    game.BetOptions(),
		"quick_bets": s.gameCfg.QuickBets,
	})
}

func (s *RouletteService) GetRouletteHistory(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	spins, err := models.UserRouletteHistory(userID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, spins)
}
