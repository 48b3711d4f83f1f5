package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leakagelink/spin-to-wealth-online-sub000/cmd/db"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/history"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/models"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/redis"
)

const (
	winKeyPrefix   = "wins:"
	winTTL         = time.Hour
	recentWinLimit = 20
)

type recentWin struct {
	Nickname string    `json:"nickname"`
	Game     string    `json:"game"`
	Amount   float64   `json:"amount"`
	At       time.Time `json:"at"`
}

// WinsFeed keeps a short-lived public feed of wins in Redis and mirrors
// each win to the winnings table.
type WinsFeed struct {
	redisService *redis.RedisService
}

func NewWinsFeed(redisService *redis.RedisService) *WinsFeed {
	return &WinsFeed{redisService: redisService}
}

// Push is fire-and-forget; feed failures never affect settlement.
func (f *WinsFeed) Push(userID int64, gameName string, amount float64) {
	win := models.Winning{UserID: userID, Game: gameName, Amount: amount}
	if err := db.DB.Create(&win).Error; err != nil {
		logger.Error("Failed to record winning for user %d: %v", userID, err)
	}

	nickname := ""
	if user, err := models.GetUserByID(userID); err == nil {
		nickname = user.Nickname
	}

	data, err := json.Marshal(recentWin{
		Nickname: nickname,
		Game:     gameName,
		Amount:   amount,
		At:       time.Now(),
	})
	if err != nil {
		logger.Error("%v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.redisService.SetKey(ctx, winKeyPrefix+uuid.NewString(), data, winTTL); err != nil {
		logger.Error("Failed to push win to feed: %v", err)
	}
}

// GetRecentWins returns the latest wins across all players, newest first.
func (f *WinsFeed) GetRecentWins(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	keys, err := f.redisService.Keys(ctx, winKeyPrefix+"*")
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	wins := make([]recentWin, 0, len(keys))
	for _, key := range keys {
		data, err := f.redisService.GetKey(ctx, key)
		if err != nil {
			continue // expired between KEYS and GET
		}
		var win recentWin
		if err := json.Unmarshal([]byte(data), &win); err != nil {
			continue
		}
		wins = append(wins, win)
	}

	sort.Slice(wins, func(i, j int) bool { return wins[i].At.After(wins[j].At) })
	if len(wins) > recentWinLimit {
		wins = wins[:recentWinLimit]
	}

	c.JSON(200, gin.H{"wins": wins})
}

// SessionHistoryHandler exposes the in-memory round history, most recent
// first.
func SessionHistoryHandler(rec *history.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"entries": rec.Entries()})
	}
}
