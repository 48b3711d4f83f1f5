package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/leakagelink/spin-to-wealth-online-sub000/cmd/db"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

type RouletteSpin struct {
	ID        int64  `gorm:"primaryKey,autoIncrement"`
	RoundID   string `gorm:"uniqueIndex;not null"`
	UserID    int64  `gorm:"index;not null"`
	Amount    float64
	BetKey    string `gorm:"not null"`
	Outcome   int
	Color     string
	Payout    float64
	Status    string // "won", "lost"
	CreatedAt time.Time
}

const rouletteHistoryLimit = 20

// UserRouletteHistory returns the player's latest spins and prunes
// everything older than the kept window.
func UserRouletteHistory(userID int64) ([]RouletteSpin, error) {
	var spins []RouletteSpin
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Order("created_at desc").
			Limit(rouletteHistoryLimit).
			Find(&spins).Error; err != nil {
			return err
		}

		if len(spins) == rouletteHistoryLimit {
			oldest := spins[len(spins)-1].CreatedAt
			if err := tx.Where("user_id = ? AND created_at < ?", userID, oldest).
				Delete(&RouletteSpin{}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return spins, nil
}
