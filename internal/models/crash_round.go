package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/leakagelink/spin-to-wealth-online-sub000/cmd/db"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

type CrashRound struct {
	ID              int64  `gorm:"primaryKey,autoIncrement"`
	RoundID         string `gorm:"uniqueIndex;not null"`
	UserID          int64  `gorm:"index;not null"`
	Amount          float64
	AutoCashOut     float64
	FinalMultiplier float64
	WinAmount       float64
	Status          string // "active", "won", "lost"
	StartedAt       time.Time
	EndedAt         time.Time
}

const crashHistoryLimit = 50

// FinishCrashRound stamps the terminal outcome on the persisted row.
func FinishCrashRound(roundID, status string, finalMultiplier, winAmount float64) error {
	err := db.DB.Model(&CrashRound{}).
		Where("round_id = ?", roundID).
		Updates(map[string]interface{}{
			"status":           status,
			"final_multiplier": finalMultiplier,
			"win_amount":       winAmount,
			"ended_at":         time.Now(),
		}).Error
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

// SweepStaleCrashRounds marks rounds that never resolved (service restart,
// dropped loop) as lost so they stop counting as active.
func SweepStaleCrashRounds(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	err := db.DB.Model(&CrashRound{}).
		Where("status = ? AND started_at < ?", "active", cutoff).
		Updates(map[string]interface{}{"status": "lost", "ended_at": time.Now()}).Error
	if err != nil {
		return logger.WrapError(err, "")
	}
	return nil
}

// TrimCrashHistory keeps only the newest rounds for the history endpoint.
func TrimCrashHistory(tx *gorm.DB) error {
	if tx == nil {
		tx = db.DB
	}

	var count int64
	if err := tx.Model(&CrashRound{}).Count(&count).Error; err != nil {
		return logger.WrapError(err, "")
	}

	if count > crashHistoryLimit {
		var oldest []CrashRound
		if err := tx.Order("id asc").
			Limit(int(count - crashHistoryLimit)).
			Find(&oldest).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if err := tx.Delete(&oldest).Error; err != nil {
			return logger.WrapError(err, "")
		}
	}

	return nil
}

// LastCrashRounds returns resolved rounds, newest first.
func LastCrashRounds(limit int) ([]CrashRound, error) {
	var rounds []CrashRound
	err := db.DB.Where("status <> ?", "active").
		Order("ended_at DESC").
		Limit(limit).
		Find(&rounds).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}
	return rounds, nil
}
