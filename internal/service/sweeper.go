package service

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/models"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

const staleRoundAge = 5 * time.Minute

// StartSweeper schedules the cleanup of rounds orphaned by a restart and
// the pruning of the persisted crash history.
func StartSweeper() *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("@every 1m", func() {
		if err := models.SweepStaleCrashRounds(staleRoundAge); err != nil {
			logger.Error("Stale round sweep failed: %v", err)
		}
		if err := models.TrimCrashHistory(nil); err != nil {
			logger.Error("Crash history trim failed: %v", err)
		}
	})
	if err != nil {
		logger.Error("Failed to schedule sweeper: %v", err)
	}

	c.Start()
	return c
}
