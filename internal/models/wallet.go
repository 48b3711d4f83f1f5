package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/leakagelink/spin-to-wealth-online-sub000/cmd/db"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

// WalletStore is the gorm-backed wallet boundary the ledger writes
// through. Balance writes are overwrites computed from a read immediately
// prior; the ledger serializes them per player. Concurrent multi-device
// play can still race between two service instances; accepted limitation.
type WalletStore struct {
	startingBalance float64
}

func NewWalletStore(startingBalance float64) *WalletStore {
	return &WalletStore{startingBalance: startingBalance}
}

// GetBalance reads the wallet, creating it with the starting balance when
// the player has none yet.
func (w *WalletStore) GetBalance(playerID int64) (float64, error) {
	var user User
	err := db.DB.First(&user, playerID).Error
	if err == nil {
		return user.Balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, logger.WrapError(err, "")
	}

	user = User{
		ID:       playerID,
		Nickname: fmt.Sprintf("player-%d", playerID),
		Balance:  w.startingBalance,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return 0, logger.WrapError(err, "")
	}
	logger.Info("Created wallet for player %d with starting balance %.2f", playerID, w.startingBalance)
	return user.Balance, nil
}

func (w *WalletStore) SetBalance(playerID int64, balance float64) error {
	res := db.DB.Model(&User{}).Where("id = ?", playerID).Update("balance", balance)
	if res.Error != nil {
		return logger.WrapError(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return logger.WrapError(gorm.ErrRecordNotFound, "no wallet to update")
	}
	return nil
}

// AppendAuditRecord is fire-and-forget; a lost record never blocks a
// settlement.
func (w *WalletStore) AppendAuditRecord(playerID int64, delta float64, reason string) {
	rec := AuditRecord{UserID: playerID, Delta: delta, Reason: reason}
	if err := db.DB.Create(&rec).Error; err != nil {
		logger.Error("Failed to append audit record for player %d: %v", playerID, err)
	}
}
