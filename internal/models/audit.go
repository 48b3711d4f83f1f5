package models

import "time"

// AuditRecord is one balance delta with its reason ("bet:<round>",
// "win:<round>", "loss:<round>"). Fire-and-forget from the ledger's point
// of view.
type AuditRecord struct {
	ID        int64   `gorm:"primaryKey,autoIncrement"`
	UserID    int64   `gorm:"index;not null"`
	Delta     float64 `gorm:"not null"`
	Reason    string  `gorm:"not null"`
	CreatedAt time.Time
}
