package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry records one immutable, signed point delta for a user.
// Entries for a user are totally ordered by (created_at, id); the id sequence
// is assigned by the store and never reused.
type LedgerEntry struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Delta        int        `gorm:"column:delta;not null"`
	Reason       string     `gorm:"column:reason;size:200;not null"`
	ReferenceID  *uuid.UUID `gorm:"column:reference_id;type:uuid"`
	BalanceAfter int        `gorm:"column:balance_after;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }
