package models

import (
	"time"

	"github.com/google/uuid"
)

// UserBalance is the per-user point counter kept in lockstep with the ledger.
// Every row update happens in the same transaction as the ledger insert it
// mirrors, so balance always equals the latest entry's balance_after.
type UserBalance struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Balance   int       `gorm:"column:balance;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserBalance) TableName() string { return "user_balances" }
