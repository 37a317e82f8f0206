package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
)

// Redemption is one user's exchange of points for a reward. points_spent is
// captured at redemption time; later catalog price changes do not affect it.
type Redemption struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	RewardID    uuid.UUID              `gorm:"column:reward_id;type:uuid;not null"`
	PointsSpent int                    `gorm:"column:points_spent;not null"`
	Status      enums.RedemptionStatus `gorm:"column:status;type:redemption_status_enum;not null;default:pending"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (Redemption) TableName() string { return "redemptions" }

func (r *Redemption) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
