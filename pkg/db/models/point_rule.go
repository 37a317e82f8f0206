package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
)

// PointRule is an admin-configured accrual policy. For per_kg rules Value is
// the point multiplier per kilogram of CO2 reduced; for rank_bonus rules it is
// the flat bonus amount.
type PointRule struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name      string         `gorm:"column:name;size:100;not null"`
	RuleType  enums.RuleType `gorm:"column:rule_type;type:rule_type_enum;not null"`
	Value     float64        `gorm:"column:value;not null"`
	// no gorm default tag, see Reward.Active
	Active bool `gorm:"column:active;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (PointRule) TableName() string { return "point_rules" }

func (r *PointRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
