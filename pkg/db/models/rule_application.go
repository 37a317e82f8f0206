package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RuleApplication marks that a rule has been applied to a user for a period.
// The composite unique index makes batch accrual re-runs fail instead of
// double-awarding points.
type RuleApplication struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	RuleID        uuid.UUID `gorm:"column:rule_id;type:uuid;not null;uniqueIndex:ux_rule_applications_once"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_rule_applications_once"`
	PeriodStart   time.Time `gorm:"column:period_start;not null;uniqueIndex:ux_rule_applications_once"`
	PeriodEnd     time.Time `gorm:"column:period_end;not null;uniqueIndex:ux_rule_applications_once"`
	PointsAwarded int       `gorm:"column:points_awarded;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RuleApplication) TableName() string { return "rule_applications" }

func (r *RuleApplication) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
