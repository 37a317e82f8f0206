package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
)

// ReductionRecord is a measured CO2 reduction supplied by the external
// measurement subsystem. The accrual process reads these but never mutates
// them.
type ReductionRecord struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Date         time.Time        `gorm:"column:date;type:date;not null;index"`
	EnergyType   enums.EnergyType `gorm:"column:energy_type;type:energy_type_enum;not null"`
	Usage        float64          `gorm:"column:usage;not null"`
	Baseline     float64          `gorm:"column:baseline;not null"`
	ReducedCO2Kg decimal.Decimal  `gorm:"column:reduced_co2_kg;type:numeric(10,3);not null"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (ReductionRecord) TableName() string { return "reduction_records" }

func (r *ReductionRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
