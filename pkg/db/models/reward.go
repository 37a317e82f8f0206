package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reward is a redeemable catalog item with a finite stock counter.
type Reward struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title          string    `gorm:"column:title;size:200;not null"`
	Description    *string   `gorm:"column:description"`
	Category       string    `gorm:"column:category;size:50;not null;index"`
	ImageURL       *string   `gorm:"column:image_url;size:500"`
	PointsRequired int       `gorm:"column:points_required;not null"`
	Stock          int       `gorm:"column:stock;not null;default:0"`
	// no gorm default tag: a default would make GORM skip the zero value
	// on insert, so a reward created inactive would come back active
	Active bool `gorm:"column:active;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Reward) TableName() string { return "rewards" }

func (r *Reward) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
