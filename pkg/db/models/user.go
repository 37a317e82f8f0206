package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the minimal account surface the platform needs: identity, admin
// flag, and company membership for scoping.
type User struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email          string     `gorm:"column:email;size:255;not null;uniqueIndex"`
	FullName       string     `gorm:"column:full_name;size:200;not null"`
	HashedPassword string     `gorm:"column:hashed_password;size:255;not null"`
	IsSuperuser    bool       `gorm:"column:is_superuser;not null;default:false"`
	CompanyID      *uuid.UUID `gorm:"column:company_id;type:uuid"`
	Department     *string    `gorm:"column:department;size:100"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
