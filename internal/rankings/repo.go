package rankings

import (
	"context"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Row is one leaderboard line before ranks are assigned.
type Row struct {
	UserID     uuid.UUID
	FullName   string
	Department *string
	TotalKg    decimal.Decimal
}

// Repository reads aggregated reduction data for leaderboards.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	TopReducers(ctx context.Context, start, end time.Time, department *string, limit int) ([]Row, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rankings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) TopReducers(ctx context.Context, start, end time.Time, department *string, limit int) ([]Row, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.ReductionRecord{}).
		Select("users.id AS user_id, users.full_name, users.department, SUM(reduction_records.reduced_co2_kg) AS total_kg").
		Joins("JOIN users ON users.id = reduction_records.user_id").
		Where("reduction_records.date >= ? AND reduction_records.date < ?", start, end)
	if department != nil && *department != "" {
		qb = qb.Where("users.department = ?", *department)
	}

	var rows []Row
	if err := qb.
		Group("users.id, users.full_name, users.department").
		Order("total_kg DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
