package reductions

import (
	"context"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserTotal is one user's summed CO2 reduction over a period.
type UserTotal struct {
	UserID  uuid.UUID
	TotalKg decimal.Decimal
}

// Repository reads measured CO2 reductions. Records come from the external
// measurement subsystem, so there is no update or delete surface here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.ReductionRecord) error
	TotalsByUser(ctx context.Context, start, end time.Time) ([]UserTotal, error)
	TotalForUser(ctx context.Context, userID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reduction-record repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.ReductionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// TotalsByUser sums reductions per user over the half-open range [start, end).
func (r *repository) TotalsByUser(ctx context.Context, start, end time.Time) ([]UserTotal, error) {
	var rows []struct {
		UserID  uuid.UUID
		TotalKg decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReductionRecord{}).
		Select("user_id, SUM(reduced_co2_kg) AS total_kg").
		Where("date >= ? AND date < ?", start, end).
		Group("user_id").
		Order("user_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make([]UserTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, UserTotal{UserID: row.UserID, TotalKg: row.TotalKg})
	}
	return totals, nil
}

func (r *repository) TotalForUser(ctx context.Context, userID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var row struct {
		TotalKg decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReductionRecord{}).
		Select("COALESCE(SUM(reduced_co2_kg), 0) AS total_kg").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.TotalKg, nil
}
