package redemptions

import (
	"context"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
	"github.com/ecopoints-io/ecopoints-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// View is a redemption row joined with its reward for display.
type View struct {
	ID             uuid.UUID              `json:"id"`
	UserID         uuid.UUID              `json:"user_id"`
	RewardID       uuid.UUID              `json:"reward_id"`
	RewardTitle    string                 `json:"reward_title"`
	RewardCategory string                 `json:"reward_category"`
	PointsSpent    int                    `json:"points_spent"`
	Status         enums.RedemptionStatus `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ListFilter narrows the redemption listing.
type ListFilter struct {
	UserID *uuid.UUID
	Status *enums.RedemptionStatus
	Page   pagination.Params
}

// Repository manages persistence for reward redemptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, redemption *models.Redemption) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Redemption, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RedemptionStatus) error
	List(ctx context.Context, filter ListFilter) ([]View, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a redemption repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, redemption *models.Redemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
	var redemption models.Redemption
	if err := r.db.WithContext(ctx).First(&redemption, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RedemptionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Redemption{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]View, int64, error) {
	page := filter.Page.Normalize()

	qb := r.db.WithContext(ctx).
		Model(&models.Redemption{}).
		Joins("JOIN rewards ON rewards.id = redemptions.reward_id")
	if filter.UserID != nil {
		qb = qb.Where("redemptions.user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		qb = qb.Where("redemptions.status = ?", *filter.Status)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var views []View
	if err := qb.
		Select("redemptions.id, redemptions.user_id, redemptions.reward_id, " +
			"rewards.title AS reward_title, rewards.category AS reward_category, " +
			"redemptions.points_spent, redemptions.status, redemptions.created_at").
		Order("redemptions.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(&views).Error; err != nil {
		return nil, 0, err
	}
	return views, total, nil
}
