package rewards

import (
	"context"
	"strings"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the reward catalog query.
type ListFilter struct {
	Category    *string
	Search      *string
	ActiveOnly  bool
	InStockOnly bool
	Page        pagination.Params
}

// Repository manages persistence for the reward catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reward *models.Reward) error
	Update(ctx context.Context, reward *models.Reward) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reward, error)
	List(ctx context.Context, filter ListFilter) ([]models.Reward, int64, error)
	Categories(ctx context.Context) ([]string, error)
	DecrementStock(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reward repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reward *models.Reward) error {
	return r.db.WithContext(ctx).Create(reward).Error
}

func (r *repository) Update(ctx context.Context, reward *models.Reward) error {
	return r.db.WithContext(ctx).Save(reward).Error
}

// Deactivate hides a reward without removing the row, so redemption history
// keeps resolving against it.
func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Reward{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     false,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	var reward models.Reward
	if err := r.db.WithContext(ctx).First(&reward, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Reward, int64, error) {
	page := filter.Page.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Reward{})
	if filter.Category != nil && *filter.Category != "" {
		qb = qb.Where("category = ?", *filter.Category)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		qb = qb.Where("LOWER(title) LIKE ?", pattern)
	}
	if filter.ActiveOnly {
		qb = qb.Where("active = ?", true)
	}
	if filter.InStockOnly {
		qb = qb.Where("stock > 0")
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rewards []models.Reward
	if err := qb.
		Order("points_required ASC, created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rewards).Error; err != nil {
		return nil, 0, err
	}
	return rewards, total, nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&models.Reward{}).
		Distinct("category").
		Where("active = ?", true).
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// DecrementStock takes one unit off an active reward. The predicate makes the
// decrement atomic: with stock at 1, only one of two concurrent calls can win.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Reward{}).
		Where("id = ? AND active = ? AND stock > 0", id, true).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "reward is out of stock")
	}
	return nil
}
