package accrual

import (
	"context"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages point rules and their applications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRule(ctx context.Context, rule *models.PointRule) error
	UpdateRule(ctx context.Context, rule *models.PointRule) error
	DeactivateRule(ctx context.Context, id uuid.UUID) error
	FindRuleByID(ctx context.Context, id uuid.UUID) (*models.PointRule, error)
	ListRules(ctx context.Context, activeOnly bool) ([]models.PointRule, error)
	CreateApplication(ctx context.Context, application *models.RuleApplication) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an accrual repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRule(ctx context.Context, rule *models.PointRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) UpdateRule(ctx context.Context, rule *models.PointRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// DeactivateRule retires a rule without removing the row, preserving the
// audit trail of past applications.
func (r *repository) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PointRule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     false,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) FindRuleByID(ctx context.Context, id uuid.UUID) (*models.PointRule, error) {
	var rule models.PointRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) ListRules(ctx context.Context, activeOnly bool) ([]models.PointRule, error) {
	qb := r.db.WithContext(ctx).Model(&models.PointRule{})
	if activeOnly {
		qb = qb.Where("active = ?", true)
	}
	var rules []models.PointRule
	if err := qb.Order("created_at ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) CreateApplication(ctx context.Context, application *models.RuleApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}
