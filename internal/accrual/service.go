package accrual

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecopoints-io/ecopoints-backend/internal/ledger"
	"github.com/ecopoints-io/ecopoints-backend/internal/period"
	"github.com/ecopoints-io/ecopoints-backend/internal/reductions"
	"github.com/ecopoints-io/ecopoints-backend/pkg/db"
	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const applicationsConstraint = "ux_rule_applications_once"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages point rules and runs batch accrual over measured
// CO2 reductions.
type Service interface {
	CreateRule(ctx context.Context, input CreateRuleInput) (*models.PointRule, error)
	UpdateRule(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*models.PointRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ListRules(ctx context.Context, activeOnly bool) ([]models.PointRule, error)
	ApplyRules(ctx context.Context, periodLabel string) (*ApplyResult, error)
}

// CreateRuleInput captures the fields a new accrual policy requires.
type CreateRuleInput struct {
	Name     string
	RuleType enums.RuleType
	Value    float64
	Active   bool
}

// UpdateRuleInput applies a partial update. Nil fields keep their value.
type UpdateRuleInput struct {
	Name   *string
	Value  *float64
	Active *bool
}

// ApplyResult summarizes one batch accrual run.
type ApplyResult struct {
	Period        string `json:"period"`
	RulesApplied  int    `json:"rules_applied"`
	UsersAwarded  int    `json:"users_awarded"`
	PointsAwarded int    `json:"points_awarded"`
}

type service struct {
	tx             txRunner
	repo           Repository
	reductionsRepo reductions.Repository
	metrics        *metrics.PointsMetrics
}

// NewService wires an accrual service with the provided dependencies.
func NewService(tx txRunner, repo Repository, reductionsRepo reductions.Repository, m *metrics.PointsMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("accrual repository required")
	}
	if reductionsRepo == nil {
		return nil, fmt.Errorf("reductions repository required")
	}
	return &service{tx: tx, repo: repo, reductionsRepo: reductionsRepo, metrics: m}, nil
}

func (s *service) CreateRule(ctx context.Context, input CreateRuleInput) (*models.PointRule, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule name required")
	}
	if !input.RuleType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid rule type %q", input.RuleType))
	}
	if input.Value <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule value must be positive")
	}

	rule := &models.PointRule{
		Name:     name,
		RuleType: input.RuleType,
		Value:    input.Value,
		Active:   input.Active,
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*models.PointRule, error) {
	rule, err := s.findRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule name cannot be empty")
		}
		rule.Name = name
	}
	if input.Value != nil {
		if *input.Value <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule value must be positive")
		}
		rule.Value = *input.Value
	}
	if input.Active != nil {
		rule.Active = *input.Active
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule retires a rule by setting it inactive. Rows are never removed.
func (s *service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findRule(ctx, id); err != nil {
		return err
	}
	return s.repo.DeactivateRule(ctx, id)
}

func (s *service) ListRules(ctx context.Context, activeOnly bool) ([]models.PointRule, error) {
	return s.repo.ListRules(ctx, activeOnly)
}

// ApplyRules credits every user with measured reductions in the period,
// according to the active per-kg rules. The whole run is one transaction:
// a rule already applied for the period aborts it without partial awards.
func (s *service) ApplyRules(ctx context.Context, periodLabel string) (*ApplyResult, error) {
	window, err := period.Parse(periodLabel)
	if err != nil {
		s.metrics.IncAccrualRun("invalid_period")
		return nil, err
	}

	result := &ApplyResult{Period: window.Label}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rules, err := repo.ListRules(ctx, true)
		if err != nil {
			return err
		}
		perKg := rules[:0:0]
		for _, rule := range rules {
			if rule.RuleType == enums.RuleTypePerKg {
				perKg = append(perKg, rule)
			}
		}
		if len(perKg) == 0 {
			return pkgerrors.New(pkgerrors.CodeNoActiveRules, "no active accrual rules")
		}

		totals, err := s.reductionsRepo.WithTx(tx).TotalsByUser(ctx, window.Start, window.End)
		if err != nil {
			return err
		}

		awarded := map[uuid.UUID]bool{}
		for _, rule := range perKg {
			applied := false
			for _, total := range totals {
				points := int(total.TotalKg.Mul(decimal.NewFromFloat(rule.Value)).IntPart())
				if points <= 0 {
					continue
				}

				application := &models.RuleApplication{
					RuleID:        rule.ID,
					UserID:        total.UserID,
					PeriodStart:   window.Start,
					PeriodEnd:     window.End,
					PointsAwarded: points,
				}
				if err := repo.CreateApplication(ctx, application); err != nil {
					if db.IsUniqueViolation(err, applicationsConstraint) {
						return pkgerrors.New(pkgerrors.CodeAlreadyApplied,
							fmt.Sprintf("rule %s already applied for %s", rule.Name, window.Label))
					}
					return err
				}

				reason := fmt.Sprintf("%s %s (CO2 reduction: %skg)", window.Label, rule.Name, total.TotalKg.StringFixed(2))
				if _, err := ledger.Apply(ctx, tx, ledger.ApplyInput{
					UserID:      total.UserID,
					Delta:       points,
					Reason:      reason,
					ReferenceID: &application.ID,
				}); err != nil {
					return err
				}

				applied = true
				awarded[total.UserID] = true
				result.PointsAwarded += points
			}
			if applied {
				result.RulesApplied++
			}
		}
		result.UsersAwarded = len(awarded)
		return nil
	})
	if err != nil {
		s.metrics.IncAccrualRun(accrualOutcome(err))
		return nil, err
	}

	s.metrics.IncAccrualRun("success")
	s.metrics.AddPointsAwarded(result.PointsAwarded)
	return result, nil
}

func accrualOutcome(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeNoActiveRules):
		return "no_active_rules"
	case pkgerrors.HasCode(err, pkgerrors.CodeAlreadyApplied):
		return "already_applied"
	default:
		return "error"
	}
}

func (s *service) findRule(ctx context.Context, id uuid.UUID) (*models.PointRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id required")
	}
	rule, err := s.repo.FindRuleByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "point rule not found")
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}
