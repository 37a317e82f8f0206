package redemptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecopoints-io/ecopoints-backend/internal/ledger"
	"github.com/ecopoints-io/ecopoints-backend/internal/rewards"
	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes reward exchanges and manages their review lifecycle.
type Service interface {
	Redeem(ctx context.Context, userID, rewardID uuid.UUID, opts RedeemOptions) (*models.Redemption, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.RedemptionStatus) (*models.Redemption, error)
	List(ctx context.Context, filter ListFilter) ([]View, int64, error)
}

// RedeemOptions tunes a single exchange.
type RedeemOptions struct {
	// InstantApprove skips the pending review step. Used by channels with
	// no back-office review, such as the mobile app.
	InstantApprove bool
}

type service struct {
	tx          txRunner
	repo        Repository
	rewardsRepo rewards.Repository
	metrics     *metrics.PointsMetrics
}

// NewService wires a redemption service with the provided dependencies.
func NewService(tx txRunner, repo Repository, rewardsRepo rewards.Repository, m *metrics.PointsMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("redemptions repository required")
	}
	if rewardsRepo == nil {
		return nil, fmt.Errorf("rewards repository required")
	}
	return &service{tx: tx, repo: repo, rewardsRepo: rewardsRepo, metrics: m}, nil
}

// Redeem exchanges points for one unit of a reward. The stock decrement, the
// ledger debit and the redemption row commit or roll back together.
func (s *service) Redeem(ctx context.Context, userID, rewardID uuid.UUID, opts RedeemOptions) (*models.Redemption, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if rewardID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reward id required")
	}

	var redemption *models.Redemption
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rewardsRepo := s.rewardsRepo.WithTx(tx)

		reward, err := rewardsRepo.FindByID(ctx, rewardID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reward not found")
		}
		if err != nil {
			return err
		}
		if !reward.Active {
			// deactivated rewards are invisible to employees
			return pkgerrors.New(pkgerrors.CodeNotFound, "reward not found")
		}

		if err := rewardsRepo.DecrementStock(ctx, rewardID); err != nil {
			return err
		}

		status := enums.RedemptionStatusPending
		if opts.InstantApprove {
			status = enums.RedemptionStatusApproved
		}
		record := &models.Redemption{
			ID:          uuid.New(),
			UserID:      userID,
			RewardID:    rewardID,
			PointsSpent: reward.PointsRequired,
			Status:      status,
		}

		if _, err := ledger.Apply(ctx, tx, ledger.ApplyInput{
			UserID:       userID,
			Delta:        -reward.PointsRequired,
			Reason:       "reward exchange: " + reward.Title,
			ReferenceID:  &record.ID,
			EnforceFloor: true,
		}); err != nil {
			return err
		}

		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}
		redemption = record
		return nil
	})
	if err != nil {
		s.metrics.IncRedemption(redeemOutcome(err))
		return nil, err
	}

	s.metrics.IncRedemption(metrics.OutcomeSuccess)
	s.metrics.AddPointsSpent(redemption.PointsSpent)
	return redemption, nil
}

func redeemOutcome(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
		return metrics.OutcomeNotFound
	case pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock):
		return metrics.OutcomeOutOfStock
	case pkgerrors.HasCode(err, pkgerrors.CodeInsufficientPoints):
		return metrics.OutcomeInsufficientPoints
	default:
		return metrics.OutcomeError
	}
}

// UpdateStatus moves a redemption through its review lifecycle. Rejection
// does not refund spent points.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.RedemptionStatus) (*models.Redemption, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redemption id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid redemption status %q", next))
	}

	redemption, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "redemption not found")
	}
	if err != nil {
		return nil, err
	}

	if !redemption.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move redemption from %s to %s", redemption.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	redemption.Status = next
	return redemption, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]View, int64, error) {
	return s.repo.List(ctx, filter)
}
