package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes read access to a user's point ledger plus manual
// adjustments, which run in their own transaction.
type Service interface {
	Append(ctx context.Context, input ApplyInput) (*models.LedgerEntry, error)
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, int64, error)
	Summary(ctx context.Context, userID uuid.UUID) (*BalanceSummary, error)
}

// BalanceSummary reports the current balance with lifetime totals and the
// credits accrued since the start of the current calendar month (UTC).
type BalanceSummary struct {
	Balance         int `json:"balance"`
	TotalEarned     int `json:"total_earned"`
	TotalSpent      int `json:"total_spent"`
	ThisMonthEarned int `json:"this_month_earned"`
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires a ledger service with the provided dependencies.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) Append(ctx context.Context, input ApplyInput) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := Apply(ctx, tx, input)
		if err != nil {
			return err
		}
		entry = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.Balance(ctx, userID)
}

func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID, params)
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*BalanceSummary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEarned, err := s.repo.EarnedSince(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}
	return &BalanceSummary{
		Balance:         balance,
		TotalEarned:     totals.Earned,
		TotalSpent:      totals.Spent,
		ThisMonthEarned: monthEarned,
	}, nil
}
