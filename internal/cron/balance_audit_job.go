package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/ecopoints-io/ecopoints-backend/internal/ledger"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

// BalanceAuditJobParams configure the ledger consistency check.
type BalanceAuditJobParams struct {
	Logger *logger.Logger
	Ledger balanceAuditRepo
}

type balanceAuditRepo interface {
	Drifts(ctx context.Context) ([]ledger.Drift, error)
}

// NewBalanceAuditJob builds a job that cross-checks every balance counter
// against the sum of that user's ledger entries. The counters are redundant
// state; any disagreement means a write path bypassed the ledger.
func NewBalanceAuditJob(params BalanceAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &balanceAuditJob{
		logg: params.Logger,
		repo: params.Ledger,
	}, nil
}

type balanceAuditJob struct {
	logg *logger.Logger
	repo balanceAuditRepo
}

func (j *balanceAuditJob) Name() string { return "balance-audit" }

func (j *balanceAuditJob) Run(ctx context.Context) error {
	drifts, err := j.repo.Drifts(ctx)
	if err != nil {
		return fmt.Errorf("query balance drift: %w", err)
	}
	if len(drifts) == 0 {
		j.logg.Info(ctx, "balance audit clean")
		return nil
	}

	var errs []error
	for _, d := range drifts {
		driftCtx := j.logg.WithFields(ctx, map[string]any{
			"user_id":    d.UserID,
			"counter":    d.Balance,
			"ledger_sum": d.LedgerSum,
		})
		j.logg.Warn(driftCtx, "balance counter disagrees with ledger")
		errs = append(errs, fmt.Errorf("user %s: counter %d, ledger sum %d", d.UserID, d.Balance, d.LedgerSum))
	}
	return multierr.Combine(errs...)
}
