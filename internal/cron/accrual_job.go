package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/internal/accrual"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

// AccrualJobParams configure the monthly accrual job.
type AccrualJobParams struct {
	Logger  *logger.Logger
	Accrual accrualRunner
}

type accrualRunner interface {
	ApplyRules(ctx context.Context, periodLabel string) (*accrual.ApplyResult, error)
}

// NewAccrualJob builds a job that awards points for the previous calendar
// month. Reruns are safe: a period that was already settled is a no-op.
func NewAccrualJob(params AccrualJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Accrual == nil {
		return nil, fmt.Errorf("accrual service required")
	}
	return &accrualJob{
		logg:    params.Logger,
		accrual: params.Accrual,
		now:     time.Now,
	}, nil
}

type accrualJob struct {
	logg    *logger.Logger
	accrual accrualRunner
	now     func() time.Time
}

func (j *accrualJob) Name() string { return "monthly-accrual" }

func (j *accrualJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	period := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -1, 0).
		Format("2006-01")

	logCtx := j.logg.WithField(ctx, "period", period)

	result, err := j.accrual.ApplyRules(ctx, period)
	switch {
	case err == nil:
		logCtx = j.logg.WithFields(logCtx, map[string]any{
			"rules_applied":  result.RulesApplied,
			"users_awarded":  result.UsersAwarded,
			"points_awarded": result.PointsAwarded,
		})
		j.logg.Info(logCtx, "monthly accrual complete")
		return nil
	case pkgerrors.HasCode(err, pkgerrors.CodeAlreadyApplied):
		j.logg.Info(logCtx, "monthly accrual already settled")
		return nil
	case pkgerrors.HasCode(err, pkgerrors.CodeNoActiveRules):
		j.logg.Info(logCtx, "no active accrual rules; nothing to award")
		return nil
	default:
		return fmt.Errorf("monthly accrual for %s: %w", period, err)
	}
}
