package cron

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/internal/accrual"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

type stubAccrualRunner struct {
	period string
	result *accrual.ApplyResult
	err    error
}

func (s *stubAccrualRunner) ApplyRules(ctx context.Context, periodLabel string) (*accrual.ApplyResult, error) {
	s.period = periodLabel
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &accrual.ApplyResult{Period: periodLabel}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestAccrualJobTargetsPreviousMonth(t *testing.T) {
	t.Parallel()

	runner := &stubAccrualRunner{}
	job := &accrualJob{
		logg:    testLogger(),
		accrual: runner,
		now: func() time.Time {
			return time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
		},
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if runner.period != "2026-02" {
		t.Fatalf("period = %q, want 2026-02", runner.period)
	}
}

func TestAccrualJobRollsOverYearBoundary(t *testing.T) {
	t.Parallel()

	runner := &stubAccrualRunner{}
	job := &accrualJob{
		logg:    testLogger(),
		accrual: runner,
		now: func() time.Time {
			return time.Date(2026, time.January, 1, 0, 30, 0, 0, time.UTC)
		},
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if runner.period != "2025-12" {
		t.Fatalf("period = %q, want 2025-12", runner.period)
	}
}

func TestAccrualJobTreatsSettledPeriodAsNoop(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
	}{
		{"already applied", pkgerrors.New(pkgerrors.CodeAlreadyApplied, "rule already applied for period")},
		{"no active rules", pkgerrors.New(pkgerrors.CodeNoActiveRules, "no active rules")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			job := &accrualJob{
				logg:    testLogger(),
				accrual: &stubAccrualRunner{err: tc.err},
				now:     time.Now,
			}
			if err := job.Run(context.Background()); err != nil {
				t.Fatalf("expected noop, got %v", err)
			}
		})
	}
}

func TestAccrualJobSurfacesFailures(t *testing.T) {
	t.Parallel()

	job := &accrualJob{
		logg:    testLogger(),
		accrual: &stubAccrualRunner{err: pkgerrors.New(pkgerrors.CodeInternal, "db down")},
		now:     time.Now,
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error when accrual fails")
	}
}
