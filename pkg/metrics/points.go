package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Redemption outcome labels.
const (
	OutcomeSuccess            = "success"
	OutcomeNotFound           = "not_found"
	OutcomeOutOfStock         = "out_of_stock"
	OutcomeInsufficientPoints = "insufficient_points"
	OutcomeError              = "error"
)

// PointsMetrics records counters for the points ledger and redemption engine.
type PointsMetrics struct {
	redemptions   *prometheus.CounterVec
	pointsAwarded prometheus.Counter
	pointsSpent   prometheus.Counter
	accrualRuns   *prometheus.CounterVec
}

// NewPointsMetrics registers the point economy metrics on the provided registerer.
func NewPointsMetrics(reg prometheus.Registerer) *PointsMetrics {
	if reg == nil {
		return &PointsMetrics{}
	}
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecopoints_redemptions_total",
		Help: "Reward redemption attempts by outcome.",
	}, []string{"outcome"})
	pointsAwarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecopoints_points_awarded_total",
		Help: "Points credited to user ledgers by rule accrual.",
	})
	pointsSpent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecopoints_points_spent_total",
		Help: "Points debited from user ledgers by redemptions.",
	})
	accrualRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecopoints_accrual_runs_total",
		Help: "Rule accrual batch executions by result.",
	}, []string{"result"})
	reg.MustRegister(redemptions, pointsAwarded, pointsSpent, accrualRuns)
	return &PointsMetrics{
		redemptions:   redemptions,
		pointsAwarded: pointsAwarded,
		pointsSpent:   pointsSpent,
		accrualRuns:   accrualRuns,
	}
}

// IncRedemption counts one redemption attempt with the given outcome.
func (m *PointsMetrics) IncRedemption(outcome string) {
	if m == nil || m.redemptions == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeError
	}
	m.redemptions.WithLabelValues(outcome).Inc()
}

// AddPointsAwarded accumulates accrual credits.
func (m *PointsMetrics) AddPointsAwarded(points int) {
	if m == nil || m.pointsAwarded == nil || points <= 0 {
		return
	}
	m.pointsAwarded.Add(float64(points))
}

// AddPointsSpent accumulates redemption debits.
func (m *PointsMetrics) AddPointsSpent(points int) {
	if m == nil || m.pointsSpent == nil || points <= 0 {
		return
	}
	m.pointsSpent.Add(float64(points))
}

// IncAccrualRun counts one batch accrual execution.
func (m *PointsMetrics) IncAccrualRun(result string) {
	if m == nil || m.accrualRuns == nil {
		return
	}
	if result == "" {
		result = OutcomeError
	}
	m.accrualRuns.WithLabelValues(result).Inc()
}
