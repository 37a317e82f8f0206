package rankings

import (
	"context"
	"fmt"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/internal/period"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultLimit = 20

// Entry is one ranked leaderboard line. EstimatedPoints is a display-only
// projection of what the period's reductions are worth; the authoritative
// award happens in batch accrual.
type Entry struct {
	Rank            int             `json:"rank"`
	UserID          uuid.UUID       `json:"user_id"`
	FullName        string          `json:"full_name"`
	Department      *string         `json:"department,omitempty"`
	TotalCO2Kg      decimal.Decimal `json:"total_co2_kg"`
	EstimatedPoints int             `json:"estimated_points"`
}

// Query narrows a leaderboard request.
type Query struct {
	Period     string
	Department *string
	Limit      int
}

// Service computes CO2 reduction leaderboards.
type Service interface {
	Ranking(ctx context.Context, query Query) ([]Entry, error)
}

type service struct {
	repo        Repository
	pointsPerKg int
}

// NewService wires a rankings service. pointsPerKg drives the estimated
// points column.
func NewService(repo Repository, pointsPerKg int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rankings repository required")
	}
	if pointsPerKg <= 0 {
		return nil, fmt.Errorf("points per kg must be positive")
	}
	return &service{repo: repo, pointsPerKg: pointsPerKg}, nil
}

func (s *service) Ranking(ctx context.Context, query Query) ([]Entry, error) {
	window, err := period.Resolve(query.Period, time.Now())
	if err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	rows, err := s.repo.TopReducers(ctx, window.Start, window.End, query.Department, limit)
	if err != nil {
		return nil, err
	}

	perKg := decimal.NewFromInt(int64(s.pointsPerKg))
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, Entry{
			Rank:            i + 1,
			UserID:          row.UserID,
			FullName:        row.FullName,
			Department:      row.Department,
			TotalCO2Kg:      row.TotalKg,
			EstimatedPoints: int(row.TotalKg.Mul(perKg).IntPart()),
		})
	}
	return entries, nil
}
