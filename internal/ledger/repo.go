package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/ecopoints-io/ecopoints-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Totals aggregates lifetime credit and debit volume for one user.
type Totals struct {
	Earned int
	Spent  int
}

// Drift reports a balance counter that disagrees with the entry history.
type Drift struct {
	UserID    uuid.UUID
	Balance   int
	LedgerSum int
}

// Repository manages persistence for ledger entries and balance counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, int64, error)
	Totals(ctx context.Context, userID uuid.UUID) (Totals, error)
	EarnedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	Drifts(ctx context.Context) ([]Drift, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Balance reads the counter row. A user with no movements yet has balance 0.
func (r *repository) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var counter models.UserBalance
	err := r.db.WithContext(ctx).First(&counter, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Balance, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.LedgerEntry
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repository) Totals(ctx context.Context, userID uuid.UUID) (Totals, error) {
	var row struct {
		Earned int
		Spent  int
	}
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select(
			"COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0) AS earned, "+
				"COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0) AS spent").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return Totals{}, err
	}
	return Totals{Earned: row.Earned, Spent: row.Spent}, nil
}

// EarnedSince sums the user's credits recorded at or after the given instant.
func (r *repository) EarnedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var earned int
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(delta), 0)").
		Where("user_id = ? AND delta > 0 AND created_at >= ?", userID, since).
		Scan(&earned).Error
	if err != nil {
		return 0, err
	}
	return earned, nil
}

// Drifts finds counter rows whose balance no longer equals the sum of the
// user's ledger deltas.
func (r *repository) Drifts(ctx context.Context) ([]Drift, error) {
	var rows []Drift
	err := r.db.WithContext(ctx).
		Model(&models.UserBalance{}).
		Select("user_balances.user_id AS user_id, user_balances.balance AS balance, COALESCE(SUM(ledger_entries.delta), 0) AS ledger_sum").
		Joins("LEFT JOIN ledger_entries ON ledger_entries.user_id = user_balances.user_id").
		Group("user_balances.user_id, user_balances.balance").
		Having("user_balances.balance <> COALESCE(SUM(ledger_entries.delta), 0)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
