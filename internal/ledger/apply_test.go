package ledger

import (
	"context"
	"testing"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.UserBalance{}, &models.LedgerEntry{}); err != nil {
		t.Fatalf("migrate ledger tables: %v", err)
	}
	return db
}

func TestApplyFreshUserStartsAtZero(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	var entry *models.LedgerEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		applied, terr := Apply(ctx, tx, ApplyInput{UserID: userID, Delta: 100, Reason: "monthly accrual"})
		entry = applied
		return terr
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if entry.BalanceAfter != 100 {
		t.Fatalf("balance after first credit = %d, want 100", entry.BalanceAfter)
	}

	var counter models.UserBalance
	if err := db.First(&counter, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load counter: %v", err)
	}
	if counter.Balance != 100 {
		t.Fatalf("counter balance = %d, want 100", counter.Balance)
	}
}

func TestApplyBalanceAfterTracksRunningSum(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	deltas := []int{50, 30, -20, 200, -100}
	running := 0
	for _, delta := range deltas {
		running += delta
		want := running
		err := db.Transaction(func(tx *gorm.DB) error {
			entry, terr := Apply(ctx, tx, ApplyInput{
				UserID:       userID,
				Delta:        delta,
				Reason:       "movement",
				EnforceFloor: delta < 0,
			})
			if terr != nil {
				return terr
			}
			if entry.BalanceAfter != want {
				t.Fatalf("balance after delta %d = %d, want %d", delta, entry.BalanceAfter, want)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("apply delta %d: %v", delta, err)
		}
	}

	var sum int
	if err := db.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(delta), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error; err != nil {
		t.Fatalf("sum entries: %v", err)
	}
	var counter models.UserBalance
	if err := db.First(&counter, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load counter: %v", err)
	}
	if sum != counter.Balance || sum != running {
		t.Fatalf("ledger sum %d, counter %d, want both %d", sum, counter.Balance, running)
	}
}

func TestApplyFloorRejectsOverdraw(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := Apply(ctx, tx, ApplyInput{UserID: userID, Delta: 50, Reason: "seed credit"})
		return terr
	})
	if err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		_, terr := Apply(ctx, tx, ApplyInput{UserID: userID, Delta: -80, Reason: "overdraw", EnforceFloor: true})
		return terr
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientPoints) {
		t.Fatalf("expected insufficient points error, got %v", err)
	}

	var counter models.UserBalance
	if err := db.First(&counter, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load counter: %v", err)
	}
	if counter.Balance != 50 {
		t.Fatalf("balance changed by rejected debit: %d", counter.Balance)
	}
	var count int64
	if err := db.Model(&models.LedgerEntry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("rejected debit left %d entries, want 1", count)
	}
}

func TestApplyExactBalanceDebitSucceeds(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, terr := Apply(ctx, tx, ApplyInput{UserID: userID, Delta: 300, Reason: "seed credit"}); terr != nil {
			return terr
		}
		entry, terr := Apply(ctx, tx, ApplyInput{UserID: userID, Delta: -300, Reason: "spend all", EnforceFloor: true})
		if terr != nil {
			return terr
		}
		if entry.BalanceAfter != 0 {
			t.Fatalf("balance after exact debit = %d, want 0", entry.BalanceAfter)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("exact debit: %v", err)
	}
}

func TestApplyValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input ApplyInput
	}{
		{name: "missing user", input: ApplyInput{Delta: 10, Reason: "x"}},
		{name: "zero delta", input: ApplyInput{UserID: uuid.New(), Reason: "x"}},
		{name: "missing reason", input: ApplyInput{UserID: uuid.New(), Delta: 10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Apply(ctx, db, tc.input)
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := Apply(ctx, nil, ApplyInput{UserID: uuid.New(), Delta: 10, Reason: "x"}); err == nil {
		t.Fatal("expected error for nil transaction")
	}
}
