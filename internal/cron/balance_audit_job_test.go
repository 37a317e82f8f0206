package cron

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ecopoints-io/ecopoints-backend/internal/ledger"
	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
)

func newAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cron_audit_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.UserBalance{}, &models.LedgerEntry{}); err != nil {
		t.Fatalf("migrate ledger tables: %v", err)
	}
	return db
}

func seedUserLedger(t *testing.T, db *gorm.DB, userID uuid.UUID, deltas []int, counter int) {
	t.Helper()
	running := 0
	for _, delta := range deltas {
		running += delta
		entry := models.LedgerEntry{
			UserID:       userID,
			Delta:        delta,
			Reason:       "seed",
			BalanceAfter: running,
			CreatedAt:    time.Now().UTC(),
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}
	balance := models.UserBalance{UserID: userID, Balance: counter, UpdatedAt: time.Now().UTC()}
	if err := db.Create(&balance).Error; err != nil {
		t.Fatalf("seed counter: %v", err)
	}
}

func TestBalanceAuditPassesWhenCountersMatch(t *testing.T) {
	t.Parallel()

	db := newAuditTestDB(t)
	seedUserLedger(t, db, uuid.New(), []int{100, -30}, 70)
	seedUserLedger(t, db, uuid.New(), []int{50}, 50)

	job := &balanceAuditJob{logg: testLogger(), repo: ledger.NewRepository(db)}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected clean audit, got %v", err)
	}
}

func TestBalanceAuditReportsEveryDriftedUser(t *testing.T) {
	t.Parallel()

	db := newAuditTestDB(t)
	good := uuid.New()
	badA := uuid.New()
	badB := uuid.New()
	seedUserLedger(t, db, good, []int{100}, 100)
	seedUserLedger(t, db, badA, []int{100, -30}, 80)
	seedUserLedger(t, db, badB, []int{10}, 0)

	job := &balanceAuditJob{logg: testLogger(), repo: ledger.NewRepository(db)}
	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected drift error")
	}
	msg := err.Error()
	if !strings.Contains(msg, badA.String()) || !strings.Contains(msg, badB.String()) {
		t.Fatalf("error should name both drifted users, got %q", msg)
	}
	if strings.Contains(msg, good.String()) {
		t.Fatalf("consistent user should not be reported, got %q", msg)
	}
}

func TestBalanceAuditIgnoresUsersWithoutEntries(t *testing.T) {
	t.Parallel()

	db := newAuditTestDB(t)
	// a seeded counter at zero with no movements is consistent
	seedUserLedger(t, db, uuid.New(), nil, 0)

	job := &balanceAuditJob{logg: testLogger(), repo: ledger.NewRepository(db)}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected clean audit, got %v", err)
	}
}
