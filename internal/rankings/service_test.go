package rankings

import (
	"context"
	"testing"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:rankings_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ReductionRecord{}); err != nil {
		t.Fatalf("migrate tables: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, department string) models.User {
	t.Helper()
	user := models.User{
		Email:          name + "@example.com",
		FullName:       name,
		HashedPassword: "x",
		Department:     &department,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedReduction(t *testing.T, db *gorm.DB, userID uuid.UUID, date time.Time, kg string) {
	t.Helper()
	record := models.ReductionRecord{
		UserID:       userID,
		Date:         date,
		EnergyType:   enums.EnergyTypeGas,
		Usage:        50,
		Baseline:     60,
		ReducedCO2Kg: decimal.RequireFromString(kg),
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("seed reduction: %v", err)
	}
}

func TestService_Ranking(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 10)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	alice := seedUser(t, db, "Alice", "engineering")
	bob := seedUser(t, db, "Bob", "sales")
	carol := seedUser(t, db, "Carol", "engineering")

	august := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	seedReduction(t, db, alice.ID, august, "3.000")
	seedReduction(t, db, alice.ID, august.AddDate(0, 0, 5), "2.500")
	seedReduction(t, db, bob.ID, august, "4.200")
	seedReduction(t, db, carol.ID, august, "1.000")
	// Previous month, excluded.
	seedReduction(t, db, carol.ID, time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC), "50.000")

	entries, err := svc.Ranking(ctx, Query{Period: "2026-08"})
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entry count = %d, want 3", len(entries))
	}
	if entries[0].FullName != "Alice" || entries[0].Rank != 1 {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if !entries[0].TotalCO2Kg.Equal(decimal.RequireFromString("5.5")) {
		t.Fatalf("alice total = %s, want 5.5", entries[0].TotalCO2Kg)
	}
	if entries[0].EstimatedPoints != 55 {
		t.Fatalf("alice estimated points = %d, want 55", entries[0].EstimatedPoints)
	}
	if entries[1].FullName != "Bob" || entries[2].FullName != "Carol" {
		t.Fatalf("unexpected order: %s, %s", entries[1].FullName, entries[2].FullName)
	}
	if entries[2].Rank != 3 {
		t.Fatalf("carol rank = %d, want 3", entries[2].Rank)
	}
}

func TestService_RankingDepartmentFilter(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 10)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	alice := seedUser(t, db, "Alice", "engineering")
	bob := seedUser(t, db, "Bob", "sales")
	august := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	seedReduction(t, db, alice.ID, august, "2.000")
	seedReduction(t, db, bob.ID, august, "9.000")

	department := "engineering"
	entries, err := svc.Ranking(context.Background(), Query{Period: "2026-08", Department: &department})
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(entries) != 1 || entries[0].FullName != "Alice" {
		t.Fatalf("filtered entries = %+v", entries)
	}
}

func TestService_RankingLimit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 10)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	august := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"A", "B", "C"} {
		user := seedUser(t, db, name, "eng")
		seedReduction(t, db, user.ID, august, "1.000")
	}

	entries, err := svc.Ranking(context.Background(), Query{Period: "2026-08", Limit: 2})
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entry count = %d, want 2", len(entries))
	}
}

func TestService_RankingKeywordPeriods(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 10)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	alice := seedUser(t, db, "Alice", "engineering")
	today := time.Now().UTC()
	seedReduction(t, db, alice.ID, today, "2.000")
	// A year ago, outside every current window.
	seedReduction(t, db, alice.ID, today.AddDate(-1, 0, 0), "7.000")

	for _, keyword := range []string{"monthly", "quarterly", "yearly"} {
		entries, err := svc.Ranking(context.Background(), Query{Period: keyword})
		if err != nil {
			t.Fatalf("ranking %q: %v", keyword, err)
		}
		if len(entries) != 1 {
			t.Fatalf("%q entry count = %d, want 1", keyword, len(entries))
		}
		if !entries[0].TotalCO2Kg.Equal(decimal.RequireFromString("2")) {
			t.Fatalf("%q total = %s, want 2", keyword, entries[0].TotalCO2Kg)
		}
	}
}

func TestService_RankingInvalidPeriod(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 10)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Ranking(context.Background(), Query{Period: "not-a-period"}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
