package rewards

import (
	"context"
	"testing"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:rewards_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Reward{}); err != nil {
		t.Fatalf("migrate rewards: %v", err)
	}
	return db
}

func seedReward(t *testing.T, db *gorm.DB, reward models.Reward) models.Reward {
	t.Helper()
	if err := db.Create(&reward).Error; err != nil {
		t.Fatalf("seed reward: %v", err)
	}
	return reward
}

func TestRepository_ListFilters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedReward(t, db, models.Reward{Title: "Eco Tumbler", Category: "goods", PointsRequired: 500, Stock: 10, Active: true})
	seedReward(t, db, models.Reward{Title: "Cafe Ticket", Category: "voucher", PointsRequired: 200, Stock: 0, Active: true})
	seedReward(t, db, models.Reward{Title: "Retired Mug", Category: "goods", PointsRequired: 300, Stock: 5, Active: false})

	category := "goods"
	got, total, err := repo.List(ctx, ListFilter{Category: &category, Page: pagination.Params{}})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("goods count = %d/%d, want 2", len(got), total)
	}

	got, total, err = repo.List(ctx, ListFilter{ActiveOnly: true, InStockOnly: true})
	if err != nil {
		t.Fatalf("list active in stock: %v", err)
	}
	if total != 1 || got[0].Title != "Eco Tumbler" {
		t.Fatalf("active in-stock list = %+v", got)
	}

	search := "cafe"
	got, _, err = repo.List(ctx, ListFilter{Search: &search})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Cafe Ticket" {
		t.Fatalf("search result = %+v", got)
	}
}

func TestRepository_ListOrdersByPointsAscending(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	seedReward(t, db, models.Reward{Title: "Big", Category: "goods", PointsRequired: 900, Stock: 1, Active: true})
	seedReward(t, db, models.Reward{Title: "Small", Category: "goods", PointsRequired: 100, Stock: 1, Active: true})

	got, _, err := repo.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].Title != "Small" || got[1].Title != "Big" {
		t.Fatalf("unexpected order: %s, %s", got[0].Title, got[1].Title)
	}
}

func TestRepository_Categories(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	seedReward(t, db, models.Reward{Title: "A", Category: "voucher", PointsRequired: 100, Stock: 1, Active: true})
	seedReward(t, db, models.Reward{Title: "B", Category: "goods", PointsRequired: 100, Stock: 1, Active: true})
	seedReward(t, db, models.Reward{Title: "C", Category: "goods", PointsRequired: 100, Stock: 1, Active: true})
	seedReward(t, db, models.Reward{Title: "D", Category: "hidden", PointsRequired: 100, Stock: 1, Active: false})

	categories, err := repo.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "goods" || categories[1] != "voucher" {
		t.Fatalf("unexpected categories: %v", categories)
	}
}

func TestRepository_DecrementStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reward := seedReward(t, db, models.Reward{Title: "Last One", Category: "goods", PointsRequired: 100, Stock: 1, Active: true})

	if err := repo.DecrementStock(ctx, reward.ID); err != nil {
		t.Fatalf("first decrement: %v", err)
	}
	err := repo.DecrementStock(ctx, reward.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected out of stock on empty reward, got %v", err)
	}

	var reloaded models.Reward
	if err := db.First(&reloaded, "id = ?", reward.ID).Error; err != nil {
		t.Fatalf("reload reward: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("stock = %d, want 0", reloaded.Stock)
	}
}

func TestRepository_DecrementStockInactive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	reward := seedReward(t, db, models.Reward{Title: "Shelved", Category: "goods", PointsRequired: 100, Stock: 5, Active: false})

	err := repo.DecrementStock(context.Background(), reward.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected out of stock for inactive reward, got %v", err)
	}
}
