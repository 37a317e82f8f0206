package rewards

import (
	"context"
	"testing"

	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/google/uuid"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(newTestDB(t)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestService_CreateAndGet(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRewardInput{
		Title:          "  Eco Tumbler ",
		Category:       "goods",
		PointsRequired: 500,
		Stock:          10,
		Active:         true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Title != "Eco Tumbler" {
		t.Fatalf("title not trimmed: %q", created.Title)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PointsRequired != 500 || got.Stock != 10 {
		t.Fatalf("unexpected reward: %+v", got)
	}
}

func TestService_CreateInactivePersistsInactive(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRewardInput{
		Title:          "Draft Reward",
		Category:       "goods",
		PointsRequired: 100,
		Stock:          5,
		Active:         false,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Active {
		t.Fatal("reward created inactive came back active")
	}
	visible, _, err := svc.List(ctx, ListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("inactive reward listed as active: %+v", visible)
	}
}

func TestService_CreateValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateRewardInput
	}{
		{name: "missing title", input: CreateRewardInput{Category: "goods", PointsRequired: 100}},
		{name: "missing category", input: CreateRewardInput{Title: "x", PointsRequired: 100}},
		{name: "zero points", input: CreateRewardInput{Title: "x", Category: "goods"}},
		{name: "negative stock", input: CreateRewardInput{Title: "x", Category: "goods", PointsRequired: 100, Stock: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.input); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_UpdatePartial(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRewardInput{Title: "Mug", Category: "goods", PointsRequired: 300, Stock: 5, Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stock := 2
	active := false
	updated, err := svc.Update(ctx, created.ID, UpdateRewardInput{Stock: &stock, Active: &active})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Stock != 2 || updated.Active {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Title != "Mug" || updated.PointsRequired != 300 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	bad := 0
	if _, err := svc.Update(ctx, created.ID, UpdateRewardInput{PointsRequired: &bad}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_GetNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	if _, err := svc.Get(context.Background(), uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.Nil); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for nil id, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRewardInput{Title: "Gone", Category: "goods", PointsRequired: 100, Stock: 1, Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The row survives as inactive, hidden from the employee catalog.
	after, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if after.Active {
		t.Fatal("deleted reward should be inactive")
	}
	visible, _, err := svc.List(ctx, ListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("deleted reward still listed: %+v", visible)
	}

	if err := svc.Delete(ctx, uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}
