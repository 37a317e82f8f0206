package ledger

import (
	"context"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyInput describes a single balance movement.
type ApplyInput struct {
	UserID      uuid.UUID
	Delta       int
	Reason      string
	ReferenceID *uuid.UUID
	// EnforceFloor rejects the movement when it would take the balance
	// below zero. Credits leave it off; debits must set it.
	EnforceFloor bool
}

// Apply records one ledger entry and moves the user's balance counter inside
// the caller's transaction. The counter update is a conditional UPDATE, so two
// concurrent debits against the same balance cannot both succeed past zero.
func Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.LedgerEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction handle required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	// Make sure the counter row exists before the conditional update so a
	// zero-rows result can only mean the floor check failed.
	seed := models.UserBalance{UserID: input.UserID, Balance: 0, UpdatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seeding balance row")
	}

	update := tx.WithContext(ctx).
		Model(&models.UserBalance{}).
		Where("user_id = ?", input.UserID)
	if input.EnforceFloor {
		update = update.Where("balance + ? >= 0", input.Delta)
	}
	res := update.Updates(map[string]any{
		"balance":    gorm.Expr("balance + ?", input.Delta),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating balance")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientPoints, "insufficient points")
	}

	var counter models.UserBalance
	if err := tx.WithContext(ctx).First(&counter, "user_id = ?", input.UserID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading balance")
	}

	entry := &models.LedgerEntry{
		UserID:       input.UserID,
		Delta:        input.Delta,
		Reason:       input.Reason,
		ReferenceID:  input.ReferenceID,
		BalanceAfter: counter.Balance,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing ledger entry")
	}
	return entry, nil
}
