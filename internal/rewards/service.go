package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages the reward catalog.
type Service interface {
	Create(ctx context.Context, input CreateRewardInput) (*models.Reward, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRewardInput) (*models.Reward, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Reward, error)
	List(ctx context.Context, filter ListFilter) ([]models.Reward, int64, error)
	Categories(ctx context.Context) ([]string, error)
}

// CreateRewardInput captures the fields a new catalog entry requires.
type CreateRewardInput struct {
	Title          string
	Description    *string
	Category       string
	ImageURL       *string
	PointsRequired int
	Stock          int
	Active         bool
}

// UpdateRewardInput applies a partial update. Nil fields keep their value.
type UpdateRewardInput struct {
	Title          *string
	Description    *string
	Category       *string
	ImageURL       *string
	PointsRequired *int
	Stock          *int
	Active         *bool
}

type service struct {
	repo Repository
}

// NewService wires a rewards service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rewards repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateRewardInput) (*models.Reward, error) {
	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category required")
	}
	if input.PointsRequired <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points required must be positive")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	reward := &models.Reward{
		Title:          title,
		Description:    input.Description,
		Category:       category,
		ImageURL:       input.ImageURL,
		PointsRequired: input.PointsRequired,
		Stock:          input.Stock,
		Active:         input.Active,
	}
	if err := s.repo.Create(ctx, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateRewardInput) (*models.Reward, error) {
	reward, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		reward.Title = title
	}
	if input.Description != nil {
		reward.Description = input.Description
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		reward.Category = category
	}
	if input.ImageURL != nil {
		reward.ImageURL = input.ImageURL
	}
	if input.PointsRequired != nil {
		if *input.PointsRequired <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "points required must be positive")
		}
		reward.PointsRequired = *input.PointsRequired
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		reward.Stock = *input.Stock
	}
	if input.Active != nil {
		reward.Active = *input.Active
	}

	if err := s.repo.Update(ctx, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// Delete retires a reward by setting it inactive. Rows are never removed.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reward id required")
	}
	reward, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reward not found")
	}
	if err != nil {
		return nil, err
	}
	return reward, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Reward, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}
