package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecopoints-io/ecopoints-backend/api/responses"
	"github.com/ecopoints-io/ecopoints-backend/api/validators"
	"github.com/ecopoints-io/ecopoints-backend/internal/rewards"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

type createRewardRequest struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Description    *string `json:"description,omitempty"`
	Category       string  `json:"category" validate:"required,max=50"`
	ImageURL       *string `json:"image_url,omitempty" validate:"omitempty,url"`
	PointsRequired int     `json:"points_required" validate:"required,gt=0"`
	Stock          int     `json:"stock" validate:"gte=0"`
	Active         *bool   `json:"active,omitempty"`
}

type updateRewardRequest struct {
	Title          *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description    *string `json:"description,omitempty"`
	Category       *string `json:"category,omitempty" validate:"omitempty,max=50"`
	ImageURL       *string `json:"image_url,omitempty" validate:"omitempty,url"`
	PointsRequired *int    `json:"points_required,omitempty" validate:"omitempty,gt=0"`
	Stock          *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Active         *bool   `json:"active,omitempty"`
}

func rewardIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "rewardID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reward id")
	}
	return id, nil
}

// AdminListRewards serves the full catalog, inactive entries included.
func AdminListRewards(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, total, err := svc.List(r.Context(), rewards.ListFilter{
			Category: validators.ParseQueryString(r, "category"),
			Search:   validators.ParseQueryString(r, "search"),
			Page:     page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"rewards": items,
			"total":   total,
		})
	}
}

func AdminCreateReward(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		var payload createRewardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := true
		if payload.Active != nil {
			active = *payload.Active
		}
		reward, err := svc.Create(r.Context(), rewards.CreateRewardInput{
			Title:          payload.Title,
			Description:    payload.Description,
			Category:       payload.Category,
			ImageURL:       payload.ImageURL,
			PointsRequired: payload.PointsRequired,
			Stock:          payload.Stock,
			Active:         active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reward)
	}
}

func AdminUpdateReward(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		id, err := rewardIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRewardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reward, err := svc.Update(r.Context(), id, rewards.UpdateRewardInput{
			Title:          payload.Title,
			Description:    payload.Description,
			Category:       payload.Category,
			ImageURL:       payload.ImageURL,
			PointsRequired: payload.PointsRequired,
			Stock:          payload.Stock,
			Active:         payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reward)
	}
}

// AdminDeleteReward retires a reward. The catalog row stays, flagged
// inactive, so redemption history keeps resolving.
func AdminDeleteReward(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		id, err := rewardIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}
