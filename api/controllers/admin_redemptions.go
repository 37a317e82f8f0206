package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecopoints-io/ecopoints-backend/api/responses"
	"github.com/ecopoints-io/ecopoints-backend/api/validators"
	"github.com/ecopoints-io/ecopoints-backend/internal/redemptions"
	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

type updateRedemptionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected shipped"`
}

// AdminListRedemptions pages through redemptions across all users, optionally
// filtered by review status.
func AdminListRedemptions(svc redemptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "redemptions service unavailable"))
			return
		}

		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := redemptions.ListFilter{Page: page}
		if raw := validators.ParseQueryString(r, "status"); raw != nil {
			status, err := enums.ParseRedemptionStatus(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}

		views, total, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"redemptions": views,
			"total":       total,
		})
	}
}

// AdminUpdateRedemptionStatus moves a redemption through its review
// lifecycle.
func AdminUpdateRedemptionStatus(svc redemptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "redemptions service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "redemptionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid redemption id"))
			return
		}

		var payload updateRedemptionStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseRedemptionStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		redemption, err := svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, redemption)
	}
}
