package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecopoints-io/ecopoints-backend/api/responses"
	"github.com/ecopoints-io/ecopoints-backend/api/validators"
	"github.com/ecopoints-io/ecopoints-backend/internal/accrual"
	"github.com/ecopoints-io/ecopoints-backend/internal/ledger"
	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

type createPointRuleRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	RuleType string  `json:"rule_type" validate:"required,oneof=per_kg rank_bonus"`
	Value    float64 `json:"value" validate:"required,gt=0"`
	Active   *bool   `json:"active,omitempty"`
}

type updatePointRuleRequest struct {
	Name   *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Value  *float64 `json:"value,omitempty" validate:"omitempty,gt=0"`
	Active *bool    `json:"active,omitempty"`
}

type applyRulesRequest struct {
	Period string `json:"period" validate:"required"`
}

type adjustPointsRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=200"`
}

func AdminListPointRules(svc accrual.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accrual service unavailable"))
			return
		}

		activeOnly, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rules, err := svc.ListRules(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"rules": rules})
	}
}

func AdminCreatePointRule(svc accrual.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accrual service unavailable"))
			return
		}

		var payload createPointRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ruleType, err := enums.ParseRuleType(strings.TrimSpace(payload.RuleType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule type"))
			return
		}

		active := true
		if payload.Active != nil {
			active = *payload.Active
		}
		rule, err := svc.CreateRule(r.Context(), accrual.CreateRuleInput{
			Name:     payload.Name,
			RuleType: ruleType,
			Value:    payload.Value,
			Active:   active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rule)
	}
}

func AdminUpdatePointRule(svc accrual.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accrual service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "ruleID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule id"))
			return
		}

		var payload updatePointRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.UpdateRule(r.Context(), id, accrual.UpdateRuleInput{
			Name:   payload.Name,
			Value:  payload.Value,
			Active: payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rule)
	}
}

// AdminDeletePointRule retires a rule by flagging it inactive.
func AdminDeletePointRule(svc accrual.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accrual service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "ruleID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule id"))
			return
		}

		if err := svc.DeleteRule(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}

// AdminApplyPointRules runs batch accrual for a reporting period.
func AdminApplyPointRules(svc accrual.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accrual service unavailable"))
			return
		}

		var payload applyRulesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ApplyRules(r.Context(), strings.TrimSpace(payload.Period))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminAdjustPoints writes a manual ledger correction. Debits respect the
// non-negative balance floor.
func AdminAdjustPoints(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload adjustPointsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		entry, err := svc.Append(r.Context(), ledger.ApplyInput{
			UserID:       userID,
			Delta:        payload.Delta,
			Reason:       strings.TrimSpace(payload.Reason),
			EnforceFloor: payload.Delta < 0,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}
