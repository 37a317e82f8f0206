package controllers

import (
	"net/http"

	"github.com/ecopoints-io/ecopoints-backend/api/responses"
	"github.com/ecopoints-io/ecopoints-backend/api/validators"
	authsvc "github.com/ecopoints-io/ecopoints-backend/internal/auth"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthLogin exchanges credentials for an access token.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
