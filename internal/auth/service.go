package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/internal/users"
	pkgauth "github.com/ecopoints-io/ecopoints-backend/pkg/auth"
	"github.com/ecopoints-io/ecopoints-backend/pkg/config"
	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/security"
	"gorm.io/gorm"
)

// Service authenticates users and issues access tokens.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// LoginResult carries the minted token with its subject.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type service struct {
	cfg   config.JWTConfig
	users users.Repository
	now   func() time.Time
}

// NewService wires an auth service with the provided dependencies.
func NewService(cfg config.JWTConfig, usersRepo users.Repository) (Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{cfg: cfg, users: usersRepo, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	ok, err := security.VerifyPassword(password, user.HashedPassword)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now().UTC()
	token, err := pkgauth.MintAccessToken(s.cfg, now, pkgauth.AccessTokenPayload{
		UserID:      user.ID,
		IsSuperuser: user.IsSuperuser,
		CompanyID:   user.CompanyID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	user.HashedPassword = ""
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   now.Add(time.Duration(s.cfg.ExpirationMinutes) * time.Minute),
		User:        user,
	}, nil
}
