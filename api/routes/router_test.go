package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ecopoints-io/ecopoints-backend/internal/accrual"
	authsvc "github.com/ecopoints-io/ecopoints-backend/internal/auth"
	"github.com/ecopoints-io/ecopoints-backend/internal/ledger"
	"github.com/ecopoints-io/ecopoints-backend/internal/rankings"
	"github.com/ecopoints-io/ecopoints-backend/internal/redemptions"
	"github.com/ecopoints-io/ecopoints-backend/internal/rewards"
	pkgauth "github.com/ecopoints-io/ecopoints-backend/pkg/auth"
	"github.com/ecopoints-io/ecopoints-backend/pkg/config"
	"github.com/ecopoints-io/ecopoints-backend/pkg/db/models"
	"github.com/ecopoints-io/ecopoints-backend/pkg/enums"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
	"github.com/ecopoints-io/ecopoints-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubIdemStore struct{}

func (stubIdemStore) Get(context.Context, string) (string, error) {
	return "", redis.Nil
}

func (stubIdemStore) SetNX(context.Context, string, any, time.Duration) (bool, error) {
	return true, nil
}

func (stubIdemStore) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (stubIdemStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (stubIdemStore) Del(context.Context, ...string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, email, password string) (*authsvc.LoginResult, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubLedgerService struct{}

func (stubLedgerService) Append(ctx context.Context, input ledger.ApplyInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{UserID: input.UserID, Delta: input.Delta, Reason: input.Reason}, nil
}

func (stubLedgerService) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (stubLedgerService) History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, int64, error) {
	return nil, 0, nil
}

func (stubLedgerService) Summary(ctx context.Context, userID uuid.UUID) (*ledger.BalanceSummary, error) {
	return &ledger.BalanceSummary{Balance: 120, TotalEarned: 150, TotalSpent: 30, ThisMonthEarned: 40}, nil
}

type stubRewardsService struct{}

func (stubRewardsService) Create(ctx context.Context, input rewards.CreateRewardInput) (*models.Reward, error) {
	panic("unimplemented")
}

func (stubRewardsService) Update(ctx context.Context, id uuid.UUID, input rewards.UpdateRewardInput) (*models.Reward, error) {
	panic("unimplemented")
}

func (stubRewardsService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubRewardsService) Get(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	panic("unimplemented")
}

func (stubRewardsService) List(ctx context.Context, filter rewards.ListFilter) ([]models.Reward, int64, error) {
	return []models.Reward{}, 0, nil
}

func (stubRewardsService) Categories(ctx context.Context) ([]string, error) {
	return []string{"eco"}, nil
}

type stubRedemptionsService struct{}

func (stubRedemptionsService) Redeem(ctx context.Context, userID, rewardID uuid.UUID, opts redemptions.RedeemOptions) (*models.Redemption, error) {
	return &models.Redemption{ID: uuid.New(), UserID: userID, RewardID: rewardID, Status: enums.RedemptionStatusPending}, nil
}

func (stubRedemptionsService) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.RedemptionStatus) (*models.Redemption, error) {
	panic("unimplemented")
}

func (stubRedemptionsService) List(ctx context.Context, filter redemptions.ListFilter) ([]redemptions.View, int64, error) {
	return []redemptions.View{}, 0, nil
}

type stubAccrualService struct{}

func (stubAccrualService) CreateRule(ctx context.Context, input accrual.CreateRuleInput) (*models.PointRule, error) {
	panic("unimplemented")
}

func (stubAccrualService) UpdateRule(ctx context.Context, id uuid.UUID, input accrual.UpdateRuleInput) (*models.PointRule, error) {
	panic("unimplemented")
}

func (stubAccrualService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubAccrualService) ListRules(ctx context.Context, activeOnly bool) ([]models.PointRule, error) {
	return []models.PointRule{}, nil
}

func (stubAccrualService) ApplyRules(ctx context.Context, periodLabel string) (*accrual.ApplyResult, error) {
	return &accrual.ApplyResult{Period: periodLabel}, nil
}

type stubRankingsService struct{}

func (stubRankingsService) Ranking(ctx context.Context, query rankings.Query) ([]rankings.Entry, error) {
	return []rankings.Entry{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Points: config.PointsConfig{
			RankingPointsPerKg: 10,
			ExchangeIdemTTL:    time.Hour,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		stubIdemStore{},
		nil,
		Services{
			Auth:        stubAuthService{},
			Ledger:      stubLedgerService{},
			Rewards:     stubRewardsService{},
			Redemptions: stubRedemptionsService{},
			Accrual:     stubAccrualService{},
			Rankings:    stubRankingsService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, superuser bool) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:      uuid.New(),
		IsSuperuser: superuser,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestHealthReadyChecksDependencies(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready probe got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/points/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/points/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for points summary got %d", resp.Code)
	}
}

func TestAdminGroupRequiresSuperuser(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/rewards", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/rewards", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, true))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestExchangeRequiresIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/rewards/" + uuid.NewString() + "/exchange"

	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", resp.Code)
	}

	keyed := httptest.NewRequest(http.MethodPost, target, nil)
	keyed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	keyed.Header.Set("Idempotency-Key", uuid.NewString())
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, keyed)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for keyed exchange got %d", resp.Code)
	}
}

func TestLoginRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}
