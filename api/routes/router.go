package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecopoints-io/ecopoints-backend/api/controllers"
	"github.com/ecopoints-io/ecopoints-backend/api/middleware"
	"github.com/ecopoints-io/ecopoints-backend/internal/accrual"
	authsvc "github.com/ecopoints-io/ecopoints-backend/internal/auth"
	"github.com/ecopoints-io/ecopoints-backend/internal/ledger"
	"github.com/ecopoints-io/ecopoints-backend/internal/rankings"
	"github.com/ecopoints-io/ecopoints-backend/internal/redemptions"
	"github.com/ecopoints-io/ecopoints-backend/internal/rewards"
	"github.com/ecopoints-io/ecopoints-backend/pkg/config"
	"github.com/ecopoints-io/ecopoints-backend/pkg/db"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
	pkgredis "github.com/ecopoints-io/ecopoints-backend/pkg/redis"
)

// Services bundles the wired domain services the router exposes.
type Services struct {
	Auth        authsvc.Service
	Ledger      ledger.Service
	Rewards     rewards.Service
	Redemptions redemptions.Service
	Accrual     accrual.Service
	Rankings    rankings.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	idemStore pkgredis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, cfg.Points.ExchangeIdemTTL, logg))

		r.Route("/points", func(r chi.Router) {
			r.Get("/me", controllers.PointsMe(svcs.Ledger, logg))
			r.Get("/history", controllers.PointsHistory(svcs.Ledger, logg))
			r.Get("/ranking", controllers.PointsRanking(svcs.Rankings, logg))
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/", controllers.RewardsList(svcs.Rewards, logg))
			r.Get("/categories", controllers.RewardCategories(svcs.Rewards, logg))
			r.Post("/{rewardID}/exchange", controllers.RewardExchange(svcs.Redemptions, logg))
		})

		r.Get("/redemptions/me", controllers.MyRedemptions(svcs.Redemptions, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))

			r.Route("/rewards", func(r chi.Router) {
				r.Get("/", controllers.AdminListRewards(svcs.Rewards, logg))
				r.Post("/", controllers.AdminCreateReward(svcs.Rewards, logg))
				r.Patch("/{rewardID}", controllers.AdminUpdateReward(svcs.Rewards, logg))
				r.Delete("/{rewardID}", controllers.AdminDeleteReward(svcs.Rewards, logg))
			})

			r.Route("/point-rules", func(r chi.Router) {
				r.Get("/", controllers.AdminListPointRules(svcs.Accrual, logg))
				r.Post("/", controllers.AdminCreatePointRule(svcs.Accrual, logg))
				r.Patch("/{ruleID}", controllers.AdminUpdatePointRule(svcs.Accrual, logg))
				r.Delete("/{ruleID}", controllers.AdminDeletePointRule(svcs.Accrual, logg))
				r.Post("/apply", controllers.AdminApplyPointRules(svcs.Accrual, logg))
			})

			r.Route("/redemptions", func(r chi.Router) {
				r.Get("/", controllers.AdminListRedemptions(svcs.Redemptions, logg))
				r.Patch("/{redemptionID}/status", controllers.AdminUpdateRedemptionStatus(svcs.Redemptions, logg))
			})

			r.Post("/points/adjust", controllers.AdminAdjustPoints(svcs.Ledger, logg))
		})
	})

	return r
}
