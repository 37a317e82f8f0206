package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ecopoints-io/ecopoints-backend/api/routes"
	"github.com/ecopoints-io/ecopoints-backend/internal/accrual"
	"github.com/ecopoints-io/ecopoints-backend/internal/auth"
	"github.com/ecopoints-io/ecopoints-backend/internal/ledger"
	"github.com/ecopoints-io/ecopoints-backend/internal/rankings"
	"github.com/ecopoints-io/ecopoints-backend/internal/redemptions"
	"github.com/ecopoints-io/ecopoints-backend/internal/reductions"
	"github.com/ecopoints-io/ecopoints-backend/internal/rewards"
	"github.com/ecopoints-io/ecopoints-backend/internal/users"
	"github.com/ecopoints-io/ecopoints-backend/pkg/config"
	"github.com/ecopoints-io/ecopoints-backend/pkg/db"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
	"github.com/ecopoints-io/ecopoints-backend/pkg/metrics"
	"github.com/ecopoints-io/ecopoints-backend/pkg/migrate"
	"github.com/ecopoints-io/ecopoints-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pointsMetrics := metrics.NewPointsMetrics(registry)

	authService, err := auth.NewService(cfg.JWT, users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(dbClient, ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	rewardsRepo := rewards.NewRepository(dbClient.DB())
	rewardsService, err := rewards.NewService(rewardsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rewards service", err)
		os.Exit(1)
	}

	redemptionsService, err := redemptions.NewService(
		dbClient,
		redemptions.NewRepository(dbClient.DB()),
		rewardsRepo,
		pointsMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create redemptions service", err)
		os.Exit(1)
	}

	accrualService, err := accrual.NewService(
		dbClient,
		accrual.NewRepository(dbClient.DB()),
		reductions.NewRepository(dbClient.DB()),
		pointsMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create accrual service", err)
		os.Exit(1)
	}

	rankingsService, err := rankings.NewService(rankings.NewRepository(dbClient.DB()), cfg.Points.RankingPointsPerKg)
	if err != nil {
		logg.Error(context.Background(), "failed to create rankings service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, redisClient, registry, routes.Services{
			Auth:        authService,
			Ledger:      ledgerService,
			Rewards:     rewardsService,
			Redemptions: redemptionsService,
			Accrual:     accrualService,
			Rankings:    rankingsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
