package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/sreejithpv/keralacart-backend/api/routes"
	"github.com/sreejithpv/keralacart-backend/internal/inventory"
	"github.com/sreejithpv/keralacart-backend/internal/ledger"
	"github.com/sreejithpv/keralacart-backend/internal/orders"
	"github.com/sreejithpv/keralacart-backend/internal/products"
	"github.com/sreejithpv/keralacart-backend/internal/reviews"
	"github.com/sreejithpv/keralacart-backend/internal/stores"
	"github.com/sreejithpv/keralacart-backend/pkg/config"
	"github.com/sreejithpv/keralacart-backend/pkg/db"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
	"github.com/sreejithpv/keralacart-backend/pkg/migrate"
	"github.com/sreejithpv/keralacart-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(dbClient, cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(dbClient *db.Client, cfg *config.Config) (routes.Services, error) {
	conn := dbClient.DB()

	ledgerRepo := ledger.NewRepository(conn)
	storeRepo := stores.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	reviewRepo := reviews.NewRepository(conn)

	guard, err := inventory.NewGuard(ledgerRepo)
	if err != nil {
		return routes.Services{}, err
	}

	ledgerSvc, err := ledger.NewService(ledgerRepo)
	if err != nil {
		return routes.Services{}, err
	}

	storeSvc, err := stores.NewService(storeRepo, conn)
	if err != nil {
		return routes.Services{}, err
	}

	productSvc, err := products.NewService(productRepo, storeRepo, guard, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	orderSvc, err := orders.NewService(orderRepo, productRepo, storeRepo, guard, dbClient, cfg.Orders.AssemblyRetries)
	if err != nil {
		return routes.Services{}, err
	}

	reviewSvc, err := reviews.NewService(reviewRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Products: productSvc,
		Orders:   orderSvc,
		Reviews:  reviewSvc,
		Stores:   storeSvc,
		Ledger:   ledgerSvc,
	}, nil
}
