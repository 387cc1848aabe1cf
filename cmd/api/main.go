package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stockbill-backend/api/routes"
	"github.com/angelmondragon/stockbill-backend/internal/catalog"
	"github.com/angelmondragon/stockbill-backend/internal/invoices"
	"github.com/angelmondragon/stockbill-backend/internal/purchases"
	"github.com/angelmondragon/stockbill-backend/internal/serials"
	"github.com/angelmondragon/stockbill-backend/internal/stockledger"
	"github.com/angelmondragon/stockbill-backend/pkg/config"
	"github.com/angelmondragon/stockbill-backend/pkg/db"
	"github.com/angelmondragon/stockbill-backend/pkg/logger"
	"github.com/angelmondragon/stockbill-backend/pkg/metrics"
	"github.com/angelmondragon/stockbill-backend/pkg/migrate"
	"github.com/angelmondragon/stockbill-backend/pkg/redis"
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

	postingMetrics := metrics.NewPostingMetrics(prometheus.DefaultRegisterer)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ledgerService, err := stockledger.NewService(stockledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create stock ledger service", err)
		os.Exit(1)
	}

	serialService, err := serials.NewService(serials.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create serial service", err)
		os.Exit(1)
	}

	purchaseService, err := purchases.NewService(
		dbClient,
		purchases.NewRepository(dbClient.DB()),
		catalogService,
		ledgerService,
		serialService,
		postingMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase service", err)
		os.Exit(1)
	}

	invoiceService, err := invoices.NewService(
		dbClient,
		invoices.NewRepository(dbClient.DB()),
		catalogService,
		ledgerService,
		serialService,
		postingMetrics,
		cfg.Invoicing,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, ledgerService, purchaseService, invoiceService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
