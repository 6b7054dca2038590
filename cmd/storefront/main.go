package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luminacart/storefront/internal/api"
	"github.com/luminacart/storefront/internal/store"
	"github.com/luminacart/storefront/pkg/config"
	"github.com/luminacart/storefront/pkg/logger"
	"github.com/luminacart/storefront/pkg/metrics"
	"github.com/luminacart/storefront/pkg/query"
)

// Exercises the store against a live API: check the session, pull the first
// product page, and report what came back.
func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	client, err := api.NewClient(cfg.API, metrics.NewRequestMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		logg.Error(context.Background(), "failed to build api client", err)
		os.Exit(1)
	}

	st, err := store.New(client, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build store", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := st.Session.Check(ctx); err != nil {
		logg.Error(ctx, "session check failed", err)
		os.Exit(1)
	}
	if token := st.Session.Token(); token != nil {
		ctx = logg.WithUserID(ctx, token.UserID.String())
		logg.Info(ctx, "signed in")
	} else {
		logg.Info(ctx, "no active session")
	}

	if err := st.Products.FetchByFilters(ctx, query.New(cfg.API.PageSize)); err != nil {
		logg.Error(ctx, "product fetch failed", err)
		os.Exit(1)
	}

	state := st.Products.State()
	ctx = logg.WithFields(ctx, map[string]any{
		"products": len(state.Items),
		"total":    state.TotalItems,
	})
	logg.Info(ctx, "catalog loaded")
}
