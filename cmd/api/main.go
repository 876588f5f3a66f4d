package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tablemesa/resto-backend/api/routes"
	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/internal/auth"
	"github.com/tablemesa/resto-backend/internal/categories"
	"github.com/tablemesa/resto-backend/internal/items"
	"github.com/tablemesa/resto-backend/internal/products"
	"github.com/tablemesa/resto-backend/internal/sales"
	"github.com/tablemesa/resto-backend/internal/storeaccess"
	"github.com/tablemesa/resto-backend/internal/storestatus"
	"github.com/tablemesa/resto-backend/internal/stores"
	"github.com/tablemesa/resto-backend/internal/users"
	"github.com/tablemesa/resto-backend/pkg/config"
	"github.com/tablemesa/resto-backend/pkg/cookies"
	"github.com/tablemesa/resto-backend/pkg/db"
	"github.com/tablemesa/resto-backend/pkg/identity"
	"github.com/tablemesa/resto-backend/pkg/logger"
	"github.com/tablemesa/resto-backend/pkg/metrics"
	"github.com/tablemesa/resto-backend/pkg/migrate"
	"github.com/tablemesa/resto-backend/pkg/redis"
	"github.com/tablemesa/resto-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

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

	identityClient, err := identity.NewClient(cfg.Identity, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity client", err)
		os.Exit(1)
	}

	var gcsClient *gcs.Client
	if cfg.GCS.Enabled() {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create gcs client", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing gcs client", err)
			}
		}()
	}

	storeRepo := stores.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	itemRepo := items.NewRepository(dbClient.DB())
	saleRepo := sales.NewRepository(dbClient.DB())
	statusRepo := storestatus.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())
	grantRepo := storeaccess.NewRepository(dbClient.DB())

	guard, err := access.NewGuard(grantRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create access guard", err)
		os.Exit(1)
	}
	resolver, err := stores.NewResolver(storeRepo, cfg.Store.DefaultSlug)
	if err != nil {
		logg.Error(context.Background(), "failed to create store resolver", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(identityClient, userRepo, grantRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	storeService, err := stores.NewService(storeRepo, dbClient, guard)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}
	categoryService, err := categories.NewService(categoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}
	productService, err := newProductService(productRepo, guard, dbClient, gcsClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	itemService, err := items.NewService(itemRepo, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}
	saleService, err := sales.NewService(saleRepo, itemRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sale service", err)
		os.Exit(1)
	}
	userService, err := users.NewService(userRepo, grantRepo, identityClient, dbClient, logg, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}
	statusService, err := storestatus.NewService(statusRepo, storeRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create store status service", err)
		os.Exit(1)
	}

	cookieManager := cookies.NewManager(cfg.Cookies, cfg.App.IsProd())
	httpMetrics := metrics.NewHTTPMetrics()

	var gcsPinger gcs.Pinger
	if gcsClient != nil {
		gcsPinger = gcsClient
	}

	router := routes.NewRouter(routes.Deps{
		Cfg:        cfg,
		Logg:       logg,
		DB:         dbClient,
		Redis:      redisClient,
		GCS:        gcsPinger,
		Cookies:    cookieManager,
		Metrics:    httpMetrics,
		Guard:      guard,
		Resolver:   resolver,
		Auth:       authService,
		Stores:     storeService,
		Categories: categoryService,
		Products:   productService,
		Items:      itemService,
		Sales:      saleService,
		Users:      userService,
		Status:     statusService,
	})

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
		Handler: router,
	}

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}

// newProductService keeps the nil object store untyped so deployments without
// GCS skip image cleanup instead of panicking on a typed nil.
func newProductService(repo *products.Repository, guard *access.Guard, tx *db.Client, gcsClient *gcs.Client, logg *logger.Logger) (products.Service, error) {
	if gcsClient == nil {
		return products.NewService(repo, guard, tx, nil, logg)
	}
	return products.NewService(repo, guard, tx, gcsClient, logg)
}
