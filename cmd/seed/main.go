package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/internal/stores"
	"github.com/tablemesa/resto-backend/internal/users"
	"github.com/tablemesa/resto-backend/pkg/config"
	"github.com/tablemesa/resto-backend/pkg/db"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	"github.com/tablemesa/resto-backend/pkg/enums"
	"github.com/tablemesa/resto-backend/pkg/logger"
	"github.com/tablemesa/resto-backend/pkg/security"
)

// Seeds the default store and a bootstrap admin so a fresh environment can
// log in. Safe to re-run; existing rows are left untouched.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	storeRepo := stores.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	store, err := storeRepo.FindActiveBySlug(ctx, cfg.Store.DefaultSlug)
	switch {
	case err == nil:
		logg.Info(logg.WithField(ctx, "store_id", store.ID.String()), "default store already present")
	case errors.Is(err, gorm.ErrRecordNotFound):
		store = &models.Store{
			Name:      "Main Store",
			Slug:      cfg.Store.DefaultSlug,
			IsDefault: true,
			IsActive:  true,
		}
		if err := storeRepo.Create(ctx, store); err != nil {
			logg.Error(ctx, "failed to create default store", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "store_id", store.ID.String()), "created default store")
	default:
		logg.Error(ctx, "failed to look up default store", err)
		os.Exit(1)
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("RESTO_SEED_ADMIN_EMAIL")))
	password := os.Getenv("RESTO_SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		logg.Info(ctx, "RESTO_SEED_ADMIN_EMAIL or RESTO_SEED_ADMIN_PASSWORD unset, skipping admin seed")
		return
	}

	if _, err := userRepo.FindByEmail(ctx, email); err == nil {
		logg.Info(ctx, "admin user already present")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Error(ctx, "failed to look up admin user", err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash admin password", err)
		os.Exit(1)
	}
	admin := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Administrator",
		Role:         enums.UserRoleAdmin,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		logg.Error(ctx, "failed to create admin user", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "user_id", admin.ID.String()), "created admin user")
}
