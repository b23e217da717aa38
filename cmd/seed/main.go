package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"github.com/jossiefancies/storefront/internal/infrastructure/logger"
	"github.com/jossiefancies/storefront/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		withCatalog   bool
		withSuperuser bool
		logLevel      string
	)
	flag.BoolVar(&withCatalog, "catalog", true, "Create the demo categories and products")
	flag.BoolVar(&withSuperuser, "superuser", false, "Create the default superuser from STOREFRONT_SUPERUSER_* env vars")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(context.Background(), &cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	seeder := NewSeeder(
		persistence.NewGormCategoryRepository(db.DB),
		persistence.NewGormProductRepository(db.DB),
		persistence.NewGormUserRepository(db.DB),
		log,
	)
	ctx := context.Background()

	if withCatalog {
		result, err := seeder.SeedCatalog(ctx)
		if err != nil {
			log.Fatal("Seeding catalog failed", zap.Error(err))
		}
		log.Info("Catalog seeded",
			zap.Int("categories_created", result.CategoriesCreated),
			zap.Int("categories_skipped", result.CategoriesSkipped),
			zap.Int("products_created", result.ProductsCreated),
			zap.Int("products_skipped", result.ProductsSkipped),
		)
	}

	if withSuperuser {
		if _, err := seeder.SeedSuperuser(ctx,
			os.Getenv("STOREFRONT_SUPERUSER_USERNAME"),
			os.Getenv("STOREFRONT_SUPERUSER_EMAIL"),
			os.Getenv("STOREFRONT_SUPERUSER_PASSWORD"),
		); err != nil {
			log.Fatal("Creating superuser failed", zap.Error(err))
		}
	}
}
