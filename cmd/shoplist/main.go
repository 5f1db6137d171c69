package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dukerupert/shoplist/internal/config"
	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/demo"
	"github.com/dukerupert/shoplist/internal/logging"
	"github.com/dukerupert/shoplist/internal/store"
)

func main() {
	loaded, err := loadDotenv(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if !loaded {
		logger.Debug("no .env file found, using environment only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("shoplist failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.Database.Path, database.Options{
		BusyTimeout: cfg.Database.BusyTimeout,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	version, err := database.Version(db)
	if err != nil {
		return err
	}
	logger.Info("database ready", "path", cfg.Database.Path, "schema_version", version)

	if !cfg.Demo.Enabled {
		return nil
	}

	d := demo.New(demo.Stores{
		Users:          store.NewUserStore(db),
		Lists:          store.NewShoppingListStore(db),
		Items:          store.NewItemStore(db),
		Categories:     store.NewCategoryStore(db),
		ItemCategories: store.NewItemCategoryStore(db),
	}, os.Stdout, logger)

	users, err := d.Run(ctx)
	if err != nil {
		return err
	}
	if cfg.Demo.Sample && len(users) > 0 {
		if _, err := d.Sample(ctx, users[0]); err != nil {
			return err
		}
	}
	return nil
}

// loadDotenv reads path into the environment without overriding variables
// that are already set. A missing file reports loaded=false and no error.
func loadDotenv(path string) (loaded bool, err error) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", path, err)
	}
	return true, nil
}
