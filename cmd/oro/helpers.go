package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/viper"

	"github.com/aleksanderujek/oro/internal/config"
	"github.com/aleksanderujek/oro/internal/service"
	"github.com/aleksanderujek/oro/internal/storage"
)

// initStorage opens the configured database and brings the schema up to
// date. Every command goes through here so a fresh install works without an
// explicit migrate.
func initStorage(ctx context.Context) (service.Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// cliUserID resolves the acting user for CLI commands. The store scopes
// every row by user; a single-machine install keeps everything under one
// configurable id.
func cliUserID() string {
	if id := viper.GetString("user.id"); id != "" {
		return id
	}
	return "local"
}

// resolveCategoryArg turns a command argument into a category id. Numeric
// arguments are taken as ids; anything else is looked up as a category key.
func resolveCategoryArg(ctx context.Context, store service.Storage, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		category, err := store.GetCategoryByID(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("failed to look up category: %w", err)
		}
		if category == nil {
			return 0, fmt.Errorf("category %d not found", id)
		}
		return category.ID, nil
	}

	category, err := store.GetCategoryByKey(ctx, arg)
	if err != nil {
		return 0, fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil {
		return 0, fmt.Errorf("category %q not found (run 'oro categories' to list keys)", arg)
	}
	return category.ID, nil
}
