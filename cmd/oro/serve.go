package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aleksanderujek/oro/internal/api"
	"github.com/aleksanderujek/oro/internal/config"
	"github.com/aleksanderujek/oro/internal/dashboard"
	"github.com/aleksanderujek/oro/internal/engine"
	"github.com/aleksanderujek/oro/internal/expense"
	"github.com/aleksanderujek/oro/internal/mapping"
	"github.com/aleksanderujek/oro/internal/provider"
	"github.com/aleksanderujek/oro/internal/query"
	"github.com/aleksanderujek/oro/internal/similarity"
	"github.com/aleksanderujek/oro/internal/storage"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve the expense tracker as a JSON API under /api/v1.

Requests authenticate with a Bearer JWT signed by server.jwt_secret; the
token's subject claim selects whose ledger each request works on.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("server.jwt_secret is required: set it in the config file or the JWT_SECRET environment variable")
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	p, err := provider.New(provider.Config{
		Provider: cfg.Provider.Name,
		APIKey:   cfg.Provider.APIKey,
		Model:    cfg.Provider.Model,
	})
	if err != nil {
		return err
	}

	resolver := mapping.NewResolver(store, similarity.NewTrigramScorer())
	eng := engine.NewWithConfig(store, resolver, p, engine.Config{Deadline: cfg.Provider.Deadline})

	handler := api.NewHandler(
		store,
		expense.NewService(store, eng),
		query.New(store),
		dashboard.New(store),
		eng,
		resolver,
	)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler, []byte(cfg.Server.JWTSecret))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("API server listening",
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Path,
		"provider", p.Name())

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	<-errCh

	slog.Info("API server stopped")
	return nil
}
