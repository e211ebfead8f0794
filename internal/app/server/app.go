package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"inmodraft/internal/app/server/api"
	"inmodraft/internal/app/server/config"
	"inmodraft/internal/infrastructure/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg     *config.Config
	log     *slog.Logger
	storage *postgres.Storage
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := postgres.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	return &App{
		cfg:     cfg,
		log:     log,
		storage: storage,
	}, nil
}

// Run поднимает HTTP API и блокируется до SIGINT/SIGTERM
func (a *App) Run() error {
	defer a.storage.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := api.New(a.storage, a.log)
	srv := &http.Server{
		Addr:    a.cfg.Server.RunAddress,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server started", "address", a.cfg.Server.RunAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
