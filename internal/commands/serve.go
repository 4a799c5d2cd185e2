package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinoosan/bookkeeping/internal/cache"
	"github.com/tinoosan/bookkeeping/internal/config"
	"github.com/tinoosan/bookkeeping/internal/dictionary"
	"github.com/tinoosan/bookkeeping/internal/httpapi"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	logger := buildLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	labels, err := cfg.LabelOverrides()
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "err", err)
		return err
	}
	defer b.close()
	logger.Info("storage backend: " + b.name)
	if b.seed != nil {
		logDevSeed(logger, b.name, *b.seed)
		printDevSeedBanner(cmd.OutOrStdout(), *b.seed)
	}

	opts := []httpapi.Option{}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.TTL)
		if err != nil {
			// reports are still served, just not cached
			logger.Warn("report cache disabled", "addr", cfg.Redis.Addr, "err", err)
		} else {
			defer rc.Close()
			opts = append(opts, httpapi.WithReportCache(rc))
			logger.Info("report cache: redis", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL.String())
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(b.store, dictionary.New(labels), logger, opts...).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bookkeeping service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
			return err
		}
		return nil
	case err := <-errCh:
		logger.Error("server error", "err", err)
		return err
	}
}
