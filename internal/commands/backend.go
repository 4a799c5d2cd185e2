package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tinoosan/bookkeeping/internal/config"
	"github.com/tinoosan/bookkeeping/internal/httpapi"
	"github.com/tinoosan/bookkeeping/internal/slug"
	"github.com/tinoosan/bookkeeping/internal/storage"
	"github.com/tinoosan/bookkeeping/internal/storage/memory"
	pgstore "github.com/tinoosan/bookkeeping/internal/storage/postgres"
)

// backend is an opened storage backend and, when seeded, the books it was seeded with.
type backend struct {
	name  string
	store httpapi.Store
	seed  *storage.Fixture
	close func()
}

// openBackend uses Postgres when a database URL is configured and otherwise an
// in-memory store that always carries the dev seed.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		b := &backend{name: "postgres", store: pg, close: pg.Close}
		if cfg.DevSeed {
			f := storage.DevFixture(time.Now())
			if err := pg.Load(ctx, f); err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				b.seed = &f
			}
		}
		return b, nil
	}
	store := memory.New()
	f := storage.DevFixture(time.Now())
	store.Load(f)
	return &backend{name: "memory", store: store, seed: &f, close: func() {}}, nil
}

// logDevSeed emits structured logs with useful IDs
func logDevSeed(l *slog.Logger, backend string, f storage.Fixture) {
	ids := map[string]string{}
	for _, a := range f.Accounts {
		ids[seedKey(a.Name)] = a.ID.String()
	}
	l.Info("DEV seed ("+backend+")", "entity_id", f.Entity.ID.String(), "ids", ids)
}

// printDevSeedBanner prints a simple banner for easy copy/paste of IDs
func printDevSeedBanner(w io.Writer, f storage.Fixture) {
	fmt.Fprintln(w, "==================== DEV SEED ====================")
	fmt.Fprintf(w, "entity_id: %s\n", f.Entity.ID)
	for _, p := range f.Periods {
		fmt.Fprintf(w, "period %d: %s\n", p.Year, p.ID)
	}
	for _, a := range f.Accounts {
		fmt.Fprintf(w, "%s: %s\n", seedKey(a.Name), a.ID)
	}
	fmt.Fprintln(w, "==================================================")
}

func seedKey(name string) string {
	return slug.Key(name) + "_id"
}

// parseLogLevel maps config values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
