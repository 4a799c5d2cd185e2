// Package httpapi wires the HTTP surface of the bookkeeping service.
// It keeps handlers thin, delegating accounting rules to the service layer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tinoosan/bookkeeping/internal/cache"
	"github.com/tinoosan/bookkeeping/internal/dictionary"
	"github.com/tinoosan/bookkeeping/internal/ledger"
	"github.com/tinoosan/bookkeeping/internal/period"
	"github.com/tinoosan/bookkeeping/internal/service/account"
	"github.com/tinoosan/bookkeeping/internal/service/balance"
	"github.com/tinoosan/bookkeeping/internal/service/chart"
)

// Store is everything the API reads and writes. Both storage backends satisfy it.
type Store interface {
	period.Store
	period.EntityReader
	balance.LedgerQuery
	balance.BalanceStore
	chart.Repo
	account.Repo
	account.Writer
}

// Server wires handlers and middleware using Chi.
type Server struct {
	periods  *period.Resolver
	balances balance.Service
	chart    chart.Service
	accounts account.Service
	labels   *dictionary.Table
	reports  cache.Reports
	ready    []func(context.Context) error
	log      *slog.Logger
	rt       *chi.Mux
}

// Option configures optional Server dependencies.
type Option func(*options)

type options struct {
	now     func() time.Time
	reports cache.Reports
	ready   []func(context.Context) error
}

// WithClock replaces time.Now as the source of "now" for date defaults.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithReportCache caches section reports. Without it nothing is cached.
func WithReportCache(c cache.Reports) Option { return func(o *options) { o.reports = c } }

// WithReadyCheck adds a dependency probed by /readyz.
func WithReadyCheck(fn func(context.Context) error) Option {
	return func(o *options) { o.ready = append(o.ready, fn) }
}

// New constructs the HTTP server with routes and middleware.
func New(store Store, labels *dictionary.Table, logger *slog.Logger, opts ...Option) *Server {
	o := options{now: time.Now, reports: cache.Noop{}}
	for _, opt := range opts {
		opt(&o)
	}
	if rc, ok := store.(interface{ Ready(context.Context) error }); ok {
		o.ready = append([]func(context.Context) error{rc.Ready}, o.ready...)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	resolver := period.New(store, store, o.now)
	balances := balance.New(store, store, resolver)
	s := &Server{
		periods:  resolver,
		balances: balances,
		chart:    chart.New(store, balances, labels, resolver),
		accounts: account.New(store, store, labels, balances),
		labels:   labels,
		reports:  o.reports,
		ready:    o.ready,
		log:      logger,
		rt:       r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
	s.rt.Route("/v1", func(r chi.Router) {
		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts", s.postAccount)
		r.Get("/accounts/{id}", s.getAccount)
		r.Patch("/accounts/{id}", s.patchAccount)
		r.Delete("/accounts/{id}", s.deleteAccount)
		r.Get("/accounts/{id}/balances", s.getAccountBalances)
		r.Get("/accounts/{id}/transactions", s.getAccountTransactions)
		r.Get("/sections", s.getSections)
		r.Get("/movement", s.getMovement)
		r.Get("/dictionary/account-types", s.getAccountTypes)
		r.Get("/dictionary/sections", s.getSectionsDictionary)
	})
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}

// reportingContext resolves the entity_id query parameter into a reporting context.
// It writes the error response and returns false when that fails.
func (s *Server) reportingContext(w http.ResponseWriter, r *http.Request) (ledger.ReportingContext, bool) {
	raw := r.URL.Query().Get("entity_id")
	if raw == "" {
		badRequest(w, "entity_id is required")
		return ledger.ReportingContext{}, false
	}
	entityID, err := uuid.Parse(raw)
	if err != nil {
		badRequest(w, "invalid entity_id")
		return ledger.ReportingContext{}, false
	}
	rc, err := s.periods.Context(r.Context(), entityID)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return ledger.ReportingContext{}, false
	}
	return rc, true
}
