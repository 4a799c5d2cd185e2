package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeeping/internal/cache"
	"github.com/tinoosan/bookkeeping/internal/ledger"
)

// window applies the reporting defaults: end is now, start is the beginning of end's period.
func (s *Server) window(start, end *time.Time) (time.Time, time.Time) {
	to := s.periods.Now()
	if end != nil {
		to = *end
	}
	from := s.periods.PeriodStart(to)
	if start != nil {
		from = *start
	}
	return from, to
}

// GET /v1/sections?types=&start=&end=
func (s *Server) getSections(w http.ResponseWriter, r *http.Request) {
	types, err := typesParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rc, ok := s.reportingContext(w, r)
	if !ok {
		return
	}
	from, to := s.window(start, end)
	key, cacheable := s.reportKey(r.Context(), "sections", rc.EntityID, types, from, to)

	var resp sectionsResponse
	if cacheable && s.cached(r.Context(), key, &resp) {
		toJSON(w, http.StatusOK, resp)
		return
	}
	sb, err := s.chart.SectionBalances(r.Context(), rc, types, &from, &to)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	resp = sectionsResponse{EntityID: rc.EntityID, Start: from, End: to, SectionBalances: sb}
	if cacheable {
		s.store(r.Context(), key, resp)
	}
	toJSON(w, http.StatusOK, resp)
}

// GET /v1/movement?types=&start=&end=
func (s *Server) getMovement(w http.ResponseWriter, r *http.Request) {
	types, err := typesParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rc, ok := s.reportingContext(w, r)
	if !ok {
		return
	}
	from, to := s.window(start, end)
	key, cacheable := s.reportKey(r.Context(), "movement", rc.EntityID, types, from, to)

	var resp movementResponse
	if cacheable && s.cached(r.Context(), key, &resp) {
		toJSON(w, http.StatusOK, resp)
		return
	}
	m, err := s.chart.Movement(r.Context(), rc, types, &from, &to)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	resp = movementResponse{EntityID: rc.EntityID, Types: append([]ledger.AccountType(nil), types...), Start: from, End: to, Movement: m}
	if cacheable {
		s.store(r.Context(), key, resp)
	}
	toJSON(w, http.StatusOK, resp)
}

// reportKey builds the cache key at the entity's current generation. When the
// generation cannot be read the report is computed without the cache.
func (s *Server) reportKey(ctx context.Context, kind string, entityID uuid.UUID, types []ledger.AccountType, from, to time.Time) (string, bool) {
	gen, err := s.reports.Generation(ctx, entityID)
	if err != nil {
		reportCache.WithLabelValues("error").Inc()
		s.log.Warn("report cache generation read failed", "entity_id", entityID, "err", err)
		return "", false
	}
	return cache.SectionKey(kind, entityID, gen, types, from, to), true
}

// invalidateReports drops cached reports for the entity after one of its accounts changed.
func (s *Server) invalidateReports(ctx context.Context, entityID uuid.UUID) {
	if err := s.reports.Invalidate(ctx, entityID); err != nil {
		reportCache.WithLabelValues("error").Inc()
		s.log.Warn("report cache invalidation failed", "entity_id", entityID, "err", err)
	}
}

// cached reads a report from the cache. Cache failures are logged and treated as a miss.
func (s *Server) cached(ctx context.Context, key string, v any) bool {
	hit, err := s.reports.Get(ctx, key, v)
	switch {
	case err != nil:
		reportCache.WithLabelValues("error").Inc()
		s.log.Warn("report cache read failed", "key", key, "err", err)
		return false
	case hit:
		reportCache.WithLabelValues("hit").Inc()
		return true
	default:
		reportCache.WithLabelValues("miss").Inc()
		return false
	}
}

func (s *Server) store(ctx context.Context, key string, v any) {
	if err := s.reports.Set(ctx, key, v); err != nil {
		reportCache.WithLabelValues("error").Inc()
		s.log.Warn("report cache write failed", "key", key, "err", err)
	}
}
