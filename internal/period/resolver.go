// Package period resolves reporting periods and builds the per-request
// reporting context. Periods are calendar years.
package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeeping/internal/errs"
	"github.com/tinoosan/bookkeeping/internal/ledger"
)

// Store looks up persisted reporting periods.
type Store interface {
	// PeriodForYear returns the entity's period for the calendar year, or errs.ErrNotFound.
	PeriodForYear(ctx context.Context, entityID uuid.UUID, year int) (ledger.ReportingPeriod, error)
}

// EntityReader looks up the entity that owns the books.
type EntityReader interface {
	GetEntity(ctx context.Context, entityID uuid.UUID) (ledger.Entity, error)
}

// Resolver maps dates to periods and years, and resolves stored periods.
type Resolver struct {
	periods  Store
	entities EntityReader
	now      func() time.Time
}

// New constructs a Resolver. A nil now defaults to time.Now.
func New(periods Store, entities EntityReader, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{periods: periods, entities: entities, now: now}
}

// Now returns the resolver's clock reading.
func (r *Resolver) Now() time.Time { return r.now() }

// PeriodStart returns the start of the reporting period enclosing d.
func (r *Resolver) PeriodStart(d time.Time) time.Time {
	return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location())
}

// YearOf returns the calendar year of d.
func (r *Resolver) YearOf(d time.Time) int { return d.Year() }

// Period resolves the period for an explicit year, or the context's current period when year is nil.
func (r *Resolver) Period(ctx context.Context, rc ledger.ReportingContext, year *int) (ledger.ReportingPeriod, error) {
	if year == nil {
		if rc.CurrentPeriod == nil {
			return ledger.ReportingPeriod{}, &errs.PeriodResolutionError{EntityID: rc.EntityID}
		}
		return *rc.CurrentPeriod, nil
	}
	p, err := r.periods.PeriodForYear(ctx, rc.EntityID, *year)
	if errors.Is(err, errs.ErrNotFound) {
		return ledger.ReportingPeriod{}, &errs.PeriodResolutionError{EntityID: rc.EntityID, Year: *year}
	}
	if err != nil {
		return ledger.ReportingPeriod{}, fmt.Errorf("resolve period %d: %w", *year, err)
	}
	return p, nil
}

// Context builds the reporting context for an entity: its functional currency and
// the period of the current year, when one exists.
func (r *Resolver) Context(ctx context.Context, entityID uuid.UUID) (ledger.ReportingContext, error) {
	if entityID == uuid.Nil {
		return ledger.ReportingContext{}, errs.ErrInvalid
	}
	ent, err := r.entities.GetEntity(ctx, entityID)
	if err != nil {
		return ledger.ReportingContext{}, err
	}
	rc := ledger.ReportingContext{EntityID: ent.ID, Currency: ent.Currency}
	p, err := r.periods.PeriodForYear(ctx, ent.ID, r.YearOf(r.now()))
	switch {
	case err == nil:
		rc.CurrentPeriod = &p
	case errors.Is(err, errs.ErrNotFound):
	default:
		return ledger.ReportingContext{}, fmt.Errorf("resolve current period: %w", err)
	}
	return rc, nil
}
