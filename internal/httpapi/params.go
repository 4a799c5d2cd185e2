package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tinoosan/bookkeeping/internal/dictionary"
	"github.com/tinoosan/bookkeeping/internal/ledger"
)

const dateOnly = "2006-01-02"

// ParseDate accepts RFC3339 timestamps or plain dates. A plain date used as an
// end bound covers the whole day.
func ParseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want RFC3339 or %s", s, dateOnly)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// ParseTypes splits a comma separated list of account types.
func ParseTypes(s string) ([]ledger.AccountType, error) {
	var out []ledger.AccountType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, ok := ledger.ParseAccountType(part)
		if !ok {
			return nil, fmt.Errorf("unknown account type %q", part)
		}
		out = append(out, t)
	}
	return out, nil
}

// dateRange reads the optional start and end query parameters.
func dateRange(r *http.Request) (start, end *time.Time, err error) {
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, err := ParseDate(v, false)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := ParseDate(v, true)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("start must not be after end")
	}
	return start, end, nil
}

// typesParam reads account types from either types= or section=.
func typesParam(r *http.Request) ([]ledger.AccountType, error) {
	q := r.URL.Query()
	if code := q.Get("section"); code != "" {
		sec, ok := dictionary.SectionFor(code)
		if !ok {
			return nil, fmt.Errorf("unknown section %q", code)
		}
		return sec.Types, nil
	}
	types, err := ParseTypes(q.Get("types"))
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("types or section is required")
	}
	return types, nil
}

func yearParam(r *http.Request) (*int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1 {
		return nil, fmt.Errorf("invalid year %q", v)
	}
	return &y, nil
}

func idParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
