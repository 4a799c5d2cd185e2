package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/tinoosan/bookkeeping/internal/dictionary"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

// readyz probes the store and any extra dependencies with a short timeout.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	for _, check := range s.ready {
		if err := check(ctx); err != nil {
			s.log.Warn("not ready", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// GET /v1/dictionary/account-types
func (s *Server) getAccountTypes(w http.ResponseWriter, r *http.Request) {
	out := struct {
		Items []dictionary.TypeDef `json:"items"`
	}{Items: s.labels.All()}
	toJSON(w, http.StatusOK, out)
}

// GET /v1/dictionary/sections
func (s *Server) getSectionsDictionary(w http.ResponseWriter, r *http.Request) {
	out := struct {
		Items []dictionary.Section `json:"items"`
	}{Items: dictionary.Sections()}
	toJSON(w, http.StatusOK, out)
}
