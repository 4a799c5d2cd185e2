package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/bookkeeping/internal/ledger"
)

// accountPatch carries the fields PATCH may change. Absent fields keep their stored
// value; ClearCategory detaches the category.
type accountPatch struct {
	Name          *string    `json:"name,omitempty"`
	Type          *string    `json:"account_type,omitempty"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	ClearCategory bool       `json:"clear_category,omitempty"`
	Currency      *string    `json:"currency,omitempty"`
}

// accountType keeps unknown input as-is so validation reports it.
func accountType(s string) ledger.AccountType {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, ok := ledger.ParseAccountType(s); ok {
		return t
	}
	return ledger.AccountType(s)
}

// GET /v1/accounts?types=
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	types, err := ParseTypes(r.URL.Query().Get("types"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rc, ok := s.reportingContext(w, r)
	if !ok {
		return
	}
	accs, err := s.accounts.List(r.Context(), rc, types)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	resp := accountsResponse{EntityID: rc.EntityID, Items: make([]accountResponse, 0, len(accs))}
	for _, a := range accs {
		resp.Items = append(resp.Items, s.toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, resp)
}

// POST /v1/accounts
func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	rc, ok := s.reportingContext(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.accounts.Create(r.Context(), rc, ledger.Account{
		Name:       req.Name,
		Type:       accountType(req.Type),
		CategoryID: req.CategoryID,
		Currency:   req.Currency,
		Code:       req.Code,
	})
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	s.invalidateReports(r.Context(), rc.EntityID)
	s.log.Info("account created", "entity_id", rc.EntityID, "account_id", created.ID, "code", created.Code, "type", created.Type)
	toJSON(w, http.StatusCreated, s.toAccountResponse(created))
}

// GET /v1/accounts/{id}
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	rc, ok := s.reportingContext(w, r)
	if !ok {
		return
	}
	acc, err := s.accounts.Get(r.Context(), rc, id)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	toJSON(w, http.StatusOK, s.toAccountResponse(acc))
}

// PATCH /v1/accounts/{id}
func (s *Server) patchAccount(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	rc, ok := s.reportingContext(w, r)
	if !ok {
		return
	}
	var req accountPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	acc, err := s.accounts.Get(r.Context(), rc, id)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	if req.Name != nil {
		acc.Name = *req.Name
	}
	if req.Type != nil {
		acc.Type = accountType(*req.Type)
	}
	if req.Currency != nil {
		acc.Currency = *req.Currency
	}
	switch {
	case req.ClearCategory:
		acc.CategoryID = nil
	case req.CategoryID != nil:
		acc.CategoryID = req.CategoryID
	}
	updated, err := s.accounts.Update(r.Context(), rc, acc)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	s.invalidateReports(r.Context(), rc.EntityID)
	s.log.Info("account updated", "entity_id", rc.EntityID, "account_id", updated.ID, "code", updated.Code)
	toJSON(w, http.StatusOK, s.toAccountResponse(updated))
}

// DELETE /v1/accounts/{id}
func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	rc, ok := s.reportingContext(w, r)
	if !ok {
		return
	}
	if err := s.accounts.Delete(r.Context(), rc, id); err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	s.invalidateReports(r.Context(), rc.EntityID)
	s.log.Info("account deleted", "entity_id", rc.EntityID, "account_id", id)
	w.WriteHeader(http.StatusNoContent)
}
