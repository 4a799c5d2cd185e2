package httpapi

import (
	"net/http"
	"time"
)

// GET /v1/accounts/{id}/balances?year=&start=&end=
//
// year selects a whole calendar year when start and end are absent.
func (s *Server) getAccountBalances(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	year, err := yearParam(r)
	if err != nil {
		badRequest(w, err.Error())
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
	if year != nil && start == nil && end == nil {
		from := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0).Add(-time.Nanosecond)
		start, end = &from, &to
	}
	b, err := s.balances.Breakdown(r.Context(), rc, acc, start, end)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	toJSON(w, http.StatusOK, toBalancesResponse(acc, rc.Currency, b))
}

// GET /v1/accounts/{id}/transactions?start=&end=
func (s *Server) getAccountTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, "invalid id")
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
	acc, err := s.accounts.Get(r.Context(), rc, id)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	st, err := s.balances.Transactions(r.Context(), rc, acc, start, end)
	if err != nil {
		writeDomainErr(w, r, s.log, err)
		return
	}
	toJSON(w, http.StatusOK, transactionsResponse{AccountID: acc.ID, Total: st.Total, Transactions: st.Transactions})
}
