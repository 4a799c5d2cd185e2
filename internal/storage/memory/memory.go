package memory

// Package memory provides a simple in-memory implementation used for development and tests.
// It implements every read and write contract the services depend on.
import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeping/internal/errs"
	"github.com/tinoosan/bookkeeping/internal/ledger"
	"github.com/tinoosan/bookkeeping/internal/storage"
)

// Store is an in-memory implementation of the repositories and writers used by the services.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
	mu           sync.RWMutex
	entities     map[uuid.UUID]ledger.Entity
	periods      map[uuid.UUID]ledger.ReportingPeriod
	categories   map[uuid.UUID]ledger.Category
	accounts     map[uuid.UUID]ledger.Account
	balances     []ledger.Balance
	transactions map[uuid.UUID]ledger.Transaction
	// postings sorted asc by (PostingDate, ID)
	postings []ledger.Posting
}

// New constructs an empty in-memory store.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Seed helpers for local dev/tests.
func (s *Store) SeedEntity(e ledger.Entity)              { s.mu.Lock(); s.entities[e.ID] = e; s.mu.Unlock() }
func (s *Store) SeedPeriod(p ledger.ReportingPeriod)     { s.mu.Lock(); s.periods[p.ID] = p; s.mu.Unlock() }
func (s *Store) SeedCategory(c ledger.Category)          { s.mu.Lock(); s.categories[c.ID] = c; s.mu.Unlock() }
func (s *Store) SeedAccount(a ledger.Account)            { s.mu.Lock(); s.accounts[a.ID] = a; s.mu.Unlock() }
func (s *Store) SeedBalance(b ledger.Balance)            { s.mu.Lock(); s.balances = append(s.balances, b); s.mu.Unlock() }
func (s *Store) SeedTransaction(t ledger.Transaction)    { s.mu.Lock(); s.transactions[t.ID] = t; s.mu.Unlock() }
func (s *Store) SeedPosting(p ledger.Posting)            { s.mu.Lock(); s.insertPostingLocked(p); s.mu.Unlock() }

func (s *Store) Reset() {
	s.mu.Lock()
	s.entities = map[uuid.UUID]ledger.Entity{}
	s.periods = map[uuid.UUID]ledger.ReportingPeriod{}
	s.categories = map[uuid.UUID]ledger.Category{}
	s.accounts = map[uuid.UUID]ledger.Account{}
	s.balances = nil
	s.transactions = map[uuid.UUID]ledger.Transaction{}
	s.postings = nil
	s.mu.Unlock()
}

// Ready always succeeds for the in-memory store.
func (s *Store) Ready(context.Context) error { return nil }

// --- Entities and periods ---

func (s *Store) GetEntity(_ context.Context, entityID uuid.UUID) (ledger.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityID]
	if !ok {
		return ledger.Entity{}, errs.ErrNotFound
	}
	return e, nil
}

func (s *Store) PeriodForYear(_ context.Context, entityID uuid.UUID, year int) (ledger.ReportingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.periods {
		if p.EntityID == entityID && p.Year == year {
			return p, nil
		}
	}
	return ledger.ReportingPeriod{}, errs.ErrNotFound
}

// --- Categories and accounts ---

func (s *Store) GetCategory(_ context.Context, entityID, categoryID uuid.UUID) (ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok || c.EntityID != entityID {
		return ledger.Category{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetAccount(_ context.Context, entityID, accountID uuid.UUID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok || a.EntityID != entityID {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// ListAccounts returns the entity's live accounts ordered by code.
func (s *Store) ListAccounts(ctx context.Context, entityID uuid.UUID) ([]ledger.Account, error) {
	return s.AccountsByTypes(ctx, entityID, ledger.AccountTypes)
}

func (s *Store) AccountsByTypes(_ context.Context, entityID uuid.UUID, types []ledger.AccountType) ([]ledger.Account, error) {
	want := make(map[ledger.AccountType]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}
	s.mu.RLock()
	out := make([]ledger.Account, 0)
	for _, a := range s.accounts {
		if a.EntityID != entityID || a.Deleted {
			continue
		}
		if _, ok := want[a.Type]; ok {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code == out[j].Code {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *Store) CountByType(_ context.Context, entityID uuid.UUID, t ledger.AccountType, includeDeleted bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.accounts {
		if a.EntityID != entityID || a.Type != t {
			continue
		}
		if a.Deleted && !includeDeleted {
			continue
		}
		n++
	}
	return n, nil
}

// CreateAccount persists a new account. A taken (entity, type, code) is a conflict.
func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return ledger.Account{}, errs.ErrConflict
	}
	if s.codeTakenLocked(a) {
		return ledger.Account{}, errs.ErrConflict
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok || cur.EntityID != a.EntityID {
		return ledger.Account{}, errs.ErrNotFound
	}
	if s.codeTakenLocked(a) {
		return ledger.Account{}, errs.ErrConflict
	}
	s.accounts[a.ID] = a
	return a, nil
}

// DeleteAccount soft-deletes an account.
func (s *Store) DeleteAccount(_ context.Context, entityID, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok || a.EntityID != entityID {
		return errs.ErrNotFound
	}
	a.Deleted = true
	s.accounts[accountID] = a
	return nil
}

func (s *Store) codeTakenLocked(a ledger.Account) bool {
	for id, other := range s.accounts {
		if id != a.ID && other.EntityID == a.EntityID && other.Type == a.Type && other.Code == a.Code {
			return true
		}
	}
	return false
}

// --- Balances and ledger ---

func (s *Store) BalancesFor(_ context.Context, accountID, periodID uuid.UUID) ([]ledger.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Balance, 0)
	for _, b := range s.balances {
		if b.AccountID == accountID && b.PeriodID == periodID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) NetContribution(_ context.Context, accountID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range s.rangeByTime(start, end) {
		if p.PostAccount == accountID {
			total = total.Add(p.Contribution())
		}
	}
	return total, nil
}

// TransactionsTouching returns each transaction once, ordered by its first posting date then id.
func (s *Store) TransactionsTouching(_ context.Context, accountID uuid.UUID, start, end time.Time) ([]ledger.TransactionRef, error) {
	postings := s.rangeByTime(start, end)
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[uuid.UUID]struct{}{}
	out := make([]ledger.TransactionRef, 0)
	for _, p := range postings {
		if p.PostAccount != accountID && p.FolioAccount != accountID {
			continue
		}
		if _, ok := seen[p.TransactionID]; ok {
			continue
		}
		seen[p.TransactionID] = struct{}{}
		ref := ledger.TransactionRef{TransactionID: p.TransactionID, PostingDate: p.PostingDate}
		if t, ok := s.transactions[p.TransactionID]; ok {
			ref.Date = t.Date
			ref.Type = t.Type
		}
		out = append(out, ref)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PostingDate.Equal(out[j].PostingDate) {
			return out[i].TransactionID.String() < out[j].TransactionID.String()
		}
		return out[i].PostingDate.Before(out[j].PostingDate)
	})
	return out, nil
}

func (s *Store) Contribution(_ context.Context, accountID, transactionID uuid.UUID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, p := range s.postings {
		if p.TransactionID == transactionID && p.PostAccount == accountID {
			total = total.Add(p.Contribution())
		}
	}
	return total, nil
}

// insertPostingLocked keeps s.postings ordered asc by (PostingDate, ID).
// Caller must hold s.mu (write lock).
func (s *Store) insertPostingLocked(p ledger.Posting) {
	i := sort.Search(len(s.postings), func(i int) bool {
		if s.postings[i].PostingDate.After(p.PostingDate) {
			return true
		}
		if s.postings[i].PostingDate.Equal(p.PostingDate) {
			return s.postings[i].ID.String() > p.ID.String()
		}
		return false
	})
	s.postings = append(s.postings, ledger.Posting{})
	copy(s.postings[i+1:], s.postings[i:])
	s.postings[i] = p
}

// rangeByTime returns a copy of the postings within [from,to] inclusive.
func (s *Store) rangeByTime(from, to time.Time) []ledger.Posting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := sort.Search(len(s.postings), func(i int) bool { return !s.postings[i].PostingDate.Before(from) })
	end := sort.Search(len(s.postings), func(i int) bool { return s.postings[i].PostingDate.After(to) })
	if start >= end {
		return nil
	}
	subset := make([]ledger.Posting, end-start)
	copy(subset, s.postings[start:end])
	return subset
}

// Load seeds every row of the fixture.
func (s *Store) Load(f storage.Fixture) {
	s.SeedEntity(f.Entity)
	for _, p := range f.Periods {
		s.SeedPeriod(p)
	}
	for _, c := range f.Categories {
		s.SeedCategory(c)
	}
	for _, a := range f.Accounts {
		s.SeedAccount(a)
	}
	for _, b := range f.Balances {
		s.SeedBalance(b)
	}
	for _, t := range f.Transactions {
		s.SeedTransaction(t)
	}
	for _, p := range f.Postings {
		s.SeedPosting(p)
	}
}
