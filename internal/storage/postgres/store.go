package postgres

// Package postgres provides a pgx-backed storage implementation that satisfies
// the repository and writer interfaces used by the services.
//
// It is intentionally small and explicit. Migrations that create the expected
// schema live under db/migrations. Numeric columns cross the wire as text so
// that amounts keep their exact decimal value.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeping/internal/errs"
	"github.com/tinoosan/bookkeeping/internal/ledger"
	"github.com/tinoosan/bookkeeping/internal/storage"
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique constraint failure.
const uniqueViolation = "23505"

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Load inserts every row of the fixture in one transaction.
func (s *Store) Load(ctx context.Context, f storage.Fixture) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `insert into entities (id, name, currency) values ($1,$2,$3)`, f.Entity.ID, f.Entity.Name, strings.ToUpper(f.Entity.Currency)); err != nil {
		return fmt.Errorf("insert entity: %w", err)
	}
	for _, p := range f.Periods {
		if _, err := tx.Exec(ctx, `
			insert into reporting_periods (id, entity_id, calendar_year, start_date) values ($1,$2,$3,$4)
		`, p.ID, p.EntityID, p.Year, p.Start); err != nil {
			return fmt.Errorf("insert period: %w", err)
		}
	}
	for _, c := range f.Categories {
		if _, err := tx.Exec(ctx, `
			insert into categories (id, entity_id, name, category_type) values ($1,$2,$3,$4)
		`, c.ID, c.EntityID, c.Name, string(c.Type)); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
	}
	for _, a := range f.Accounts {
		if err := insertAccount(ctx, tx, a); err != nil {
			return err
		}
	}
	for _, b := range f.Balances {
		if _, err := tx.Exec(ctx, `
			insert into balances (id, account_id, reporting_period_id, balance_type, amount, exchange_rate)
			values ($1,$2,$3,$4,$5::numeric,$6::numeric)
		`, b.ID, b.AccountID, b.PeriodID, string(b.Type), b.Amount.String(), b.ExchangeRate.String()); err != nil {
			return fmt.Errorf("insert balance: %w", err)
		}
	}
	for _, t := range f.Transactions {
		if _, err := tx.Exec(ctx, `
			insert into transactions (id, entity_id, transaction_type, transaction_date, reference, narration)
			values ($1,$2,$3,$4,$5,$6)
		`, t.ID, t.EntityID, t.Type, t.Date, t.Reference, t.Narration); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	for _, p := range f.Postings {
		if _, err := tx.Exec(ctx, `
			insert into ledgers (id, transaction_id, posting_date, post_account, folio_account, entry_type, amount, rate)
			values ($1,$2,$3,$4,$5,$6,$7::numeric,$8::numeric)
		`, p.ID, p.TransactionID, p.PostingDate, p.PostAccount, p.FolioAccount, string(p.Side), p.Amount.String(), p.Rate.String()); err != nil {
			return fmt.Errorf("insert posting: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// --- Entities and periods ---

func (s *Store) GetEntity(ctx context.Context, entityID uuid.UUID) (ledger.Entity, error) {
	var e ledger.Entity
	err := s.pool.QueryRow(ctx, `select id, name, currency from entities where id = $1`, entityID).Scan(&e.ID, &e.Name, &e.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Entity{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Entity{}, err
	}
	return e, nil
}

func (s *Store) PeriodForYear(ctx context.Context, entityID uuid.UUID, year int) (ledger.ReportingPeriod, error) {
	var p ledger.ReportingPeriod
	err := s.pool.QueryRow(ctx, `
		select id, entity_id, calendar_year, start_date
		from reporting_periods
		where entity_id = $1 and calendar_year = $2
	`, entityID, year).Scan(&p.ID, &p.EntityID, &p.Year, &p.Start)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.ReportingPeriod{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.ReportingPeriod{}, err
	}
	return p, nil
}

// --- Categories and accounts ---

func (s *Store) GetCategory(ctx context.Context, entityID, categoryID uuid.UUID) (ledger.Category, error) {
	var c ledger.Category
	var typ string
	err := s.pool.QueryRow(ctx, `
		select id, entity_id, name, category_type from categories where id = $1 and entity_id = $2
	`, categoryID, entityID).Scan(&c.ID, &c.EntityID, &c.Name, &typ)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Category{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Category{}, err
	}
	c.Type = ledger.AccountType(typ)
	return c, nil
}

const accountColumns = `id, entity_id, code, name, account_type, category_id, currency, deleted_at is not null`

func scanAccount(row pgx.Row) (ledger.Account, error) {
	var a ledger.Account
	var typ string
	if err := row.Scan(&a.ID, &a.EntityID, &a.Code, &a.Name, &typ, &a.CategoryID, &a.Currency, &a.Deleted); err != nil {
		return ledger.Account{}, err
	}
	a.Type = ledger.AccountType(typ)
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, entityID, accountID uuid.UUID) (ledger.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `select `+accountColumns+` from accounts where id = $1 and entity_id = $2`, accountID, entityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

// ListAccounts returns the entity's live accounts ordered by code.
func (s *Store) ListAccounts(ctx context.Context, entityID uuid.UUID) ([]ledger.Account, error) {
	return s.AccountsByTypes(ctx, entityID, ledger.AccountTypes)
}

func (s *Store) AccountsByTypes(ctx context.Context, entityID uuid.UUID, types []ledger.AccountType) ([]ledger.Account, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	rows, err := s.pool.Query(ctx, `
		select `+accountColumns+`
		from accounts
		where entity_id = $1 and account_type = any($2) and deleted_at is null
		order by code asc, id asc
	`, entityID, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CountByType(ctx context.Context, entityID uuid.UUID, t ledger.AccountType, includeDeleted bool) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		select count(*) from accounts
		where entity_id = $1 and account_type = $2 and ($3 or deleted_at is null)
	`, entityID, string(t), includeDeleted).Scan(&n)
	return n, err
}

// CreateAccount inserts an account row. A taken (entity, type, code) maps to errs.ErrConflict.
func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	if err := insertAccount(ctx, s.pool, a); err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

// UpdateAccount updates the mutable fields of a live account.
func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	ct, err := s.pool.Exec(ctx, `
		update accounts
		set code=$1, name=$2, account_type=$3, category_id=$4, currency=$5
		where id=$6 and entity_id=$7 and deleted_at is null
	`, a.Code, a.Name, string(a.Type), a.CategoryID, strings.ToUpper(a.Currency), a.ID, a.EntityID)
	if err != nil {
		return ledger.Account{}, mapWriteErr(err)
	}
	if ct.RowsAffected() == 0 {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// DeleteAccount soft-deletes an account by stamping deleted_at.
func (s *Store) DeleteAccount(ctx context.Context, entityID, accountID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `
		update accounts set deleted_at = $1 where id = $2 and entity_id = $3 and deleted_at is null
	`, time.Now().UTC(), accountID, entityID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertAccount(ctx context.Context, ex execer, a ledger.Account) error {
	_, err := ex.Exec(ctx, `
		insert into accounts (id, entity_id, code, name, account_type, category_id, currency)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, a.ID, a.EntityID, a.Code, a.Name, string(a.Type), a.CategoryID, strings.ToUpper(a.Currency))
	return mapWriteErr(err)
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", errs.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// --- Balances and ledger ---

func (s *Store) BalancesFor(ctx context.Context, accountID, periodID uuid.UUID) ([]ledger.Balance, error) {
	rows, err := s.pool.Query(ctx, `
		select id, account_id, reporting_period_id, balance_type, amount::text, exchange_rate::text
		from balances
		where account_id = $1 and reporting_period_id = $2
		order by id asc
	`, accountID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Balance, 0)
	for rows.Next() {
		var b ledger.Balance
		var typ, amount, rate string
		if err := rows.Scan(&b.ID, &b.AccountID, &b.PeriodID, &typ, &amount, &rate); err != nil {
			return nil, err
		}
		b.Type = ledger.BalanceType(typ)
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("balance %s amount: %w", b.ID, err)
		}
		if b.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("balance %s exchange rate: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// signedPosting mirrors ledger.Posting.Contribution in SQL, rounding each posting
// to ledger.ConversionScale before it is summed.
var signedPosting = fmt.Sprintf(`
	case when entry_type = 'credit' then -1 else 1 end * round(amount / coalesce(nullif(rate, 0), 1), %d)`, ledger.ConversionScale)

func (s *Store) NetContribution(ctx context.Context, accountID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var total string
	err := s.pool.QueryRow(ctx, `
		select coalesce(sum(`+signedPosting+`), 0)::text
		from ledgers
		where post_account = $1 and posting_date between $2 and $3
	`, accountID, start, end).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}

func (s *Store) TransactionsTouching(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]ledger.TransactionRef, error) {
	rows, err := s.pool.Query(ctx, `
		select t.id, t.transaction_date, t.transaction_type, min(l.posting_date) as posting_date
		from ledgers l
		join transactions t on t.id = l.transaction_id
		where (l.post_account = $1 or l.folio_account = $1) and l.posting_date between $2 and $3
		group by t.id, t.transaction_date, t.transaction_type
		order by posting_date asc, t.id asc
	`, accountID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.TransactionRef, 0)
	for rows.Next() {
		var r ledger.TransactionRef
		if err := rows.Scan(&r.TransactionID, &r.Date, &r.Type, &r.PostingDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Contribution(ctx context.Context, accountID, transactionID uuid.UUID) (decimal.Decimal, error) {
	var total string
	err := s.pool.QueryRow(ctx, `
		select coalesce(sum(`+signedPosting+`), 0)::text
		from ledgers
		where post_account = $1 and transaction_id = $2
	`, accountID, transactionID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}
