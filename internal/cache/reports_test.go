package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bookkeeping/internal/ledger"
)

func TestSectionKey_IgnoresTypeOrder(t *testing.T) {
	id := uuid.New()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	a := SectionKey("sections", id, 0, []ledger.AccountType{ledger.AccountTypeBank, ledger.AccountTypeReceivable}, start, end)
	b := SectionKey("sections", id, 0, []ledger.AccountType{ledger.AccountTypeReceivable, ledger.AccountTypeBank}, start, end)
	assert.Equal(t, a, b)

	c := SectionKey("sections", id, 0, []ledger.AccountType{ledger.AccountTypeBank}, start, end)
	assert.NotEqual(t, a, c)
	d := SectionKey("movement", id, 0, []ledger.AccountType{ledger.AccountTypeBank, ledger.AccountTypeReceivable}, start, end)
	assert.NotEqual(t, a, d)
	e := SectionKey("sections", id, 1, []ledger.AccountType{ledger.AccountTypeBank, ledger.AccountTypeReceivable}, start, end)
	assert.NotEqual(t, a, e)
}

func TestNoop_AlwaysMisses(t *testing.T) {
	var n Noop
	require.NoError(t, n.Set(context.Background(), "k", 1))
	var v int
	ok, err := n.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, n.Invalidate(context.Background(), uuid.New()))
	gen, err := n.Generation(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, gen)
}

func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping Redis cache tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := NewRedis(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), time.Minute)
	require.NoError(t, err)
	defer r.Close()

	key := "test:" + uuid.NewString()
	var got map[string]string
	ok, err := r.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, key, map[string]string{"total": "70"}))
	ok, err = r.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "70", got["total"])

	entity := uuid.New()
	gen, err := r.Generation(ctx, entity)
	require.NoError(t, err)
	assert.Zero(t, gen)
	require.NoError(t, r.Invalidate(ctx, entity))
	require.NoError(t, r.Invalidate(ctx, entity))
	gen, err = r.Generation(ctx, entity)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}
