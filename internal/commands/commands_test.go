package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bookkeeping/internal/config"
	"github.com/tinoosan/bookkeeping/internal/storage"
)

// runCLI executes the root command in-process against the in-memory backend.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func endOfYear() string { return fmt.Sprintf("%d-12-31", time.Now().Year()) }

func TestSections_JSON(t *testing.T) {
	out, err := runCLI(t, "sections", "--types", "bank,receivable", "--end", endOfYear(), "--format", "json")
	require.NoError(t, err, out)

	var got struct {
		Total      decimal.Decimal `json:"sectionTotal"`
		Categories map[string]any  `json:"sectionCategories"`
		Order      []string        `json:"order"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.True(t, decimal.NewFromInt(1250).Equal(got.Total), got.Total.String())
	assert.Equal(t, []string{"Bank"}, got.Order)
	assert.Len(t, got.Categories, 1)
}

func TestSections_TextBySection(t *testing.T) {
	out, err := runCLI(t, "sections", "--section", "operating_revenues", "--end", endOfYear())
	require.NoError(t, err, out)
	assert.Contains(t, out, "Sales")
	assert.Contains(t, out, "Product Sales")
	assert.Contains(t, out, "-250.00")
	assert.Contains(t, out, "Total (USD)")
}

func TestSections_FlagErrors(t *testing.T) {
	_, err := runCLI(t, "sections")
	assert.Error(t, err)

	_, err = runCLI(t, "sections", "--types", "BANK", "--section", "equity")
	assert.Error(t, err)

	_, err = runCLI(t, "sections", "--types", "PETTY")
	assert.Error(t, err)

	_, err = runCLI(t, "sections", "--types", "BANK", "--entity", "not-a-uuid")
	assert.Error(t, err)

	_, err = runCLI(t, "sections", "--types", "BANK", "--format", "xml")
	assert.Error(t, err)
}

func TestTypes_ListsLabelsAndCodeBases(t *testing.T) {
	out, err := runCLI(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "NON_CURRENT_ASSET")
	assert.Contains(t, out, "Operating Revenue")
	assert.Contains(t, out, "9000")
}

func TestPrintDevSeedBanner(t *testing.T) {
	f := storage.DevFixture(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	var buf bytes.Buffer
	printDevSeedBanner(&buf, f)
	out := buf.String()
	assert.Contains(t, out, "entity_id: "+f.Entity.ID.String())
	assert.Contains(t, out, "period 2025:")
	assert.Contains(t, out, "bank_account_id: ")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("err"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))

	var buf bytes.Buffer
	buildLogger(config.LogConfig{Level: "info", Format: "text"}, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
