package memory

import (
	"github.com/tinoosan/bookkeeping/internal/period"
	"github.com/tinoosan/bookkeeping/internal/service/account"
	"github.com/tinoosan/bookkeeping/internal/service/balance"
	"github.com/tinoosan/bookkeeping/internal/service/chart"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ period.Store         = (*Store)(nil)
	_ period.EntityReader  = (*Store)(nil)
	_ balance.LedgerQuery  = (*Store)(nil)
	_ balance.BalanceStore = (*Store)(nil)
	_ chart.Repo           = (*Store)(nil)
	_ account.Repo         = (*Store)(nil)
	_ account.Writer       = (*Store)(nil)
)
