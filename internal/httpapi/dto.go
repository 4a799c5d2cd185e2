package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bookkeeping/internal/ledger"
	"github.com/tinoosan/bookkeeping/internal/service/balance"
	"github.com/tinoosan/bookkeeping/internal/service/chart"
)

// accountRequest is the body of POST and PATCH /v1/accounts.
type accountRequest struct {
	Name       string     `json:"name"`
	Type       string     `json:"account_type"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Currency   string     `json:"currency,omitempty"`
	Code       int        `json:"code,omitempty"`
}

type accountResponse struct {
	ID         uuid.UUID          `json:"id"`
	EntityID   uuid.UUID          `json:"entity_id"`
	Code       int                `json:"code"`
	Name       string             `json:"name"`
	Type       ledger.AccountType `json:"account_type"`
	TypeLabel  string             `json:"account_type_label"`
	CategoryID *uuid.UUID         `json:"category_id,omitempty"`
	Currency   string             `json:"currency"`
}

type accountsResponse struct {
	EntityID uuid.UUID         `json:"entity_id"`
	Items    []accountResponse `json:"items"`
}

type balancesResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	Currency  string    `json:"currency"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Opening   string    `json:"opening_balance"`
	Current   string    `json:"current_balance"`
	Closing   string    `json:"closing_balance"`
	Display   struct {
		Opening string `json:"opening"`
		Current string `json:"current"`
		Closing string `json:"closing"`
	} `json:"display"`
}

type transactionsResponse struct {
	AccountID    uuid.UUID                 `json:"account_id"`
	Total        decimal.Decimal           `json:"total"`
	Transactions []balance.TransactionLine `json:"transactions"`
}

type sectionsResponse struct {
	EntityID uuid.UUID `json:"entity_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	chart.SectionBalances
}

type movementResponse struct {
	EntityID uuid.UUID            `json:"entity_id"`
	Types    []ledger.AccountType `json:"types"`
	Start    time.Time            `json:"start"`
	End      time.Time            `json:"end"`
	Movement decimal.Decimal      `json:"movement"`
}

func (s *Server) toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{
		ID:         a.ID,
		EntityID:   a.EntityID,
		Code:       a.Code,
		Name:       a.Name,
		Type:       a.Type,
		TypeLabel:  s.labels.AccountTypeLabel(a.Type),
		CategoryID: a.CategoryID,
		Currency:   a.Currency,
	}
}

func toBalancesResponse(acc ledger.Account, currency string, b balance.Breakdown) balancesResponse {
	out := balancesResponse{
		AccountID: acc.ID,
		Currency:  currency,
		Start:     b.Start,
		End:       b.End,
		Opening:   b.Opening.String(),
		Current:   b.Current.String(),
		Closing:   b.Closing.String(),
	}
	out.Display.Opening = displayAmount(currency, b.Opening)
	out.Display.Current = displayAmount(currency, b.Current)
	out.Display.Closing = displayAmount(currency, b.Closing)
	return out
}

// displayAmount renders v rounded to the currency's minor units, e.g. "USD 70.00".
// Unknown currencies fall back to the plain decimal.
func displayAmount(currency string, v decimal.Decimal) string {
	curr, err := money.ParseCurr(currency)
	if err != nil {
		return v.String()
	}
	minor := v.Shift(int32(curr.Scale())).Round(0).IntPart()
	amt, err := money.NewAmountFromMinorUnits(curr.Code(), minor)
	if err != nil {
		return v.String()
	}
	return amt.String()
}
