package plaid

import (
	"encoding/json"
	"time"

	plaidsdk "github.com/plaid/plaid-go/v29/plaid"
)

// Account is an account as returned by /accounts/get.
type Account struct {
	AccountID    string
	Balances     Balances
	Mask         string
	Name         string
	OfficialName string
	Type         string
	Subtype      string
}

// Balances are the balance figures of an account. Nil means the
// institution reported none.
type Balances struct {
	Available       *float64
	Current         *float64
	Limit           *float64
	IsoCurrencyCode string
}

// Transaction is a transaction as returned by /transactions/get.
type Transaction struct {
	TransactionID string
	AccountID     string
	Amount        float64
	Date          string
	Name          string
	MerchantName  string
	Pending       bool
	Category      []string
}

// Holding is one investment position.
type Holding struct {
	AccountID        string
	SecurityID       string
	Quantity         float64
	CostBasis        *float64
	InstitutionValue *float64
}

// Holdings is the investment snapshot of an item.
type Holdings struct {
	Accounts []Account
	Holdings []Holding
}

// Liability kinds as grouped by /liabilities/get.
const (
	LiabilityCredit   = "credit"
	LiabilityMortgage = "mortgage"
	LiabilityStudent  = "student"
)

// Liability is one credit card, mortgage or student loan record. Raw is the
// provider's full record; the figures are lifted from it.
type Liability struct {
	AccountID string
	Kind      string
	// MinimumPayment is the minimum payment for cards and student loans and
	// the next monthly payment for mortgages.
	MinimumPayment *float64
	IsOverdue      *bool
	Raw            json.RawMessage
}

// LinkToken initialises the Link flow on the client.
type LinkToken struct {
	Token      string
	Expiration time.Time
}

// ExchangeResult is the outcome of a public token exchange.
type ExchangeResult struct {
	AccessToken string
	ItemID      string
}

// FormatDate formats t as a Plaid date (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func fromAccount(a plaidsdk.AccountBase) Account {
	b := a.GetBalances()
	return Account{
		AccountID:    a.GetAccountId(),
		Mask:         a.GetMask(),
		Name:         a.GetName(),
		OfficialName: a.GetOfficialName(),
		Type:         string(a.GetType()),
		Subtype:      string(a.GetSubtype()),
		Balances: Balances{
			Available:       optional(b.GetAvailableOk()),
			Current:         optional(b.GetCurrentOk()),
			Limit:           optional(b.GetLimitOk()),
			IsoCurrencyCode: b.GetIsoCurrencyCode(),
		},
	}
}

func fromAccounts(in []plaidsdk.AccountBase) []Account {
	out := make([]Account, 0, len(in))
	for _, a := range in {
		out = append(out, fromAccount(a))
	}
	return out
}

func fromTransaction(t plaidsdk.Transaction) Transaction {
	var category []string
	if c := t.GetCategory(); len(c) > 0 {
		category = c
	}
	return Transaction{
		TransactionID: t.GetTransactionId(),
		AccountID:     t.GetAccountId(),
		Amount:        t.GetAmount(),
		Date:          t.GetDate(),
		Name:          t.GetName(),
		MerchantName:  t.GetMerchantName(),
		Pending:       t.GetPending(),
		Category:      category,
	}
}

func fromHolding(h plaidsdk.Holding) Holding {
	value := h.GetInstitutionValue()
	return Holding{
		AccountID:        h.GetAccountId(),
		SecurityID:       h.GetSecurityId(),
		Quantity:         h.GetQuantity(),
		CostBasis:        optional(h.GetCostBasisOk()),
		InstitutionValue: &value,
	}
}

// liabilityFigures are the fields read back from a marshalled liability.
type liabilityFigures struct {
	AccountID            string   `json:"account_id"`
	MinimumPaymentAmount *float64 `json:"minimum_payment_amount"`
	NextMonthlyPayment   *float64 `json:"next_monthly_payment"`
	PastDueAmount        *float64 `json:"past_due_amount"`
	IsOverdue            *bool    `json:"is_overdue"`
}

// fromLiability reads the figures of any liability model from its JSON form.
func fromLiability(kind string, record any) (Liability, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return Liability{}, err
	}
	var f liabilityFigures
	if err := json.Unmarshal(raw, &f); err != nil {
		return Liability{}, err
	}

	l := Liability{
		AccountID:      f.AccountID,
		Kind:           kind,
		MinimumPayment: f.MinimumPaymentAmount,
		IsOverdue:      f.IsOverdue,
		Raw:            raw,
	}
	if kind == LiabilityMortgage {
		l.MinimumPayment = f.NextMonthlyPayment
		if f.PastDueAmount != nil {
			overdue := *f.PastDueAmount > 0
			l.IsOverdue = &overdue
		}
	}
	return l, nil
}

func optional(v *float64, ok bool) *float64 {
	if !ok || v == nil {
		return nil
	}
	f := *v
	return &f
}
