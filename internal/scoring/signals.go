package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Per-factor caps of the financial accounts score.
const (
	InvestmentsCap    = 30.0
	RecurringCap      = 25.0
	DiversityCap      = 15.0
	BalanceCap        = 10.0
	PaymentHistoryCap = 20.0
)

const (
	minRecurringMatches   = 3
	minHistoryTransaction = 10
	balancePerPoint       = 10000.0
)

var recurringKeywords = []string{
	"phone", "rent", "subscription", "netflix", "spotify", "utilities",
	"electric", "water", "internet", "cable", "insurance",
}

// Transaction is a bank transaction as supplied by the aggregation provider.
// Only the first Category entry is considered.
type Transaction struct {
	Amount       float64  `json:"amount"`
	Name         string   `json:"name"`
	MerchantName string   `json:"merchant_name"`
	Category     []string `json:"category"`
	Date         string   `json:"date"`
}

// Balances holds the optional balance figures of an account.
type Balances struct {
	Available *float64 `json:"available"`
	Current   *float64 `json:"current"`
}

// Account is a linked bank account.
type Account struct {
	ID       string   `json:"account_id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Subtype  string   `json:"subtype"`
	Balances Balances `json:"balances"`
}

// Holding is one investment position. Only the count of holdings is scored.
type Holding struct {
	AccountID  string   `json:"account_id"`
	SecurityID string   `json:"security_id"`
	Quantity   float64  `json:"quantity"`
	Value      *float64 `json:"institution_value"`
}

// Investments is the holdings snapshot. A nil *Investments means no data.
type Investments struct {
	Holdings []Holding `json:"holdings"`
	Accounts []Account `json:"accounts"`
}

// SignalInput groups the records consumed by ScoreFinancialAccounts.
type SignalInput struct {
	Transactions []Transaction
	Accounts     []Account
	Investments  *Investments
}

// FinancialAccountsResult is the financial accounts score and one
// human-readable line per factor that contributed to it.
type FinancialAccountsResult struct {
	Score   float64  `json:"score"`
	Factors []string `json:"factors"`
}

// ScoreFinancialAccounts sums the investments, recurring payments, account
// diversity/balance and payment history factors, each capped, and clamps the
// total to [0, 100].
func ScoreFinancialAccounts(in SignalInput) FinancialAccountsResult {
	score := 0.0
	factors := []string{}

	if inv := in.Investments; inv != nil && (len(inv.Holdings) > 0 || len(inv.Accounts) > 0) {
		s := investmentsScore(len(inv.Accounts), len(inv.Holdings))
		score += s
		factors = append(factors, fmt.Sprintf("Investments: %.1f/%.0f", s, InvestmentsCap))
	}

	if n := countRecurring(in.Transactions); n >= minRecurringMatches {
		s := math.Min(RecurringCap, 15+math.Min(10, float64(n)*0.5))
		score += s
		factors = append(factors, fmt.Sprintf("Recurring payments: %.1f/%.0f (%d transactions)", s, RecurringCap, n))
	}

	if len(in.Accounts) > 0 {
		diversity, balance := accountsScore(in.Accounts)
		score += diversity + balance
		factors = append(factors, fmt.Sprintf("Account diversity: %.1f/%.0f, Balance: %.1f/%.0f",
			diversity, DiversityCap, balance, BalanceCap))
	}

	if len(in.Transactions) >= minHistoryTransaction && countDated(in.Transactions) >= minHistoryTransaction {
		s := math.Min(PaymentHistoryCap, float64(len(in.Transactions))/5)
		score += s
		factors = append(factors, fmt.Sprintf("Payment history: %.1f/%.0f", s, PaymentHistoryCap))
	}

	return FinancialAccountsResult{
		Score:   clampScore(score),
		Factors: factors,
	}
}

func investmentsScore(accounts, holdings int) float64 {
	return math.Min(InvestmentsCap, float64(accounts)*5+math.Min(15, float64(holdings)*2))
}

// IsRecurring reports whether a transaction looks like a recurring bill.
func IsRecurring(t Transaction) bool {
	fields := []string{strings.ToLower(t.Name), strings.ToLower(t.MerchantName)}
	if len(t.Category) > 0 {
		fields = append(fields, strings.ToLower(t.Category[0]))
	}
	for _, kw := range recurringKeywords {
		for _, f := range fields {
			if strings.Contains(f, kw) {
				return true
			}
		}
	}
	return false
}

func countRecurring(txns []Transaction) int {
	n := 0
	for _, t := range txns {
		if IsRecurring(t) {
			n++
		}
	}
	return n
}

func countDated(txns []Transaction) int {
	n := 0
	for _, t := range txns {
		if t.Date != "" {
			n++
		}
	}
	return n
}

// accountsScore returns the diversity and balance parts. The balance part uses
// the current balance, falling back to available when current is absent or
// zero. A negative total yields a negative balance part.
func accountsScore(accounts []Account) (diversity, balance float64) {
	kinds := make(map[string]struct{}, len(accounts))
	total := 0.0
	for _, a := range accounts {
		kinds[a.Type+"_"+a.Subtype] = struct{}{}
		total += balanceOf(a.Balances)
	}
	diversity = math.Min(DiversityCap, float64(len(kinds))*3)
	balance = math.Min(BalanceCap, total/balancePerPoint)
	return diversity, balance
}

func balanceOf(b Balances) float64 {
	if b.Current != nil && *b.Current != 0 {
		return *b.Current
	}
	if b.Available != nil {
		return *b.Available
	}
	return 0
}
