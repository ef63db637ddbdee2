package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Transaction Signal Scorer Test Suite
// =============================================================================
// Justification: each factor has its own activation threshold and cap; the
// tests pin those individually and then check that the sum is clamped.

type SignalsSuite struct {
	suite.Suite
}

func TestSignalsSuite(t *testing.T) {
	suite.Run(t, new(SignalsSuite))
}

func plainTransactions(n int, dated bool) []Transaction {
	out := make([]Transaction, n)
	for i := range out {
		out[i] = Transaction{Amount: 12.5, Name: "Grocery", MerchantName: "Market"}
		if dated {
			out[i].Date = fmt.Sprintf("2024-01-%02d", i%28+1)
		}
	}
	return out
}

func billTransactions(n int) []Transaction {
	out := make([]Transaction, n)
	for i := range out {
		out[i] = Transaction{Amount: 15.99, Name: "NETFLIX.COM"}
	}
	return out
}

// =============================================================================
// Individual factors
// =============================================================================

func (s *SignalsSuite) TestNoData() {
	got := ScoreFinancialAccounts(SignalInput{})
	s.Zero(got.Score)
	s.Empty(got.Factors)
}

func (s *SignalsSuite) TestInvestments() {
	s.Run("accounts and holdings", func() {
		got := ScoreFinancialAccounts(SignalInput{Investments: &Investments{
			Accounts: make([]Account, 2),
			Holdings: make([]Holding, 3),
		}})
		s.InDelta(16, got.Score, 1e-9)
		s.Equal([]string{"Investments: 16.0/30"}, got.Factors)
	})

	s.Run("capped at 30", func() {
		got := ScoreFinancialAccounts(SignalInput{Investments: &Investments{
			Accounts: make([]Account, 5),
			Holdings: make([]Holding, 20),
		}})
		s.InDelta(30, got.Score, 1e-9)
	})

	s.Run("empty snapshot scores nothing", func() {
		got := ScoreFinancialAccounts(SignalInput{Investments: &Investments{}})
		s.Zero(got.Score)
		s.Empty(got.Factors)
	})
}

func (s *SignalsSuite) TestRecurringPayments() {
	s.Run("below threshold", func() {
		got := ScoreFinancialAccounts(SignalInput{Transactions: billTransactions(2)})
		s.Zero(got.Score)
	})

	s.Run("three matches", func() {
		got := ScoreFinancialAccounts(SignalInput{Transactions: billTransactions(3)})
		s.InDelta(16.5, got.Score, 1e-9)
		s.Equal([]string{"Recurring payments: 16.5/25 (3 transactions)"}, got.Factors)
	})

	s.Run("capped at 25", func() {
		// 40 undated bills: no payment history factor
		txns := billTransactions(40)
		got := ScoreFinancialAccounts(SignalInput{Transactions: txns})
		s.InDelta(25, got.Score, 1e-9)
	})

	s.Run("matches merchant and first category", func() {
		s.True(IsRecurring(Transaction{MerchantName: "Spotify USA"}))
		s.True(IsRecurring(Transaction{Name: "ACH", Category: []string{"Utilities", "Gas"}}))
		s.False(IsRecurring(Transaction{Name: "ACH", Category: []string{"Transfer", "Insurance"}}))
		s.False(IsRecurring(Transaction{Name: "Grocery"}))
	})
}

func (s *SignalsSuite) TestAccounts() {
	s.Run("diversity and balance", func() {
		accounts := []Account{
			{Type: "depository", Subtype: "checking", Balances: Balances{Current: ptr(5000)}},
			{Type: "depository", Subtype: "savings", Balances: Balances{Available: ptr(3000)}},
			{Type: "depository", Subtype: "savings", Balances: Balances{Current: ptr(0), Available: ptr(2000)}},
		}
		got := ScoreFinancialAccounts(SignalInput{Accounts: accounts})
		s.InDelta(6+1.0, got.Score, 1e-9)
		s.Equal([]string{"Account diversity: 6.0/15, Balance: 1.0/10"}, got.Factors)
	})

	s.Run("caps", func() {
		accounts := make([]Account, 0, 6)
		for i := 0; i < 6; i++ {
			accounts = append(accounts, Account{
				Type:     "depository",
				Subtype:  fmt.Sprintf("kind-%d", i),
				Balances: Balances{Current: ptr(50000)},
			})
		}
		got := ScoreFinancialAccounts(SignalInput{Accounts: accounts})
		s.InDelta(15+10, got.Score, 1e-9)
	})

	s.Run("negative balance reduces the factor", func() {
		accounts := []Account{{Type: "credit", Subtype: "credit card", Balances: Balances{Current: ptr(-20000)}}}
		diversity, balance := accountsScore(accounts)
		s.InDelta(3, diversity, 1e-9)
		s.InDelta(-2, balance, 1e-9)
	})
}

func (s *SignalsSuite) TestPaymentHistory() {
	s.Run("twelve dated transactions", func() {
		got := ScoreFinancialAccounts(SignalInput{Transactions: plainTransactions(12, true)})
		s.InDelta(2.4, got.Score, 1e-9)
		s.Equal([]string{"Payment history: 2.4/20"}, got.Factors)
	})

	s.Run("too few dated transactions", func() {
		txns := plainTransactions(10, true)
		txns[0].Date = ""
		got := ScoreFinancialAccounts(SignalInput{Transactions: txns})
		s.Zero(got.Score)
	})

	s.Run("capped at 20", func() {
		got := ScoreFinancialAccounts(SignalInput{Transactions: plainTransactions(150, true)})
		s.InDelta(20, got.Score, 1e-9)
	})
}

// =============================================================================
// Combined
// =============================================================================

func (s *SignalsSuite) TestAllFactorsClampToHundred() {
	accounts := make([]Account, 0, 5)
	for i := 0; i < 5; i++ {
		accounts = append(accounts, Account{Type: "t", Subtype: fmt.Sprint(i), Balances: Balances{Current: ptr(100000)}})
	}
	txns := billTransactions(100)
	for i := range txns {
		txns[i].Date = "2024-02-01"
	}

	got := ScoreFinancialAccounts(SignalInput{
		Transactions: txns,
		Accounts:     accounts,
		Investments:  &Investments{Accounts: accounts, Holdings: make([]Holding, 10)},
	})
	s.InDelta(100, got.Score, 1e-9)
	s.Len(got.Factors, 4)
}
