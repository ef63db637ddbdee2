package financial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionID(t *testing.T) {
	a := TransactionID("user-1", "acc-1", "2026-01-02", "Netflix", 15.99)
	b := TransactionID("user-1", "acc-1", "2026-01-02", "Netflix", 15.99)
	c := TransactionID("user-1", "acc-1", "2026-01-02", "Netflix", 16.99)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestSummarize(t *testing.T) {
	balance := func(v float64) *float64 { return &v }
	accounts := []Account{
		{ID: "chk", Type: "depository", Current: balance(1200.50)},
		{ID: "sav", Type: "depository", Current: balance(300)},
		{ID: "nobal", Type: "depository"},
		{ID: "card", Type: "credit", Current: balance(999)},
	}
	txns := []Transaction{
		{ID: "1", Amount: -50, Date: "2026-02-03", Category: []string{"Food", "Groceries"}},
		{ID: "2", Amount: -20, Date: "2026-02-18", Category: []string{"Food"}},
		{ID: "3", Amount: -100, Date: "2026-01-15", Category: []string{"Rent"}},
		{ID: "4", Amount: 2500, Date: "2026-03-01", Category: []string{"Payroll"}},
		{ID: "5", Amount: -5, Date: "2026-01-20"},
		{ID: "6", Amount: -7, Date: "", Category: []string{}},
		{ID: "7", Amount: -1, Date: "2026-01-21", Category: []string{"Travel"}},
		{ID: "8", Amount: -1, Date: "2026-01-22", Category: []string{"Coffee"}},
	}

	s := Summarize(accounts, txns)

	t.Run("current balance over depository accounts", func(t *testing.T) {
		assert.InDelta(t, 1500.50, s.Totals.CurrentBalance, 0.001)
	})

	t.Run("monthly spend groups negative amounts by month", func(t *testing.T) {
		require.Len(t, s.MonthlySpend, 3, "the income-only month is absent")
		assert.Equal(t, "", s.MonthlySpend[0].Month, "undated spend has its own bucket")
		assert.InDelta(t, 7, s.MonthlySpend[0].Spend, 0.001)
		assert.Equal(t, "2026-01", s.MonthlySpend[1].Month)
		assert.InDelta(t, 107, s.MonthlySpend[1].Spend, 0.001)
		assert.Equal(t, "2026-02", s.MonthlySpend[2].Month)
		assert.InDelta(t, 70, s.MonthlySpend[2].Spend, 0.001)
	})

	t.Run("top five categories by spend", func(t *testing.T) {
		require.Len(t, s.TopCategories, TopCategoriesLimit)
		names := make([]string, 0, len(s.TopCategories))
		for _, c := range s.TopCategories {
			if c.Category == nil {
				names = append(names, "<none>")
				continue
			}
			names = append(names, *c.Category)
		}
		assert.Equal(t, []string{"Rent", "Food", "Groceries", "<none>", "Coffee"}, names)
		assert.InDelta(t, 70, s.TopCategories[1].Spend, 0.001)
		assert.InDelta(t, 12, s.TopCategories[3].Spend, 0.001)
	})
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Zero(t, s.Totals.CurrentBalance)
	assert.NotNil(t, s.MonthlySpend)
	assert.Empty(t, s.MonthlySpend)
	assert.NotNil(t, s.TopCategories)
	assert.Empty(t, s.TopCategories)
}

func TestSummarize_UncategorisedSortsLastOnTies(t *testing.T) {
	s := Summarize(nil, []Transaction{
		{Amount: -10, Date: "2026-01-01"},
		{Amount: -10, Date: "2026-01-02", Category: []string{"Zoo"}},
	})
	require.Len(t, s.TopCategories, 2)
	require.NotNil(t, s.TopCategories[0].Category)
	assert.Equal(t, "Zoo", *s.TopCategories[0].Category)
	assert.Nil(t, s.TopCategories[1].Category)
}
