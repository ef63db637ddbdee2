package financial

import (
	"math"
	"sort"
)

// TopCategoriesLimit bounds the spend-by-category listing.
const TopCategoriesLimit = 5

// Summary aggregates the stored accounts and transactions of a user.
type Summary struct {
	Totals        Totals          `json:"totals"`
	MonthlySpend  []MonthlySpend  `json:"monthly_spend"`
	TopCategories []CategorySpend `json:"top_categories"`
}

// Totals are balance totals over depository accounts.
type Totals struct {
	CurrentBalance float64 `json:"current_balance"`
}

// MonthlySpend is the spend of one YYYY-MM month.
type MonthlySpend struct {
	Month string  `json:"month"`
	Spend float64 `json:"spend"`
}

// CategorySpend is the spend of one category. A nil Category collects
// uncategorised transactions.
type CategorySpend struct {
	Category *string `json:"category"`
	Spend    float64 `json:"spend"`
}

// Summarize computes the account summary. Only negative amounts count as
// spend, summed by absolute value. A transaction counts in full towards
// every category it lists. Months sort ascending; categories by spend
// descending, then by name with the uncategorised bucket last.
func Summarize(accounts []Account, txns []Transaction) Summary {
	var total float64
	for _, a := range accounts {
		if a.Type == "depository" && a.Current != nil {
			total += *a.Current
		}
	}

	months := map[string]float64{}
	categories := map[string]float64{}
	uncategorised, hasUncategorised := 0.0, false
	for _, t := range txns {
		if t.Amount >= 0 {
			continue
		}
		spend := math.Abs(t.Amount)
		months[yearMonth(t.Date)] += spend

		if len(t.Category) == 0 {
			uncategorised += spend
			hasUncategorised = true
			continue
		}
		for _, c := range t.Category {
			categories[c] += spend
		}
	}

	s := Summary{
		Totals:        Totals{CurrentBalance: total},
		MonthlySpend:  make([]MonthlySpend, 0, len(months)),
		TopCategories: make([]CategorySpend, 0, len(categories)+1),
	}
	for m, spend := range months {
		s.MonthlySpend = append(s.MonthlySpend, MonthlySpend{Month: m, Spend: spend})
	}
	sort.Slice(s.MonthlySpend, func(i, j int) bool { return s.MonthlySpend[i].Month < s.MonthlySpend[j].Month })

	for c, spend := range categories {
		name := c
		s.TopCategories = append(s.TopCategories, CategorySpend{Category: &name, Spend: spend})
	}
	if hasUncategorised {
		s.TopCategories = append(s.TopCategories, CategorySpend{Spend: uncategorised})
	}
	sort.Slice(s.TopCategories, func(i, j int) bool {
		a, b := s.TopCategories[i], s.TopCategories[j]
		if a.Spend != b.Spend {
			return a.Spend > b.Spend
		}
		if a.Category == nil || b.Category == nil {
			return b.Category == nil && a.Category != nil
		}
		return *a.Category < *b.Category
	})
	if len(s.TopCategories) > TopCategoriesLimit {
		s.TopCategories = s.TopCategories[:TopCategoriesLimit]
	}
	return s
}

// yearMonth is the YYYY-MM prefix of a YYYY-MM-DD date. Shorter dates are
// kept whole.
func yearMonth(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
