package scoring

// Balance sheet labels. "Total Liabilities" is also a substring of
// "Total Liabilities and Equity"; statements are expected to list the
// liabilities total first.
const (
	LabelTotalCurrentAssets         = "Total Current Assets"
	LabelTotalNonCurrentAssets      = "Total Non-Current Assets"
	LabelTotalAssets                = "Total Assets"
	LabelTotalCurrentLiabilities    = "Total Current Liabilities"
	LabelTotalNonCurrentLiabilities = "Total Non-Current Liabilities"
	LabelTotalLiabilities           = "Total Liabilities"
	LabelTotalEquity                = "Total Equity"
	LabelTotalLiabilitiesAndEquity  = "Total Liabilities and Equity"
)

const (
	identityTolerance = 1.0
	identityPenalty   = 10.0
)

// BalanceMetrics are the balance sheet totals and the ratios derived from them.
type BalanceMetrics struct {
	TotalCurrentAssets         *float64 `json:"total_current_assets"`
	TotalNonCurrentAssets      *float64 `json:"total_non_current_assets"`
	TotalAssets                *float64 `json:"total_assets"`
	TotalCurrentLiabilities    *float64 `json:"total_current_liabilities"`
	TotalNonCurrentLiabilities *float64 `json:"total_non_current_liabilities"`
	TotalLiabilities           *float64 `json:"total_liabilities"`
	TotalEquity                *float64 `json:"total_equity"`
	TotalLiabilitiesAndEquity  *float64 `json:"total_liabilities_and_equity"`

	CurrentRatio   *float64 `json:"current_ratio"`
	DebtToAssets   *float64 `json:"debt_to_assets"`
	EquityToAssets *float64 `json:"equity_to_assets"`

	// BalanceIdentityError is assets minus liabilities and equity. Nonzero
	// values point at an inconsistent statement or an extraction miss.
	BalanceIdentityError *float64 `json:"balance_identity_error"`
}

// AnalyzeBalanceSheet extracts the eight balance sheet totals and derives
// liquidity and leverage ratios.
func AnalyzeBalanceSheet(text string) BalanceMetrics {
	b := BalanceMetrics{
		TotalCurrentAssets:         lastValue(text, LabelTotalCurrentAssets),
		TotalNonCurrentAssets:      lastValue(text, LabelTotalNonCurrentAssets),
		TotalAssets:                lastValue(text, LabelTotalAssets),
		TotalCurrentLiabilities:    lastValue(text, LabelTotalCurrentLiabilities),
		TotalNonCurrentLiabilities: lastValue(text, LabelTotalNonCurrentLiabilities),
		TotalLiabilities:           lastValue(text, LabelTotalLiabilities),
		TotalEquity:                lastValue(text, LabelTotalEquity),
		TotalLiabilitiesAndEquity:  lastValue(text, LabelTotalLiabilitiesAndEquity),
	}

	b.CurrentRatio = safeDiv(b.TotalCurrentAssets, b.TotalCurrentLiabilities)
	b.DebtToAssets = safeDiv(b.TotalLiabilities, b.TotalAssets)
	b.EquityToAssets = safeDiv(b.TotalEquity, b.TotalAssets)
	b.BalanceIdentityError = change(b.TotalLiabilitiesAndEquity, b.TotalAssets)

	return b
}

// lastValue takes the last value on the label's line, so a leading note
// number before the amount is ignored.
func lastValue(text, label string) *float64 {
	vals := FindValuesOnLine(text, label)
	if len(vals) == 0 {
		return nil
	}
	return ptr(vals[len(vals)-1])
}
