package scoring

import "math"

// DocumentComponentScores are the three 0-100 sub-scores derived from the statements.
type DocumentComponentScores struct {
	CashFlowVolatilityProxyScore float64 `json:"cash_flow_volatility_proxy_score"`
	ProfitabilityTrendScore      float64 `json:"profitability_trend_score"`
	BalanceSheetStrengthScore    float64 `json:"balance_sheet_strength_score"`
}

// ScoreDocuments converts statement metrics into the volatility,
// profitability/trend and balance strength sub-scores. Every missing input
// falls back to NeutralScore for the smallest affected part.
func ScoreDocuments(income IncomeMetrics, balance BalanceMetrics) DocumentComponentScores {
	return DocumentComponentScores{
		CashFlowVolatilityProxyScore: round2(clampScore(volatilityScore(income))),
		ProfitabilityTrendScore:      round2(clampScore(profitabilityTrendScore(income))),
		BalanceSheetStrengthScore:    round2(clampScore(balanceStrengthScore(balance))),
	}
}

// volatilityScore prefers net income, then operating income, then sales.
func volatilityScore(income IncomeMetrics) float64 {
	proxy := income.NetIncomeVolatilityProxy
	if proxy == nil {
		proxy = income.OperatingIncomeVolatilityProxy
	}
	if proxy == nil {
		proxy = income.SalesVolatilityProxy
	}
	if proxy == nil {
		return NeutralScore
	}
	return clampScore(100 - *proxy*100)
}

func profitabilityTrendScore(income IncomeMetrics) float64 {
	margin := NeutralScore
	if income.NetMarginLatest != nil {
		margin = marginScore(*income.NetMarginLatest)
	}

	delta := NeutralScore
	if ratio := safeDiv(income.NetIncome.Delta, income.TotalSales.Latest); ratio != nil {
		delta = deltaScore(*ratio)
	}

	return 0.60*margin + 0.40*delta
}

// marginScore grades the latest net margin.
func marginScore(nm float64) float64 {
	switch {
	case nm <= 0:
		return 30
	case nm < 0.05:
		return lerp(nm, 0, 0.05, 30, 60)
	case nm < 0.10:
		return lerp(nm, 0.05, 0.10, 60, 80)
	case nm < 0.20:
		return lerp(nm, 0.10, 0.20, 80, 95)
	default:
		return 95
	}
}

// deltaScore grades the net income change relative to latest sales.
func deltaScore(ratio float64) float64 {
	switch {
	case ratio <= -0.05:
		return 20
	case ratio < 0:
		return lerp(ratio, -0.05, 0, 20, 50)
	case ratio < 0.05:
		return lerp(ratio, 0, 0.05, 50, 80)
	case ratio < 0.10:
		return lerp(ratio, 0.05, 0.10, 80, 95)
	default:
		return 95
	}
}

func balanceStrengthScore(balance BalanceMetrics) float64 {
	cr := NeutralScore
	if balance.CurrentRatio != nil {
		cr = currentRatioScore(*balance.CurrentRatio)
	}

	da := NeutralScore
	if balance.DebtToAssets != nil {
		da = debtToAssetsScore(*balance.DebtToAssets)
	}

	penalty := 0.0
	if balance.BalanceIdentityError != nil && math.Abs(*balance.BalanceIdentityError) > identityTolerance {
		penalty = identityPenalty
	}

	return math.Max(0, 0.55*cr+0.45*da-penalty)
}

func currentRatioScore(cr float64) float64 {
	switch {
	case cr < 1.0:
		return 35 + cr*15
	case cr < 1.5:
		return lerp(cr, 1.0, 1.5, 50, 70)
	case cr < 2.0:
		return lerp(cr, 1.5, 2.0, 70, 85)
	case cr < 3.0:
		return lerp(cr, 2.0, 3.0, 85, 95)
	default:
		return 95
	}
}

// debtToAssetsScore is inverted: lower leverage scores higher.
func debtToAssetsScore(da float64) float64 {
	switch {
	case da <= 0.2:
		return 90
	case da <= 0.4:
		return lerp(da, 0.2, 0.4, 90, 70)
	case da <= 0.6:
		return lerp(da, 0.4, 0.6, 70, 45)
	case da <= 0.8:
		return lerp(da, 0.6, 0.8, 45, 25)
	default:
		return 20
	}
}

// DisplayValues is the document summary shown after an upload.
type DisplayValues struct {
	DocCashFlowVolatility     float64 `json:"doc_cash_flow_volatility"`
	DocStrengthProfitability  float64 `json:"doc_strength_profitability"`
	ProfitabilityTrendScore   float64 `json:"profitability_trend_score"`
	BalanceSheetStrengthScore float64 `json:"balance_sheet_strength_score"`
}

// Display condenses the component scores: strength/profitability is the mean
// of the profitability and balance strength scores.
func (c DocumentComponentScores) Display() DisplayValues {
	return DisplayValues{
		DocCashFlowVolatility:     round2(c.CashFlowVolatilityProxyScore),
		DocStrengthProfitability:  round2((c.ProfitabilityTrendScore + c.BalanceSheetStrengthScore) / 2.0),
		ProfitabilityTrendScore:   c.ProfitabilityTrendScore,
		BalanceSheetStrengthScore: c.BalanceSheetStrengthScore,
	}
}
