package scoring

import "math"

// Component weights in percent. They sum to 100.
const (
	WeightFinancialAccounts  = 40
	WeightAlternativeIncome  = 30
	WeightEducationLicenses  = 10
	WeightCashFlowVolatility = 20
)

// DefaultEducationScore is used when the caller supplies no education score.
const DefaultEducationScore = 75.0

// Component is one weighted entry of the breakdown.
type Component struct {
	Score                float64 `json:"score"`
	Weight               int     `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
}

// Breakdown lists the four weighted components by name.
type Breakdown struct {
	FinancialAccounts  Component `json:"financial_accounts"`
	AlternativeIncome  Component `json:"alternative_income"`
	EducationLicenses  Component `json:"education_licenses"`
	CashFlowVolatility Component `json:"cash_flow_volatility"`
}

// CreditScoreBreakdown is the final score with its itemized breakdown.
type CreditScoreBreakdown struct {
	CreditScore int       `json:"credit_score"`
	Breakdown   Breakdown `json:"breakdown"`
	Factors     []string  `json:"factors,omitempty"`
}

// AggregateInput carries the four sub-scores.
type AggregateInput struct {
	FinancialAccounts  float64
	AlternativeIncome  float64
	EducationLicenses  float64
	CashFlowVolatility float64
}

// AlternativeIncomeScore blends balance strength and profitability.
func AlternativeIncomeScore(c DocumentComponentScores) float64 {
	return 0.60*c.BalanceSheetStrengthScore + 0.40*c.ProfitabilityTrendScore
}

// Aggregate weighs the sub-scores into the final 0-100 credit score. The sum
// is clamped before rounding half away from zero, so 75.5 becomes 76.
func Aggregate(in AggregateInput) CreditScoreBreakdown {
	sum := (in.FinancialAccounts*WeightFinancialAccounts +
		in.AlternativeIncome*WeightAlternativeIncome +
		in.EducationLicenses*WeightEducationLicenses +
		in.CashFlowVolatility*WeightCashFlowVolatility) / 100

	return CreditScoreBreakdown{
		CreditScore: int(math.Round(clampScore(sum))),
		Breakdown: Breakdown{
			FinancialAccounts:  component(in.FinancialAccounts, WeightFinancialAccounts),
			AlternativeIncome:  component(in.AlternativeIncome, WeightAlternativeIncome),
			EducationLicenses:  component(in.EducationLicenses, WeightEducationLicenses),
			CashFlowVolatility: component(in.CashFlowVolatility, WeightCashFlowVolatility),
		},
	}
}

func component(score float64, weight int) Component {
	return Component{
		Score:                round2(score),
		Weight:               weight,
		WeightedContribution: round2(score * float64(weight) / 100),
	}
}

// Input is everything needed to compute a credit score in one call.
type Input struct {
	Transactions []Transaction
	Accounts     []Account
	Investments  *Investments

	// EducationScore defaults to DefaultEducationScore when nil.
	EducationScore *float64

	IncomeStatementText string
	BalanceSheetText    string
}

// Evaluation keeps the intermediate results next to the final breakdown.
type Evaluation struct {
	Income            IncomeMetrics
	Balance           BalanceMetrics
	Documents         DocumentComponentScores
	FinancialAccounts FinancialAccountsResult
	Result            CreditScoreBreakdown
}

// Evaluate runs the whole pipeline: statement analysis, document scoring,
// transaction signals and aggregation.
func Evaluate(in Input) Evaluation {
	income := AnalyzeIncomeStatement(in.IncomeStatementText)
	balance := AnalyzeBalanceSheet(in.BalanceSheetText)
	docs := ScoreDocuments(income, balance)
	fin := ScoreFinancialAccounts(SignalInput{
		Transactions: in.Transactions,
		Accounts:     in.Accounts,
		Investments:  in.Investments,
	})

	education := DefaultEducationScore
	if in.EducationScore != nil {
		education = *in.EducationScore
	}

	result := Aggregate(AggregateInput{
		FinancialAccounts:  fin.Score,
		AlternativeIncome:  AlternativeIncomeScore(docs),
		EducationLicenses:  education,
		CashFlowVolatility: docs.CashFlowVolatilityProxyScore,
	})
	result.Factors = fin.Factors

	return Evaluation{
		Income:            income,
		Balance:           balance,
		Documents:         docs,
		FinancialAccounts: fin,
		Result:            result,
	}
}

// ComputeCreditScore is Evaluate without the intermediates.
func ComputeCreditScore(in Input) CreditScoreBreakdown {
	return Evaluate(in).Result
}

// NeutralFallbacks reports the names of document metrics that were absent and
// fell back to NeutralScore.
func (e Evaluation) NeutralFallbacks() []string {
	var out []string
	if e.Income.NetIncomeVolatilityProxy == nil && e.Income.OperatingIncomeVolatilityProxy == nil &&
		e.Income.SalesVolatilityProxy == nil {
		out = append(out, "volatility_proxy")
	}
	if e.Income.NetMarginLatest == nil {
		out = append(out, "net_margin")
	}
	if safeDiv(e.Income.NetIncome.Delta, e.Income.TotalSales.Latest) == nil {
		out = append(out, "net_income_delta_ratio")
	}
	if e.Balance.CurrentRatio == nil {
		out = append(out, "current_ratio")
	}
	if e.Balance.DebtToAssets == nil {
		out = append(out, "debt_to_assets")
	}
	return out
}
