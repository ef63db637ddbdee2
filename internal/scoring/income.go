package scoring

// Income statement labels, matched case-insensitively against statement lines.
const (
	LabelTotalSales             = "Total Sales"
	LabelTotalExpenses          = "Total Expenses"
	LabelOperatingIncome        = "Operating Income"
	LabelTotalNonOperatingGains = "Total Non-Operating Gains"
	LabelNetIncome              = "Net Income"
)

// The income statement is read as a fixed two-column layout. These labels are
// not detected from the document header.
const (
	PriorYearLabel  = "2003"
	LatestYearLabel = "2004"
)

// LineItem is one income statement row across the two reported years.
type LineItem struct {
	Prev   *float64 `json:"prev"`
	Latest *float64 `json:"latest"`
	Delta  *float64 `json:"delta"`
}

// IncomeMetrics are the year-over-year figures and ratios read from an income statement.
type IncomeMetrics struct {
	PrevYear   string `json:"prev_year"`
	LatestYear string `json:"latest_year"`

	TotalSales             LineItem `json:"total_sales"`
	TotalExpenses          LineItem `json:"total_expenses"`
	OperatingIncome        LineItem `json:"operating_income"`
	TotalNonOperatingGains LineItem `json:"total_non_operating_gains"`
	NetIncome              LineItem `json:"net_income"`

	SalesVolatilityProxy           *float64 `json:"sales_volatility_proxy"`
	OperatingIncomeVolatilityProxy *float64 `json:"operating_income_volatility_proxy"`
	NetIncomeVolatilityProxy       *float64 `json:"net_income_volatility_proxy"`

	OperatingMarginLatest *float64 `json:"operating_margin_latest"`
	NetMarginLatest       *float64 `json:"net_margin_latest"`
}

// AnalyzeIncomeStatement extracts the five income lines and derives deltas,
// volatility proxies and latest-year margins. Missing lines leave the
// dependent metrics nil.
func AnalyzeIncomeStatement(text string) IncomeMetrics {
	m := IncomeMetrics{
		PrevYear:   PriorYearLabel,
		LatestYear: LatestYearLabel,

		TotalSales:             twoYear(text, LabelTotalSales),
		TotalExpenses:          twoYear(text, LabelTotalExpenses),
		OperatingIncome:        twoYear(text, LabelOperatingIncome),
		TotalNonOperatingGains: twoYear(text, LabelTotalNonOperatingGains),
		NetIncome:              twoYear(text, LabelNetIncome),
	}

	m.SalesVolatilityProxy = volatilityProxy(m.TotalSales.Prev, m.TotalSales.Latest)
	m.OperatingIncomeVolatilityProxy = volatilityProxy(m.OperatingIncome.Prev, m.OperatingIncome.Latest)
	m.NetIncomeVolatilityProxy = volatilityProxy(m.NetIncome.Prev, m.NetIncome.Latest)

	m.OperatingMarginLatest = safeDiv(m.OperatingIncome.Latest, m.TotalSales.Latest)
	m.NetMarginLatest = safeDiv(m.NetIncome.Latest, m.TotalSales.Latest)

	return m
}

// twoYear reads the first two values on the label's line as prior and latest year.
func twoYear(text, label string) LineItem {
	vals := FindValuesOnLine(text, label)
	if len(vals) < 2 {
		return LineItem{}
	}
	prev, latest := ptr(vals[0]), ptr(vals[1])
	return LineItem{
		Prev:   prev,
		Latest: latest,
		Delta:  change(prev, latest),
	}
}
