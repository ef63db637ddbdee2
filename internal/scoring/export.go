package scoring

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"statement_type", "year", "metric_key", "value"}

// WriteMetricsCSV writes the raw statement figures and the component scores
// as long-format CSV rows. Absent values are written as empty cells.
func WriteMetricsCSV(w io.Writer, income IncomeMetrics, balance BalanceMetrics, comps DocumentComponentScores) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	incomeRows := []struct {
		key  string
		item LineItem
	}{
		{"total_sales", income.TotalSales},
		{"total_expenses", income.TotalExpenses},
		{"operating_income", income.OperatingIncome},
		{"total_non_operating_gains", income.TotalNonOperatingGains},
		{"net_income", income.NetIncome},
	}
	for _, year := range []string{income.PrevYear, income.LatestYear} {
		for _, r := range incomeRows {
			v := r.item.Latest
			if year == income.PrevYear {
				v = r.item.Prev
			}
			if err := cw.Write([]string{"income_statement", year, r.key, formatOptional(v)}); err != nil {
				return err
			}
		}
	}

	balanceRows := []struct {
		key string
		v   *float64
	}{
		{"total_current_assets", balance.TotalCurrentAssets},
		{"total_non_current_assets", balance.TotalNonCurrentAssets},
		{"total_assets", balance.TotalAssets},
		{"total_current_liabilities", balance.TotalCurrentLiabilities},
		{"total_non_current_liabilities", balance.TotalNonCurrentLiabilities},
		{"total_liabilities", balance.TotalLiabilities},
		{"total_equity", balance.TotalEquity},
		{"total_liabilities_and_equity", balance.TotalLiabilitiesAndEquity},
	}
	for _, r := range balanceRows {
		if err := cw.Write([]string{"balance_sheet", "unknown", r.key, formatOptional(r.v)}); err != nil {
			return err
		}
	}

	scoreRows := []struct {
		key string
		v   float64
	}{
		{"cash_flow_volatility_proxy_score", comps.CashFlowVolatilityProxyScore},
		{"profitability_trend_score", comps.ProfitabilityTrendScore},
		{"balance_sheet_strength_score", comps.BalanceSheetStrengthScore},
	}
	for _, r := range scoreRows {
		if err := cw.Write([]string{"component_score", "", r.key, strconv.FormatFloat(r.v, 'f', -1, 64)}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
