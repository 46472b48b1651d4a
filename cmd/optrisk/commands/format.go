package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
	"github.com/wonny/optrisk/internal/risk"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// fixed rounds for display only (계산 값은 float64 그대로)
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// printHeader prints a titled block header
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
}

// printSeparator prints a visual separator
func printSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// printRow prints an aligned label/value line
func printRow(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-14s: %s\n", label, value)
}

// printRiskResult prints the six-field portfolio result
func printRiskResult(w io.Writer, res contracts.RiskResult, places int32) {
	printRow(w, "Total PV", fixed(res.TotalPV, places))
	printRow(w, "Total Delta", fixed(res.TotalDelta, places))
	printRow(w, "Total Gamma", fixed(res.TotalGamma, places))
	printRow(w, "Total Vega", fixed(res.TotalVega, places))
	printRow(w, "Total Theta", fixed(res.TotalTheta, places))
	printRow(w, "VaR 95% (1d)", fixed(res.ValueAtRisk95, places))
}

// printGreeks prints per-unit valuation including rho
func printGreeks(w io.Writer, g pricing.Greeks, places int32) {
	printRow(w, "PV", fixed(g.PV, places))
	printRow(w, "Delta", fixed(g.Delta, places))
	printRow(w, "Gamma", fixed(g.Gamma, places))
	printRow(w, "Vega", fixed(g.Vega, places))
	printRow(w, "Theta", fixed(g.Theta, places))
	printRow(w, "Rho", fixed(g.Rho, places))
}

// printReport prints the detailed breakdown after the summary
func printReport(w io.Writer, rep *risk.Report, places int32) {
	printRiskResult(w, rep.Result, places)
	printRow(w, "Total Rho", fixed(rep.TotalRho, places))
	printRow(w, "z / σ(P&L)", fixed(rep.VaR.ZScore, 3)+" / "+fixed(rep.VaR.StdDev, places))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Positions")
	printTable(w,
		[]string{"#", "Instrument", "Qty", "PV", "Delta", "Gamma", "Vega", "Theta"},
		[]int{3, 26, 6, 12, 10, 10, 12, 12},
		func(add func(...string)) {
			for _, p := range rep.Positions {
				add(fmt.Sprint(p.Index), p.Instrument.String(), fmt.Sprint(p.Quantity),
					fixed(p.Scaled.PV, places), fixed(p.Scaled.Delta, 4), fixed(p.Scaled.Gamma, 4),
					fixed(p.Scaled.Vega, 4), fixed(p.Scaled.Theta, 4))
			}
		})

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Exposures")
	printTable(w,
		[]string{"Asset", "Net Delta", "Spot", "Vol", "$ Delta", "Daily σ", "1d Std"},
		[]int{10, 12, 10, 8, 14, 10, 12},
		func(add func(...string)) {
			for _, e := range rep.Exposures {
				add(e.AssetID, fixed(e.NetDelta, 4), fixed(e.Spot, 2), fixed(e.Volatility, 4),
					fixed(e.DollarDelta, 4), fixed(e.DailyVolatility, 6), fixed(e.StdDev, places))
			}
		})
}

// printTable prints a header, a rule and the rows produced by fill
func printTable(w io.Writer, columns []string, widths []int, fill func(add func(...string))) {
	line := func(values []string) {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf("%-*s", widths[i], v)
		}
		fmt.Fprintln(w, "  "+strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(columns)
	total := 0
	for _, width := range widths {
		total += width + 2
	}
	fmt.Fprintln(w, "  "+strings.Repeat("─", total-2))
	fill(func(values ...string) { line(values) })
}
