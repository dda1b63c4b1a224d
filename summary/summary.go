// Package summary prints the key findings of a run as plain text or
// Markdown.
package summary

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"retaildash/aggregation"
	"retaildash/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Config holds the alert thresholds, in percent, and the output
// directories named in the footer.
type Config struct {
	InStockAlert float64
	OTDAlert     float64
	ChartsDir    string
	DataDir      string
}

// DefaultConfig alerts below 80% in-stock and 85% on-time delivery.
func DefaultConfig() Config {
	return Config{InStockAlert: 80, OTDAlert: 85, ChartsDir: "output/charts", DataDir: "output/data"}
}

// Findings are the actionable items of a report.
type Findings struct {
	LowStockGyms   []model.GymInStock
	LateVendors    []model.VendorScore
	BestVendor     *model.VendorScore
	OverstockValue decimal.Decimal
}

// Analyze picks out gyms under the in-stock alert, vendors under the
// on-time alert and the best on-time vendor. NA rates never trigger alerts.
func Analyze(r *aggregation.Report, cfg Config) Findings {
	f := Findings{OverstockValue: r.KPIs.OverstockValue}
	for _, g := range r.InStockByGym {
		if g.Rate.Valid && g.Rate.Float64 < cfg.InStockAlert {
			f.LowStockGyms = append(f.LowStockGyms, g)
		}
	}
	for i, v := range r.VendorScorecard {
		if !v.OnTimeRate.Valid {
			continue
		}
		if f.BestVendor == nil {
			f.BestVendor = &r.VendorScorecard[i]
		}
		if v.OnTimeRate.Float64 < cfg.OTDAlert {
			f.LateVendors = append(f.LateVendors, v)
		}
	}
	return f
}

var printer = message.NewPrinter(language.English)

func money(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.InexactFloat64())
}

func pct(v sql.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v.Float64)
}

func months(r *aggregation.Report) int {
	n := 0
	for _, m := range r.MonthlyTrend {
		if m.Units > 0 {
			n++
		}
	}
	return n
}

// Write prints the summary as aligned plain text.
func Write(w io.Writer, r *aggregation.Report, cfg Config) error {
	k := r.KPIs
	f := Analyze(r, cfg)
	rule := strings.Repeat("=", 70)

	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(fmt.Sprintf("   %-33s %14s\n", label, value))
	}

	b.WriteString("\n" + rule + "\nSUMMARY OF KEY FINDINGS\n" + rule + "\n")

	// 1. Revenue and margin
	b.WriteString("\nREVENUE & MARGIN\n")
	line(fmt.Sprintf("Total Revenue (%d months):", months(r)), money(k.TotalRevenue))
	line("Total Cost of Goods Sold:", money(k.TotalCOGS))
	line("Gross Margin:", money(k.GrossMargin)+" ("+pct(k.GrossMarginPct)+")")
	if k.TopCategory != "" {
		line("Top Category:", k.TopCategory+" ("+money(k.TopCategoryRevenue)+")")
	}

	// 2. Inventory health
	b.WriteString("\nINVENTORY HEALTH\n")
	line("Total Inventory Value (at cost):", money(k.InventoryAtCost))
	line("Overall In-Stock Rate:", pct(k.InStockRate))
	line("Out-of-Stock SKU-Locations:", printer.Sprintf("%d", k.OutOfStockPairs))
	line("Overstock SKU-Locations:", printer.Sprintf("%d", k.OverstockPairs))

	// 3. Vendor performance
	b.WriteString("\nVENDOR PERFORMANCE\n")
	line("Overall On-Time Delivery:", pct(k.OnTimeRate))
	if f.BestVendor != nil {
		line("Best Performing Vendor:", f.BestVendor.VendorName+" ("+pct(f.BestVendor.OnTimeRate)+")")
	}
	line("Total PO Spend:", money(k.POSpend))

	// 4. Actionable insights
	b.WriteString("\nACTIONABLE INSIGHTS\n")
	if len(f.LowStockGyms) == 0 && len(f.LateVendors) == 0 && !f.OverstockValue.IsPositive() {
		b.WriteString("   No alerts.\n")
	}
	if len(f.LowStockGyms) > 0 {
		b.WriteString(fmt.Sprintf("   [!] %d gym(s) below %.0f%% in-stock rate: prioritize in next allocation\n", len(f.LowStockGyms), cfg.InStockAlert))
		for _, g := range f.LowStockGyms {
			b.WriteString(fmt.Sprintf("       -> %s: %s\n", g.GymName, pct(g.Rate)))
		}
	}
	if f.OverstockValue.IsPositive() {
		b.WriteString(fmt.Sprintf("   [~] %s in overstock inventory: review for markdowns or transfers\n", money(f.OverstockValue)))
	}
	if len(f.LateVendors) > 0 {
		b.WriteString(fmt.Sprintf("   [!] %d vendor(s) below %.0f%% on-time delivery:\n", len(f.LateVendors), cfg.OTDAlert))
		for _, v := range f.LateVendors {
			b.WriteString(fmt.Sprintf("       -> %s: %s on-time\n", v.VendorName, pct(v.OnTimeRate)))
		}
	}

	b.WriteString("\n" + rule + "\n")
	if cfg.ChartsDir != "" {
		b.WriteString("Charts saved to " + cfg.ChartsDir + "\n")
	}
	if cfg.DataDir != "" {
		b.WriteString("Data exports saved to " + cfg.DataDir + "\n")
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown writes the same findings as a Markdown document.
func Markdown(w io.Writer, r *aggregation.Report, cfg Config) error {
	k := r.KPIs
	f := Analyze(r, cfg)

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString("| " + label + " | " + value + " |\n")
	}
	table := func(title string) {
		b.WriteString("\n## " + title + "\n\n| Metric | Value |\n|---|---:|\n")
	}

	b.WriteString("# Summary of Key Findings\n\n")
	b.WriteString("As of " + r.Options.AsOf.Format(model.DateLayout) + "\n")

	table("Revenue & Margin")
	row(fmt.Sprintf("Total revenue (%d months)", months(r)), money(k.TotalRevenue))
	row("Cost of goods sold", money(k.TotalCOGS))
	row("Gross margin", money(k.GrossMargin)+" ("+pct(k.GrossMarginPct)+")")
	if k.TopCategory != "" {
		row("Top category", k.TopCategory+" ("+money(k.TopCategoryRevenue)+")")
	}

	table("Inventory Health")
	row("Inventory value at cost", money(k.InventoryAtCost))
	row("In-stock rate", pct(k.InStockRate))
	row("Out-of-stock SKU-locations", printer.Sprintf("%d", k.OutOfStockPairs))
	row("Overstock SKU-locations", printer.Sprintf("%d", k.OverstockPairs))

	table("Vendor Performance")
	row("On-time delivery", pct(k.OnTimeRate))
	if f.BestVendor != nil {
		row("Best vendor", f.BestVendor.VendorName+" ("+pct(f.BestVendor.OnTimeRate)+")")
	}
	row("PO spend", money(k.POSpend))

	b.WriteString("\n## Actionable Insights\n\n")
	if len(f.LowStockGyms) == 0 && len(f.LateVendors) == 0 && !f.OverstockValue.IsPositive() {
		b.WriteString("No alerts.\n")
	}
	if len(f.LowStockGyms) > 0 {
		b.WriteString(fmt.Sprintf("- %d gym(s) below %.0f%% in-stock rate:\n", len(f.LowStockGyms), cfg.InStockAlert))
		for _, g := range f.LowStockGyms {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", g.GymName, pct(g.Rate)))
		}
	}
	if f.OverstockValue.IsPositive() {
		b.WriteString(fmt.Sprintf("- %s in overstock inventory\n", money(f.OverstockValue)))
	}
	if len(f.LateVendors) > 0 {
		b.WriteString(fmt.Sprintf("- %d vendor(s) below %.0f%% on-time delivery:\n", len(f.LateVendors), cfg.OTDAlert))
		for _, v := range f.LateVendors {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", v.VendorName, pct(v.OnTimeRate)))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
