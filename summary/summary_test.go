package summary_test

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"

	"retaildash/aggregation"
	"retaildash/model"
	"retaildash/summary"

	"github.com/shopspring/decimal"
)

func rate(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}

func sampleReport() *aggregation.Report {
	return &aggregation.Report{
		Options: aggregation.Options{AsOf: model.MustDate("2026-01-31")},
		InStockByGym: []model.GymInStock{
			{GymID: "G2", GymName: "Fremont", Rate: rate(75)},
			{GymID: "G1", GymName: "Oakland", Rate: rate(92.5)},
			{GymID: "G3", GymName: "Empty"},
		},
		VendorScorecard: []model.VendorScore{
			{VendorID: "V2", VendorName: "Black Diamond", OnTimeRate: rate(95)},
			{VendorID: "V1", VendorName: "La Sportiva", OnTimeRate: rate(80)},
			{VendorID: "V3", VendorName: "New Vendor"},
		},
		KPIs: model.KPIs{
			TotalRevenue:   decimal.RequireFromString("1234567.891"),
			GrossMarginPct: rate(48.2),
			OverstockValue: decimal.RequireFromString("2500"),
			OnTimeRate:     rate(88),
			TopCategory:    "Climbing Shoes",
		},
	}
}

func TestAnalyze(t *testing.T) {
	f := summary.Analyze(sampleReport(), summary.DefaultConfig())
	if len(f.LowStockGyms) != 1 || f.LowStockGyms[0].GymID != "G2" {
		t.Errorf("expected only G2 below the in-stock alert, got %+v", f.LowStockGyms)
	}
	if len(f.LateVendors) != 1 || f.LateVendors[0].VendorID != "V1" {
		t.Errorf("expected only V1 below the on-time alert, got %+v", f.LateVendors)
	}
	if f.BestVendor == nil || f.BestVendor.VendorID != "V2" {
		t.Errorf("expected V2 as best vendor, got %+v", f.BestVendor)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := summary.Write(&buf, sampleReport(), summary.DefaultConfig()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"SUMMARY OF KEY FINDINGS",
		"$1,234,567.89",
		"(48.2%)",
		"Climbing Shoes",
		"Black Diamond (95.0%)",
		"1 gym(s) below 80% in-stock rate",
		"-> Fremont: 75.0%",
		"$2,500.00 in overstock inventory",
		"1 vendor(s) below 85% on-time delivery",
		"-> La Sportiva: 80.0% on-time",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(out, "Empty") || strings.Contains(out, "New Vendor") {
		t.Error("expected NA rates not to trigger alerts")
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	cfg := summary.DefaultConfig()
	cfg.InStockAlert = 50
	cfg.OTDAlert = 50
	r := sampleReport()
	r.KPIs.OverstockValue = decimal.Zero
	if err := summary.Markdown(&buf, r, cfg); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"# Summary of Key Findings", "As of 2026-01-31", "| In-stock rate | n/a |", "No alerts."} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q", want)
		}
	}
}
