package export_test

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"retaildash/aggregation"
	"retaildash/export"
	"retaildash/generator"
	"retaildash/model"

	"github.com/shopspring/decimal"
)

func TestWriteTable(t *testing.T) {
	table := export.Table{
		Name:   "sample",
		Header: []string{"name", "value"},
		Rows:   [][]string{{"a, b", "1"}, {"c", export.NotApplicable}},
	}

	t.Run("without BOM", func(t *testing.T) {
		var buf bytes.Buffer
		if err := export.WriteTable(&buf, table, false); err != nil {
			t.Fatalf("WriteTable failed: %v", err)
		}
		want := "name,value\n\"a, b\",1\nc,N/A\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})

	t.Run("with BOM", func(t *testing.T) {
		var buf bytes.Buffer
		if err := export.WriteTable(&buf, table, true); err != nil {
			t.Fatalf("WriteTable failed: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF, 'n'}) {
			t.Errorf("expected output to start with a BOM, got %q", buf.Bytes()[:4])
		}
	})

	t.Run("ragged row", func(t *testing.T) {
		bad := table
		bad.Rows = [][]string{{"only one"}}
		if err := export.WriteTable(&bytes.Buffer{}, bad, false); err == nil {
			t.Error("expected an error for a short row, got nil")
		}
	})
}

func generatedReport(t *testing.T) (model.Dataset, *aggregation.Report) {
	t.Helper()
	ds, err := generator.Generate(generator.DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	r, err := aggregation.Compute(ds, aggregation.DefaultOptions())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	return ds, r
}

func TestTables_NamesAndShape(t *testing.T) {
	_, r := generatedReport(t)
	want := []string{
		"instock_by_gym", "weeks_of_supply", "margin_by_category", "margin_by_vendor",
		"sales_by_category", "sales_by_region", "monthly_trend", "monthly_category_units",
		"vendor_scorecard", "po_pipeline_status", "po_pipeline_monthly", "aged_inventory",
		"overstock_by_category", "slow_movers_by_vendor", "allocation_by_gym", "allocation_positions",
		"region_stock_status", "top_sellers", "bottom_sellers", "deep_dive_products", "kpis",
	}
	tables := export.Tables(r)
	if len(tables) != len(want) {
		t.Fatalf("expected %d tables, got %d", len(want), len(tables))
	}
	for i, tbl := range tables {
		if tbl.Name != want[i] {
			t.Errorf("table %d: expected %s, got %s", i, want[i], tbl.Name)
		}
		for j, row := range tbl.Rows {
			if len(row) != len(tbl.Header) {
				t.Errorf("%s row %d: expected %d cells, got %d", tbl.Name, j, len(tbl.Header), len(row))
			}
		}
	}

	monthly, ok := export.Lookup(tables, "monthly_trend")
	if !ok || len(monthly.Rows) != 12 {
		t.Errorf("expected 12 monthly rows")
	}
	if _, ok := export.Lookup(tables, "nope"); ok {
		t.Error("expected Lookup to miss an unknown table")
	}
}

func TestTables_NotApplicableAndInfinite(t *testing.T) {
	r := &aggregation.Report{
		InStockByGym: []model.GymInStock{{GymID: "G1", GymName: "Empty", Region: "West"}},
		SupplyPositions: []model.SupplyPosition{
			{SKU: "A", GymID: "G1", OnHand: 5, Infinite: true, Overstock: true, Status: model.StatusOverstock},
			{SKU: "B", GymID: "G1", OnHand: 8, TrailingUnits: 12, AvgWeeklySales: 1,
				WeeksOfSupply: sql.NullFloat64{Float64: 8, Valid: true}, Status: model.StatusInStock,
				ValueAtCost: decimal.RequireFromString("40"), ValueAtRetail: decimal.RequireFromString("80")},
		},
	}
	tables := export.Tables(r)

	instock, _ := export.Lookup(tables, "instock_by_gym")
	if got := instock.Rows[0][5]; got != "N/A" {
		t.Errorf("expected N/A in-stock rate, got %q", got)
	}

	supply, _ := export.Lookup(tables, "weeks_of_supply")
	if got := supply.Rows[0][9]; got != "inf" {
		t.Errorf("expected inf weeks of supply, got %q", got)
	}
	if got := supply.Rows[1][9]; got != "8.0" {
		t.Errorf("expected 8.0 weeks of supply, got %q", got)
	}
	if got := supply.Rows[1][12]; got != "40.00" {
		t.Errorf("expected 40.00 value at cost, got %q", got)
	}

	kpis, _ := export.Lookup(tables, "kpis")
	for _, row := range kpis.Rows {
		if row[0] == "gross_margin_pct" && row[1] != "N/A" {
			t.Errorf("expected N/A gross margin for an empty report, got %q", row[1])
		}
	}
}

func TestWriteTables(t *testing.T) {
	ds, r := generatedReport(t)
	dir := t.TempDir()

	raw, err := export.WriteTables(filepath.Join(dir, "data"), export.RawTables(ds), false)
	if err != nil {
		t.Fatalf("WriteTables failed: %v", err)
	}
	if len(raw) != 7 {
		t.Errorf("expected 7 raw files, got %d", len(raw))
	}

	paths, err := export.WriteTables(filepath.Join(dir, "data"), export.Tables(r), true)
	if err != nil {
		t.Fatalf("WriteTables failed: %v", err)
	}
	b, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "\xEF\xBB\xBFgym_id,gym_name,region,pairs,in_stock_pairs,in_stock_rate\n") {
		t.Errorf("unexpected instock_by_gym.csv start: %q", string(b[:40]))
	}
}
