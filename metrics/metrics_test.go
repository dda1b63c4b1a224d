package metrics_test

import (
	"database/sql"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"retaildash/metrics"
	"retaildash/model"

	"github.com/shopspring/decimal"
)

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := metrics.NewRecorder("retaildash")
	rec.ObserveStage("aggregate", 1500*time.Millisecond)
	if err := rec.Time("export", func() error { return nil }); err != nil {
		t.Fatalf("Time returned %v", err)
	}
	rec.ObserveDataset(model.Dataset{
		Gyms:           make([]model.GymLocation, 3),
		PurchaseOrders: []model.PurchaseOrder{{Lines: make([]model.POLine, 2)}, {Lines: make([]model.POLine, 1)}},
	})
	rec.ObserveKPIs(model.KPIs{
		TotalRevenue: decimal.RequireFromString("1000.50"),
		InStockRate:  sql.NullFloat64{Float64: 87.5, Valid: true},
		Pairs:        40,
	})

	dir := filepath.Join(t.TempDir(), "metrics")
	path, err := rec.WriteTextfile(dir)
	if err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	if filepath.Base(path) != metrics.FileName {
		t.Errorf("expected %s, got %s", metrics.FileName, filepath.Base(path))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	for _, want := range []string{
		`retaildash_stage_duration_seconds{stage="aggregate"} 1.5`,
		`retaildash_stage_duration_seconds{stage="export"}`,
		`retaildash_table_rows{table="gym_locations"} 3`,
		`retaildash_table_rows{table="po_lines"} 3`,
		`retaildash_revenue_dollars 1000.5`,
		`retaildash_in_stock_rate_percent 87.5`,
		`retaildash_on_time_delivery_percent NaN`,
		`retaildash_sku_locations{condition="all"} 40`,
		`retaildash_last_run_timestamp_seconds`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected textfile to contain %q", want)
		}
	}
}

func TestRecorder_Handler(t *testing.T) {
	rec := metrics.NewRecorder("retaildash")
	rec.ObserveStage("generate", time.Second)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `retaildash_stage_duration_seconds{stage="generate"} 1`) {
		t.Errorf("expected stage gauge in response, got %s", w.Body.String())
	}
}
