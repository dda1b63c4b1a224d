package aggregation_test

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"testing"

	"retaildash/aggregation"
	"retaildash/generator"
	"retaildash/model"
)

func TestInStockByGym_HalfInStock(t *testing.T) {
	ds := baseDataset()
	ds.Inventory = []model.InventorySnapshot{snapshot("A", "G1", 50), snapshot("B", "G1", 0)}

	rows := aggregation.InStockByGym(ds, aggregation.Options{})
	if len(rows) != 2 {
		t.Fatalf("expected a row per gym, got %d", len(rows))
	}
	if rows[0].GymID != "G1" || !rows[0].Rate.Valid || rows[0].Rate.Float64 != 50.0 {
		t.Errorf("expected G1 at 50.0%%, got %+v", rows[0])
	}
	if rows[1].GymID != "G2" || rows[1].Rate.Valid {
		t.Errorf("expected G2 last with the sentinel, got %+v", rows[1])
	}
}

func TestInStockByGym_UsesLatestSnapshot(t *testing.T) {
	ds := baseDataset()
	old := snapshot("A", "G1", 0)
	old.AsOf = model.MustDate("2026-01-01")
	ds.Inventory = []model.InventorySnapshot{old, snapshot("A", "G1", 3)}

	rows := aggregation.InStockByGym(ds, aggregation.Options{})
	if rows[0].Pairs != 1 || rows[0].Rate.Float64 != 100 {
		t.Errorf("expected one pair fully in stock, got %+v", rows[0])
	}
}

func TestVendorScorecard_LeadTimeAndVariance(t *testing.T) {
	ds := baseDataset()
	ds.PurchaseOrders = []model.PurchaseOrder{
		{
			POID: "PO-1", VendorID: "V1",
			OrderDate:        model.MustDate("2025-01-01"),
			ExpectedDelivery: model.MustDate("2025-01-15"),
			ActualDelivery:   datePtr("2025-01-20"),
			Status:           model.POStatusReceived,
			Lines:            []model.POLine{{POID: "PO-1", SKU: "A", Quantity: 10, UnitCost: dec("5")}},
		},
		{
			POID: "PO-2", VendorID: "V2",
			OrderDate:        model.MustDate("2026-01-20"),
			ExpectedDelivery: model.MustDate("2026-02-10"),
			Status:           model.POStatusOpen,
		},
	}

	lead, variance := aggregation.Delivery(ds.PurchaseOrders[0])
	if lead != 19 || variance != 5 {
		t.Fatalf("expected lead 19 and variance +5, got %d and %d", lead, variance)
	}

	scores := aggregation.VendorScorecard(ds, aggregation.Options{})
	byID := make(map[string]model.VendorScore)
	for _, s := range scores {
		byID[s.VendorID] = s
	}

	v1 := byID["V1"]
	if !v1.OnTimeRate.Valid || v1.OnTimeRate.Float64 != 0 {
		t.Errorf("expected V1 on-time 0%%, got %+v", v1.OnTimeRate)
	}
	if v1.AvgLeadTimeDays.Float64 != 19 || v1.AvgVarianceDays.Float64 != 5 {
		t.Errorf("expected averages 19/5, got %v/%v", v1.AvgLeadTimeDays.Float64, v1.AvgVarianceDays.Float64)
	}
	if !v1.Spend.Equal(dec("50")) {
		t.Errorf("expected spend 50, got %s", v1.Spend)
	}

	v2 := byID["V2"]
	if v2.OnTimeRate.Valid || v2.AvgLeadTimeDays.Valid || v2.AvgVarianceDays.Valid {
		t.Errorf("expected sentinels for a vendor with nothing delivered, got %+v", v2)
	}
	if v2.POs != 1 || v2.Delivered != 0 {
		t.Errorf("expected 1 PO and 0 delivered, got %d and %d", v2.POs, v2.Delivered)
	}
	if scores[len(scores)-1].VendorID != "V2" {
		t.Errorf("expected the sentinel vendor last, got %s", scores[len(scores)-1].VendorID)
	}
}

func TestSupplyPositions_OverstockBoundary(t *testing.T) {
	ds := baseDataset()
	ds.Inventory = []model.InventorySnapshot{snapshot("A", "G1", 120), snapshot("B", "G1", 121), snapshot("A", "G2", 4)}
	// 120 units over the 12-week window is 10 a week for both SKUs at G1.
	ds.Sales = []model.Sale{
		sale("t1", "A", "G1", "2026-01-10", 120, "10", "5"),
		sale("t2", "B", "G1", "2026-01-10", 120, "100", "90"),
	}

	positions := aggregation.SupplyPositions(ds, aggregation.Options{})
	byKey := make(map[string]model.SupplyPosition)
	for _, p := range positions {
		byKey[p.SKU+"@"+p.GymID] = p
	}

	at := byKey["A@G1"]
	if at.AvgWeeklySales != 10 || !at.WeeksOfSupply.Valid || at.WeeksOfSupply.Float64 != 12.0 {
		t.Fatalf("expected 12.0 weeks at 10/week, got %+v", at)
	}
	if at.Overstock || at.Status != model.StatusInStock {
		t.Errorf("expected exactly 12.0 weeks not to be overstock, got %v %s", at.Overstock, at.Status)
	}

	over := byKey["B@G1"]
	if !over.Overstock || over.Status != model.StatusOverstock {
		t.Errorf("expected 12.1 weeks to be overstock, got %v %s", over.Overstock, over.Status)
	}

	idle := byKey["A@G2"]
	if !idle.Infinite || idle.WeeksOfSupply.Valid || !idle.Overstock {
		t.Errorf("expected zero velocity to be infinite and overstock, got %+v", idle)
	}
}

func TestWeeksOfSupply_Monotonic(t *testing.T) {
	prev := -1.0
	for onHand := 0; onHand <= 200; onHand += 5 {
		wos, inf := aggregation.WeeksOfSupply(onHand, 7.5)
		if inf || !wos.Valid {
			t.Fatalf("unexpected infinite result at %d on hand", onHand)
		}
		if wos.Float64 < prev {
			t.Fatalf("weeks of supply fell from %v to %v at %d on hand", prev, wos.Float64, onHand)
		}
		prev = wos.Float64
	}

	tests := []struct {
		name     string
		onHand   int
		velocity float64
		infinite bool
		weeks    float64
	}{
		{"no stock no sales", 0, 0, false, 0},
		{"no stock with sales", 0, 3, false, 0},
		{"stock without sales", 9, 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wos, inf := aggregation.WeeksOfSupply(tt.onHand, tt.velocity)
			if inf != tt.infinite {
				t.Fatalf("expected infinite=%v, got %v", tt.infinite, inf)
			}
			if !inf && wos.Float64 != tt.weeks {
				t.Errorf("expected %v weeks, got %v", tt.weeks, wos.Float64)
			}
			if inf && wos.Valid {
				t.Error("expected the sentinel with infinite supply")
			}
		})
	}
}

func TestMargin_RevenueWeighted(t *testing.T) {
	ds := baseDataset()
	ds.Products[1].Category = "Chalk"
	ds.Sales = []model.Sale{
		sale("t1", "A", "G1", "2025-06-01", 1, "10", "5"),
		sale("t2", "B", "G1", "2025-06-02", 9, "100", "90"),
	}

	for _, s := range ds.Sales {
		want := s.UnitPrice.Sub(s.UnitCost).Mul(dec(strconv.Itoa(s.Quantity)))
		if !s.Margin().Equal(want) {
			t.Fatalf("row margin %s, expected %s", s.Margin(), want)
		}
	}

	m := aggregation.Margin(ds, aggregation.Options{})
	if len(m.ByCategory) != 1 {
		t.Fatalf("expected one category, got %d", len(m.ByCategory))
	}
	chalk := m.ByCategory[0]
	if !chalk.Margin.Equal(dec("95")) || !chalk.Revenue.Equal(dec("910")) {
		t.Fatalf("expected margin 95 on revenue 910, got %s on %s", chalk.Margin, chalk.Revenue)
	}
	want := 95.0 / 910.0 * 100
	if math.Abs(chalk.MarginPct.Float64-want) > 1e-9 {
		t.Errorf("expected revenue-weighted %.4f%%, got %.4f%%", want, chalk.MarginPct.Float64)
	}
	if math.Abs(chalk.MarginPct.Float64-30) < 1 {
		t.Error("margin percent looks like a mean of row percentages")
	}

	var v2 model.MarginRow
	for _, r := range m.ByVendor {
		if r.Key == "V2" {
			v2 = r
		}
	}
	if v2.MarginPct.Valid {
		t.Errorf("expected the sentinel for a vendor with no revenue, got %v", v2.MarginPct.Float64)
	}
}

func TestTopBottomSellers_DeterministicTies(t *testing.T) {
	ds := baseDataset()
	ds.Products = append(ds.Products,
		model.Product{SKU: "C", Name: "Charlie", Category: "Chalk", VendorID: "V2", UnitCost: dec("1"), UnitPrice: dec("10")},
		model.Product{SKU: "D", Name: "Delta", Category: "Chalk", VendorID: "V2", UnitCost: dec("1"), UnitPrice: dec("10")},
	)
	ds.Sales = []model.Sale{
		sale("t1", "D", "G1", "2025-06-01", 3, "10", "1"),
		sale("t2", "C", "G1", "2025-06-01", 3, "10", "1"),
		sale("t3", "A", "G1", "2025-06-01", 1, "10", "5"),
	}
	opts := aggregation.Options{TopN: 3}

	first := aggregation.TopBottomSellers(ds, opts)
	second := aggregation.TopBottomSellers(ds, opts)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical rankings across runs")
	}

	gotTop := []string{first.Top[0].SKU, first.Top[1].SKU, first.Top[2].SKU}
	if !reflect.DeepEqual(gotTop, []string{"C", "D", "A"}) {
		t.Errorf("expected top C, D, A, got %v", gotTop)
	}
	gotBottom := []string{first.Bottom[0].SKU, first.Bottom[1].SKU, first.Bottom[2].SKU}
	if !reflect.DeepEqual(gotBottom, []string{"B", "A", "C"}) {
		t.Errorf("expected bottom B, A, C, got %v", gotBottom)
	}
	if first.Top[0].Rank != 1 || first.Bottom[2].Rank != 3 {
		t.Errorf("unexpected ranks %d and %d", first.Top[0].Rank, first.Bottom[2].Rank)
	}
}

func TestMonthlyTrend_IgnoresYear(t *testing.T) {
	ds := baseDataset()
	ds.Sales = []model.Sale{
		sale("t1", "A", "G1", "2025-03-05", 2, "10", "5"),
		sale("t2", "A", "G1", "2026-03-07", 3, "10", "5"),
	}
	rows := aggregation.MonthlyTrend(ds, aggregation.Options{})
	if len(rows) != 12 {
		t.Fatalf("expected 12 months, got %d", len(rows))
	}
	mar := rows[2]
	if mar.Label != "Mar" || mar.Units != 5 || !mar.Revenue.Equal(dec("50")) {
		t.Errorf("expected March 5 units and 50 revenue, got %+v", mar)
	}
}

func TestAgeInventory_BandsAndTotals(t *testing.T) {
	ds := baseDataset()
	noHistory := snapshot("B", "G2", 2)
	received := snapshot("A", "G2", 4)
	received.LastReceiptDate = datePtr("2025-12-01")
	ds.Inventory = []model.InventorySnapshot{snapshot("A", "G1", 10), snapshot("B", "G1", 1), received, noHistory}
	ds.Sales = []model.Sale{
		sale("t1", "A", "G1", "2026-01-21", 1, "10", "5"),
		sale("t2", "B", "G1", "2025-11-20", 1, "100", "90"),
	}

	aged := aggregation.AgeInventory(ds, aggregation.Options{})
	if len(aged.Bands) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(aged.Bands))
	}
	wantPairs := []int{1, 0, 2, 1}
	for i, b := range aged.Bands {
		if b.Pairs != wantPairs[i] {
			t.Errorf("band %s: expected %d pairs, got %d", b.Label, wantPairs[i], b.Pairs)
		}
	}
	if aged.Bands[3].Label != "90+ days" {
		t.Errorf("expected open band label, got %q", aged.Bands[3].Label)
	}
	assertBandTotals(t, aged)
}

func assertBandTotals(t *testing.T, aged aggregation.AgedInventory) {
	t.Helper()
	var pairs, units int
	value := dec("0")
	for _, b := range aged.Bands {
		pairs += b.Pairs
		units += b.Units
		value = value.Add(b.Value)
	}
	if pairs != aged.TotalPairs || units != aged.TotalUnits || !value.Equal(aged.TotalValue) {
		t.Errorf("band sums %d/%d/%s differ from totals %d/%d/%s",
			pairs, units, value, aged.TotalPairs, aged.TotalUnits, aged.TotalValue)
	}
}

func TestAllocation_IndexOrdering(t *testing.T) {
	ds := baseDataset()
	ds.Inventory = []model.InventorySnapshot{
		snapshot("A", "G1", 80), // 10/wk, target 80: balanced
		snapshot("B", "G1", 0),  // 1/wk, none on hand: under
		snapshot("A", "G2", 6),  // no sales: infinite
		snapshot("B", "G2", 0),  // nothing at all: idle
	}
	ds.Sales = []model.Sale{
		sale("t1", "A", "G1", "2026-01-10", 120, "10", "5"),
		sale("t2", "B", "G1", "2026-01-10", 12, "100", "90"),
	}

	alloc := aggregation.AllocationEfficiency(ds, aggregation.Options{})
	got := make([]string, len(alloc.Positions))
	classes := make(map[string]model.AllocationClass)
	for i, p := range alloc.Positions {
		got[i] = p.SKU + "@" + p.GymID
		classes[got[i]] = p.Class
	}
	want := []string{"A@G2", "A@G1", "B@G1", "B@G2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected ranking %v, got %v", want, got)
	}
	expect := map[string]model.AllocationClass{
		"A@G2": model.AllocationOver,
		"A@G1": model.AllocationBalanced,
		"B@G1": model.AllocationUnder,
		"B@G2": model.AllocationIdle,
	}
	for k, c := range expect {
		if classes[k] != c {
			t.Errorf("%s: expected %s, got %s", k, c, classes[k])
		}
	}
	if alloc.ByGym[0].GymID != "G2" || !alloc.ByGym[0].Infinite {
		t.Errorf("expected G2 first as infinite, got %+v", alloc.ByGym[0])
	}
	if g1 := alloc.ByGym[1]; !g1.InvToSalesPct.Valid {
		t.Errorf("expected an inventory-to-sales ratio for G1, got %+v", g1)
	}
}

func TestAllocation_MonotonicInOnHand(t *testing.T) {
	ds := baseDataset()
	ds.Sales = []model.Sale{sale("t1", "A", "G1", "2026-01-10", 24, "10", "5")}
	prev := -1.0
	for _, onHand := range []int{0, 2, 8, 16, 40} {
		ds.Inventory = []model.InventorySnapshot{snapshot("A", "G1", onHand)}
		alloc := aggregation.AllocationEfficiency(ds, aggregation.Options{})
		idx := alloc.Positions[0].Index
		if !idx.Valid || idx.Float64 < prev {
			t.Fatalf("index not monotonic at %d on hand: %+v", onHand, idx)
		}
		prev = idx.Float64
	}
}

func TestCompute_MissingReference(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(ds *model.Dataset)
		table string
		field string
	}{
		{"sale sku", func(ds *model.Dataset) {
			ds.Sales = append(ds.Sales, sale("t9", "ZZ", "G1", "2025-06-01", 1, "1", "1"))
		}, "sales_data", "sku"},
		{"sale gym", func(ds *model.Dataset) {
			ds.Sales = append(ds.Sales, sale("t9", "A", "G9", "2025-06-01", 1, "1", "1"))
		}, "sales_data", "gym_id"},
		{"snapshot gym", func(ds *model.Dataset) {
			ds.Inventory = append(ds.Inventory, snapshot("A", "G9", 1))
		}, "inventory_data", "gym_id"},
		{"po vendor", func(ds *model.Dataset) {
			ds.PurchaseOrders = append(ds.PurchaseOrders, model.PurchaseOrder{POID: "P", VendorID: "V9", Status: model.POStatusOpen})
		}, "purchase_orders", "vendor_id"},
		{"po line sku", func(ds *model.Dataset) {
			ds.PurchaseOrders = append(ds.PurchaseOrders, model.PurchaseOrder{
				POID: "P", VendorID: "V1", Status: model.POStatusOpen,
				Lines: []model.POLine{{SKU: "ZZ", Quantity: 1}},
			})
		}, "po_lines", "sku"},
		{"product vendor", func(ds *model.Dataset) { ds.Products[0].VendorID = "V9" }, "product_catalog", "vendor_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := baseDataset()
			tt.mut(&ds)
			_, err := aggregation.Compute(ds, aggregation.Options{})
			if !errors.Is(err, aggregation.ErrMissingReference) {
				t.Fatalf("expected a missing reference, got %v", err)
			}
			var mre *aggregation.MissingReferenceError
			if !errors.As(err, &mre) {
				t.Fatalf("expected *MissingReferenceError, got %T", err)
			}
			if mre.Table != tt.table || mre.Field != tt.field {
				t.Errorf("expected %s.%s, got %s.%s", tt.table, tt.field, mre.Table, mre.Field)
			}
		})
	}
}

func TestCompute_GeneratedDataset(t *testing.T) {
	ds, err := generator.Generate(generator.DefaultOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	report, err := aggregation.Compute(ds, aggregation.Options{})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if !report.Options.AsOf.Equal(asOf) {
		t.Errorf("expected as-of %s, got %s", asOf.Format(model.DateLayout), report.Options.AsOf.Format(model.DateLayout))
	}
	for _, r := range report.InStockByGym {
		if r.Rate.Valid && (r.Rate.Float64 < 0 || r.Rate.Float64 > 100) {
			t.Errorf("%s: rate %v out of range", r.GymID, r.Rate.Float64)
		}
	}
	for _, v := range report.VendorScorecard {
		if v.OnTimeRate.Valid && (v.OnTimeRate.Float64 < 0 || v.OnTimeRate.Float64 > 100) {
			t.Errorf("%s: on-time %v out of range", v.VendorID, v.OnTimeRate.Float64)
		}
		if v.Delivered == 0 && v.OnTimeRate.Valid {
			t.Errorf("%s: expected the sentinel with nothing delivered", v.VendorID)
		}
	}

	assertBandTotals(t, report.AgedInventory)
	if !report.AgedInventory.TotalValue.Equal(report.KPIs.InventoryAtCost) {
		t.Errorf("aged total %s differs from inventory at cost %s", report.AgedInventory.TotalValue, report.KPIs.InventoryAtCost)
	}
	if !report.Margin.Total.Revenue.Equal(report.KPIs.TotalRevenue) {
		t.Error("KPI revenue differs from the margin total")
	}
	if len(report.Sellers.Top) != 10 || len(report.Sellers.Bottom) != 10 {
		t.Errorf("expected 10 top and bottom sellers, got %d and %d", len(report.Sellers.Top), len(report.Sellers.Bottom))
	}
	if report.DeepDive.Category != "Climbing Shoes" || len(report.DeepDive.ProductRevenue) != 7 {
		t.Errorf("unexpected deep dive %s with %d products", report.DeepDive.Category, len(report.DeepDive.ProductRevenue))
	}

	again, err := aggregation.Compute(ds, aggregation.Options{})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !reflect.DeepEqual(report.Sellers, again.Sellers) || !reflect.DeepEqual(report.Allocation, again.Allocation) {
		t.Error("expected identical rankings across runs")
	}
}
