package database_test

import (
	"errors"
	"testing"

	"retaildash/aggregation"
	"retaildash/database"
	"retaildash/generator"
	"retaildash/model"
)

func openStore(t *testing.T) *database.Store {
	t.Helper()
	s, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func generated(t *testing.T) (model.Dataset, *aggregation.Report) {
	t.Helper()
	opts := generator.DefaultOptions()
	opts.Months = 2
	opts.StartDate = model.MustDate("2025-12-01")
	opts.NumPOs = 15
	ds, err := generator.Generate(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	report, err := aggregation.Compute(ds, aggregation.Options{})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return ds, report
}

func TestStore_SaveAndLoadDataset(t *testing.T) {
	s := openStore(t)
	ds, report := generated(t)

	runID, err := s.SaveRun(ds, report, database.RunMeta{Seed: 42, Source: "generated"})
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, err := s.LoadDataset(runID)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if len(got.Gyms) != len(ds.Gyms) || len(got.Vendors) != len(ds.Vendors) || len(got.Products) != len(ds.Products) {
		t.Fatalf("dimension tables differ: %d/%d/%d", len(got.Gyms), len(got.Vendors), len(got.Products))
	}
	if len(got.Sales) != len(ds.Sales) || len(got.Inventory) != len(ds.Inventory) || len(got.PurchaseOrders) != len(ds.PurchaseOrders) {
		t.Fatalf("fact tables differ: %d/%d/%d", len(got.Sales), len(got.Inventory), len(got.PurchaseOrders))
	}

	for i, want := range ds.Sales {
		g := got.Sales[i]
		if g.TransactionID != want.TransactionID || !g.Date.Equal(want.Date) || g.Quantity != want.Quantity ||
			!g.UnitPrice.Equal(want.UnitPrice) || !g.UnitCost.Equal(want.UnitCost) {
			t.Fatalf("sale %d differs: %+v vs %+v", i, g, want)
		}
	}
	for i, want := range ds.PurchaseOrders {
		g := got.PurchaseOrders[i]
		if g.POID != want.POID || g.Status != want.Status || len(g.Lines) != len(want.Lines) {
			t.Fatalf("purchase order %d differs: %+v vs %+v", i, g, want)
		}
		if (g.ActualDelivery == nil) != (want.ActualDelivery == nil) {
			t.Fatalf("purchase order %s actual delivery differs", want.POID)
		}
		if !g.TotalCost().Equal(want.TotalCost()) {
			t.Errorf("purchase order %s cost %s, expected %s", want.POID, g.TotalCost(), want.TotalCost())
		}
	}

	// A reloaded run must reproduce the same metrics.
	again, err := aggregation.Compute(got, aggregation.Options{})
	if err != nil {
		t.Fatalf("compute reloaded: %v", err)
	}
	if !again.KPIs.TotalRevenue.Equal(report.KPIs.TotalRevenue) || !again.KPIs.InventoryAtCost.Equal(report.KPIs.InventoryAtCost) {
		t.Errorf("reloaded KPIs differ: %s/%s vs %s/%s", again.KPIs.TotalRevenue, again.KPIs.InventoryAtCost,
			report.KPIs.TotalRevenue, report.KPIs.InventoryAtCost)
	}
}

func TestStore_History(t *testing.T) {
	s := openStore(t)
	ds, report := generated(t)

	for i := 0; i < 2; i++ {
		if _, err := s.SaveRun(ds, report, database.RunMeta{Seed: 42, Source: "generated"}); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID == runs[1].RunID {
		t.Fatalf("expected two distinct runs, got %+v", runs)
	}

	kpis, err := s.KPIHistory()
	if err != nil {
		t.Fatalf("kpi history: %v", err)
	}
	if len(kpis) != 2 {
		t.Fatalf("expected 2 kpi rows, got %d", len(kpis))
	}
	if !kpis[0].TotalRevenue.Equal(report.KPIs.TotalRevenue) {
		t.Errorf("expected revenue %s, got %s", report.KPIs.TotalRevenue, kpis[0].TotalRevenue)
	}
	if kpis[0].InStockRate.Valid != report.KPIs.InStockRate.Valid {
		t.Errorf("in-stock sentinel not preserved")
	}

	gym := report.InStockByGym[0]
	gyms, err := s.InStockHistory(gym.GymID)
	if err != nil {
		t.Fatalf("in-stock history: %v", err)
	}
	if len(gyms) != 2 || gyms[0].Pairs != gym.Pairs {
		t.Errorf("unexpected in-stock history %+v", gyms)
	}

	vendor := report.VendorScorecard[0]
	vendors, err := s.VendorHistory(vendor.VendorID)
	if err != nil {
		t.Fatalf("vendor history: %v", err)
	}
	if len(vendors) != 2 || vendors[0].POs != vendor.POs || !vendors[0].Spend.Equal(vendor.Spend) {
		t.Errorf("unexpected vendor history %+v", vendors)
	}
}

func TestStore_LoadUnknownRun(t *testing.T) {
	s := openStore(t)
	if _, err := s.LoadDataset("missing"); !errors.Is(err, database.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
