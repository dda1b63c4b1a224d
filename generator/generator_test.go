package generator_test

import (
	"reflect"
	"testing"
	"time"

	"retaildash/generator"
	"retaildash/model"
)

func TestGenerate_SatisfiesSchema(t *testing.T) {
	ds, err := generator.Generate(generator.DefaultOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := model.ValidateSchema(ds); err != nil {
		t.Fatalf("expected a valid dataset, got %v", err)
	}

	if len(ds.Gyms) != 33 || len(ds.Vendors) != 10 || len(ds.Products) != 31 {
		t.Errorf("unexpected catalog sizes: %d gyms, %d vendors, %d products", len(ds.Gyms), len(ds.Vendors), len(ds.Products))
	}
	if want := len(ds.Gyms) * len(ds.Products); len(ds.Inventory) != want {
		t.Errorf("expected %d snapshots, got %d", want, len(ds.Inventory))
	}
	if len(ds.PurchaseOrders) != 120 {
		t.Errorf("expected 120 purchase orders, got %d", len(ds.PurchaseOrders))
	}
	if len(ds.Sales) == 0 {
		t.Fatal("expected sales")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	opts := generator.DefaultOptions()
	opts.Months = 2
	a, err := generator.Generate(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := generator.Generate(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical datasets for the same seed")
	}

	opts.Seed = 7
	c, err := generator.Generate(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if reflect.DeepEqual(a.Sales, c.Sales) {
		t.Error("expected a different seed to change the sales")
	}
}

func TestGenerate_SalesWindowAndPrices(t *testing.T) {
	opts := generator.DefaultOptions()
	ds, err := generator.Generate(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	catalog := make(map[string]model.Product)
	for _, p := range ds.Products {
		catalog[p.SKU] = p
	}
	for i, s := range ds.Sales {
		if s.Date.Before(opts.StartDate) || s.Date.After(opts.AsOf) {
			t.Fatalf("sale %d dated %s outside the window", i, s.Date.Format(model.DateLayout))
		}
		if s.Quantity <= 0 {
			t.Fatalf("sale %d has quantity %d", i, s.Quantity)
		}
		p := catalog[s.SKU]
		if s.DiscountPct == 0 && !s.UnitPrice.Equal(p.UnitPrice) {
			t.Fatalf("sale %d: undiscounted price %s differs from list %s", i, s.UnitPrice, p.UnitPrice)
		}
		if s.DiscountPct > 0 && !s.UnitPrice.LessThan(p.UnitPrice) {
			t.Fatalf("sale %d: discounted price %s not below list %s", i, s.UnitPrice, p.UnitPrice)
		}
		if i > 0 && s.Date.Before(ds.Sales[i-1].Date) {
			t.Fatalf("sales not ordered by date at row %d", i)
		}
	}
}

func TestGenerate_PurchaseOrderLifecycle(t *testing.T) {
	opts := generator.DefaultOptions()
	ds, err := generator.Generate(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	vendorSKUs := make(map[string]map[string]bool)
	for _, p := range ds.Products {
		if vendorSKUs[p.VendorID] == nil {
			vendorSKUs[p.VendorID] = make(map[string]bool)
		}
		vendorSKUs[p.VendorID][p.SKU] = true
	}

	for _, po := range ds.PurchaseOrders {
		switch po.Status {
		case model.POStatusReceived:
			if po.ActualDelivery == nil || po.ActualDelivery.After(opts.AsOf) {
				t.Errorf("%s: received order must be delivered by as-of", po.POID)
			}
		case model.POStatusOpen:
			if !po.ExpectedDelivery.After(opts.AsOf) {
				t.Errorf("%s: open order expected %s is not after as-of", po.POID, po.ExpectedDelivery.Format(model.DateLayout))
			}
		case model.POStatusInTransit:
			if po.ExpectedDelivery.After(opts.AsOf) {
				t.Errorf("%s: in-transit order expected after as-of", po.POID)
			}
		}
		if len(po.Lines) == 0 {
			t.Errorf("%s: no lines", po.POID)
		}
		for _, l := range po.Lines {
			if !vendorSKUs[po.VendorID][l.SKU] {
				t.Errorf("%s: line %s is not carried by vendor %s", po.POID, l.SKU, po.VendorID)
			}
			if l.Quantity < 10 || l.Quantity > 99 {
				t.Errorf("%s: line quantity %d out of range", po.POID, l.Quantity)
			}
		}
	}
}

func TestGenerate_RejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *generator.Options)
	}{
		{"zero months", func(o *generator.Options) { o.Months = 0 }},
		{"negative pos", func(o *generator.Options) { o.NumPOs = -1 }},
		{"as-of before start", func(o *generator.Options) { o.AsOf = o.StartDate.AddDate(0, 0, -1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := generator.DefaultOptions()
			tt.mutate(&opts)
			if _, err := generator.Generate(opts); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestGenerate_DefaultAsOf(t *testing.T) {
	opts := generator.DefaultOptions()
	opts.AsOf = time.Time{}
	opts.NumPOs = 0
	ds, err := generator.Generate(opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := model.MustDate("2026-01-31")
	for _, inv := range ds.Inventory {
		if !inv.AsOf.Equal(want) {
			t.Fatalf("expected snapshot date %s, got %s", want.Format(model.DateLayout), inv.AsOf.Format(model.DateLayout))
		}
	}
}
