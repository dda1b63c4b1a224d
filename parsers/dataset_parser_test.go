package parsers_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"retaildash/export"
	"retaildash/generator"
	"retaildash/model"
	"retaildash/parsers"
)

func TestLoadDataset_RoundTrip(t *testing.T) {
	opts := generator.DefaultOptions()
	opts.NumPOs = 25
	ds, err := generator.Generate(opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dir := t.TempDir()
	for _, bom := range []bool{false, true} {
		if _, err := export.WriteTables(dir, export.RawTables(ds), bom); err != nil {
			t.Fatalf("WriteTables(bom=%v) failed: %v", bom, err)
		}
		loaded, err := parsers.LoadDataset(dir)
		if err != nil {
			t.Fatalf("LoadDataset(bom=%v) failed: %v", bom, err)
		}
		if err := model.ValidateSchema(loaded); err != nil {
			t.Fatalf("loaded dataset fails validation: %v", err)
		}
		want := export.RawTables(ds)
		got := export.RawTables(loaded)
		for i := range want {
			if !reflect.DeepEqual(want[i], got[i]) {
				t.Errorf("table %s differs after round trip (bom=%v)", want[i].Name, bom)
			}
		}
	}
}

func TestLoadDataset_MissingFile(t *testing.T) {
	_, err := parsers.LoadDataset(t.TempDir())
	if err == nil {
		t.Fatal("expected an error for an empty directory, got nil")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestParseSales_Errors(t *testing.T) {
	header := "transaction_id,sale_date,gym_id,sku,quantity,unit_price,unit_cost,discount_pct\n"
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty file", "", "empty file"},
		{"missing column", "transaction_id,sale_date\nT1,2025-03-01\n", "required column not found: gym_id"},
		{"bad date", header + "T1,03/01/2025,G1,A,1,10.00,5.00,0\n", "line 2: sale_date"},
		{"bad quantity", header + "T1,2025-03-01,G1,A,one,10.00,5.00,0\n", "line 2: quantity"},
		{"bad price", header + "T1,2025-03-01,G1,A,1,ten,5.00,0\n", "line 2: unit_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsers.ParseSales(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseSales_BOMAndColumnOrder(t *testing.T) {
	input := "\xEF\xBB\xBFsku,gym_id,quantity,sale_date,transaction_id,unit_price,unit_cost,discount_pct,note\n" +
		"A, G1 ,3,2025-03-01,T1,9.50,5.00,5,promo\n\n"
	sales, err := parsers.ParseSales(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSales failed: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(sales))
	}
	s := sales[0]
	if s.SKU != "A" || s.GymID != "G1" || s.Quantity != 3 || s.DiscountPct != 5 {
		t.Errorf("unexpected sale %+v", s)
	}
	if !s.Date.Equal(model.MustDate("2025-03-01")) {
		t.Errorf("expected date 2025-03-01, got %s", s.Date)
	}
	if s.UnitPrice.String() != "9.5" {
		t.Errorf("expected unit price 9.5, got %s", s.UnitPrice)
	}
}

func TestParsePurchaseOrders(t *testing.T) {
	orders := "po_id,vendor_id,order_date,expected_delivery,actual_delivery,status\n" +
		"PO-1,V1,2025-03-01,2025-03-15,2025-03-20,Received\n" +
		"PO-2,V1,2025-04-01,2025-04-15,,Open\n"
	lines := "po_id,sku,quantity,unit_cost\n" +
		"PO-1,A,10,5.00\n" +
		"PO-2,B,4,90.00\n" +
		"PO-1,B,2,90.00\n"

	pos, err := parsers.ParsePurchaseOrders(strings.NewReader(orders), strings.NewReader(lines))
	if err != nil {
		t.Fatalf("ParsePurchaseOrders failed: %v", err)
	}
	if len(pos) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(pos))
	}
	if len(pos[0].Lines) != 2 || pos[0].TotalUnits() != 12 {
		t.Errorf("expected PO-1 with 2 lines and 12 units, got %d lines and %d units", len(pos[0].Lines), pos[0].TotalUnits())
	}
	if pos[1].ActualDelivery != nil {
		t.Errorf("expected PO-2 to be undelivered, got %v", pos[1].ActualDelivery)
	}
	if pos[1].Status != model.POStatusOpen {
		t.Errorf("expected status Open, got %q", pos[1].Status)
	}

	t.Run("unknown order", func(t *testing.T) {
		_, err := parsers.ParsePurchaseOrders(strings.NewReader(orders), strings.NewReader("po_id,sku,quantity,unit_cost\nPO-9,A,1,5.00\n"))
		if err == nil || !strings.Contains(err.Error(), "PO-9") {
			t.Errorf("expected unknown purchase order error, got %v", err)
		}
	})
	t.Run("duplicate order", func(t *testing.T) {
		dup := orders + "PO-1,V1,2025-03-01,2025-03-15,,Open\n"
		_, err := parsers.ParsePurchaseOrders(strings.NewReader(dup), strings.NewReader(lines))
		if err == nil || !strings.Contains(err.Error(), "duplicate") {
			t.Errorf("expected duplicate error, got %v", err)
		}
	})
}

func TestLoadDataset_FileNameInError(t *testing.T) {
	dir := t.TempDir()
	ds, err := generator.Generate(generator.DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := export.WriteTables(dir, export.RawTables(ds), false); err != nil {
		t.Fatalf("WriteTables failed: %v", err)
	}
	bad := filepath.Join(dir, "vendors.csv")
	if err := os.WriteFile(bad, []byte("vendor_id\nV1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = parsers.LoadDataset(dir)
	if err == nil || !strings.Contains(err.Error(), "vendors.csv") {
		t.Errorf("expected error naming vendors.csv, got %v", err)
	}
}
