// Package parsers reads a directory of raw-table CSV files back into a
// dataset.
package parsers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"retaildash/model"

	"go.uber.org/zap"
)

// ParseGyms reads gym_locations.csv.
func ParseGyms(r io.Reader) ([]model.GymLocation, error) {
	var out []model.GymLocation
	err := readCSV(r, "gym_locations", []string{"gym_id", "gym_name", "city", "state", "region", "size", "is_open"}, func(rw *row) error {
		out = append(out, model.GymLocation{
			GymID:  rw.str("gym_id"),
			Name:   rw.str("gym_name"),
			City:   rw.str("city"),
			State:  rw.str("state"),
			Region: rw.str("region"),
			Size:   rw.str("size"),
			Open:   rw.boolean("is_open"),
		})
		return nil
	})
	return out, err
}

// ParseVendors reads vendors.csv.
func ParseVendors(r io.Reader) ([]model.Vendor, error) {
	var out []model.Vendor
	err := readCSV(r, "vendors", []string{"vendor_id", "vendor_name", "lead_time_days", "min_order", "reliability"}, func(rw *row) error {
		out = append(out, model.Vendor{
			VendorID:     rw.str("vendor_id"),
			Name:         rw.str("vendor_name"),
			LeadTimeDays: rw.integer("lead_time_days"),
			MinOrder:     rw.integer("min_order"),
			Reliability:  rw.float("reliability"),
		})
		return nil
	})
	return out, err
}

// ParseProducts reads product_catalog.csv.
func ParseProducts(r io.Reader) ([]model.Product, error) {
	var out []model.Product
	required := []string{"sku", "product_name", "category", "subcategory", "vendor_id", "unit_cost", "unit_price", "size_run"}
	err := readCSV(r, "product_catalog", required, func(rw *row) error {
		out = append(out, model.Product{
			SKU:         rw.str("sku"),
			Name:        rw.str("product_name"),
			Category:    rw.str("category"),
			Subcategory: rw.str("subcategory"),
			VendorID:    rw.str("vendor_id"),
			UnitCost:    rw.money("unit_cost"),
			UnitPrice:   rw.money("unit_price"),
			SizeRun:     rw.boolean("size_run"),
		})
		return nil
	})
	return out, err
}

// ParseSales reads sales_data.csv.
func ParseSales(r io.Reader) ([]model.Sale, error) {
	var out []model.Sale
	required := []string{"transaction_id", "sale_date", "gym_id", "sku", "quantity", "unit_price", "unit_cost", "discount_pct"}
	err := readCSV(r, "sales_data", required, func(rw *row) error {
		out = append(out, model.Sale{
			TransactionID: rw.str("transaction_id"),
			Date:          rw.date("sale_date"),
			GymID:         rw.str("gym_id"),
			SKU:           rw.str("sku"),
			Quantity:      rw.integer("quantity"),
			UnitPrice:     rw.money("unit_price"),
			UnitCost:      rw.money("unit_cost"),
			DiscountPct:   rw.integer("discount_pct"),
		})
		return nil
	})
	return out, err
}

// ParseInventory reads inventory_data.csv.
func ParseInventory(r io.Reader) ([]model.InventorySnapshot, error) {
	var out []model.InventorySnapshot
	required := []string{"sku", "gym_id", "as_of", "on_hand", "par_level"}
	err := readCSV(r, "inventory_data", required, func(rw *row) error {
		out = append(out, model.InventorySnapshot{
			SKU:             rw.str("sku"),
			GymID:           rw.str("gym_id"),
			AsOf:            rw.date("as_of"),
			OnHand:          rw.integer("on_hand"),
			ParLevel:        rw.integer("par_level"),
			LastReceiptDate: rw.optionalDate("last_receipt_date"),
		})
		return nil
	})
	return out, err
}

// ParsePurchaseOrders reads purchase_orders.csv and po_lines.csv and
// attaches each line to its order. A line for an unknown PO is an error.
func ParsePurchaseOrders(orders, lines io.Reader) ([]model.PurchaseOrder, error) {
	var out []model.PurchaseOrder
	byID := make(map[string]int)
	required := []string{"po_id", "vendor_id", "order_date", "expected_delivery", "actual_delivery", "status"}
	err := readCSV(orders, "purchase_orders", required, func(rw *row) error {
		po := model.PurchaseOrder{
			POID:             rw.str("po_id"),
			VendorID:         rw.str("vendor_id"),
			OrderDate:        rw.date("order_date"),
			ExpectedDelivery: rw.date("expected_delivery"),
			ActualDelivery:   rw.optionalDate("actual_delivery"),
			Status:           model.POStatus(rw.str("status")),
		}
		if _, dup := byID[po.POID]; dup {
			rw.fail("po_id", "duplicate %q", po.POID)
			return nil
		}
		byID[po.POID] = len(out)
		out = append(out, po)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readCSV(lines, "po_lines", []string{"po_id", "sku", "quantity", "unit_cost"}, func(rw *row) error {
		l := model.POLine{
			POID:     rw.str("po_id"),
			SKU:      rw.str("sku"),
			Quantity: rw.integer("quantity"),
			UnitCost: rw.money("unit_cost"),
		}
		i, ok := byID[l.POID]
		if !ok {
			rw.fail("po_id", "unknown purchase order %q", l.POID)
			return nil
		}
		out[i].Lines = append(out[i].Lines, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadDataset reads the seven raw-table CSV files from dir.
func LoadDataset(dir string) (model.Dataset, error) {
	var ds model.Dataset

	// 1. Reference tables
	if err := parseFile(dir, "gym_locations", func(r io.Reader) (err error) {
		ds.Gyms, err = ParseGyms(r)
		return err
	}); err != nil {
		return ds, err
	}
	if err := parseFile(dir, "vendors", func(r io.Reader) (err error) {
		ds.Vendors, err = ParseVendors(r)
		return err
	}); err != nil {
		return ds, err
	}
	if err := parseFile(dir, "product_catalog", func(r io.Reader) (err error) {
		ds.Products, err = ParseProducts(r)
		return err
	}); err != nil {
		return ds, err
	}

	// 2. Fact tables
	if err := parseFile(dir, "sales_data", func(r io.Reader) (err error) {
		ds.Sales, err = ParseSales(r)
		return err
	}); err != nil {
		return ds, err
	}
	if err := parseFile(dir, "inventory_data", func(r io.Reader) (err error) {
		ds.Inventory, err = ParseInventory(r)
		return err
	}); err != nil {
		return ds, err
	}

	// 3. Purchase orders and their lines
	if err := parseFile(dir, "purchase_orders", func(orders io.Reader) error {
		return parseFile(dir, "po_lines", func(lines io.Reader) (err error) {
			ds.PurchaseOrders, err = ParsePurchaseOrders(orders, lines)
			return err
		})
	}); err != nil {
		return ds, err
	}

	zap.L().Info("dataset loaded",
		zap.String("dir", dir),
		zap.Int("sales", len(ds.Sales)),
		zap.Int("inventory", len(ds.Inventory)),
		zap.Int("purchase_orders", len(ds.PurchaseOrders)),
	)
	return ds, nil
}

func parseFile(dir, table string, parse func(io.Reader) error) error {
	path := filepath.Join(dir, table+".csv")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	if err := parse(f); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
