package export

import (
	"retaildash/model"
)

// Raw table names and their header rows. The parsers package reads files
// with these headers back into a dataset.
const (
	GymsTable      = "gym_locations"
	VendorsTable   = "vendors"
	ProductsTable  = "product_catalog"
	SalesTable     = "sales_data"
	InventoryTable = "inventory_data"
	OrdersTable    = "purchase_orders"
	LinesTable     = "po_lines"
)

var (
	GymsHeader      = []string{"gym_id", "gym_name", "city", "state", "region", "size", "is_open"}
	VendorsHeader   = []string{"vendor_id", "vendor_name", "lead_time_days", "min_order", "reliability"}
	ProductsHeader  = []string{"sku", "product_name", "category", "subcategory", "vendor_id", "unit_cost", "unit_price", "size_run"}
	SalesHeader     = []string{"transaction_id", "sale_date", "gym_id", "sku", "quantity", "unit_price", "unit_cost", "discount_pct"}
	InventoryHeader = []string{"sku", "gym_id", "as_of", "on_hand", "par_level", "last_receipt_date"}
	OrdersHeader    = []string{"po_id", "vendor_id", "order_date", "expected_delivery", "actual_delivery", "status"}
	LinesHeader     = []string{"po_id", "sku", "quantity", "unit_cost"}
)

// RawTables renders the dataset's tables in file order.
func RawTables(ds model.Dataset) []Table {
	gyms := Table{Name: GymsTable, Header: GymsHeader}
	for _, g := range ds.Gyms {
		gyms.Rows = append(gyms.Rows, []string{g.GymID, g.Name, g.City, g.State, g.Region, g.Size, boolean(g.Open)})
	}

	vendors := Table{Name: VendorsTable, Header: VendorsHeader}
	for _, v := range ds.Vendors {
		vendors.Rows = append(vendors.Rows, []string{
			v.VendorID, v.Name, itoa(v.LeadTimeDays), itoa(v.MinOrder), num(v.Reliability, -1),
		})
	}

	products := Table{Name: ProductsTable, Header: ProductsHeader}
	for _, p := range ds.Products {
		products.Rows = append(products.Rows, []string{
			p.SKU, p.Name, p.Category, p.Subcategory, p.VendorID,
			money(p.UnitCost), money(p.UnitPrice), boolean(p.SizeRun),
		})
	}

	sales := Table{Name: SalesTable, Header: SalesHeader, Rows: make([][]string, 0, len(ds.Sales))}
	for _, s := range ds.Sales {
		sales.Rows = append(sales.Rows, []string{
			s.TransactionID, s.Date.Format(model.DateLayout), s.GymID, s.SKU,
			itoa(s.Quantity), money(s.UnitPrice), money(s.UnitCost), itoa(s.DiscountPct),
		})
	}

	inventory := Table{Name: InventoryTable, Header: InventoryHeader, Rows: make([][]string, 0, len(ds.Inventory))}
	for _, inv := range ds.Inventory {
		inventory.Rows = append(inventory.Rows, []string{
			inv.SKU, inv.GymID, inv.AsOf.Format(model.DateLayout),
			itoa(inv.OnHand), itoa(inv.ParLevel), optionalDate(inv.LastReceiptDate),
		})
	}

	orders := Table{Name: OrdersTable, Header: OrdersHeader}
	lines := Table{Name: LinesTable, Header: LinesHeader}
	for _, po := range ds.PurchaseOrders {
		orders.Rows = append(orders.Rows, []string{
			po.POID, po.VendorID, po.OrderDate.Format(model.DateLayout),
			po.ExpectedDelivery.Format(model.DateLayout), optionalDate(po.ActualDelivery), string(po.Status),
		})
		for _, l := range po.Lines {
			lines.Rows = append(lines.Rows, []string{po.POID, l.SKU, itoa(l.Quantity), money(l.UnitCost)})
		}
	}

	return []Table{sales, inventory, orders, lines, products, gyms, vendors}
}
