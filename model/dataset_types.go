package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GymLocation is a row of the gym_locations table.
type GymLocation struct {
	GymID  string `db:"gym_id" json:"gymId"`
	Name   string `db:"gym_name" json:"gymName"`
	City   string `db:"city" json:"city"`
	State  string `db:"state" json:"state"`
	Region string `db:"region" json:"region"`
	Size   string `db:"size" json:"size"`
	Open   bool   `db:"is_open" json:"open"`
}

// Vendor is a row of the vendors table.
type Vendor struct {
	VendorID     string  `db:"vendor_id" json:"vendorId"`
	Name         string  `db:"vendor_name" json:"vendorName"`
	LeadTimeDays int     `db:"lead_time_days" json:"leadTimeDays"`
	MinOrder     int     `db:"min_order" json:"minOrder"`
	Reliability  float64 `db:"reliability" json:"reliability"`
}

// Product is a row of the product catalog.
type Product struct {
	SKU         string          `db:"sku" json:"sku"`
	Name        string          `db:"product_name" json:"productName"`
	Category    string          `db:"category" json:"category"`
	Subcategory string          `db:"subcategory" json:"subcategory"`
	VendorID    string          `db:"vendor_id" json:"vendorId"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unitCost"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	SizeRun     bool            `db:"size_run" json:"sizeRun"`
}

// Sale is one sales transaction line. UnitPrice is the realised price
// after any discount.
type Sale struct {
	TransactionID string          `db:"transaction_id" json:"transactionId"`
	SKU           string          `db:"sku" json:"sku"`
	GymID         string          `db:"gym_id" json:"gymId"`
	Date          time.Time       `db:"sale_date" json:"saleDate"`
	Quantity      int             `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unitPrice"`
	UnitCost      decimal.Decimal `db:"unit_cost" json:"unitCost"`
	DiscountPct   int             `db:"discount_pct" json:"discountPct"`
}

// Revenue returns UnitPrice × Quantity.
func (s Sale) Revenue() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// Cost returns UnitCost × Quantity.
func (s Sale) Cost() decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// Margin returns (UnitPrice − UnitCost) × Quantity.
func (s Sale) Margin() decimal.Decimal {
	return s.UnitPrice.Sub(s.UnitCost).Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// InventorySnapshot is the on-hand position of one SKU at one gym on AsOf.
type InventorySnapshot struct {
	SKU             string     `db:"sku" json:"sku"`
	GymID           string     `db:"gym_id" json:"gymId"`
	OnHand          int        `db:"on_hand" json:"onHand"`
	AsOf            time.Time  `db:"as_of" json:"asOf"`
	ParLevel        int        `db:"par_level" json:"parLevel"`
	LastReceiptDate *time.Time `db:"last_receipt_date" json:"lastReceiptDate,omitempty"`
}

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	POStatusOpen      POStatus = "Open"
	POStatusInTransit POStatus = "In Transit"
	POStatusReceived  POStatus = "Received"
)

// POStatuses lists the statuses in pipeline order.
var POStatuses = []POStatus{POStatusOpen, POStatusInTransit, POStatusReceived}

// Valid reports whether s is one of POStatuses.
func (s POStatus) Valid() bool {
	for _, v := range POStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// POLine is a single SKU line of a purchase order.
type POLine struct {
	POID     string          `db:"po_id" json:"poId"`
	SKU      string          `db:"sku" json:"sku"`
	Quantity int             `db:"quantity" json:"quantity"`
	UnitCost decimal.Decimal `db:"unit_cost" json:"unitCost"`
}

// PurchaseOrder is a PO header with its lines. ActualDelivery is nil until
// the order is received.
type PurchaseOrder struct {
	POID             string     `db:"po_id" json:"poId"`
	VendorID         string     `db:"vendor_id" json:"vendorId"`
	OrderDate        time.Time  `db:"order_date" json:"orderDate"`
	ExpectedDelivery time.Time  `db:"expected_delivery" json:"expectedDelivery"`
	ActualDelivery   *time.Time `db:"actual_delivery" json:"actualDelivery,omitempty"`
	Status           POStatus   `db:"status" json:"status"`
	Lines            []POLine   `db:"-" json:"lines"`
}

// Delivered reports whether the order has an actual delivery date.
func (po PurchaseOrder) Delivered() bool {
	return po.ActualDelivery != nil
}

// TotalUnits sums the line quantities.
func (po PurchaseOrder) TotalUnits() int {
	var n int
	for _, l := range po.Lines {
		n += l.Quantity
	}
	return n
}

// TotalCost sums quantity × unit cost over the lines.
func (po PurchaseOrder) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, l := range po.Lines {
		total = total.Add(l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Dataset holds the raw tables of one run. Tables are read-only once built.
type Dataset struct {
	Gyms           []GymLocation
	Vendors        []Vendor
	Products       []Product
	Sales          []Sale
	Inventory      []InventorySnapshot
	PurchaseOrders []PurchaseOrder
}
