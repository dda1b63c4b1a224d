package model

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Metric cells that can be "not applicable" use sql.NullFloat64: Valid=false
// is the sentinel and is never coerced to zero.

// GymInStock is one row of the in-stock-by-gym table.
type GymInStock struct {
	GymID        string          `db:"gym_id" json:"gymId"`
	GymName      string          `db:"gym_name" json:"gymName"`
	Region       string          `db:"region" json:"region"`
	Pairs        int             `db:"pairs" json:"pairs"`
	InStockPairs int             `db:"in_stock_pairs" json:"inStockPairs"`
	Rate         sql.NullFloat64 `db:"in_stock_rate" json:"inStockRate"`
}

// StockStatus classifies a SKU-location by weeks of supply.
type StockStatus string

const (
	StatusOutOfStock  StockStatus = "Out of Stock"
	StatusCriticalLow StockStatus = "Critical Low"
	StatusLow         StockStatus = "Low"
	StatusInStock     StockStatus = "In Stock"
	StatusOverstock   StockStatus = "Overstock"
)

// StockStatuses lists the statuses from worst shortage to excess.
var StockStatuses = []StockStatus{StatusOutOfStock, StatusCriticalLow, StatusLow, StatusInStock, StatusOverstock}

// SupplyPosition is the weeks-of-supply view of one SKU-location.
// Infinite is set when there is stock but no trailing sales; WeeksOfSupply
// is then not valid.
type SupplyPosition struct {
	SKU            string          `json:"sku"`
	ProductName    string          `json:"productName"`
	Category       string          `json:"category"`
	VendorID       string          `json:"vendorId"`
	GymID          string          `json:"gymId"`
	Region         string          `json:"region"`
	OnHand         int             `json:"onHand"`
	TrailingUnits  int             `json:"trailingUnits"`
	AvgWeeklySales float64         `json:"avgWeeklySales"`
	WeeksOfSupply  sql.NullFloat64 `json:"weeksOfSupply"`
	Infinite       bool            `json:"infinite"`
	Overstock      bool            `json:"overstock"`
	Status         StockStatus     `json:"status"`
	ValueAtCost    decimal.Decimal `json:"valueAtCost"`
	ValueAtRetail  decimal.Decimal `json:"valueAtRetail"`
}

// MarginRow aggregates sales lines by a key. MarginPct is revenue weighted.
type MarginRow struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Margin    decimal.Decimal `json:"margin"`
	MarginPct sql.NullFloat64 `json:"marginPct"`
}

// SalesRow is revenue and volume for a grouping key.
// AvgUnitPrice is revenue per unit sold.
type SalesRow struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Revenue      decimal.Decimal `json:"revenue"`
	Units        int             `json:"units"`
	Lines        int             `json:"lines"`
	AvgUnitPrice sql.NullFloat64 `json:"avgUnitPrice"`
}

// MonthlyRow is one calendar month of the seasonality trend.
type MonthlyRow struct {
	Month   int             `json:"month"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
	Margin  decimal.Decimal `json:"margin"`
	Units   int             `json:"units"`
}

// MonthlyCategoryUnits is units sold for a category in a calendar month.
type MonthlyCategoryUnits struct {
	Month    int    `json:"month"`
	Category string `json:"category"`
	Units    int    `json:"units"`
}

// VendorScore is one vendor's delivery scorecard. Rates and averages are
// computed over delivered orders only.
type VendorScore struct {
	VendorID        string          `db:"vendor_id" json:"vendorId"`
	VendorName      string          `db:"vendor_name" json:"vendorName"`
	POs             int             `db:"pos" json:"pos"`
	Delivered       int             `db:"delivered" json:"delivered"`
	OnTime          int             `db:"on_time" json:"onTime"`
	OnTimeRate      sql.NullFloat64 `db:"on_time_rate" json:"onTimeRate"`
	AvgLeadTimeDays sql.NullFloat64 `db:"avg_lead_time_days" json:"avgLeadTimeDays"`
	AvgVarianceDays sql.NullFloat64 `db:"avg_variance_days" json:"avgVarianceDays"`
	Spend           decimal.Decimal `db:"spend" json:"spend"`
}

// POStatusCount is the pipeline count and value for one status.
type POStatusCount struct {
	Status POStatus        `json:"status"`
	Count  int             `json:"count"`
	Units  int             `json:"units"`
	Value  decimal.Decimal `json:"value"`
}

// POMonth is PO volume for one order month (YYYY-MM).
type POMonth struct {
	Month string          `json:"month"`
	POs   int             `json:"pos"`
	Units int             `json:"units"`
	Value decimal.Decimal `json:"value"`
}

// AgingBand is a bucket of SKU-locations by days since last movement.
// MaxDays < 0 means the band is open ended.
type AgingBand struct {
	Label   string          `json:"label"`
	MinDays int             `json:"minDays"`
	MaxDays int             `json:"maxDays"`
	Pairs   int             `json:"pairs"`
	Units   int             `json:"units"`
	Value   decimal.Decimal `json:"value"`
}

// ValueRow is inventory value at cost for a grouping key.
type ValueRow struct {
	Key   string          `json:"key"`
	Name  string          `json:"name"`
	Pairs int             `json:"pairs"`
	Units int             `json:"units"`
	Value decimal.Decimal `json:"value"`
}

// AllocationClass classifies on-hand stock against sales velocity.
type AllocationClass string

const (
	AllocationUnder    AllocationClass = "Under-allocated"
	AllocationBalanced AllocationClass = "Balanced"
	AllocationOver     AllocationClass = "Over-allocated"
	AllocationIdle     AllocationClass = "Idle"
)

// AllocationPosition scores one SKU-location. Index is on-hand divided by
// the target stock (weekly velocity × target weeks); 1.0 is exactly on target.
type AllocationPosition struct {
	SKU            string          `json:"sku"`
	GymID          string          `json:"gymId"`
	OnHand         int             `json:"onHand"`
	WeeklyVelocity float64         `json:"weeklyVelocity"`
	TargetUnits    float64         `json:"targetUnits"`
	Index          sql.NullFloat64 `json:"index"`
	Infinite       bool            `json:"infinite"`
	Class          AllocationClass `json:"class"`
}

// GymAllocation rolls allocation positions up to a gym.
type GymAllocation struct {
	GymID          string          `json:"gymId"`
	GymName        string          `json:"gymName"`
	Region         string          `json:"region"`
	OnHand         int             `json:"onHand"`
	WeeklyVelocity float64         `json:"weeklyVelocity"`
	Index          sql.NullFloat64 `json:"index"`
	Infinite       bool            `json:"infinite"`
	Class          AllocationClass `json:"class"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	Revenue        decimal.Decimal `json:"revenue"`
	InvToSalesPct  sql.NullFloat64 `json:"invToSalesPct"`
	Over           int             `json:"over"`
	Under          int             `json:"under"`
	Balanced       int             `json:"balanced"`
	Idle           int             `json:"idle"`
}

// RegionStockStatus is the stock-status mix of a region's SKU-locations.
type RegionStockStatus struct {
	Region string              `json:"region"`
	Pairs  int                 `json:"pairs"`
	Counts map[StockStatus]int `json:"counts"`
}

// Share returns the percentage of the region's pairs with status s.
func (r RegionStockStatus) Share(s StockStatus) sql.NullFloat64 {
	if r.Pairs == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(r.Counts[s]) / float64(r.Pairs) * 100, Valid: true}
}

// ProductRank is a product's position in the seller ranking.
type ProductRank struct {
	Rank     int             `json:"rank"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	VendorID string          `json:"vendorId"`
	Revenue  decimal.Decimal `json:"revenue"`
	Units    int             `json:"units"`
}

// CategoryDeepDive focuses the sales and in-stock views on one category.
type CategoryDeepDive struct {
	Category           string       `json:"category"`
	ProductRevenue     []SalesRow   `json:"productRevenue"`
	SubcategoryRevenue []SalesRow   `json:"subcategoryRevenue"`
	InStockByGym       []GymInStock `json:"inStockByGym"`
	MonthlyRevenue     []MonthlyRow `json:"monthlyRevenue"`
}

// KPIs are the headline numbers of a run.
type KPIs struct {
	TotalRevenue       decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
	TotalCOGS          decimal.Decimal `db:"total_cogs" json:"totalCogs"`
	GrossMargin        decimal.Decimal `db:"gross_margin" json:"grossMargin"`
	GrossMarginPct     sql.NullFloat64 `db:"gross_margin_pct" json:"grossMarginPct"`
	UnitsSold          int             `db:"units_sold" json:"unitsSold"`
	Pairs              int             `db:"pairs" json:"pairs"`
	InStockRate        sql.NullFloat64 `db:"in_stock_rate" json:"inStockRate"`
	OutOfStockPairs    int             `db:"out_of_stock_pairs" json:"outOfStockPairs"`
	OverstockPairs     int             `db:"overstock_pairs" json:"overstockPairs"`
	OverstockValue     decimal.Decimal `db:"overstock_value" json:"overstockValue"`
	InventoryAtCost    decimal.Decimal `db:"inventory_at_cost" json:"inventoryAtCost"`
	InventoryAtRetail  decimal.Decimal `db:"inventory_at_retail" json:"inventoryAtRetail"`
	OnTimeRate         sql.NullFloat64 `db:"on_time_rate" json:"onTimeRate"`
	POCount            int             `db:"po_count" json:"poCount"`
	POSpend            decimal.Decimal `db:"po_spend" json:"poSpend"`
	TopCategory        string          `db:"top_category" json:"topCategory"`
	TopCategoryRevenue decimal.Decimal `db:"top_category_revenue" json:"topCategoryRevenue"`
	TopGyms            []SalesRow      `db:"-" json:"topGyms"`
}
