package export

import (
	"retaildash/aggregation"
	"retaildash/model"
)

// Metric table header rows.
var (
	InStockHeader       = []string{"gym_id", "gym_name", "region", "pairs", "in_stock_pairs", "in_stock_rate"}
	SupplyHeader        = []string{"sku", "product_name", "category", "vendor_id", "gym_id", "region", "on_hand", "trailing_units", "avg_weekly_sales", "weeks_of_supply", "overstock", "stock_status", "value_at_cost", "value_at_retail"}
	MarginHeader        = []string{"key", "name", "units", "revenue", "cost", "margin", "margin_pct"}
	SalesHeaderMetric   = []string{"key", "name", "revenue", "units", "lines", "avg_unit_price"}
	MonthlyHeader       = []string{"month", "label", "revenue", "margin", "units"}
	CategoryUnitsHeader = []string{"month", "category", "units"}
	ScorecardHeader     = []string{"vendor_id", "vendor_name", "pos", "delivered", "on_time", "on_time_rate", "avg_lead_time_days", "avg_variance_days", "spend"}
	POStatusHeader      = []string{"status", "count", "units", "value"}
	POMonthHeader       = []string{"month", "pos", "units", "value"}
	AgingHeader         = []string{"band", "min_days", "max_days", "pairs", "units", "value"}
	ValueHeader         = []string{"key", "name", "pairs", "units", "value"}
	GymAllocationHeader = []string{"gym_id", "gym_name", "region", "on_hand", "weekly_velocity", "allocation_index", "class", "inventory_value", "revenue", "inv_to_sales_pct", "over", "under", "balanced", "idle"}
	PositionHeader      = []string{"sku", "gym_id", "on_hand", "weekly_velocity", "target_units", "allocation_index", "class"}
	RankHeader          = []string{"rank", "sku", "product_name", "category", "vendor_id", "revenue", "units"}
	KPIHeader           = []string{"metric", "value"}
)

// RegionStatusHeader is region, pairs and one share column per stock status.
var RegionStatusHeader = func() []string {
	h := []string{"region", "pairs"}
	for _, s := range model.StockStatuses {
		h = append(h, statusColumn(s))
	}
	return h
}()

func statusColumn(s model.StockStatus) string {
	switch s {
	case model.StatusOutOfStock:
		return "out_of_stock_pct"
	case model.StatusCriticalLow:
		return "critical_low_pct"
	case model.StatusLow:
		return "low_pct"
	case model.StatusInStock:
		return "in_stock_pct"
	default:
		return "overstock_pct"
	}
}

// Tables renders every metric group of the report as a named table.
func Tables(r *aggregation.Report) []Table {
	return []Table{
		inStockTable("instock_by_gym", r.InStockByGym),
		supplyTable(r.SupplyPositions),
		marginTable("margin_by_category", r.Margin.ByCategory),
		marginTable("margin_by_vendor", r.Margin.ByVendor),
		salesTable("sales_by_category", r.SalesByCategory),
		salesTable("sales_by_region", r.SalesByRegion),
		monthlyTable("monthly_trend", r.MonthlyTrend),
		categoryUnitsTable(r.MonthlyCategoryUnits),
		scorecardTable(r.VendorScorecard),
		poStatusTable(r.POPipeline.ByStatus),
		poMonthTable(r.POPipeline.ByMonth),
		agingTable(r.AgedInventory),
		valueTable("overstock_by_category", r.AgedInventory.OverstockByCategory),
		valueTable("slow_movers_by_vendor", r.AgedInventory.SlowMoversByVendor),
		gymAllocationTable(r.Allocation.ByGym),
		positionTable(r.Allocation.Positions),
		regionStatusTable(r.Allocation.RegionStatus),
		rankTable("top_sellers", r.Sellers.Top),
		rankTable("bottom_sellers", r.Sellers.Bottom),
		salesTable("deep_dive_products", r.DeepDive.ProductRevenue),
		kpiTable(r.KPIs),
	}
}

func inStockTable(name string, rows []model.GymInStock) Table {
	t := Table{Name: name, Header: InStockHeader}
	for _, g := range rows {
		t.Rows = append(t.Rows, []string{g.GymID, g.GymName, g.Region, itoa(g.Pairs), itoa(g.InStockPairs), ratio(g.Rate, 1)})
	}
	return t
}

func supplyTable(rows []model.SupplyPosition) Table {
	t := Table{Name: "weeks_of_supply", Header: SupplyHeader}
	for _, p := range rows {
		t.Rows = append(t.Rows, []string{
			p.SKU, p.ProductName, p.Category, p.VendorID, p.GymID, p.Region,
			itoa(p.OnHand), itoa(p.TrailingUnits), num(p.AvgWeeklySales, 2),
			weeks(p.WeeksOfSupply, p.Infinite, 1), boolean(p.Overstock), string(p.Status),
			money(p.ValueAtCost), money(p.ValueAtRetail),
		})
	}
	return t
}

func marginTable(name string, rows []model.MarginRow) Table {
	t := Table{Name: name, Header: MarginHeader}
	for _, m := range rows {
		t.Rows = append(t.Rows, []string{
			m.Key, m.Name, itoa(m.Units), money(m.Revenue), money(m.Cost), money(m.Margin), ratio(m.MarginPct, 1),
		})
	}
	return t
}

func salesTable(name string, rows []model.SalesRow) Table {
	t := Table{Name: name, Header: SalesHeaderMetric}
	for _, s := range rows {
		t.Rows = append(t.Rows, []string{s.Key, s.Name, money(s.Revenue), itoa(s.Units), itoa(s.Lines), ratio(s.AvgUnitPrice, 2)})
	}
	return t
}

func monthlyTable(name string, rows []model.MonthlyRow) Table {
	t := Table{Name: name, Header: MonthlyHeader}
	for _, m := range rows {
		t.Rows = append(t.Rows, []string{itoa(m.Month), m.Label, money(m.Revenue), money(m.Margin), itoa(m.Units)})
	}
	return t
}

func categoryUnitsTable(rows []model.MonthlyCategoryUnits) Table {
	t := Table{Name: "monthly_category_units", Header: CategoryUnitsHeader}
	for _, m := range rows {
		t.Rows = append(t.Rows, []string{itoa(m.Month), m.Category, itoa(m.Units)})
	}
	return t
}

func scorecardTable(rows []model.VendorScore) Table {
	t := Table{Name: "vendor_scorecard", Header: ScorecardHeader}
	for _, v := range rows {
		t.Rows = append(t.Rows, []string{
			v.VendorID, v.VendorName, itoa(v.POs), itoa(v.Delivered), itoa(v.OnTime),
			ratio(v.OnTimeRate, 1), ratio(v.AvgLeadTimeDays, 1), ratio(v.AvgVarianceDays, 1), money(v.Spend),
		})
	}
	return t
}

func poStatusTable(rows []model.POStatusCount) Table {
	t := Table{Name: "po_pipeline_status", Header: POStatusHeader}
	for _, s := range rows {
		t.Rows = append(t.Rows, []string{string(s.Status), itoa(s.Count), itoa(s.Units), money(s.Value)})
	}
	return t
}

func poMonthTable(rows []model.POMonth) Table {
	t := Table{Name: "po_pipeline_monthly", Header: POMonthHeader}
	for _, m := range rows {
		t.Rows = append(t.Rows, []string{m.Month, itoa(m.POs), itoa(m.Units), money(m.Value)})
	}
	return t
}

func agingTable(a aggregation.AgedInventory) Table {
	t := Table{Name: "aged_inventory", Header: AgingHeader}
	for _, b := range a.Bands {
		maxDays := ""
		if b.MaxDays >= 0 {
			maxDays = itoa(b.MaxDays)
		}
		t.Rows = append(t.Rows, []string{b.Label, itoa(b.MinDays), maxDays, itoa(b.Pairs), itoa(b.Units), money(b.Value)})
	}
	return t
}

func valueTable(name string, rows []model.ValueRow) Table {
	t := Table{Name: name, Header: ValueHeader}
	for _, v := range rows {
		t.Rows = append(t.Rows, []string{v.Key, v.Name, itoa(v.Pairs), itoa(v.Units), money(v.Value)})
	}
	return t
}

func gymAllocationTable(rows []model.GymAllocation) Table {
	t := Table{Name: "allocation_by_gym", Header: GymAllocationHeader}
	for _, g := range rows {
		t.Rows = append(t.Rows, []string{
			g.GymID, g.GymName, g.Region, itoa(g.OnHand), num(g.WeeklyVelocity, 2),
			weeks(g.Index, g.Infinite, 2), string(g.Class), money(g.InventoryValue), money(g.Revenue),
			ratio(g.InvToSalesPct, 1), itoa(g.Over), itoa(g.Under), itoa(g.Balanced), itoa(g.Idle),
		})
	}
	return t
}

func positionTable(rows []model.AllocationPosition) Table {
	t := Table{Name: "allocation_positions", Header: PositionHeader}
	for _, p := range rows {
		t.Rows = append(t.Rows, []string{
			p.SKU, p.GymID, itoa(p.OnHand), num(p.WeeklyVelocity, 2), num(p.TargetUnits, 1),
			weeks(p.Index, p.Infinite, 2), string(p.Class),
		})
	}
	return t
}

func regionStatusTable(rows []model.RegionStockStatus) Table {
	t := Table{Name: "region_stock_status", Header: RegionStatusHeader}
	for _, r := range rows {
		row := []string{r.Region, itoa(r.Pairs)}
		for _, s := range model.StockStatuses {
			row = append(row, ratio(r.Share(s), 1))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func rankTable(name string, rows []model.ProductRank) Table {
	t := Table{Name: name, Header: RankHeader}
	for _, p := range rows {
		t.Rows = append(t.Rows, []string{itoa(p.Rank), p.SKU, p.Name, p.Category, p.VendorID, money(p.Revenue), itoa(p.Units)})
	}
	return t
}

// kpiTable is a long metric/value table so new KPIs do not change the header.
func kpiTable(k model.KPIs) Table {
	t := Table{Name: "kpis", Header: KPIHeader}
	add := func(name, value string) {
		t.Rows = append(t.Rows, []string{name, value})
	}
	add("total_revenue", money(k.TotalRevenue))
	add("total_cogs", money(k.TotalCOGS))
	add("gross_margin", money(k.GrossMargin))
	add("gross_margin_pct", ratio(k.GrossMarginPct, 1))
	add("units_sold", itoa(k.UnitsSold))
	add("pairs", itoa(k.Pairs))
	add("in_stock_rate", ratio(k.InStockRate, 1))
	add("out_of_stock_pairs", itoa(k.OutOfStockPairs))
	add("overstock_pairs", itoa(k.OverstockPairs))
	add("overstock_value", money(k.OverstockValue))
	add("inventory_at_cost", money(k.InventoryAtCost))
	add("inventory_at_retail", money(k.InventoryAtRetail))
	add("on_time_rate", ratio(k.OnTimeRate, 1))
	add("po_count", itoa(k.POCount))
	add("po_spend", money(k.POSpend))
	add("top_category", k.TopCategory)
	add("top_category_revenue", money(k.TopCategoryRevenue))
	for i, g := range k.TopGyms {
		add("top_gym_"+itoa(i+1), g.Key)
	}
	return t
}
