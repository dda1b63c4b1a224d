package render

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"retaildash/aggregation"
	"retaildash/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func value(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}

func moneyBar(label string, d decimal.Decimal) Bar {
	f := d.InexactFloat64()
	return Bar{Label: label, Value: value(f), Text: printer.Sprintf("$%.0f", f)}
}

func countBar(label string, n int) Bar {
	return Bar{Label: label, Value: value(float64(n)), Text: printer.Sprintf("%d", n)}
}

func pctBar(label string, v sql.NullFloat64) Bar {
	return Bar{Label: label, Value: v, Text: fmt.Sprintf("%.1f%%", v.Float64)}
}

func numBar(label string, v sql.NullFloat64, format string) Bar {
	return Bar{Label: label, Value: v, Text: fmt.Sprintf(format, v.Float64)}
}

func indexBar(label string, v sql.NullFloat64, infinite bool) Bar {
	if infinite {
		return Bar{Label: label, Value: v, Text: "inf", Full: true}
	}
	return numBar(label, v, "%.2f")
}

// Slug turns a category name into a file-name fragment.
func Slug(s string) string {
	var sb strings.Builder
	underscore := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			underscore = false
		} else if !underscore && sb.Len() > 0 {
			sb.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}

// Charts builds the thirteen dashboard charts of a report.
func Charts(r *aggregation.Report) []Chart {
	return []Chart{
		executiveDashboard(r),
		salesByCategory(r),
		salesByRegion(r),
		marginAnalysis(r),
		monthlyTrends(r),
		inStockByGym(r),
		inventoryStatus(r),
		agedInventory(r),
		vendorScorecard(r),
		topBottomSellers(r),
		allocationAnalysis(r),
		poPipeline(r),
		deepDive(r),
	}
}

func executiveDashboard(r *aggregation.Report) Chart {
	k := r.KPIs
	subtitle := printer.Sprintf("Revenue $%.0f | Gross margin %s | In-stock %s | On-time %s | As of %s",
		k.TotalRevenue.InexactFloat64(), pctText(k.GrossMarginPct), pctText(k.InStockRate), pctText(k.OnTimeRate),
		r.Options.AsOf.Format(model.DateLayout))

	revenue := Panel{Title: "Revenue by Region"}
	for _, s := range r.SalesByRegion {
		revenue.Bars = append(revenue.Bars, moneyBar(s.Key, s.Revenue))
	}
	margin := Panel{Title: "Gross Margin % by Category"}
	for _, m := range r.Margin.ByCategory {
		margin.Bars = append(margin.Bars, pctBar(m.Key, m.MarginPct))
	}
	gyms := Panel{Title: "Top Gyms by Revenue"}
	for _, g := range k.TopGyms {
		gyms.Bars = append(gyms.Bars, moneyBar(g.Name, g.Revenue))
	}
	vendors := Panel{Title: "Vendor On-Time Delivery %"}
	for _, v := range r.VendorScorecard {
		vendors.Bars = append(vendors.Bars, pctBar(v.VendorName, v.OnTimeRate))
	}
	return Chart{Name: "00_executive_dashboard", Title: "Executive Dashboard", Subtitle: subtitle, Panels: []Panel{revenue, margin, gyms, vendors}}
}

func pctText(v sql.NullFloat64) string {
	if !v.Valid {
		return naLabel
	}
	return fmt.Sprintf("%.1f%%", v.Float64)
}

func salesRowPanels(rows []model.SalesRow, what string) []Panel {
	revenue := Panel{Title: "Revenue by " + what}
	units := Panel{Title: "Units Sold by " + what}
	price := Panel{Title: "Average Unit Price by " + what}
	for _, s := range rows {
		label := s.Key
		if s.Name != "" {
			label = s.Name
		}
		revenue.Bars = append(revenue.Bars, moneyBar(label, s.Revenue))
		units.Bars = append(units.Bars, countBar(label, s.Units))
		price.Bars = append(price.Bars, numBar(label, s.AvgUnitPrice, "$%.2f"))
	}
	return []Panel{revenue, units, price}
}

func salesByCategory(r *aggregation.Report) Chart {
	return Chart{Name: "01_sales_by_category", Title: "Sales by Category", Panels: salesRowPanels(r.SalesByCategory, "Category")}
}

func salesByRegion(r *aggregation.Report) Chart {
	panels := salesRowPanels(r.SalesByRegion, "Region")
	gyms := Panel{Title: "Revenue by Gym"}
	for _, g := range r.SalesByGym {
		gyms.Bars = append(gyms.Bars, moneyBar(g.Name, g.Revenue))
	}
	return Chart{Name: "02_sales_by_region", Title: "Sales by Region", Panels: append(panels, gyms)}
}

func marginAnalysis(r *aggregation.Report) Chart {
	pctCat := Panel{Title: "Gross Margin % by Category"}
	dollarsCat := Panel{Title: "Gross Margin $ by Category"}
	for _, m := range r.Margin.ByCategory {
		pctCat.Bars = append(pctCat.Bars, pctBar(m.Key, m.MarginPct))
		dollarsCat.Bars = append(dollarsCat.Bars, moneyBar(m.Key, m.Margin))
	}
	pctVendor := Panel{Title: "Gross Margin % by Vendor"}
	dollarsVendor := Panel{Title: "Gross Margin $ by Vendor"}
	for _, m := range r.Margin.ByVendor {
		pctVendor.Bars = append(pctVendor.Bars, pctBar(m.Name, m.MarginPct))
		dollarsVendor.Bars = append(dollarsVendor.Bars, moneyBar(m.Name, m.Margin))
	}
	return Chart{
		Name: "03_margin_analysis", Title: "Margin Analysis",
		Subtitle: "Overall gross margin " + pctText(r.Margin.Total.MarginPct),
		Panels:   []Panel{pctCat, dollarsCat, pctVendor, dollarsVendor},
	}
}

func monthlyTrends(r *aggregation.Report) Chart {
	revenue := Panel{Title: "Revenue by Month"}
	margin := Panel{Title: "Gross Margin by Month"}
	units := Panel{Title: "Units by Month"}
	for _, m := range r.MonthlyTrend {
		revenue.Bars = append(revenue.Bars, moneyBar(m.Label, m.Revenue))
		margin.Bars = append(margin.Bars, moneyBar(m.Label, m.Margin))
		units.Bars = append(units.Bars, countBar(m.Label, m.Units))
	}
	panels := []Panel{revenue, margin, units}

	byCategory := make(map[string]*Panel)
	var order []string
	for _, m := range r.MonthlyCategoryUnits {
		p, ok := byCategory[m.Category]
		if !ok {
			p = &Panel{Title: m.Category + " Units by Month"}
			byCategory[m.Category] = p
			order = append(order, m.Category)
		}
		p.Bars = append(p.Bars, countBar(monthLabel(m.Month), m.Units))
	}
	for _, c := range order {
		panels = append(panels, *byCategory[c])
	}
	return Chart{Name: "04_monthly_trends", Title: "Monthly Trends", Subtitle: "Calendar months, all years combined", Panels: panels}
}

func monthLabel(m int) string {
	if m < 1 || m > 12 {
		return fmt.Sprint(m)
	}
	return [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}[m-1]
}

func inStockByGym(r *aggregation.Report) Chart {
	gyms := Panel{Title: "In-Stock Rate by Gym"}
	type tally struct{ pairs, in int }
	regions := make(map[string]*tally)
	var order []string
	for _, g := range r.InStockByGym {
		gyms.Bars = append(gyms.Bars, pctBar(g.GymName, g.Rate))
		t, ok := regions[g.Region]
		if !ok {
			t = &tally{}
			regions[g.Region] = t
			order = append(order, g.Region)
		}
		t.pairs += g.Pairs
		t.in += g.InStockPairs
	}
	byRegion := Panel{Title: "In-Stock Rate by Region"}
	for _, name := range order {
		t := regions[name]
		v := sql.NullFloat64{}
		if t.pairs > 0 {
			v = value(float64(t.in) / float64(t.pairs) * 100)
		}
		byRegion.Bars = append(byRegion.Bars, pctBar(name, v))
	}
	return Chart{Name: "05_instock_by_gym", Title: "In-Stock Rate", Subtitle: "Overall " + pctText(r.KPIs.InStockRate), Panels: []Panel{gyms, byRegion}}
}

func inventoryStatus(r *aggregation.Report) Chart {
	counts := make(map[model.StockStatus]int)
	valueByCategory := make(map[string]decimal.Decimal)
	var categories []string
	for _, p := range r.SupplyPositions {
		counts[p.Status]++
		if _, ok := valueByCategory[p.Category]; !ok {
			categories = append(categories, p.Category)
		}
		valueByCategory[p.Category] = valueByCategory[p.Category].Add(p.ValueAtCost)
	}
	status := Panel{Title: "SKU-Locations by Stock Status"}
	for _, s := range model.StockStatuses {
		status.Bars = append(status.Bars, countBar(string(s), counts[s]))
	}
	worth := Panel{Title: "Inventory Value at Cost by Category"}
	for _, c := range categories {
		worth.Bars = append(worth.Bars, moneyBar(c, valueByCategory[c]))
	}
	oos := Panel{Title: "Out-of-Stock Share by Region"}
	over := Panel{Title: "Overstock Share by Region"}
	for _, rs := range r.Allocation.RegionStatus {
		oos.Bars = append(oos.Bars, pctBar(rs.Region, rs.Share(model.StatusOutOfStock)))
		over.Bars = append(over.Bars, pctBar(rs.Region, rs.Share(model.StatusOverstock)))
	}
	return Chart{Name: "06_inventory_status", Title: "Inventory Status", Panels: []Panel{status, worth, oos, over}}
}

func agedInventory(r *aggregation.Report) Chart {
	a := r.AgedInventory
	units := Panel{Title: "Units by Age Band"}
	worth := Panel{Title: "Value at Cost by Age Band"}
	for _, b := range a.Bands {
		units.Bars = append(units.Bars, countBar(b.Label, b.Units))
		worth.Bars = append(worth.Bars, moneyBar(b.Label, b.Value))
	}
	overstock := Panel{Title: "Overstock Value by Category"}
	for _, v := range a.OverstockByCategory {
		overstock.Bars = append(overstock.Bars, moneyBar(v.Key, v.Value))
	}
	slow := Panel{Title: "Slow-Mover Value by Vendor"}
	for _, v := range a.SlowMoversByVendor {
		slow.Bars = append(slow.Bars, moneyBar(v.Name, v.Value))
	}
	subtitle := printer.Sprintf("%d SKU-locations, %d units, $%.0f at cost", a.TotalPairs, a.TotalUnits, a.TotalValue.InexactFloat64())
	return Chart{Name: "07_aged_inventory", Title: "Aged Inventory", Subtitle: subtitle, Panels: []Panel{units, worth, overstock, slow}}
}

func vendorScorecard(r *aggregation.Report) Chart {
	onTime := Panel{Title: "On-Time Delivery %"}
	lead := Panel{Title: "Average Lead Time (days)"}
	variance := Panel{Title: "Average Delivery Variance (days)"}
	spend := Panel{Title: "PO Spend"}
	for _, v := range r.VendorScorecard {
		onTime.Bars = append(onTime.Bars, pctBar(v.VendorName, v.OnTimeRate))
		lead.Bars = append(lead.Bars, numBar(v.VendorName, v.AvgLeadTimeDays, "%.1f"))
		variance.Bars = append(variance.Bars, numBar(v.VendorName, v.AvgVarianceDays, "%+.1f"))
		spend.Bars = append(spend.Bars, moneyBar(v.VendorName, v.Spend))
	}
	return Chart{Name: "08_vendor_scorecard", Title: "Vendor Scorecard", Panels: []Panel{onTime, lead, variance, spend}}
}

func topBottomSellers(r *aggregation.Report) Chart {
	top := Panel{Title: fmt.Sprintf("Top %d Products by Revenue", len(r.Sellers.Top))}
	for _, p := range r.Sellers.Top {
		top.Bars = append(top.Bars, moneyBar(p.Name, p.Revenue))
	}
	bottom := Panel{Title: fmt.Sprintf("Bottom %d Products by Revenue", len(r.Sellers.Bottom))}
	for _, p := range r.Sellers.Bottom {
		bottom.Bars = append(bottom.Bars, moneyBar(p.Name, p.Revenue))
	}
	return Chart{Name: "09_top_bottom_sellers", Title: "Top and Bottom Sellers", Panels: []Panel{top, bottom}}
}

func allocationAnalysis(r *aggregation.Report) Chart {
	index := Panel{Title: "Allocation Index by Gym"}
	ratio := Panel{Title: "Inventory-to-Sales % by Gym"}
	var over, under, balanced, idle int
	for _, g := range r.Allocation.ByGym {
		index.Bars = append(index.Bars, indexBar(g.GymName, g.Index, g.Infinite))
		ratio.Bars = append(ratio.Bars, pctBar(g.GymName, g.InvToSalesPct))
		over += g.Over
		under += g.Under
		balanced += g.Balanced
		idle += g.Idle
	}
	classes := Panel{Title: "SKU-Locations by Allocation Class", Bars: []Bar{
		countBar(string(model.AllocationOver), over),
		countBar(string(model.AllocationBalanced), balanced),
		countBar(string(model.AllocationUnder), under),
		countBar(string(model.AllocationIdle), idle),
	}}
	subtitle := fmt.Sprintf("Index 1.0 = %.0f weeks of sales on hand", r.Options.TargetWeeks)
	return Chart{Name: "10_allocation_analysis", Title: "Allocation Analysis", Subtitle: subtitle, Panels: []Panel{index, ratio, classes}}
}

func poPipeline(r *aggregation.Report) Chart {
	count := Panel{Title: "Purchase Orders by Status"}
	worth := Panel{Title: "PO Value by Status"}
	for _, s := range r.POPipeline.ByStatus {
		count.Bars = append(count.Bars, countBar(string(s.Status), s.Count))
		worth.Bars = append(worth.Bars, moneyBar(string(s.Status), s.Value))
	}
	monthCount := Panel{Title: "Purchase Orders by Month"}
	monthValue := Panel{Title: "PO Value by Month"}
	for _, m := range r.POPipeline.ByMonth {
		monthCount.Bars = append(monthCount.Bars, countBar(m.Month, m.POs))
		monthValue.Bars = append(monthValue.Bars, moneyBar(m.Month, m.Value))
	}
	return Chart{Name: "11_po_pipeline", Title: "Purchase Order Pipeline", Panels: []Panel{count, worth, monthCount, monthValue}}
}

func deepDive(r *aggregation.Report) Chart {
	d := r.DeepDive
	products := Panel{Title: "Revenue by Product"}
	for _, p := range d.ProductRevenue {
		products.Bars = append(products.Bars, moneyBar(p.Name, p.Revenue))
	}
	subs := Panel{Title: "Revenue by Subcategory"}
	for _, s := range d.SubcategoryRevenue {
		subs.Bars = append(subs.Bars, moneyBar(s.Key, s.Revenue))
	}
	gyms := Panel{Title: "In-Stock Rate by Gym"}
	for _, g := range d.InStockByGym {
		gyms.Bars = append(gyms.Bars, pctBar(g.GymName, g.Rate))
	}
	months := Panel{Title: "Revenue by Month"}
	for _, m := range d.MonthlyRevenue {
		months.Bars = append(months.Bars, moneyBar(m.Label, m.Revenue))
	}
	return Chart{
		Name:   "12_" + Slug(d.Category) + "_deep_dive",
		Title:  d.Category + " Deep Dive",
		Panels: []Panel{products, subs, gyms, months},
	}
}
