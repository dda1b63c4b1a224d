// Package aggregation turns the raw retail tables into the named metric
// tables behind every chart, export and summary.
//
// Every metric group is a pure function of the dataset and Options. Rate
// and ratio cells use sql.NullFloat64; Valid=false marks "not applicable"
// and is skipped by averages rather than read as zero.
package aggregation

import (
	"fmt"
	"time"

	"retaildash/model"

	"go.uber.org/zap"
)

// Report holds every metric group of one run. It is read-only once built.
type Report struct {
	Options              Options
	InStockByGym         []model.GymInStock
	SupplyPositions      []model.SupplyPosition
	Margin               MarginSummary
	SalesByCategory      []model.SalesRow
	SalesByRegion        []model.SalesRow
	SalesByGym           []model.SalesRow
	MonthlyTrend         []model.MonthlyRow
	MonthlyCategoryUnits []model.MonthlyCategoryUnits
	VendorScorecard      []model.VendorScore
	POPipeline           POPipeline
	AgedInventory        AgedInventory
	Allocation           Allocation
	Sellers              Sellers
	DeepDive             model.CategoryDeepDive
	KPIs                 model.KPIs
}

// Compute checks references and computes every metric group. A dangling
// SKU, gym or vendor fails the whole computation with a
// *MissingReferenceError.
func Compute(ds model.Dataset, opts Options) (*Report, error) {
	start := time.Now()

	// 1. References and options
	if err := CheckReferences(ds); err != nil {
		return nil, fmt.Errorf("check references: %w", err)
	}
	opts = opts.withDefaults(ds)
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	idx := newIndex(ds, opts)

	// 2. Inventory-derived groups
	r := &Report{Options: opts}
	r.InStockByGym = inStockByGym(idx, nil)
	r.SupplyPositions = supplyPositions(idx)

	// 3. Sales-derived groups
	r.Margin = margin(idx)
	r.SalesByCategory = salesByCategory(idx)
	r.SalesByRegion = salesByRegion(idx)
	r.SalesByGym = salesByGym(idx)
	r.MonthlyTrend = monthlyTrend(idx, nil)
	r.MonthlyCategoryUnits = monthlyCategoryUnits(idx)
	r.Sellers = topBottomSellers(idx)

	// 4. Purchasing
	r.VendorScorecard = vendorScorecard(idx)
	r.POPipeline = poPipeline(idx)

	// 5. Groups combining inventory and velocity
	r.AgedInventory = agedInventory(idx, r.SupplyPositions)
	r.Allocation = allocation(idx, r.SupplyPositions, r.SalesByGym)
	r.DeepDive = categoryDeepDive(idx)
	r.KPIs = kpis(idx, r.Margin, r.SupplyPositions, r.SalesByCategory, r.SalesByGym)

	zap.L().Info("metrics computed",
		zap.String("as_of", opts.AsOf.Format(model.DateLayout)),
		zap.Int("pairs", len(r.SupplyPositions)),
		zap.Int("sales", len(ds.Sales)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}
