package aggregation

import (
	"database/sql"
	"sort"

	"retaildash/model"
)

// Allocation scores how well stock is spread against demand.
type Allocation struct {
	Positions    []model.AllocationPosition
	ByGym        []model.GymAllocation
	RegionStatus []model.RegionStockStatus
}

// AllocationEfficiency computes the allocation index for every SKU-location
// and gym. The index is on-hand divided by the target stock, velocity ×
// TargetWeeks, so it rises with on-hand and falls with velocity. Stock with
// no velocity is Infinite and over-allocated; no stock and no velocity is
// Idle. Rows are ranked most over-allocated first with the sentinel last.
func AllocationEfficiency(ds model.Dataset, opts Options) Allocation {
	opts = opts.withDefaults(ds)
	idx := newIndex(ds, opts)
	return allocation(idx, supplyPositions(idx), salesByGym(idx))
}

func allocation(idx *index, positions []model.SupplyPosition, gymSales []model.SalesRow) Allocation {
	type gymAcc struct {
		row    model.GymAllocation
		target float64
	}
	gyms := make(map[string]*gymAcc, len(idx.ds.Gyms))
	for _, g := range idx.ds.Gyms {
		gyms[g.GymID] = &gymAcc{row: model.GymAllocation{GymID: g.GymID, GymName: g.Name, Region: g.Region}}
	}
	for _, r := range gymSales {
		if a, ok := gyms[r.Key]; ok {
			a.row.Revenue = r.Revenue
		}
	}

	var out Allocation
	regions := make(map[string]*model.RegionStockStatus)
	for _, reg := range idx.regions() {
		regions[reg] = &model.RegionStockStatus{Region: reg, Counts: make(map[model.StockStatus]int)}
	}

	for _, pos := range positions {
		ap := model.AllocationPosition{
			SKU:            pos.SKU,
			GymID:          pos.GymID,
			OnHand:         pos.OnHand,
			WeeklyVelocity: pos.AvgWeeklySales,
			TargetUnits:    pos.AvgWeeklySales * idx.opts.TargetWeeks,
		}
		ap.Index, ap.Infinite = allocationIndex(float64(ap.OnHand), ap.TargetUnits)
		ap.Class = classify(ap.Index, ap.Infinite, idx.opts)
		out.Positions = append(out.Positions, ap)

		a, ok := gyms[pos.GymID]
		if !ok {
			continue
		}
		a.row.OnHand += pos.OnHand
		a.row.WeeklyVelocity += pos.AvgWeeklySales
		a.row.InventoryValue = a.row.InventoryValue.Add(pos.ValueAtCost)
		a.target += ap.TargetUnits
		switch ap.Class {
		case model.AllocationOver:
			a.row.Over++
		case model.AllocationUnder:
			a.row.Under++
		case model.AllocationBalanced:
			a.row.Balanced++
		default:
			a.row.Idle++
		}

		if r, ok := regions[pos.Region]; ok {
			r.Pairs++
			r.Counts[pos.Status]++
		}
	}

	for _, g := range idx.ds.Gyms {
		a := gyms[g.GymID]
		a.row.Index, a.row.Infinite = allocationIndex(float64(a.row.OnHand), a.target)
		a.row.Class = classify(a.row.Index, a.row.Infinite, idx.opts)
		a.row.InvToSalesPct = decimalPercent(a.row.InventoryValue, a.row.Revenue)
		out.ByGym = append(out.ByGym, a.row)
	}
	for _, reg := range idx.regions() {
		out.RegionStatus = append(out.RegionStatus, *regions[reg])
	}

	sort.SliceStable(out.Positions, func(i, j int) bool {
		a, b := out.Positions[i], out.Positions[j]
		if c := compareIndex(a.Index, a.Infinite, b.Index, b.Infinite); c != 0 {
			return c < 0
		}
		if a.GymID != b.GymID {
			return a.GymID < b.GymID
		}
		return a.SKU < b.SKU
	})
	sort.SliceStable(out.ByGym, func(i, j int) bool {
		a, b := out.ByGym[i], out.ByGym[j]
		if c := compareIndex(a.Index, a.Infinite, b.Index, b.Infinite); c != 0 {
			return c < 0
		}
		return a.GymID < b.GymID
	})
	return out
}

// allocationIndex is onHand / target. A zero target with stock is infinite;
// a zero target without stock is not applicable.
func allocationIndex(onHand, target float64) (sql.NullFloat64, bool) {
	if target <= 0 {
		if onHand > 0 {
			return na, true
		}
		return na, false
	}
	return valid(onHand / target), false
}

func classify(index sql.NullFloat64, infinite bool, opts Options) model.AllocationClass {
	switch {
	case infinite:
		return model.AllocationOver
	case !index.Valid:
		return model.AllocationIdle
	case index.Float64 > opts.OverIndex:
		return model.AllocationOver
	case index.Float64 < opts.UnderIndex:
		return model.AllocationUnder
	}
	return model.AllocationBalanced
}

// compareIndex orders for a descending ranking: infinite first, then by
// index high to low, then the sentinel.
func compareIndex(a sql.NullFloat64, aInf bool, b sql.NullFloat64, bInf bool) int {
	switch {
	case aInf && !bInf:
		return -1
	case !aInf && bInf:
		return 1
	case aInf && bInf:
		return 0
	}
	c := compareNull(a, b)
	if a.Valid && b.Valid {
		return -c
	}
	return c
}
