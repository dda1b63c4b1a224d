package aggregation

import (
	"database/sql"
	"sort"

	"retaildash/model"
)

// VendorScorecard scores every vendor on delivered purchase orders.
// On-time means delivered on or before the expected date. Open and
// in-transit orders count toward POs and spend only. Rates and averages
// are the sentinel for a vendor with nothing delivered.
func VendorScorecard(ds model.Dataset, opts Options) []model.VendorScore {
	opts = opts.withDefaults(ds)
	return vendorScorecard(newIndex(ds, opts))
}

func vendorScorecard(idx *index) []model.VendorScore {
	type acc struct {
		score    model.VendorScore
		lead     int
		variance int
	}
	byVendor := make(map[string]*acc, len(idx.ds.Vendors))
	order := make([]*acc, 0, len(idx.ds.Vendors))
	for _, v := range idx.ds.Vendors {
		a := &acc{score: model.VendorScore{VendorID: v.VendorID, VendorName: v.Name}}
		byVendor[v.VendorID] = a
		order = append(order, a)
	}

	for _, po := range idx.ds.PurchaseOrders {
		a, ok := byVendor[po.VendorID]
		if !ok {
			continue
		}
		a.score.POs++
		a.score.Spend = a.score.Spend.Add(po.TotalCost())
		if !po.Delivered() {
			continue
		}
		lead, variance := Delivery(po)
		a.score.Delivered++
		if variance <= 0 {
			a.score.OnTime++
		}
		a.lead += lead
		a.variance += variance
	}

	out := make([]model.VendorScore, 0, len(order))
	for _, a := range order {
		s := a.score
		s.OnTimeRate = percent(float64(s.OnTime), float64(s.Delivered))
		if s.Delivered > 0 {
			s.AvgLeadTimeDays = valid(float64(a.lead) / float64(s.Delivered))
			s.AvgVarianceDays = valid(float64(a.variance) / float64(s.Delivered))
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := compareNull(out[i].OnTimeRate, out[j].OnTimeRate); c != 0 {
			// Valid before sentinel, higher rate first.
			if out[i].OnTimeRate.Valid && out[j].OnTimeRate.Valid {
				return c > 0
			}
			return c < 0
		}
		return out[i].VendorID < out[j].VendorID
	})
	return out
}

// Delivery returns lead time (actual − order) and variance (actual −
// expected) in days for a delivered order. Positive variance is late.
func Delivery(po model.PurchaseOrder) (leadDays, varianceDays int) {
	if po.ActualDelivery == nil {
		return 0, 0
	}
	return model.DaysBetween(po.OrderDate, *po.ActualDelivery), model.DaysBetween(po.ExpectedDelivery, *po.ActualDelivery)
}

// POPipeline is purchase order volume by status and by order month.
type POPipeline struct {
	ByStatus []model.POStatusCount
	ByMonth  []model.POMonth
}

// PurchaseOrderPipeline counts orders per status and per YYYY-MM order
// month. Value is Σ line quantity × unit cost.
func PurchaseOrderPipeline(ds model.Dataset, opts Options) POPipeline {
	opts = opts.withDefaults(ds)
	return poPipeline(newIndex(ds, opts))
}

func poPipeline(idx *index) POPipeline {
	status := make(map[model.POStatus]*model.POStatusCount, len(model.POStatuses))
	pipe := POPipeline{ByStatus: make([]model.POStatusCount, len(model.POStatuses))}
	for i, s := range model.POStatuses {
		pipe.ByStatus[i].Status = s
		status[s] = &pipe.ByStatus[i]
	}

	months := make(map[string]*model.POMonth)
	for _, po := range idx.ds.PurchaseOrders {
		value := po.TotalCost()
		units := po.TotalUnits()
		if c, ok := status[po.Status]; ok {
			c.Count++
			c.Units += units
			c.Value = c.Value.Add(value)
		}
		key := po.OrderDate.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &model.POMonth{Month: key}
			months[key] = m
		}
		m.POs++
		m.Units += units
		m.Value = m.Value.Add(value)
	}
	for _, m := range months {
		pipe.ByMonth = append(pipe.ByMonth, *m)
	}
	sort.Slice(pipe.ByMonth, func(i, j int) bool { return pipe.ByMonth[i].Month < pipe.ByMonth[j].Month })
	return pipe
}

// overallOnTime is the on-time rate over every delivered order.
func overallOnTime(idx *index) sql.NullFloat64 {
	var delivered, onTime int
	for _, po := range idx.ds.PurchaseOrders {
		if !po.Delivered() {
			continue
		}
		delivered++
		if _, v := Delivery(po); v <= 0 {
			onTime++
		}
	}
	return percent(float64(onTime), float64(delivered))
}
