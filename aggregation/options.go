package aggregation

import (
	"fmt"
	"time"

	"retaildash/model"
)

// Options parameterise the metric groups. Zero fields take the defaults
// below when passed through Compute or any group function.
//
// AsOf is the reporting date and defaults to the latest snapshot date.
// Velocity is measured over the TrailingWeeks ending on AsOf. Weeks of
// supply strictly above OverstockWeeks is overstock. An allocation index of
// 1.0 means on-hand covers exactly TargetWeeks of sales.
type Options struct {
	AsOf             time.Time
	TrailingWeeks    int
	OverstockWeeks   float64
	CriticalWeeks    float64
	LowWeeks         float64
	TargetWeeks      float64
	OverIndex        float64
	UnderIndex       float64
	TopN             int
	AgingBands       []int
	DeepDiveCategory string
}

// DefaultOptions returns the standard reporting policy.
func DefaultOptions() Options {
	return Options{
		TrailingWeeks:    12,
		OverstockWeeks:   12,
		CriticalWeeks:    2,
		LowWeeks:         4,
		TargetWeeks:      8,
		OverIndex:        1.5,
		UnderIndex:       0.5,
		TopN:             10,
		AgingBands:       []int{30, 60, 90},
		DeepDiveCategory: "Climbing Shoes",
	}
}

// withDefaults fills unset fields and resolves AsOf against the dataset.
func (o Options) withDefaults(ds model.Dataset) Options {
	d := DefaultOptions()
	if o.TrailingWeeks <= 0 {
		o.TrailingWeeks = d.TrailingWeeks
	}
	if o.OverstockWeeks <= 0 {
		o.OverstockWeeks = d.OverstockWeeks
	}
	if o.CriticalWeeks <= 0 {
		o.CriticalWeeks = d.CriticalWeeks
	}
	if o.LowWeeks <= 0 {
		o.LowWeeks = d.LowWeeks
	}
	if o.TargetWeeks <= 0 {
		o.TargetWeeks = d.TargetWeeks
	}
	if o.OverIndex <= 0 {
		o.OverIndex = d.OverIndex
	}
	if o.UnderIndex <= 0 {
		o.UnderIndex = d.UnderIndex
	}
	if o.TopN <= 0 {
		o.TopN = d.TopN
	}
	if len(o.AgingBands) == 0 {
		o.AgingBands = d.AgingBands
	}
	if o.DeepDiveCategory == "" {
		o.DeepDiveCategory = d.DeepDiveCategory
	}
	if o.AsOf.IsZero() {
		o.AsOf = latestDate(ds)
	}
	o.AsOf = model.Day(o.AsOf)
	return o
}

func (o Options) validate() error {
	if o.CriticalWeeks > o.LowWeeks {
		return fmt.Errorf("critical weeks %.1f exceed low weeks %.1f", o.CriticalWeeks, o.LowWeeks)
	}
	if o.UnderIndex >= o.OverIndex {
		return fmt.Errorf("under-allocation index %.2f must be below over-allocation index %.2f", o.UnderIndex, o.OverIndex)
	}
	for i := 1; i < len(o.AgingBands); i++ {
		if o.AgingBands[i] <= o.AgingBands[i-1] {
			return fmt.Errorf("aging bands must increase, got %v", o.AgingBands)
		}
	}
	return nil
}

// latestDate is the newest snapshot date, or the newest sale date when
// there is no inventory.
func latestDate(ds model.Dataset) time.Time {
	var latest time.Time
	for _, inv := range ds.Inventory {
		if inv.AsOf.After(latest) {
			latest = inv.AsOf
		}
	}
	if !latest.IsZero() {
		return latest
	}
	for _, s := range ds.Sales {
		if s.Date.After(latest) {
			latest = s.Date
		}
	}
	return latest
}
