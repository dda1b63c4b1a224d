// Package generator builds a reproducible synthetic retail dataset: gyms,
// vendors, the product catalog, twelve months of sales, an inventory
// snapshot and a purchase order history.
package generator

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"retaildash/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options control the size and time span of a generated dataset.
type Options struct {
	Seed      uint64
	StartDate time.Time
	Months    int
	AsOf      time.Time
	NumPOs    int
}

// DefaultOptions reproduces the reference run: seed 42, Feb 2025 through
// Jan 2026, 120 purchase orders.
func DefaultOptions() Options {
	return Options{
		Seed:      42,
		StartDate: model.MustDate("2025-02-01"),
		Months:    12,
		AsOf:      model.MustDate("2026-01-31"),
		NumPOs:    120,
	}
}

const (
	discountChance = 0.10
	poissonChunk   = 30.0
)

var discountTiers = []int{10, 15, 20}

type generator struct {
	opts  Options
	rng   *rand.Rand
	ids   *rand.ChaCha8
	gyms  []model.GymLocation
	prods []model.Product
	vends []model.Vendor
}

// Generate returns a dataset that satisfies model.ValidateSchema. The same
// options always produce the same dataset. A zero AsOf is the last day of
// the sales window.
func Generate(opts Options) (model.Dataset, error) {
	if opts.Months <= 0 {
		return model.Dataset{}, fmt.Errorf("months must be positive, got %d", opts.Months)
	}
	if opts.NumPOs < 0 {
		return model.Dataset{}, fmt.Errorf("num_pos must not be negative, got %d", opts.NumPOs)
	}
	opts.StartDate = model.Day(opts.StartDate)
	if opts.AsOf.IsZero() {
		opts.AsOf = opts.StartDate.AddDate(0, opts.Months, -1)
	}
	opts.AsOf = model.Day(opts.AsOf)
	if !opts.AsOf.After(opts.StartDate) {
		return model.Dataset{}, fmt.Errorf("as-of %s must be after start %s",
			opts.AsOf.Format(model.DateLayout), opts.StartDate.Format(model.DateLayout))
	}

	var idSeed [32]byte
	binary.LittleEndian.PutUint64(idSeed[:8], opts.Seed)
	g := &generator{
		opts:  opts,
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		ids:   rand.NewChaCha8(idSeed),
		gyms:  append([]model.GymLocation(nil), Gyms...),
		prods: append([]model.Product(nil), Products...),
		vends: append([]model.Vendor(nil), Vendors...),
	}

	sales, err := g.sales()
	if err != nil {
		return model.Dataset{}, fmt.Errorf("generate sales: %w", err)
	}
	ds := model.Dataset{
		Gyms:           g.gyms,
		Vendors:        g.vends,
		Products:       g.prods,
		Sales:          sales,
		Inventory:      g.inventory(),
		PurchaseOrders: g.purchaseOrders(),
	}

	zap.L().Info("synthetic dataset generated",
		zap.Uint64("seed", opts.Seed),
		zap.Int("gyms", len(ds.Gyms)),
		zap.Int("products", len(ds.Products)),
		zap.Int("sales", len(ds.Sales)),
		zap.Int("inventory", len(ds.Inventory)),
		zap.Int("purchase_orders", len(ds.PurchaseOrders)),
	)
	return ds, nil
}

// sales draws Poisson units per gym, product and month. Units landing on
// the same day at the same discount share a transaction line.
func (g *generator) sales() ([]model.Sale, error) {
	var out []model.Sale
	type lineKey struct {
		day      int
		discount int
	}

	for m := 0; m < g.opts.Months; m++ {
		first := g.opts.StartDate.AddDate(0, m, 1-g.opts.StartDate.Day())
		days := first.AddDate(0, 1, -1).Day()
		season := seasonality[first.Month()]

		for _, gym := range g.gyms {
			for _, p := range g.prods {
				freq, ok := categoryFrequency[p.Category]
				if !ok {
					freq = defaultFrequency
				}
				units := g.poisson(freq * sizeMultiplier[gym.Size] * season)
				if units == 0 {
					continue
				}

				lines := make(map[lineKey]int)
				for range units {
					k := lineKey{day: 1 + g.rng.IntN(days)}
					if g.rng.Float64() < discountChance {
						k.discount = discountTiers[g.rng.IntN(len(discountTiers))]
					}
					lines[k]++
				}

				keys := make([]lineKey, 0, len(lines))
				for k := range lines {
					keys = append(keys, k)
				}
				sort.Slice(keys, func(i, j int) bool {
					if keys[i].day != keys[j].day {
						return keys[i].day < keys[j].day
					}
					return keys[i].discount < keys[j].discount
				})

				for _, k := range keys {
					id, err := uuid.NewRandomFromReader(g.ids)
					if err != nil {
						return nil, fmt.Errorf("transaction id: %w", err)
					}
					out = append(out, model.Sale{
						TransactionID: id.String(),
						SKU:           p.SKU,
						GymID:         gym.GymID,
						Date:          first.AddDate(0, 0, k.day-1),
						Quantity:      lines[k],
						UnitPrice:     discounted(p.UnitPrice, k.discount),
						UnitCost:      p.UnitCost,
						DiscountPct:   k.discount,
					})
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func discounted(price decimal.Decimal, pct int) decimal.Decimal {
	if pct == 0 {
		return price
	}
	return price.Mul(decimal.NewFromInt(int64(100 - pct))).Div(decimal.NewFromInt(100)).Round(2)
}

// inventory takes one snapshot per SKU-gym on the as-of date.
func (g *generator) inventory() []model.InventorySnapshot {
	out := make([]model.InventorySnapshot, 0, len(g.gyms)*len(g.prods))
	for _, gym := range g.gyms {
		capacity := sizeCapacity[gym.Size]
		for _, p := range g.prods {
			par := int(parBase(p.Category) * capacity)
			onHand := int(g.rng.NormFloat64()*0.3*float64(par) + 0.7*float64(par))
			if onHand < 0 {
				onHand = 0
			}
			received := g.opts.AsOf.AddDate(0, 0, -(1 + g.rng.IntN(59)))
			out = append(out, model.InventorySnapshot{
				SKU:             p.SKU,
				GymID:           gym.GymID,
				OnHand:          onHand,
				AsOf:            g.opts.AsOf,
				ParLevel:        par,
				LastReceiptDate: &received,
			})
		}
	}
	return out
}

// purchaseOrders spreads orders across the sales window. Orders whose
// delivery would land after the as-of date are Open or In Transit.
func (g *generator) purchaseOrders() []model.PurchaseOrder {
	byVendor := make(map[string][]model.Product)
	for _, p := range g.prods {
		byVendor[p.VendorID] = append(byVendor[p.VendorID], p)
	}

	horizon := model.DaysBetween(g.opts.StartDate, g.opts.AsOf) + 1
	out := make([]model.PurchaseOrder, 0, g.opts.NumPOs)
	for i := 0; i < g.opts.NumPOs; i++ {
		v := g.vends[g.rng.IntN(len(g.vends))]

		offset := horizon
		if horizon > 1 {
			offset = horizon - (1 + g.rng.IntN(horizon-1))
		}
		ordered := g.opts.StartDate.AddDate(0, 0, offset)
		expected := ordered.AddDate(0, 0, v.LeadTimeDays)

		var variance int
		if g.rng.Float64() < v.Reliability {
			variance = -3 + g.rng.IntN(5)
		} else {
			variance = 3 + g.rng.IntN(12)
		}
		actual := expected.AddDate(0, 0, variance)

		po := model.PurchaseOrder{
			POID:             fmt.Sprintf("PO-%d-%04d", g.opts.StartDate.Year(), i+1),
			VendorID:         v.VendorID,
			OrderDate:        ordered,
			ExpectedDelivery: expected,
		}
		switch {
		case !actual.After(g.opts.AsOf):
			po.Status = model.POStatusReceived
			po.ActualDelivery = &actual
		case expected.After(g.opts.AsOf):
			po.Status = model.POStatusOpen
		default:
			po.Status = model.POStatusInTransit
		}

		catalog := byVendor[v.VendorID]
		maxLines := max(2, min(6, len(catalog)+1))
		n := min(1+g.rng.IntN(maxLines-1), len(catalog))
		for _, idx := range g.rng.Perm(len(catalog))[:n] {
			p := catalog[idx]
			po.Lines = append(po.Lines, model.POLine{
				POID:     po.POID,
				SKU:      p.SKU,
				Quantity: 10 + g.rng.IntN(90),
				UnitCost: p.UnitCost,
			})
		}
		out = append(out, po)
	}
	return out
}

// poisson samples in chunks so exp(-lambda) never underflows.
func (g *generator) poisson(lambda float64) int {
	var n int
	for lambda > 0 {
		step := math.Min(lambda, poissonChunk)
		lambda -= step
		limit := math.Exp(-step)
		p := g.rng.Float64()
		for p > limit {
			n++
			p *= g.rng.Float64()
		}
	}
	return n
}
