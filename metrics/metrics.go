// Package metrics records run KPIs and stage timings as Prometheus gauges
// and writes them in the node-exporter textfile format.
package metrics

import (
	"database/sql"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"retaildash/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FileName is the textfile written by WriteTextfile.
const FileName = "retaildash.prom"

// Recorder owns a private registry so repeated runs in one process do not
// collide.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.GaugeVec
	tableRows     *prometheus.GaugeVec
	revenue       prometheus.Gauge
	grossMargin   prometheus.Gauge
	marginPct     prometheus.Gauge
	inStockRate   prometheus.Gauge
	onTimeRate    prometheus.Gauge
	stockPairs    *prometheus.GaugeVec
	inventory     *prometheus.GaugeVec
	poSpend       prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder registers every gauge under prefix (for example "retaildash").
func NewRecorder(prefix string) *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Name: prefix + "_" + name, Help: help})
	}
	return &Recorder{
		registry: reg,
		stageDuration: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "_stage_duration_seconds",
			Help: "Wall time of each pipeline stage in seconds",
		}, []string{"stage"}),
		tableRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "_table_rows",
			Help: "Rows in each raw table",
		}, []string{"table"}),
		revenue:     gauge("revenue_dollars", "Total sales revenue"),
		grossMargin: gauge("gross_margin_dollars", "Total gross margin"),
		marginPct:   gauge("gross_margin_percent", "Revenue-weighted gross margin percent"),
		inStockRate: gauge("in_stock_rate_percent", "Share of SKU-locations in stock"),
		onTimeRate:  gauge("on_time_delivery_percent", "Share of delivered purchase orders received on time"),
		stockPairs: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "_sku_locations",
			Help: "SKU-locations by stock condition",
		}, []string{"condition"}),
		inventory: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "_inventory_value_dollars",
			Help: "Inventory value by valuation basis",
		}, []string{"basis"}),
		poSpend: gauge("po_spend_dollars", "Total purchase order value"),
		lastRun: gauge("last_run_timestamp_seconds", "Unix time the run finished"),
	}
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// Time runs fn and records its duration under stage, whatever fn returns.
func (r *Recorder) Time(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.ObserveStage(stage, time.Since(start))
	return err
}

// ObserveDataset records the raw table sizes.
func (r *Recorder) ObserveDataset(ds model.Dataset) {
	var lines int
	for _, po := range ds.PurchaseOrders {
		lines += len(po.Lines)
	}
	r.tableRows.WithLabelValues("gym_locations").Set(float64(len(ds.Gyms)))
	r.tableRows.WithLabelValues("vendors").Set(float64(len(ds.Vendors)))
	r.tableRows.WithLabelValues("product_catalog").Set(float64(len(ds.Products)))
	r.tableRows.WithLabelValues("sales_data").Set(float64(len(ds.Sales)))
	r.tableRows.WithLabelValues("inventory_data").Set(float64(len(ds.Inventory)))
	r.tableRows.WithLabelValues("purchase_orders").Set(float64(len(ds.PurchaseOrders)))
	r.tableRows.WithLabelValues("po_lines").Set(float64(lines))
}

// ObserveKPIs records the headline numbers. NA rates are written as NaN.
func (r *Recorder) ObserveKPIs(k model.KPIs) {
	r.revenue.Set(k.TotalRevenue.InexactFloat64())
	r.grossMargin.Set(k.GrossMargin.InexactFloat64())
	r.marginPct.Set(orNaN(k.GrossMarginPct))
	r.inStockRate.Set(orNaN(k.InStockRate))
	r.onTimeRate.Set(orNaN(k.OnTimeRate))
	r.stockPairs.WithLabelValues("all").Set(float64(k.Pairs))
	r.stockPairs.WithLabelValues("out_of_stock").Set(float64(k.OutOfStockPairs))
	r.stockPairs.WithLabelValues("overstock").Set(float64(k.OverstockPairs))
	r.inventory.WithLabelValues("cost").Set(k.InventoryAtCost.InexactFloat64())
	r.inventory.WithLabelValues("retail").Set(k.InventoryAtRetail.InexactFloat64())
	r.inventory.WithLabelValues("overstock_cost").Set(k.OverstockValue.InexactFloat64())
	r.poSpend.Set(k.POSpend.InexactFloat64())
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// WriteTextfile stamps the run time and writes dir/retaildash.prom.
func (r *Recorder) WriteTextfile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	r.lastRun.SetToCurrentTime()
	path := filepath.Join(dir, FileName)
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
