package database

import (
	"fmt"

	"retaildash/aggregation"
	"retaildash/model"

	"github.com/jmoiron/sqlx"
)

// KPIRecord is one run's row of kpi_history.
type KPIRecord struct {
	RunID string `db:"run_id" json:"runId"`
	AsOf  string `db:"as_of" json:"asOf"`
	model.KPIs
}

// GymInStockRecord is one run's in-stock rate for a gym.
type GymInStockRecord struct {
	RunID string `db:"run_id" json:"runId"`
	model.GymInStock
}

// VendorScoreRecord is one run's scorecard row for a vendor.
type VendorScoreRecord struct {
	RunID string `db:"run_id" json:"runId"`
	model.VendorScore
}

func insertHistoryInTx(tx *sqlx.Tx, runID, asOf string, report *aggregation.Report) error {
	const kpiQuery = `
		INSERT INTO kpi_history (
			run_id, as_of, total_revenue, total_cogs, gross_margin, gross_margin_pct, units_sold, pairs,
			in_stock_rate, out_of_stock_pairs, overstock_pairs, overstock_value, inventory_at_cost,
			inventory_at_retail, on_time_rate, po_count, po_spend, top_category, top_category_revenue
		) VALUES (
			:run_id, :as_of, :total_revenue, :total_cogs, :gross_margin, :gross_margin_pct, :units_sold, :pairs,
			:in_stock_rate, :out_of_stock_pairs, :overstock_pairs, :overstock_value, :inventory_at_cost,
			:inventory_at_retail, :on_time_rate, :po_count, :po_spend, :top_category, :top_category_revenue
		)`
	if _, err := tx.NamedExec(kpiQuery, KPIRecord{RunID: runID, AsOf: asOf, KPIs: report.KPIs}); err != nil {
		return fmt.Errorf("failed to insert kpi history: %w", err)
	}

	const gymQuery = `
		INSERT INTO instock_history (run_id, gym_id, gym_name, region, pairs, in_stock_pairs, in_stock_rate)
		VALUES (:run_id, :gym_id, :gym_name, :region, :pairs, :in_stock_pairs, :in_stock_rate)`
	for _, g := range report.InStockByGym {
		if _, err := tx.NamedExec(gymQuery, GymInStockRecord{RunID: runID, GymInStock: g}); err != nil {
			return fmt.Errorf("failed to insert in-stock history for %s: %w", g.GymID, err)
		}
	}

	const vendorQuery = `
		INSERT INTO vendor_score_history (
			run_id, vendor_id, vendor_name, pos, delivered, on_time, on_time_rate,
			avg_lead_time_days, avg_variance_days, spend
		) VALUES (
			:run_id, :vendor_id, :vendor_name, :pos, :delivered, :on_time, :on_time_rate,
			:avg_lead_time_days, :avg_variance_days, :spend
		)`
	for _, v := range report.VendorScorecard {
		if _, err := tx.NamedExec(vendorQuery, VendorScoreRecord{RunID: runID, VendorScore: v}); err != nil {
			return fmt.Errorf("failed to insert vendor history for %s: %w", v.VendorID, err)
		}
	}
	return nil
}

// ListRuns returns every stored run, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	var runs []Run
	if err := s.db.Select(&runs, `SELECT run_id, created_at, as_of, seed, source FROM runs ORDER BY created_at DESC, run_id`); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// KPIHistory returns the KPI row of every run in as-of order.
func (s *Store) KPIHistory() ([]KPIRecord, error) {
	var out []KPIRecord
	err := s.db.Select(&out, `
		SELECT k.run_id, k.as_of, total_revenue, total_cogs, gross_margin, gross_margin_pct, units_sold, pairs,
		       in_stock_rate, out_of_stock_pairs, overstock_pairs, overstock_value, inventory_at_cost,
		       inventory_at_retail, on_time_rate, po_count, po_spend, top_category, top_category_revenue
		FROM kpi_history k JOIN runs r ON r.run_id = k.run_id
		ORDER BY k.as_of, r.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to read kpi history: %w", err)
	}
	return out, nil
}

// InStockHistory returns a gym's in-stock rate across runs.
func (s *Store) InStockHistory(gymID string) ([]GymInStockRecord, error) {
	var out []GymInStockRecord
	err := s.db.Select(&out, `
		SELECT h.run_id, gym_id, gym_name, region, pairs, in_stock_pairs, in_stock_rate
		FROM instock_history h JOIN runs r ON r.run_id = h.run_id
		WHERE gym_id = ?
		ORDER BY r.as_of, r.created_at`, gymID)
	if err != nil {
		return nil, fmt.Errorf("failed to read in-stock history for %s: %w", gymID, err)
	}
	return out, nil
}

// VendorHistory returns a vendor's scorecard across runs.
func (s *Store) VendorHistory(vendorID string) ([]VendorScoreRecord, error) {
	var out []VendorScoreRecord
	err := s.db.Select(&out, `
		SELECT h.run_id, vendor_id, vendor_name, pos, delivered, on_time, on_time_rate,
		       avg_lead_time_days, avg_variance_days, spend
		FROM vendor_score_history h JOIN runs r ON r.run_id = h.run_id
		WHERE vendor_id = ?
		ORDER BY r.as_of, r.created_at`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor history for %s: %w", vendorID, err)
	}
	return out, nil
}
