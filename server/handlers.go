package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"retaildash/export"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tableInfo struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

func (s *Server) listTablesHandler(w http.ResponseWriter, r *http.Request) {
	infos := make([]tableInfo, 0, len(s.Tables))
	for _, t := range s.Tables {
		infos = append(infos, tableInfo{Name: t.Name, Rows: len(t.Rows), Columns: t.Header})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"asOf": s.AsOf, "tables": infos})
}

// tableHandler serves a metric table as JSON, or as CSV when the name
// ends in ".csv".
func (s *Server) tableHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	asCSV := strings.HasSuffix(name, ".csv")
	name = strings.TrimSuffix(name, ".csv")

	t, ok := export.Lookup(s.Tables, name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown table "+name)
		return
	}
	if !asCSV {
		writeJSON(w, http.StatusOK, t)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTable(&buf, t, s.BOM); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to write csv")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	w.Write(buf.Bytes())
}

func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotFound, "no run store")
		return
	}
	runs, err := s.Store.ListRuns()
	if err != nil {
		zap.L().Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// nullable turns an NA cell into a JSON null.
func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

type kpiPoint struct {
	RunID          string   `json:"runId"`
	AsOf           string   `json:"asOf"`
	Revenue        string   `json:"revenue"`
	GrossMarginPct *float64 `json:"grossMarginPct"`
	InStockRate    *float64 `json:"inStockRate"`
	OnTimeRate     *float64 `json:"onTimeRate"`
	OverstockValue string   `json:"overstockValue"`
}

func (s *Server) kpiHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotFound, "no run store")
		return
	}
	records, err := s.Store.KPIHistory()
	if err != nil {
		zap.L().Error("kpi history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read kpi history")
		return
	}
	points := make([]kpiPoint, 0, len(records))
	for _, k := range records {
		points = append(points, kpiPoint{
			RunID:          k.RunID,
			AsOf:           k.AsOf,
			Revenue:        k.TotalRevenue.StringFixed(2),
			GrossMarginPct: nullable(k.GrossMarginPct),
			InStockRate:    nullable(k.InStockRate),
			OnTimeRate:     nullable(k.OnTimeRate),
			OverstockValue: k.OverstockValue.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, points)
}

type ratePoint struct {
	RunID string   `json:"runId"`
	Rate  *float64 `json:"rate"`
}

func (s *Server) gymHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotFound, "no run store")
		return
	}
	gymID := chi.URLParam(r, "gymID")
	records, err := s.Store.InStockHistory(gymID)
	if err != nil {
		zap.L().Error("in-stock history", zap.String("gym_id", gymID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read in-stock history")
		return
	}
	points := make([]ratePoint, 0, len(records))
	for _, g := range records {
		points = append(points, ratePoint{RunID: g.RunID, Rate: nullable(g.Rate)})
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) vendorHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotFound, "no run store")
		return
	}
	vendorID := chi.URLParam(r, "vendorID")
	records, err := s.Store.VendorHistory(vendorID)
	if err != nil {
		zap.L().Error("vendor history", zap.String("vendor_id", vendorID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read vendor history")
		return
	}
	points := make([]ratePoint, 0, len(records))
	for _, v := range records {
		points = append(points, ratePoint{RunID: v.RunID, Rate: nullable(v.OnTimeRate)})
	}
	writeJSON(w, http.StatusOK, points)
}
