package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"retaildash/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SkipBOM strips a leading byte order mark. UTF-16 input with a BOM is
// decoded to UTF-8; input without one is read as UTF-8.
func SkipBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// getColIndex maps header names to column positions and checks that every
// required column is present.
func getColIndex(header []string, required []string) (map[string]int, error) {
	colIndex := make(map[string]int)
	for i, colName := range header {
		colIndex[strings.TrimSpace(colName)] = i
	}
	for _, req := range required {
		if _, ok := colIndex[req]; !ok {
			return nil, fmt.Errorf("required column not found: %s", req)
		}
	}
	return colIndex, nil
}

// row reads typed cells from one CSV record. The first conversion error
// sticks; later reads return zero values.
type row struct {
	table  string
	line   int
	cols   map[string]int
	record []string
	err    error
}

func (r *row) fail(col, format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("%s line %d: %s: %s", r.table, r.line, col, fmt.Sprintf(format, args...))
	}
}

func (r *row) str(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r *row) integer(col string) int {
	s := r.str(col)
	n, err := strconv.Atoi(s)
	if err != nil {
		r.fail(col, "invalid integer %q", s)
	}
	return n
}

func (r *row) float(col string) float64 {
	s := r.str(col)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(col, "invalid number %q", s)
	}
	return f
}

func (r *row) money(col string) decimal.Decimal {
	s := r.str(col)
	d, err := decimal.NewFromString(s)
	if err != nil {
		r.fail(col, "invalid amount %q", s)
	}
	return d
}

func (r *row) boolean(col string) bool {
	s := r.str(col)
	b, err := strconv.ParseBool(s)
	if err != nil {
		r.fail(col, "invalid boolean %q", s)
	}
	return b
}

func (r *row) date(col string) time.Time {
	s := r.str(col)
	t, err := model.ParseDate(s)
	if err != nil {
		r.fail(col, "invalid date %q", s)
	}
	return t
}

// optionalDate returns nil for an empty cell.
func (r *row) optionalDate(col string) *time.Time {
	if r.str(col) == "" {
		return nil
	}
	t := r.date(col)
	return &t
}

// readCSV reads a header row, checks the required columns and calls fn for
// every data record.
func readCSV(rd io.Reader, table string, required []string, fn func(*row) error) error {
	reader := csv.NewReader(SkipBOM(rd))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return fmt.Errorf("%s: empty file", table)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s header: %w", table, err)
	}
	colIndex, err := getColIndex(header, required)
	if err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("failed to read %s line %d: %w", table, line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		r := &row{table: table, line: line, cols: colIndex, record: record}
		if err := fn(r); err != nil {
			return err
		}
		if r.err != nil {
			return r.err
		}
	}
}
