// Package export writes raw and metric tables as CSV files with fixed
// header rows.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is one CSV file: a name (the file stem), a header row and data rows.
type Table struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Lookup finds a table by name.
func Lookup(tables []Table, name string) (Table, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// WriteTable writes t as CSV. With bom set the output starts with a UTF-8
// byte order mark so spreadsheet tools detect the encoding.
func WriteTable(w io.Writer, t Table, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", t.Name, err)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("%s row %d has %d cells, header has %d", t.Name, i, len(row), len(t.Header))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", t.Name, i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTables writes each table to dir/<name>.csv and returns the paths.
func WriteTables(dir string, tables []Table, bom bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+".csv")
		if err := writeFile(path, t, bom); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	zap.L().Info("tables exported", zap.String("dir", dir), zap.Int("files", len(paths)))
	return paths, nil
}

func writeFile(path string, t Table, bom bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := WriteTable(bw, t, bom); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}
