package render

import (
	"fmt"
	"os"
	"path/filepath"

	"retaildash/aggregation"

	"go.uber.org/zap"
)

// WriteCharts writes every chart of the report to dir/<name>.svg and
// returns the paths in chart order.
func WriteCharts(dir string, r *aggregation.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	charts := Charts(r)
	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(dir, c.Name+".svg")
		if err := os.WriteFile(path, c.SVG(), 0644); err != nil {
			return paths, fmt.Errorf("failed to write chart %s: %w", c.Name, err)
		}
		paths = append(paths, path)
	}
	zap.L().Info("charts rendered", zap.String("dir", dir), zap.Int("charts", len(paths)))
	return paths, nil
}
