// Package render draws the dashboard charts as standalone SVG files and
// can rasterise them to PNG with a headless browser.
package render

import (
	"database/sql"
	"fmt"
	"html"
	"math"
	"strings"
)

// Bar is one horizontal bar. Text is the value label; an invalid Value is
// labelled "n/a" and drawn with zero length. Full draws the bar at the
// panel's maximum, for infinite values.
type Bar struct {
	Label string
	Value sql.NullFloat64
	Text  string
	Full  bool
}

// Panel is a titled list of bars sharing one scale.
type Panel struct {
	Title string
	Bars  []Bar
}

// Chart is a grid of panels written to <Name>.svg.
type Chart struct {
	Name     string
	Title    string
	Subtitle string
	Columns  int
	Panels   []Panel
}

const (
	panelWidth  = 560
	labelWidth  = 190
	valueWidth  = 90
	barHeight   = 16
	barGap      = 6
	panelHeader = 34
	panelPad    = 16
	titleHeight = 64
)

var palette = []string{"#2E86AB", "#E07A5F", "#3D405B", "#81B29A", "#F2CC8F", "#6D597A"}

const naLabel = "n/a"

func panelHeight(p Panel) int {
	n := len(p.Bars)
	if n == 0 {
		n = 1
	}
	return panelHeader + n*(barHeight+barGap) + panelPad
}

// SVG returns the chart as a standalone SVG document.
func (c Chart) SVG() []byte {
	cols := c.Columns
	if cols <= 0 {
		cols = 2
	}
	if cols > len(c.Panels) && len(c.Panels) > 0 {
		cols = len(c.Panels)
	}

	// 1. Row heights
	var rowHeights []int
	for i, p := range c.Panels {
		if i%cols == 0 {
			rowHeights = append(rowHeights, 0)
		}
		r := len(rowHeights) - 1
		if h := panelHeight(p); h > rowHeights[r] {
			rowHeights[r] = h
		}
	}
	width := cols * panelWidth
	height := titleHeight
	for _, h := range rowHeights {
		height += h
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="Helvetica, Arial, sans-serif">`, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#ffffff"/>`, width, height))

	// 2. Title block
	sb.WriteString(fmt.Sprintf(`<text x="16" y="30" font-size="20" font-weight="bold" fill="#222">%s</text>`, html.EscapeString(c.Title)))
	if c.Subtitle != "" {
		sb.WriteString(fmt.Sprintf(`<text x="16" y="52" font-size="12" fill="#555">%s</text>`, html.EscapeString(c.Subtitle)))
	}

	// 3. Panels
	y := titleHeight
	for i, p := range c.Panels {
		col := i % cols
		if i > 0 && col == 0 {
			y += rowHeights[i/cols-1]
		}
		writePanel(&sb, p, col*panelWidth, y, palette[i%len(palette)])
	}

	sb.WriteString(`</svg>`)
	return []byte(sb.String())
}

func writePanel(sb *strings.Builder, p Panel, x, y int, color string) {
	sb.WriteString(fmt.Sprintf(`<g transform="translate(%d,%d)">`, x, y))
	sb.WriteString(fmt.Sprintf(`<text x="12" y="22" font-size="14" font-weight="bold" fill="#333">%s</text>`, html.EscapeString(p.Title)))
	if len(p.Bars) == 0 {
		sb.WriteString(fmt.Sprintf(`<text x="12" y="%d" font-size="11" fill="#888">no data</text>`, panelHeader+barHeight-4))
		sb.WriteString(`</g>`)
		return
	}

	lo, hi := scale(p.Bars)
	plot := float64(panelWidth - labelWidth - valueWidth)
	zero := float64(labelWidth) + (0-lo)/(hi-lo)*plot
	for i, b := range p.Bars {
		by := panelHeader + i*(barHeight+barGap)
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="11" text-anchor="end" fill="#333">%s</text>`,
			labelWidth-6, by+barHeight-4, html.EscapeString(truncate(b.Label, 30))))

		text := b.Text
		x0, x1 := zero, zero
		switch {
		case b.Full:
			x1 = float64(labelWidth) + plot
		case b.Value.Valid && !math.IsNaN(b.Value.Float64):
			x1 = float64(labelWidth) + (b.Value.Float64-lo)/(hi-lo)*plot
		default:
			text = naLabel
		}
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%d" width="%.1f" height="%d" fill="%s"/>`, x0, by, x1-x0, barHeight, color))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="11" fill="#333">%s</text>`,
			math.Max(x1, zero)+4, by+barHeight-4, html.EscapeString(text)))
	}
	sb.WriteString(`</g>`)
}

// scale returns the value range of the bars, always including zero.
func scale(bars []Bar) (lo, hi float64) {
	for _, b := range bars {
		if !b.Value.Valid || b.Full || math.IsNaN(b.Value.Float64) || math.IsInf(b.Value.Float64, 0) {
			continue
		}
		lo = math.Min(lo, b.Value.Float64)
		hi = math.Max(hi, b.Value.Float64)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
