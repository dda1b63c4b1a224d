package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// Rasterize screenshots each SVG file to a PNG next to it using a headless
// Chromium. It fails if no browser can be launched; callers treat that as
// optional output.
func Rasterize(ctx context.Context, svgPaths []string) ([]string, error) {
	if len(svgPaths) == 0 {
		return nil, nil
	}

	// 1. Launch the browser
	u, err := launcher.New().
		Headless(true).
		Leakless(false).
		Context(ctx).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	// 2. One page per chart
	pngs := make([]string, 0, len(svgPaths))
	for _, svg := range svgPaths {
		abs, err := filepath.Abs(svg)
		if err != nil {
			return pngs, fmt.Errorf("failed to resolve %s: %w", svg, err)
		}
		png := strings.TrimSuffix(abs, filepath.Ext(abs)) + ".png"
		if err := rod.Try(func() {
			page := browser.MustPage("file://" + filepath.ToSlash(abs))
			defer page.MustClose()
			page.MustWaitLoad()
			page.MustElement("svg").MustScreenshot(png)
		}); err != nil {
			return pngs, fmt.Errorf("failed to rasterise %s: %w", svg, err)
		}
		pngs = append(pngs, png)
	}
	zap.L().Info("charts rasterised", zap.Int("png", len(pngs)))
	return pngs, nil
}
