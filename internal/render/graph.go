package render

import (
	"fmt"
	"math"
	"strings"
)

// DefaultGraphWidth is the bar width used when none is configured.
const DefaultGraphWidth = 30

// Bar draws a fixed-width usage bar, e.g. "[#########...........]  45.0%".
// The fill is colored by how close pct is to full.
func Bar(pct float64, width int) string {
	if width <= 0 {
		width = DefaultGraphWidth
	}
	if math.IsNaN(pct) || pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(math.Round(pct / 100 * float64(width)))
	fill := strings.Repeat("#", filled)
	switch {
	case pct >= 90:
		fill = red(fill)
	case pct >= 75:
		fill = yellow(fill)
	default:
		fill = green(fill)
	}
	return fmt.Sprintf("[%s%s] %5.1f%%", fill, strings.Repeat(".", width-filled), pct)
}
