package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

// sparklineBlockRunes provides indexed access to block characters.
var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline creates a sparkline visualization from a slice of float64 values.
// The width parameter determines how many of the most recent data points to display.
// Values are mapped to 8 vertical levels based on the min/max range of the
// visible window. The color follows the trend across the window:
//   - rising: green (success)
//   - falling: yellow (warning)
//   - flat: cyan (info)
func RenderSparkline(data []float64, width int) string {
	blocks := sparklineRunes(data, width)
	if blocks == "" {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	style := lipgloss.NewStyle().Foreground(trendColor(data[0], data[len(data)-1]))
	return style.Render(blocks)
}

// sparklineRunes renders the block characters without styling, for table
// cells where escape codes would break column widths.
func sparklineRunes(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal

	for _, v := range data {
		var level int
		if valueRange == 0 {
			level = numLevels / 2
		} else {
			normalized := (v - minVal) / valueRange
			level = int(normalized * float64(numLevels-1))
			if level < 0 {
				level = 0
			} else if level >= numLevels {
				level = numLevels - 1
			}
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}
	return sb.String()
}

// trendColor compares the first and last visible values.
func trendColor(first, last float64) lipgloss.Color {
	switch {
	case last > first:
		return ColorSuccess
	case last < first:
		return ColorWarning
	default:
		return ColorInfo
	}
}
