package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/spikesim/internal/neuro"
)

// Raster renders a spike raster: one row per neuron, time running
// left to right, a mark per bin that saw at least one spike.
func Raster(spikes []neuro.Spike, neurons int, start, end float64, width int) string {
	if neurons <= 0 || width <= 0 || end <= start {
		return ""
	}

	grid := make([][]bool, neurons)
	for i := range grid {
		grid[i] = make([]bool, width)
	}
	binWidth := (end - start) / float64(width)
	for _, s := range spikes {
		if s.Time < start || s.Time >= end {
			continue
		}
		if int(s.Neuron) < 0 || int(s.Neuron) >= neurons {
			continue
		}
		col := int((s.Time - start) / binWidth)
		if col >= width {
			col = width - 1
		}
		grid[s.Neuron][col] = true
	}

	var b strings.Builder
	for id, row := range grid {
		fmt.Fprintf(&b, "%4d ", id)
		for _, fired := range row {
			if fired {
				b.WriteByte('|')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	left := fmt.Sprintf("t=%.2f", start)
	right := fmt.Sprintf("t=%.2f", end)
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	b.WriteString("     " + left + strings.Repeat(" ", pad) + right + "\n")
	return b.String()
}
