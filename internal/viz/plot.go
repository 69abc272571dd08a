package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spikesim/internal/analysis"
	"github.com/san-kum/spikesim/internal/record"
)

// TracePlot renders a membrane trace as a terminal line chart.
func TracePlot(samples []record.Sample, width, height int, caption string) string {
	if len(samples) == 0 {
		return ""
	}
	data := make([]float64, len(samples))
	for i, s := range samples {
		data[i] = s.Value
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RatePlot renders a binned firing-rate histogram as a line chart.
func RatePlot(bins []analysis.Bin, width, height int, caption string) string {
	if len(bins) == 0 {
		return ""
	}
	data := make([]float64, len(bins))
	for i, b := range bins {
		data[i] = b.Rate
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
