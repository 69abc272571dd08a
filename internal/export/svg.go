// Package export renders recorded runs to SVG for reports.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/spikesim/internal/neuro"
	"github.com/san-kum/spikesim/internal/record"
)

// TraceToSVG draws a membrane trace as a polyline over time.
func TraceToSVG(samples []record.Sample, width, height int, strokeColor string) string {
	if len(samples) < 2 {
		return ""
	}

	minT, maxT := samples[0].Time, samples[0].Time
	minV, maxV := samples[0].Value, samples[0].Value
	for _, s := range samples {
		if s.Time < minT {
			minT = s.Time
		}
		if s.Time > maxT {
			maxT = s.Time
		}
		if s.Value < minV {
			minV = s.Value
		}
		if s.Value > maxV {
			maxV = s.Value
		}
	}

	rangeT := maxT - minT
	rangeV := maxV - minV
	if rangeT == 0 {
		rangeT = 1
	}
	if rangeV == 0 {
		rangeV = 1
	}
	minV -= rangeV * 0.1
	maxV += rangeV * 0.1
	rangeV = maxV - minV

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, s := range samples {
		x := (s.Time - minT) / rangeT * float64(width)
		y := float64(height) - (s.Value-minV)/rangeV*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// RasterToSVG draws a spike raster: one horizontal band per neuron
// with a tick per spike.
func RasterToSVG(spikes []neuro.Spike, neurons int, start, end float64, width, height int, tickColor string) string {
	if neurons <= 0 || end <= start {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="%s" stroke-width="1">
`, width, height, width, height, tickColor))

	band := float64(height) / float64(neurons)
	tickHeight := band * 0.8
	rangeT := end - start

	for _, s := range spikes {
		if s.Time < start || s.Time >= end {
			continue
		}
		if int(s.Neuron) < 0 || int(s.Neuron) >= neurons {
			continue
		}
		x := (s.Time - start) / rangeT * float64(width)
		y := float64(s.Neuron) * band
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x, y+(band-tickHeight)/2, x, y+(band+tickHeight)/2))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
