// Package analysis provides offline statistics over recorded spike
// trains.
//
// The package operates on plain spike slices as produced by the
// recorders:
//
//   - [ISIStats]: inter-spike interval statistics per neuron
//   - [BinnedRates]: network firing rate over fixed time bins
//   - [PerNeuronCounts]: spike totals keyed by neuron
package analysis

import (
	"math"
	"sort"

	"github.com/san-kum/spikesim/internal/neuro"
)

// ISI holds inter-spike interval statistics for one spike train.
type ISI struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
	// CV is the coefficient of variation; near zero for a regular
	// train, near one for a Poisson-like train.
	CV float64
}

// ISIStats computes interval statistics over one neuron's spike times.
// Fewer than two spikes yield a zero-valued ISI.
func ISIStats(spikes []neuro.Spike) ISI {
	if len(spikes) < 2 {
		return ISI{}
	}

	times := make([]float64, len(spikes))
	for i, s := range spikes {
		times[i] = s.Time
	}
	sort.Float64s(times)

	intervals := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		intervals = append(intervals, times[i]-times[i-1])
	}

	stats := ISI{
		Count: len(intervals),
		Min:   intervals[0],
		Max:   intervals[0],
	}
	var sum float64
	for _, iv := range intervals {
		sum += iv
		stats.Min = math.Min(stats.Min, iv)
		stats.Max = math.Max(stats.Max, iv)
	}
	stats.Mean = sum / float64(len(intervals))

	var variance float64
	for _, iv := range intervals {
		d := iv - stats.Mean
		variance += d * d
	}
	variance /= float64(len(intervals))
	if stats.Mean != 0 {
		stats.CV = math.Sqrt(variance) / stats.Mean
	}
	return stats
}

// Bin is one slot of a binned rate histogram.
type Bin struct {
	Start float64
	Rate  float64
}

// BinnedRates splits [start, end) into bins of the given width and
// reports spikes per time unit in each. Spikes outside the range are
// ignored.
func BinnedRates(spikes []neuro.Spike, start, end, width float64) []Bin {
	if width <= 0 || end <= start {
		return nil
	}

	n := int(math.Ceil((end - start) / width))
	counts := make([]int, n)
	for _, s := range spikes {
		if s.Time < start || s.Time >= end {
			continue
		}
		i := int((s.Time - start) / width)
		if i >= n {
			i = n - 1
		}
		counts[i]++
	}

	bins := make([]Bin, n)
	for i, c := range counts {
		bins[i] = Bin{
			Start: start + float64(i)*width,
			Rate:  float64(c) / width,
		}
	}
	return bins
}

// PerNeuronCounts tallies spikes by neuron.
func PerNeuronCounts(spikes []neuro.Spike) map[neuro.NeuronID]int {
	counts := make(map[neuro.NeuronID]int)
	for _, s := range spikes {
		counts[s.Neuron]++
	}
	return counts
}
