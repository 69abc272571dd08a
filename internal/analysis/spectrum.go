package analysis

import (
	"math"
	"math/cmplx"
)

// RateSpectrum computes the one-sided amplitude spectrum of a binned
// rate signal, for spotting network oscillations. The input is
// truncated to the largest power-of-two prefix; fewer than four bins
// yield nil.
func RateSpectrum(bins []Bin) []float64 {
	n := 1
	for n*2 <= len(bins) {
		n *= 2
	}
	if n < 4 {
		return nil
	}

	// remove the mean so the DC term does not swamp the spectrum
	var mean float64
	for i := 0; i < n; i++ {
		mean += bins[i].Rate
	}
	mean /= float64(n)

	data := make([]complex128, n)
	for i := 0; i < n; i++ {
		data[i] = complex(bins[i].Rate-mean, 0)
	}

	out := fft(data)
	amps := make([]float64, n/2)
	for i := range amps {
		amps[i] = cmplx.Abs(out[i]) / float64(n)
	}
	return amps
}

// fft is a radix-2 Cooley-Tukey transform; len(x) must be a power of
// two.
func fft(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		return x
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}
	even = fft(even)
	odd = fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		twiddle := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n))) * odd[k]
		out[k] = even[k] + twiddle
		out[k+n/2] = even[k] - twiddle
	}
	return out
}
