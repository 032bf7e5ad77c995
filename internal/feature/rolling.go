package feature

import "math"

// Rolling statistics over trailing row windows with min_periods=1 semantics:
// the window at index i covers rows [i-window+1, i] clipped to the start of
// the series, so the first row always has a one-element window.

// rollingMean returns the mean of the trailing window ending at idx.
func rollingMean(values []float64, idx, window int) float64 {
	start := idx - window + 1
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, v := range values[start : idx+1] {
		sum += v
	}
	return sum / float64(idx+1-start)
}

// rollingStd returns the sample standard deviation (ddof=1) of the trailing
// window ending at idx. A single-element window has no variance and returns
// NaN rather than zero.
func rollingStd(values []float64, idx, window int) float64 {
	start := idx - window + 1
	if start < 0 {
		start = 0
	}
	n := idx + 1 - start
	if n < 2 {
		return math.NaN()
	}
	mean := rollingMean(values, idx, window)
	ss := 0.0
	for _, v := range values[start : idx+1] {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
