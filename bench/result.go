// Package bench orchestrates repeated engine searches and aggregates
// their timing statistics.
package bench

import (
	"math"
	"sort"
	"time"
)

// Result is one completed benchmark run. Results are immutable once
// recorded and kept in run order.
type Result struct {
	Run     int
	Nodes   int64
	Elapsed time.Duration
	NPS     int64
}

// Summary is a view derived from the recorded results. It is
// recomputed on demand and never stored independently.
type Summary struct {
	Runs         int
	TotalNodes   int64
	TotalElapsed time.Duration
	AvgNPS       int64
	MedianNPS    int64
	MinNPS       int64
	MaxNPS       int64
	StdDevNPS    float64
}

// Summarize folds the results into aggregate statistics. The average
// is total nodes over total wall time; the median is the upper median
// of the sorted per-run rates.
func Summarize(results []Result) Summary {
	s := Summary{Runs: len(results)}
	if len(results) == 0 {
		return s
	}

	rates := make([]int64, 0, len(results))

	for _, r := range results {
		s.TotalNodes += r.Nodes
		s.TotalElapsed += r.Elapsed
		rates = append(rates, r.NPS)
	}

	if secs := s.TotalElapsed.Seconds(); secs > 0 {
		s.AvgNPS = int64(float64(s.TotalNodes) / secs)
	}

	sort.Slice(rates, func(i, j int) bool { return rates[i] < rates[j] })

	s.MedianNPS = rates[len(rates)/2]
	s.MinNPS = rates[0]
	s.MaxNPS = rates[len(rates)-1]
	s.StdDevNPS = stddev(rates)

	return s
}

// stddev is the population standard deviation: every run is observed,
// not sampled.
func stddev(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum int64
	for _, v := range values {
		sum += v
	}

	mean := float64(sum) / float64(len(values))

	var acc float64

	for _, v := range values {
		d := float64(v) - mean
		acc += d * d
	}

	return math.Sqrt(acc / float64(len(values)))
}
