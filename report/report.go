// Package report renders benchmark results for the console and for
// machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/avoron/ucibench/bench"
)

// PrintRun writes the one-line console report for a completed run.
func PrintRun(w io.Writer, depth int, r bench.Result) {
	fmt.Fprintf(w, "Depth %d: %s nps, %s nodes\n",
		depth,
		color.GreenString(commas(r.NPS)),
		color.CyanString(commas(r.Nodes)),
	)
}

// Generate writes the human-readable summary block. The spread lines
// only appear with more than one run; a single run has no spread.
func Generate(w io.Writer, s bench.Summary) error {
	if s.Runs == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Benchmark Summary ===")
	fmt.Fprintf(w, "Runs completed: %d\n", s.Runs)
	fmt.Fprintf(w, "Total nodes: %s\n", commas(s.TotalNodes))
	fmt.Fprintf(w, "Total time: %.2fs\n", s.TotalElapsed.Seconds())
	fmt.Fprintf(w, "Average NPS: %s\n", color.GreenString(commas(s.AvgNPS)))

	if s.Runs > 1 {
		fmt.Fprintf(w, "Median NPS: %s\n", commas(s.MedianNPS))
		fmt.Fprintf(w, "Min NPS: %s\n", color.CyanString(commas(s.MinNPS)))
		fmt.Fprintf(w, "Max NPS: %s\n", color.RedString(commas(s.MaxNPS)))
		fmt.Fprintf(w, "Standard deviation: %s\n",
			commas(int64(s.StdDevNPS)))
	}

	return nil
}

type jsonRun struct {
	Run   int     `json:"run"`
	Nodes int64   `json:"nodes"`
	Time  float64 `json:"time"`
	NPS   int64   `json:"nps"`
}

type jsonReport struct {
	Runs       int       `json:"runs"`
	TotalNodes int64     `json:"total_nodes"`
	TotalTime  float64   `json:"total_time"`
	AvgNPS     int64     `json:"avg_nps"`
	MedianNPS  int64     `json:"median_nps"`
	MinNPS     int64     `json:"min_nps"`
	MaxNPS     int64     `json:"max_nps"`
	StdDevNPS  float64   `json:"std_dev_nps"`
	Results    []jsonRun `json:"results"`
}

// GenerateJSON writes the summary and per-run results as JSON to w.
// The field names are consumed by other tooling; treat them as a
// contract.
func GenerateJSON(w io.Writer, s bench.Summary, results []bench.Result) error {
	out := jsonReport{
		Runs:       s.Runs,
		TotalNodes: s.TotalNodes,
		TotalTime:  s.TotalElapsed.Seconds(),
		AvgNPS:     s.AvgNPS,
		MedianNPS:  s.MedianNPS,
		MinNPS:     s.MinNPS,
		MaxNPS:     s.MaxNPS,
		StdDevNPS:  s.StdDevNPS,
		Results:    make([]jsonRun, 0, len(results)),
	}

	for _, r := range results {
		out.Results = append(out.Results, jsonRun{
			Run:   r.Run,
			Nodes: r.Nodes,
			Time:  r.Elapsed.Seconds(),
			NPS:   r.NPS,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

// commas inserts thousands separators into the decimal rendering of v.
func commas(v int64) string {
	s := strconv.FormatInt(v, 10)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	for pos := len(s) - 3; pos > 0; pos -= 3 {
		s = s[:pos] + "," + s[pos:]
	}

	if neg {
		return "-" + s
	}

	return s
}
