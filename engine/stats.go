package engine

import (
	"strconv"
	"strings"
)

// Stats holds the node count and nodes-per-second reported by the
// engine during one search.
type Stats struct {
	Nodes int64
	NPS   int64
}

// ExtractStats recovers nodes and nps from the raw output lines of one
// search. Engines emit progressively updated info lines, so the last
// line carrying a field wins. A malformed number drops that line's
// field only; the values from earlier lines stand.
func ExtractStats(lines []string) Stats {
	var st Stats

	for _, line := range lines {
		if v, ok := intAfter(line, "nodes"); ok {
			st.Nodes = v
		}

		if v, ok := intAfter(line, "nps"); ok {
			st.NPS = v
		}
	}

	return st
}

// intAfter parses the first whitespace-separated token following key
// in line. Missing key, missing token and unparseable token all
// report ok=false.
func intAfter(line, key string) (int64, bool) {
	idx := strings.Index(line, key)
	if idx < 0 {
		return 0, false
	}

	fields := strings.Fields(line[idx+len(key):])
	if len(fields) == 0 {
		return 0, false
	}

	v, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
