package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Per-frame CPU timing for the foreground tick. The streaming goroutine
// records into the same totals, so a frame's numbers include background work
// that overlapped it.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	frameCounts = make(map[string]int)
)

// Track returns a stop function that adds the elapsed time under name.
// Usage: defer profiling.Track("world.SpawnPass")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		frameCounts[name]++
		mu.Unlock()
	}
}

// ResetFrame clears the totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	clear(frameCounts)
	mu.Unlock()
}

// Sample is one named total.
type Sample struct {
	Name  string
	Total time.Duration
	Calls int
}

// Snapshot returns the current totals, largest first.
func Snapshot() []Sample {
	mu.Lock()
	out := make([]Sample, 0, len(frameTotals))
	for name, d := range frameTotals {
		out = append(out, Sample{Name: name, Total: d, Calls: frameCounts[name]})
	}
	mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats the n largest totals, e.g.
// "world.SpawnPass:4.2ms, world.CullPass:0.3ms"
func TopN(n int) string {
	samples := Snapshot()
	if n < len(samples) {
		samples = samples[:n]
	}
	parts := make([]string, len(samples))
	for i, s := range samples {
		ms := float64(s.Total.Microseconds()) / 1000
		parts[i] = s.Name + ":" + strconv.FormatFloat(ms, 'f', 1, 64) + "ms"
	}
	return strings.Join(parts, ", ")
}
