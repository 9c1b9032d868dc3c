// Package detector recognises when a simulation keeps revisiting the same states.
//
// Every generation is reduced to a fingerprint. The Detector keeps the most
// recent fingerprints in a fixed size window together with how often each one
// occurs inside that window, and turns the occurrence table into a verdict.
package detector

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
)

// Verdict tells the caller whether stepping further is worthwhile
type Verdict string

const (
	Continue Verdict = "continue"
	Stop     Verdict = "stop"
)

// Thresholds configures when a window counts as stagnant.
//
// The window is stagnant when at least PairCount distinct fingerprints each
// occur Pair times or more, or when a single fingerprint occurs Single times
// or more.
type Thresholds struct {
	Pair      int `json:"pair" yaml:"pair"`
	PairCount int `json:"pair_count" yaml:"pair_count"`
	Single    int `json:"single" yaml:"single"`
}

// DefaultThresholds returns the two-tier 20/40 thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{Pair: 20, PairCount: 2, Single: 40}
}

// Fingerprint returns the hex md5 digest of a rendered grid
func Fingerprint(rendered string) string {
	sum := md5.Sum([]byte(rendered))
	return hex.EncodeToString(sum[:])
}

// Detector holds a bounded fingerprint history and its occurrence table.
// It is not safe for concurrent use.
type Detector struct {
	thresholds Thresholds

	// ring buffer of the retained fingerprints, oldest at head
	window []string
	head   int
	size   int

	occurrences map[string]int
}

// New creates a Detector retaining at most retention fingerprints.
// A retention below 1 is treated as 1.
func New(retention int, thresholds Thresholds) *Detector {
	if retention < 1 {
		retention = 1
	}
	return &Detector{
		thresholds:  thresholds,
		window:      make([]string, retention),
		occurrences: make(map[string]int, retention),
	}
}

// Retention returns the window capacity
func (d *Detector) Retention() int { return len(d.window) }

// Len returns the number of fingerprints currently retained
func (d *Detector) Len() int { return d.size }

// Count returns how often fp occurs in the current window
func (d *Detector) Count(fp string) int { return d.occurrences[fp] }

// Thresholds returns the configured thresholds
func (d *Detector) Thresholds() Thresholds { return d.thresholds }

// Observe appends fp to the window, evicting the oldest entry once the window
// is full, and returns the verdict for the updated occurrence table.
func (d *Detector) Observe(fp string) Verdict {
	if d.size == len(d.window) {
		d.evictOldest()
	}
	d.window[(d.head+d.size)%len(d.window)] = fp
	d.size++
	d.occurrences[fp]++

	return d.verdict()
}

// evictOldest drops exactly one entry and keeps its count in sync
func (d *Detector) evictOldest() {
	oldest := d.window[d.head]
	d.window[d.head] = ""
	d.head = (d.head + 1) % len(d.window)
	d.size--

	if n := d.occurrences[oldest]; n <= 1 {
		delete(d.occurrences, oldest)
	} else {
		d.occurrences[oldest] = n - 1
	}
}

func (d *Detector) verdict() Verdict {
	high, peak := d.scan()
	if high >= d.thresholds.PairCount || peak >= d.thresholds.Single {
		return Stop
	}
	return Continue
}

// scan walks the occurrence table once; an empty table yields zeros
func (d *Detector) scan() (high, peak int) {
	for _, n := range d.occurrences {
		if n >= d.thresholds.Pair {
			high++
		}
		peak = max(peak, n)
	}
	return high, peak
}

// Stats returns the number of distinct fingerprints and the highest single
// count in the window without copying any state
func (d *Detector) Stats() (distinct, peak int) {
	_, peak = d.scan()
	return len(d.occurrences), peak
}

// Reset empties the window and the occurrence table
func (d *Detector) Reset() {
	clear(d.window)
	clear(d.occurrences)
	d.head, d.size = 0, 0
}

// Snapshot is a point in time copy of the detector state
type Snapshot struct {
	Window         []string       `json:"window"`
	Occurrences    map[string]int `json:"occurrences"`
	Distinct       int            `json:"distinct"`
	Peak           int            `json:"peak"`
	HighOccurrence int            `json:"high_occurrence"`
}

// Snapshot copies the window (oldest first) and the occurrence table
func (d *Detector) Snapshot() Snapshot {
	window := make([]string, d.size)
	for i := range d.size {
		window[i] = d.window[(d.head+i)%len(d.window)]
	}
	occurrences := make(map[string]int, len(d.occurrences))
	for fp, n := range d.occurrences {
		occurrences[fp] = n
	}
	high, peak := d.scan()
	return Snapshot{
		Window:         window,
		Occurrences:    occurrences,
		Distinct:       len(occurrences),
		Peak:           peak,
		HighOccurrence: high,
	}
}

// TopOccurrences returns up to n fingerprints ordered by descending count,
// ties broken by fingerprint so the output is stable for logging.
func (s Snapshot) TopOccurrences(n int) []Occurrence {
	out := make([]Occurrence, 0, len(s.Occurrences))
	for fp, count := range s.Occurrences {
		out = append(out, Occurrence{Fingerprint: fp, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Fingerprint < out[j].Fingerprint
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Occurrence pairs a fingerprint with its count in the window
type Occurrence struct {
	Fingerprint string `json:"fingerprint"`
	Count       int    `json:"count"`
}
