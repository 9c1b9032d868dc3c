package model

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-watch/rules"
)

// Pattern is a small shape given as rows of live (true) and dead cells
type Pattern [][]bool

var (
	// Blinker is a period 2 oscillator, horizontal phase
	Blinker = Pattern{
		{true, true, true},
	}
	// Glider travels one cell diagonally every 4 generations
	Glider = Pattern{
		{false, true, false},
		{false, false, true},
		{true, true, true},
	}
	// Block is a still life
	Block = Pattern{
		{true, true},
		{true, true},
	}

	patterns = map[string]Pattern{
		"blinker": Blinker,
		"glider":  Glider,
		"block":   Block,
	}

	ErrUnknownPattern = errors.New("unknown pattern")
)

// LookupPattern returns a named pattern
func LookupPattern(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPattern, "[LookupPattern] %q (known: %v)", name, PatternNames())
	}
	return p, nil
}

// PatternNames lists the known pattern names in order
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stamp writes the pattern with its top-left corner at (row, col).
// Dead pattern cells are written too, so the stamped area is exact.
func (g *Grid) Stamp(p Pattern, row, col int) {
	for dr, line := range p {
		for dc, alive := range line {
			cell := rules.Dead
			if alive {
				cell = rules.Alive
			}
			g.Set(row+dr, col+dc, cell)
		}
	}
}
