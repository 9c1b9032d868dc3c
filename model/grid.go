package model

import (
	"strings"
	"unicode/utf8"

	"github.com/sheikhrachel/go-gol-watch/rules"
)

const (
	glyphDead  = '◻'
	glyphAlive = '◼'
)

// Grid is a toroidal board stored row-major: index = row*width + column.
// Width and height never change after construction.
type Grid struct {
	width  int
	height int
	cells  []rules.Cell
}

// NewGrid creates an all-dead grid with the specified dimensions
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]rules.Cell, width*height),
	}
}

// NewSeededGrid creates a grid where cell i is alive iff i%seedA == 0 || i%seedB == 0.
// Both seeds must be non-zero.
func NewSeededGrid(width, height int, seedA, seedB uint32) *Grid {
	g := NewGrid(width, height)
	for i := range g.cells {
		if uint32(i)%seedA == 0 || uint32(i)%seedB == 0 {
			g.cells[i] = rules.Alive
		}
	}
	return g
}

// GetWidth returns the width of the grid
func (g *Grid) GetWidth() int { return g.width }

// GetHeight returns the height of the grid
func (g *Grid) GetHeight() int { return g.height }

// Index returns the flat index of (row, col)
func (g *Grid) Index(row, col int) int { return row*g.width + col }

// Set sets a cell, wrapping coordinates around the torus
func (g *Grid) Set(row, col int, cell rules.Cell) {
	row, col = g.wrap(row, col)
	g.cells[g.Index(row, col)] = cell
}

// Get returns the state of a cell, wrapping coordinates around the torus
func (g *Grid) Get(row, col int) rules.Cell {
	row, col = g.wrap(row, col)
	return g.cells[g.Index(row, col)]
}

func (g *Grid) wrap(row, col int) (int, int) {
	row = (row%g.height + g.height) % g.height
	col = (col%g.width + g.width) % g.width
	return row, col
}

// Clear kills every cell
func (g *Grid) Clear() {
	clear(g.cells)
}

// Reset resizes the grid to new dimensions and clears it
func (g *Grid) Reset(width, height int) {
	g.width = width
	g.height = height
	if cap(g.cells) < width*height {
		g.cells = make([]rules.Cell, width*height)
		return
	}
	g.cells = g.cells[:width*height]
	g.Clear()
}

// LiveNeighbours counts the live cells among the 8 toroidally wrapped neighbours.
// On a 1-wide or 1-high board neighbours alias each other.
func (g *Grid) LiveNeighbours(row, col int) int {
	count := 0
	for _, dr := range [3]int{g.height - 1, 0, 1} {
		for _, dc := range [3]int{g.width - 1, 0, 1} {
			if dr == 0 && dc == 0 {
				continue
			}
			r := (row + dr) % g.height
			c := (col + dc) % g.width
			count += int(g.cells[g.Index(r, c)])
		}
	}
	return count
}

// Next computes the following generation into a grid taken from pool (or a new
// one when pool is nil) and returns it with the live count of g itself.
// g is only read.
func (g *Grid) Next(pool *GridPool) (*Grid, int) {
	var next *Grid
	if pool != nil {
		next = pool.Get(g.width, g.height)
	} else {
		next = NewGrid(g.width, g.height)
	}

	alive := 0
	for row := range g.height {
		for col := range g.width {
			idx := g.Index(row, col)
			cell := g.cells[idx]
			if cell.IsAlive() {
				alive++
			}
			next.cells[idx] = rules.Next(cell, g.LiveNeighbours(row, col))
		}
	}
	return next, alive
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for _, c := range g.cells {
		if c.IsAlive() {
			count++
		}
	}
	return
}

// Render returns one line per row, one glyph per cell, each row newline terminated
func (g *Grid) Render() string {
	var b strings.Builder
	b.Grow(g.height * (g.width*utf8.RuneLen(glyphAlive) + 1))
	for row := range g.height {
		for _, c := range g.cells[row*g.width : (row+1)*g.width] {
			if c.IsAlive() {
				b.WriteRune(glyphAlive)
			} else {
				b.WriteRune(glyphDead)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *Grid) String() string { return g.Render() }

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.width, g.height)
	copy(out.cells, g.cells)
	return out
}
