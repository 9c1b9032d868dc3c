package model

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/go-gol-watch/rules"
)

func TestNewSeededGrid(t *testing.T) {
	g := NewSeededGrid(4, 4, 2, 5)
	want := "◼◻◼◻\n" +
		"◼◼◼◻\n" +
		"◼◻◼◻\n" +
		"◼◻◼◼\n"
	assert.Equal(t, want, g.Render())
	assert.Equal(t, 10, g.CountLivingCells())
}

func TestRenderShape(t *testing.T) {
	g := NewGrid(3, 2)
	g.Set(1, 2, rules.Alive)
	assert.Equal(t, "◻◻◻\n◻◻◼\n", g.Render())
	assert.Equal(t, g.Render(), g.String())
}

func TestSetGetWraps(t *testing.T) {
	g := NewGrid(4, 3)
	g.Set(-1, -1, rules.Alive)
	assert.Equal(t, rules.Alive, g.Get(2, 3))
	assert.Equal(t, rules.Alive, g.Get(5, 7))
	assert.Equal(t, 2*4+3, g.Index(2, 3))
}

func TestLiveNeighboursWrapAroundCorners(t *testing.T) {
	g := NewGrid(5, 5)
	g.Set(4, 4, rules.Alive)
	g.Set(0, 4, rules.Alive)
	g.Set(4, 0, rules.Alive)

	assert.Equal(t, 3, g.LiveNeighbours(0, 0))
	assert.Equal(t, 2, g.LiveNeighbours(4, 4))
	assert.Equal(t, 0, g.LiveNeighbours(2, 2))
}

func TestNextSeededFourByFour(t *testing.T) {
	g := NewSeededGrid(4, 4, 2, 5)
	next, alive := g.Next(nil)

	assert.Equal(t, 10, alive)
	want := "◻◻◻◻\n" +
		"◼◻◼◻\n" +
		"◻◻◻◻\n" +
		"◼◻◼◻\n"
	assert.Equal(t, want, next.Render())
	assert.Equal(t, 4, next.CountLivingCells())
	// the source grid is only read
	assert.Equal(t, 10, g.CountLivingCells())
}

func TestNextMatchesRulesOnRandomBoards(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 20 {
		w, h := 3+rng.IntN(10), 3+rng.IntN(10)
		g := NewGrid(w, h)
		for i := range g.cells {
			if rng.IntN(3) == 0 {
				g.cells[i] = rules.Alive
			}
		}

		next, _ := g.Next(nil)
		for row := range h {
			for col := range w {
				n := 0
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						if (dr != 0 || dc != 0) && g.Get(row+dr, col+dc).IsAlive() {
							n++
						}
					}
				}
				require.Equal(t, rules.Next(g.Get(row, col), n), next.Get(row, col),
					"trial %d cell (%d,%d)", trial, row, col)
			}
		}
	}
}

func TestBlinkerOscillation(t *testing.T) {
	g := NewGrid(5, 5)
	g.Stamp(Blinker, 2, 1)
	horizontal := g.Render()

	next, _ := g.Next(nil)
	assert.Equal(t, rules.Alive, next.Get(1, 2))
	assert.Equal(t, rules.Alive, next.Get(2, 2))
	assert.Equal(t, rules.Alive, next.Get(3, 2))
	assert.Equal(t, 3, next.CountLivingCells())

	back, _ := next.Next(nil)
	assert.Equal(t, horizontal, back.Render())
}

func TestBlockIsStill(t *testing.T) {
	g := NewGrid(6, 6)
	g.Stamp(Block, 2, 2)
	next, alive := g.Next(nil)
	assert.Equal(t, 4, alive)
	assert.Equal(t, g.Render(), next.Render())
}

func TestDegenerateBoardsDoNotPanic(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {1, 5}, {5, 1}, {2, 2}} {
		g := NewSeededGrid(dims[0], dims[1], 1, 1)
		assert.NotPanics(t, func() {
			next, _ := g.Next(nil)
			assert.LessOrEqual(t, next.CountLivingCells(), dims[0]*dims[1])
		})
	}
}

func TestGridPoolReturnsClearedGrid(t *testing.T) {
	pool := NewGridPool()
	g := NewSeededGrid(4, 4, 1, 1)
	GridToPool(g, pool)
	GridToPool(nil, pool)
	GridToPool(g, nil)

	got := pool.Get(3, 2)
	assert.Equal(t, 3, got.GetWidth())
	assert.Equal(t, 2, got.GetHeight())
	assert.Zero(t, got.CountLivingCells())
	assert.Len(t, got.cells, 6)
}

func TestStampAndLookupPattern(t *testing.T) {
	p, err := LookupPattern("glider")
	require.NoError(t, err)

	g := NewGrid(4, 4)
	g.Stamp(p, 3, 3)
	assert.Equal(t, 5, g.CountLivingCells())
	assert.Equal(t, rules.Alive, g.Get(3, 4))

	_, err = LookupPattern("spaceship")
	assert.ErrorIs(t, err, ErrUnknownPattern)
	assert.Equal(t, []string{"blinker", "block", "glider"}, PatternNames())
}

func TestClone(t *testing.T) {
	g := NewSeededGrid(4, 4, 2, 5)
	c := g.Clone()
	c.Clear()
	assert.Equal(t, 10, g.CountLivingCells())
}
