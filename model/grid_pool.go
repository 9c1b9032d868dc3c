package model

import "sync"

// GridToPool hands a discarded generation back for reuse. A nil pool or grid is ignored.
func GridToPool(grid *Grid, pool *GridPool) {
	if pool == nil || grid == nil {
		return
	}
	pool.Put(grid)
}

// GridPool recycles the cell buffers of discarded generations so a long run
// does not allocate a new board every tick
type GridPool struct {
	pool sync.Pool
}

func NewGridPool() *GridPool {
	p := &GridPool{}
	p.pool.New = func() any { return &Grid{} }
	return p
}

// Get returns an all-dead grid of the given size. It never aliases a grid
// that is still in use because only discarded grids are Put back.
func (p *GridPool) Get(width, height int) *Grid {
	g := p.pool.Get().(*Grid)
	g.Reset(width, height)
	return g
}

// Put clears g and stores it; g must not be used afterwards
func (p *GridPool) Put(g *Grid) {
	g.Clear()
	p.pool.Put(g)
}
