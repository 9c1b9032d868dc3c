package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	for n := 0; n <= 8; n++ {
		wantAlive := Dead
		if n == 2 || n == 3 {
			wantAlive = Alive
		}
		assert.Equal(t, wantAlive, Next(Alive, n), "alive cell with %d neighbours", n)

		wantDead := Dead
		if n == 3 {
			wantDead = Alive
		}
		assert.Equal(t, wantDead, Next(Dead, n), "dead cell with %d neighbours", n)
	}
}

func TestCellIsAlive(t *testing.T) {
	assert.True(t, Alive.IsAlive())
	assert.False(t, Dead.IsAlive())
}
