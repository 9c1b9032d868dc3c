package rules

// Cell is the state of a single grid position
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

// IsAlive reports whether the cell is alive
func (c Cell) IsAlive() bool { return c == Alive }

/*
Next applies Conway's Game of Life rules to determine the next state of a cell.

	Alive with fewer than 2 live neighbours dies (underpopulation)
	Alive with 2 or 3 live neighbours lives on
	Alive with more than 3 live neighbours dies (overpopulation)
	Dead with exactly 3 live neighbours becomes alive (birth)
	Anything else keeps its state
*/
func Next(cell Cell, liveNeighbours int) Cell {
	switch {
	case cell == Alive && liveNeighbours < 2:
		return Dead
	case cell == Alive && (liveNeighbours == 2 || liveNeighbours == 3):
		return Alive
	case cell == Alive && liveNeighbours > 3:
		return Dead
	case cell == Dead && liveNeighbours == 3:
		return Alive
	default:
		return cell
	}
}
