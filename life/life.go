package life

import "fmt"

const (
	Rows              = 60
	Columns           = 40
	MaxWordLength     = 60
	DefaultGeneration = 1000
)

type Cell struct {
	Row int
	Col int
}

type Cells map[Cell]struct{}

func NewCells(cells ...Cell) Cells {
	out := make(Cells, len(cells))
	for _, c := range cells {
		out[c] = struct{}{}
	}
	return out
}

func (c Cells) Has(cell Cell) bool {
	_, ok := c[cell]
	return ok
}

func (c Cells) Equal(other Cells) bool {
	if len(c) != len(other) {
		return false
	}
	for cell := range c {
		if !other.Has(cell) {
			return false
		}
	}
	return true
}

var neighbours = [8]Cell{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

type Result struct {
	Generations int `json:"generations"`
	Score       int `json:"score"`
}

// Bitmask encodes every byte of word as an 8 character binary string.
// Words longer than MaxWordLength produce no rows.
func Bitmask(word string) []string {
	if len(word) > MaxWordLength {
		return []string{}
	}
	rows := make([]string, 0, len(word))
	for i := 0; i < len(word); i++ {
		rows = append(rows, fmt.Sprintf("%08b", word[i]))
	}
	return rows
}

// InitialCells places the bitmask rows in the middle of the board.
func InitialCells(rows []string) Cells {
	startRow := (Rows - len(rows)) / 2
	startCol := (Columns - 8) / 2
	cells := Cells{}
	for i, row := range rows {
		for j, bit := range row {
			if bit == '1' {
				cells[Cell{Row: startRow + i, Col: startCol + j}] = struct{}{}
			}
		}
	}
	return cells
}

func NeighbourCounts(live Cells) map[Cell]int {
	counts := make(map[Cell]int, len(live)*8)
	for cell := range live {
		for _, d := range neighbours {
			counts[Cell{Row: cell.Row + d.Row, Col: cell.Col + d.Col}]++
		}
	}
	return counts
}

// Survivors returns the live cells with two or three live neighbours.
func Survivors(counts map[Cell]int, live Cells) Cells {
	out := Cells{}
	for cell, n := range counts {
		if (n == 2 || n == 3) && live.Has(cell) {
			out[cell] = struct{}{}
		}
	}
	return out
}

// Births returns the dead cells with exactly three live neighbours.
func Births(counts map[Cell]int, live Cells) Cells {
	out := Cells{}
	for cell, n := range counts {
		if n == 3 && !live.Has(cell) {
			out[cell] = struct{}{}
		}
	}
	return out
}

func NextGeneration(live Cells) Cells {
	counts := NeighbourCounts(live)
	next := Survivors(counts, live)
	for cell := range Births(counts, live) {
		next[cell] = struct{}{}
	}
	return next
}

// Run plays the game seeded from word until it dies out, repeats a recent
// generation, or reaches the generation limit.
func Run(word string, generations int) Result {
	return run(word, generations, NewHistory().Done)
}

func run(word string, generations int, done func(Cells) bool) Result {
	var res Result
	current := InitialCells(Bitmask(word))
	for res.Generations < generations {
		if done(current) {
			break
		}
		res.Score += len(current)
		current = NextGeneration(current)
		res.Generations++
	}
	return res
}
