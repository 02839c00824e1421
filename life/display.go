package life

import "strings"

const (
	Alive = "🟩"
	Dead  = "‧"
)

// Box bounds the rendered area: rows [StartRow, EndRow) and columns [StartCol, EndCol).
type Box struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

var Board = Box{EndRow: Rows, EndCol: Columns}

func Display(live Cells, box Box) string {
	lines := make([]string, 0, max(box.EndRow-box.StartRow, 0))
	var sb strings.Builder
	for row := box.StartRow; row < box.EndRow; row++ {
		sb.Reset()
		for col := box.StartCol; col < box.EndCol; col++ {
			if live.Has(Cell{Row: row, Col: col}) {
				sb.WriteString(Alive)
			} else {
				sb.WriteString(Dead)
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
