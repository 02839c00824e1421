package life

const historySize = 10

// History remembers the most recent generations of a single run.
type History struct {
	recent []Cells
}

func NewHistory() *History {
	return &History{recent: make([]Cells, 0, historySize)}
}

// Done reports whether the run should stop at current. An empty board always
// stops the run. The first live generation is recorded, after that the run
// also stops when current matches a remembered generation.
func (h *History) Done(current Cells) bool {
	if len(current) == 0 {
		return true
	}
	if len(h.recent) == 0 {
		h.recent = append(h.recent, current)
		return false
	}
	for _, past := range h.recent {
		if past.Equal(current) {
			return true
		}
	}
	if len(h.recent) == historySize {
		h.recent = h.recent[1:]
	}
	h.recent = append(h.recent, current)
	return false
}

func (h *History) Len() int {
	return len(h.recent)
}
