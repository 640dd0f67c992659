package editor

import "github.com/meikuraledutech/canvas"

// snapshot is an immutable copy of the graph contents.
type snapshot struct {
	nodes []canvas.Node
	edges []canvas.Edge
}

// history is a linear list of snapshots with a cursor. Pushing after an undo
// truncates everything past the cursor.
type history struct {
	entries []snapshot
	cursor  int
}

func (h *history) push(nodes []canvas.Node, edges []canvas.Edge) {
	if len(h.entries) > 0 {
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, snapshot{
		nodes: canvas.CloneNodes(nodes),
		edges: canvas.CloneEdges(edges),
	})
	h.cursor = len(h.entries) - 1
}

func (h *history) undo() (snapshot, bool) {
	if h.cursor <= 0 {
		return snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

func (h *history) redo() (snapshot, bool) {
	if h.cursor >= len(h.entries)-1 {
		return snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}
