package canvas

import "fmt"

// CheckIntegrity validates a node/edge pair as a whole: unique node ids, valid
// anchors, unique connection tuples and no edge pointing at a missing node.
func CheckIntegrity(nodes []Node, edges []Edge) error {
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node without id", ErrMalformedWorkflow)
		}
		if _, ok := ids[n.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		}
		ids[n.ID] = struct{}{}
	}

	edgeIDs := make(map[string]struct{}, len(edges))
	keys := make(map[EdgeKey]struct{}, len(edges))
	for _, e := range edges {
		if e.ID != "" {
			if _, ok := edgeIDs[e.ID]; ok {
				return fmt.Errorf("%w: duplicate connection id %q", ErrMalformedWorkflow, e.ID)
			}
			edgeIDs[e.ID] = struct{}{}
		}
		if !e.FromPoint.Valid() || !e.ToPoint.Valid() {
			return fmt.Errorf("%w: connection %s", ErrInvalidAnchor, e.ID)
		}
		if _, ok := ids[e.From]; !ok {
			return fmt.Errorf("%w: %s -> %q", ErrDanglingEdge, e.ID, e.From)
		}
		if _, ok := ids[e.To]; !ok {
			return fmt.Errorf("%w: %s -> %q", ErrDanglingEdge, e.ID, e.To)
		}
		if _, ok := keys[e.Key()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateEdge, e.ID)
		}
		keys[e.Key()] = struct{}{}
	}
	return nil
}

// ValidateAcyclic checks that the edges don't form a cycle using DFS.
func ValidateAcyclic(nodes []Node, edges []Edge) error {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int)
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := state[n.ID]; !ok {
			state[n.ID] = unvisited
			order = append(order, n.ID)
		}
	}
	// Also include nodes referenced only in edges.
	for _, e := range edges {
		for _, id := range []string{e.From, e.To} {
			if _, ok := state[id]; !ok {
				state[id] = unvisited
				order = append(order, id)
			}
		}
	}

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for _, id := range order {
		if state[id] == unvisited && dfs(id) {
			return fmt.Errorf("%w (through node %s)", ErrCycleDetected, id)
		}
	}

	return nil
}

// Sources returns the ids of nodes with no incoming connection, in node order.
func Sources(nodes []Node, edges []Edge) []string {
	incoming := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		incoming[e.To] = struct{}{}
	}
	out := []string{}
	for _, n := range nodes {
		if _, ok := incoming[n.ID]; !ok {
			out = append(out, n.ID)
		}
	}
	return out
}
