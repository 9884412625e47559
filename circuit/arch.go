package circuit

// Edge is an undirected coupling between two physical nodes.
type Edge [2]int

// Normalize orders the endpoints so an Edge can be used as a map key
// regardless of direction.
func (e Edge) Normalize() Edge {
	if e[0] > e[1] {
		return Edge{e[1], e[0]}
	}
	return e
}

// Architecture is a hardware connectivity graph over physical node indices.
type Architecture struct {
	Nodes []int
	Edges []Edge
}

func NewArchitecture(nodes []int, edges []Edge) *Architecture {
	a := &Architecture{}
	seen := make(map[int]struct{})
	add := func(n int) {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			a.Nodes = append(a.Nodes, n)
		}
	}
	for _, n := range nodes {
		add(n)
	}
	for _, e := range edges {
		a.Edges = append(a.Edges, e.Normalize())
		add(e[0])
		add(e[1])
	}
	return a
}

func (a *Architecture) HasEdge(x, y int) bool {
	want := Edge{x, y}.Normalize()
	for _, e := range a.Edges {
		if e == want {
			return true
		}
	}
	return false
}

// Neighbors returns the nodes directly coupled to n.
func (a *Architecture) Neighbors(n int) []int {
	var out []int
	for _, e := range a.Edges {
		switch n {
		case e[0]:
			out = append(out, e[1])
		case e[1]:
			out = append(out, e[0])
		}
	}
	return out
}

// ShortestPath returns a node path from x to y inclusive, nil if the nodes
// are disconnected.
func (a *Architecture) ShortestPath(x, y int) []int {
	if x == y {
		return []int{x}
	}
	prev := map[int]int{x: x}
	queue := []int{x}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range a.Neighbors(n) {
			if _, ok := prev[m]; ok {
				continue
			}
			prev[m] = n
			if m == y {
				path := []int{y}
				for cur := y; cur != x; {
					cur = prev[cur]
					path = append([]int{cur}, path...)
				}
				return path
			}
			queue = append(queue, m)
		}
	}
	return nil
}
