package compile

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

// Placement chooses an initial logical-to-physical qubit assignment for a
// circuit on an architecture.
type Placement interface {
	Place(c *circuit.Circuit, arch *circuit.Architecture) (map[circuit.Qubit]int, error)
}

// NaivePlacement assigns the i-th circuit qubit to the i-th architecture
// node in sorted order.
type NaivePlacement struct{}

func (NaivePlacement) Place(c *circuit.Circuit, arch *circuit.Architecture) (map[circuit.Qubit]int, error) {
	if len(c.Qubits) > len(arch.Nodes) {
		return nil, fmt.Errorf("circuit needs %d qubits, device has %d", len(c.Qubits), len(arch.Nodes))
	}
	nodes := append([]int(nil), arch.Nodes...)
	sort.Ints(nodes)
	placement := make(map[circuit.Qubit]int, len(c.Qubits))
	for i, q := range c.Qubits {
		placement[q] = nodes[i]
	}
	return placement, nil
}

// NoiseAwarePlacement prefers low-error nodes and edges. Node and edge
// scores are per-gate error rates; missing entries score zero.
type NoiseAwarePlacement struct {
	NodeErrors map[int]float64
	EdgeErrors map[circuit.Edge]float64
}

func (p NoiseAwarePlacement) Place(c *circuit.Circuit, arch *circuit.Architecture) (map[circuit.Qubit]int, error) {
	if len(c.Qubits) > len(arch.Nodes) {
		return nil, fmt.Errorf("circuit needs %d qubits, device has %d", len(c.Qubits), len(arch.Nodes))
	}
	// greedy: order nodes by combined node error plus the mean error of
	// their incident edges, then hand out the best nodes in qubit order
	score := func(n int) float64 {
		s := p.NodeErrors[n]
		edges := 0
		var sum float64
		for _, e := range arch.Edges {
			if e[0] == n || e[1] == n {
				sum += p.EdgeErrors[e.Normalize()]
				edges++
			}
		}
		if edges > 0 {
			s += sum / float64(edges)
		}
		return s
	}
	nodes := append([]int(nil), arch.Nodes...)
	sort.Slice(nodes, func(i, j int) bool {
		si, sj := score(nodes[i]), score(nodes[j])
		if si != sj {
			return si < sj
		}
		return nodes[i] < nodes[j]
	})
	placement := make(map[circuit.Qubit]int, len(c.Qubits))
	for i, q := range c.Qubits {
		placement[q] = nodes[i]
	}
	return placement, nil
}

// RoutingPass maps circuit qubits onto device nodes and inserts SWAP gates
// so every two-qubit gate acts on a connected pair. The resulting circuit
// uses default-register qubits indexed by device node, and the net qubit
// relabelling is recorded as the implicit permutation.
type RoutingPass struct {
	Arch      *circuit.Architecture
	Placement Placement
}

func NewRoutingPass(arch *circuit.Architecture, placement Placement) RoutingPass {
	if placement == nil {
		placement = NaivePlacement{}
	}
	return RoutingPass{Arch: arch, Placement: placement}
}

func (RoutingPass) Name() string { return "RoutingPass" }

func (p RoutingPass) Apply(c *circuit.Circuit) error {
	if p.Arch == nil {
		return fmt.Errorf("routing requires an architecture")
	}
	initial, err := p.Placement.Place(c, p.Arch)
	if err != nil {
		return err
	}
	// current maps a logical qubit to the node holding it right now
	current := make(map[circuit.Qubit]int, len(initial))
	for q, n := range initial {
		current[q] = n
	}
	node := func(q circuit.Qubit) circuit.Qubit {
		return circuit.Q(current[q])
	}

	routed := circuit.New(0)
	seen := map[int]bool{}
	addNode := func(n int) {
		if !seen[n] {
			seen[n] = true
			routed.AddQubit(circuit.Q(n))
		}
	}
	for _, q := range c.Qubits {
		addNode(current[q])
	}
	for _, b := range c.Bits {
		routed.AddBit(b)
	}
	routed.Phase = c.Phase

	swapCount := 0
	for _, g := range c.Gates {
		if len(g.Qubits) == 2 && g.Op != circuit.OpBarrier {
			a, b := current[g.Qubits[0]], current[g.Qubits[1]]
			if !p.Arch.HasEdge(a, b) {
				path := p.Arch.ShortestPath(a, b)
				if path == nil {
					return fmt.Errorf("nodes %d and %d are disconnected", a, b)
				}
				// walk the first endpoint along the path until adjacent
				for i := 0; i+2 < len(path); i++ {
					addNode(path[i])
					addNode(path[i+1])
					routed.Gates = append(routed.Gates, circuit.Gate{
						Op:     circuit.OpSWAP,
						Qubits: []circuit.Qubit{circuit.Q(path[i]), circuit.Q(path[i+1])},
					})
					swapCount++
					// whatever logical qubits sit on the two nodes trade places
					for q, n := range current {
						switch n {
						case path[i]:
							current[q] = path[i+1]
						case path[i+1]:
							current[q] = path[i]
						}
					}
				}
			}
		}
		mapped := g.Clone()
		mapped.Qubits = make([]circuit.Qubit, len(g.Qubits))
		for i, q := range g.Qubits {
			addNode(current[q])
			mapped.Qubits[i] = node(q)
		}
		routed.Gates = append(routed.Gates, mapped)
	}

	perm := make(map[circuit.Qubit]circuit.Qubit, len(c.Qubits))
	for _, q := range c.Qubits {
		perm[circuit.Q(initial[q])] = circuit.Q(current[q])
	}
	routed.SetImplicitPermutation(perm)

	if swapCount > 0 {
		zap.L().Debug(fmt.Sprintf("routing inserted %d swap(s)", swapCount))
	}
	*c = *routed
	return nil
}
