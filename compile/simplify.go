package compile

import (
	"math"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

func touches(g circuit.Gate, q circuit.Qubit) bool {
	for _, have := range g.Qubits {
		if have == q {
			return true
		}
	}
	return false
}

func sameQubits(a, b circuit.Gate) bool {
	if len(a.Qubits) != len(b.Qubits) {
		return false
	}
	for i := range a.Qubits {
		if a.Qubits[i] != b.Qubits[i] {
			return false
		}
	}
	return true
}

func symmetricQubits(a, b circuit.Gate) bool {
	return len(a.Qubits) == 2 && len(b.Qubits) == 2 &&
		a.Qubits[0] == b.Qubits[1] && a.Qubits[1] == b.Qubits[0]
}

// nextTouching returns the index of the first gate after i that shares a
// qubit with gates[i], or -1.
func nextTouching(gates []circuit.Gate, i int) int {
	for j := i + 1; j < len(gates); j++ {
		for _, q := range gates[i].Qubits {
			if touches(gates[j], q) {
				return j
			}
		}
	}
	return -1
}

func selfInverse(op circuit.OpType) bool {
	switch op {
	case circuit.OpH, circuit.OpX, circuit.OpY, circuit.OpZ,
		circuit.OpCX, circuit.OpCZ, circuit.OpCCX, circuit.OpSWAP:
		return true
	default:
		return false
	}
}

func inversePair(a, b circuit.OpType) bool {
	return (a == circuit.OpS && b == circuit.OpSdg) ||
		(a == circuit.OpSdg && b == circuit.OpS) ||
		(a == circuit.OpT && b == circuit.OpTdg) ||
		(a == circuit.OpTdg && b == circuit.OpT)
}

func removeTwo(gates []circuit.Gate, i, j int) []circuit.Gate {
	out := gates[:0]
	for k, g := range gates {
		if k == i || k == j {
			continue
		}
		out = append(out, g)
	}
	return out
}

// cancelInversePairs removes adjacent gate pairs that compose to the
// identity. Adjacency is per-qubit: no gate in between may touch the shared
// qubits. Returns true when anything was removed.
func cancelInversePairs(c *circuit.Circuit) bool {
	for i := 0; i < len(c.Gates); i++ {
		g := c.Gates[i]
		if len(g.Conditional) > 0 || g.Op == circuit.OpMeasure || g.Op == circuit.OpBarrier {
			continue
		}
		j := nextTouching(c.Gates, i)
		if j < 0 {
			continue
		}
		h := c.Gates[j]
		if len(h.Conditional) > 0 {
			continue
		}
		cancel := false
		if g.Op == h.Op && selfInverse(g.Op) && len(g.Params) == 0 {
			symmetric := g.Op == circuit.OpCZ || g.Op == circuit.OpSWAP
			cancel = sameQubits(g, h) || (symmetric && symmetricQubits(g, h))
		}
		if inversePair(g.Op, h.Op) && sameQubits(g, h) {
			cancel = true
		}
		if cancel {
			c.Gates = removeTwo(c.Gates, i, j)
			return true
		}
	}
	return false
}

// normalizeRotation reduces a rotation angle into (-2, 2] half-turns. The
// second return is the global phase contribution of the reduction: a full
// half-turn period (angle 2) equals minus identity.
func normalizeRotation(v float64) (float64, float64) {
	phase := 0.0
	v = math.Mod(v, 4)
	if v > 2 {
		v -= 4
	} else if v <= -2 {
		v += 4
	}
	if v == -0.0 {
		v = 0
	}
	if v == 2 || v == -2 {
		return 0, 1
	}
	return v, phase
}

// mergeRotations combines adjacent same-axis rotations on a qubit and drops
// rotations that reduce to the identity. Returns true when the gate list
// changed.
func mergeRotations(c *circuit.Circuit) bool {
	for i := 0; i < len(c.Gates); i++ {
		g := c.Gates[i]
		if !isAxisRotation(g) {
			continue
		}
		if len(g.Params) == 1 && !g.Params[0].Symbolic() && g.Params[0].Value == 0 {
			c.Gates = append(c.Gates[:i], c.Gates[i+1:]...)
			return true
		}
		j := nextTouching(c.Gates, i)
		if j < 0 {
			continue
		}
		h := c.Gates[j]
		if h.Op != g.Op || !sameQubits(g, h) || !isAxisRotation(h) {
			continue
		}
		sum, phase := normalizeRotation(g.Params[0].Value + h.Params[0].Value)
		c.AddPhase(phase)
		if sum == 0 {
			c.Gates = removeTwo(c.Gates, i, j)
		} else {
			c.Gates[i].Params = []circuit.Param{{Value: sum}}
			c.Gates = append(c.Gates[:j], c.Gates[j+1:]...)
		}
		return true
	}
	return false
}

func isAxisRotation(g circuit.Gate) bool {
	switch g.Op {
	case circuit.OpRx, circuit.OpRy, circuit.OpRz:
	default:
		return false
	}
	return len(g.Qubits) == 1 && len(g.Params) == 1 &&
		!g.Params[0].Symbolic() && len(g.Conditional) == 0
}

// LightOptimisePass is the cheap pre-routing simplification: adjacent
// inverse pairs cancel and same-axis rotations merge, to a fixed point.
type LightOptimisePass struct{}

func (LightOptimisePass) Name() string { return "LightOptimise" }

func (LightOptimisePass) Apply(c *circuit.Circuit) error {
	for {
		changed := cancelInversePairs(c)
		changed = mergeRotations(c) || changed
		if !changed {
			return nil
		}
	}
}

// FullPeepholeOptimisePass extends LightOptimise by commuting Z-rotations
// through CZ gates (and through CX controls) before merging, exposing
// cancellations the light pass misses.
type FullPeepholeOptimisePass struct{}

func (FullPeepholeOptimisePass) Name() string { return "FullPeepholeOptimise" }

func (FullPeepholeOptimisePass) Apply(c *circuit.Circuit) error {
	for {
		changed := cancelInversePairs(c)
		changed = commuteDiagonal(c) || changed
		changed = mergeRotations(c) || changed
		if !changed {
			return nil
		}
	}
}

// commuteDiagonal moves an Rz forward past an adjacent CZ (or a CX control)
// when the gate after it merges with it. Only performed when it directly
// enables a merge, so the loop terminates.
func commuteDiagonal(c *circuit.Circuit) bool {
	for i := 0; i < len(c.Gates); i++ {
		g := c.Gates[i]
		if g.Op != circuit.OpRz || !isAxisRotation(g) {
			continue
		}
		q := g.Qubits[0]
		j := nextTouching(c.Gates, i)
		if j < 0 {
			continue
		}
		mid := c.Gates[j]
		if !commutesWithDiagonal(mid, q) {
			continue
		}
		// the swap moves mid before every gate in (i, j); none of them may
		// act on mid's qubits
		blocked := false
		for m := i + 1; m < j && !blocked; m++ {
			for _, mq := range mid.Qubits {
				if touches(c.Gates[m], mq) {
					blocked = true
					break
				}
			}
		}
		if blocked {
			continue
		}
		k := -1
		for m := j + 1; m < len(c.Gates); m++ {
			if touches(c.Gates[m], q) {
				k = m
				break
			}
		}
		if k < 0 {
			continue
		}
		after := c.Gates[k]
		if after.Op != circuit.OpRz || !isAxisRotation(after) || after.Qubits[0] != q {
			continue
		}
		// swap the rotation past the commuting gate; the merge happens on
		// the next mergeRotations sweep
		c.Gates[i], c.Gates[j] = c.Gates[j], c.Gates[i]
		return true
	}
	return false
}

func commutesWithDiagonal(g circuit.Gate, q circuit.Qubit) bool {
	switch g.Op {
	case circuit.OpCZ:
		return true
	case circuit.OpCX:
		return g.Qubits[0] == q // control side only
	default:
		return false
	}
}

// CliffordSimpPass applies local Clifford identities. Swap insertion is a
// routing concern; with AllowSwaps false the pass never changes qubit
// placement.
type CliffordSimpPass struct {
	AllowSwaps bool
}

func (CliffordSimpPass) Name() string { return "CliffordSimp" }

func (p CliffordSimpPass) Apply(c *circuit.Circuit) error {
	for {
		changed := cancelInversePairs(c)
		changed = foldCliffordPairs(c) || changed
		changed = conjugateByHadamard(c) || changed
		if !changed {
			return nil
		}
	}
}

var cliffordFold = map[circuit.OpType]circuit.OpType{
	circuit.OpS:   circuit.OpZ,   // S·S
	circuit.OpSdg: circuit.OpZ,   // Sdg·Sdg
	circuit.OpT:   circuit.OpS,   // T·T
	circuit.OpTdg: circuit.OpSdg, // Tdg·Tdg
}

func foldCliffordPairs(c *circuit.Circuit) bool {
	for i := 0; i < len(c.Gates); i++ {
		g := c.Gates[i]
		folded, ok := cliffordFold[g.Op]
		if !ok || len(g.Conditional) > 0 {
			continue
		}
		j := nextTouching(c.Gates, i)
		if j < 0 || c.Gates[j].Op != g.Op || !sameQubits(g, c.Gates[j]) {
			continue
		}
		c.Gates[i] = plain(folded, g.Qubits[0])
		c.Gates = append(c.Gates[:j], c.Gates[j+1:]...)
		return true
	}
	return false
}

// conjugateByHadamard rewrites H·Z·H into X and H·X·H into Z.
func conjugateByHadamard(c *circuit.Circuit) bool {
	for i := 0; i < len(c.Gates); i++ {
		g := c.Gates[i]
		if g.Op != circuit.OpH || len(g.Conditional) > 0 {
			continue
		}
		q := g.Qubits[0]
		j := nextTouching(c.Gates, i)
		if j < 0 {
			continue
		}
		mid := c.Gates[j]
		if len(mid.Qubits) != 1 || mid.Qubits[0] != q || len(mid.Conditional) > 0 {
			continue
		}
		var swapped circuit.OpType
		switch mid.Op {
		case circuit.OpZ:
			swapped = circuit.OpX
		case circuit.OpX:
			swapped = circuit.OpZ
		default:
			continue
		}
		k := nextTouching(c.Gates, j)
		if k < 0 || c.Gates[k].Op != circuit.OpH || c.Gates[k].Qubits[0] != q {
			continue
		}
		c.Gates[i] = plain(swapped, q)
		c.Gates = removeTwo(c.Gates, j, k)
		return true
	}
	return false
}

// TwoQubitSquashPass resynthesises runs of two-qubit gates: adjacent
// self-cancelling entangler pairs are removed and the surrounding
// single-qubit rotations re-merged. With AllowSwaps false the pass never
// reroutes qubits, so connectivity established by routing is preserved.
type TwoQubitSquashPass struct {
	AllowSwaps bool
}

func (TwoQubitSquashPass) Name() string { return "TwoQubitSquash" }

func (p TwoQubitSquashPass) Apply(c *circuit.Circuit) error {
	for {
		changed := cancelInversePairs(c)
		changed = mergeRotations(c) || changed
		if !changed {
			return nil
		}
	}
}

// EulerAngleReductionPass is the final rotation cleanup: adjacent same-axis
// rotations are combined and null rotations removed, minimizing the
// single-qubit rotation count over the Rx/Rz generators.
type EulerAngleReductionPass struct {
	P circuit.OpType
	Q circuit.OpType
}

func NewEulerAngleReduction() EulerAngleReductionPass {
	return EulerAngleReductionPass{P: circuit.OpRx, Q: circuit.OpRz}
}

func (EulerAngleReductionPass) Name() string { return "EulerAngleReduction" }

func (EulerAngleReductionPass) Apply(c *circuit.Circuit) error {
	for mergeRotations(c) {
	}
	return nil
}
