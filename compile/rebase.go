package compile

import (
	"fmt"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

// AutoRebasePass rewrites every gate into the fixed native set: CZ as the
// entangling gate and Rx/Rz as the rotation generators. Measurements and
// barriers pass through. Global phase contributions of the replacements are
// accumulated on the circuit.
type AutoRebasePass struct{}

func (AutoRebasePass) Name() string { return "AutoRebase" }

func nativeOp(op circuit.OpType) bool {
	switch op {
	case circuit.OpCZ, circuit.OpRx, circuit.OpRz, circuit.OpMeasure, circuit.OpBarrier:
		return true
	default:
		return false
	}
}

func (AutoRebasePass) Apply(c *circuit.Circuit) error {
	var out []circuit.Gate
	for _, g := range c.Gates {
		expanded, phase, err := rebaseGate(g)
		if err != nil {
			return err
		}
		out = append(out, expanded...)
		c.AddPhase(phase)
	}
	c.Gates = out
	return nil
}

func rebaseGate(g circuit.Gate) ([]circuit.Gate, float64, error) {
	if nativeOp(g.Op) {
		return []circuit.Gate{g}, 0, nil
	}
	replacement, phase, err := expandGate(g)
	if err != nil {
		return nil, 0, err
	}
	var out []circuit.Gate
	for _, r := range replacement {
		sub, p, err := rebaseGate(r)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sub...)
		phase += p
	}
	return out, phase, nil
}

func rot(op circuit.OpType, angle float64, q circuit.Qubit) circuit.Gate {
	return circuit.Gate{Op: op, Params: []circuit.Param{{Value: angle}}, Qubits: []circuit.Qubit{q}}
}

func plain(op circuit.OpType, qs ...circuit.Qubit) circuit.Gate {
	return circuit.Gate{Op: op, Qubits: qs}
}

// expandGate performs one decomposition step. Replacements need not consist
// of native gates only; rebaseGate recurses until they do. Angle identities
// are exact with the returned global phase, in half-turns.
func expandGate(g circuit.Gate) ([]circuit.Gate, float64, error) {
	q := g.Qubits
	angle := func() circuit.Param {
		if len(g.Params) > 0 {
			return g.Params[0]
		}
		return circuit.Param{}
	}()
	switch g.Op {
	case circuit.OpX:
		return []circuit.Gate{rot(circuit.OpRx, 1, q[0])}, 0.5, nil
	case circuit.OpY:
		return []circuit.Gate{
			rot(circuit.OpRz, -0.5, q[0]),
			rot(circuit.OpRx, 1, q[0]),
			rot(circuit.OpRz, 0.5, q[0]),
		}, 0.5, nil
	case circuit.OpZ:
		return []circuit.Gate{rot(circuit.OpRz, 1, q[0])}, 0.5, nil
	case circuit.OpS:
		return []circuit.Gate{rot(circuit.OpRz, 0.5, q[0])}, 0.25, nil
	case circuit.OpSdg:
		return []circuit.Gate{rot(circuit.OpRz, -0.5, q[0])}, -0.25, nil
	case circuit.OpT:
		return []circuit.Gate{rot(circuit.OpRz, 0.25, q[0])}, 0.125, nil
	case circuit.OpTdg:
		return []circuit.Gate{rot(circuit.OpRz, -0.25, q[0])}, -0.125, nil
	case circuit.OpH:
		return []circuit.Gate{
			rot(circuit.OpRz, 0.5, q[0]),
			rot(circuit.OpRx, 0.5, q[0]),
			rot(circuit.OpRz, 0.5, q[0]),
		}, 0.5, nil
	case circuit.OpRy:
		if angle.Symbolic() {
			return nil, 0, fmt.Errorf("cannot rebase symbolic %s", g.Op)
		}
		return []circuit.Gate{
			rot(circuit.OpRz, -0.5, q[0]),
			rot(circuit.OpRx, angle.Value, q[0]),
			rot(circuit.OpRz, 0.5, q[0]),
		}, 0, nil
	case circuit.OpU1:
		if angle.Symbolic() {
			return nil, 0, fmt.Errorf("cannot rebase symbolic %s", g.Op)
		}
		return []circuit.Gate{rot(circuit.OpRz, angle.Value, q[0])}, angle.Value / 2, nil
	case circuit.OpCX:
		return []circuit.Gate{
			plain(circuit.OpH, q[1]),
			plain(circuit.OpCZ, q[0], q[1]),
			plain(circuit.OpH, q[1]),
		}, 0, nil
	case circuit.OpSWAP:
		return []circuit.Gate{
			plain(circuit.OpCX, q[0], q[1]),
			plain(circuit.OpCX, q[1], q[0]),
			plain(circuit.OpCX, q[0], q[1]),
		}, 0, nil
	case circuit.OpISWAP:
		return []circuit.Gate{
			plain(circuit.OpS, q[0]),
			plain(circuit.OpS, q[1]),
			plain(circuit.OpCZ, q[0], q[1]),
			plain(circuit.OpSWAP, q[0], q[1]),
		}, 0, nil
	case circuit.OpCU1:
		if angle.Symbolic() {
			return nil, 0, fmt.Errorf("cannot rebase symbolic %s", g.Op)
		}
		half := angle.Value / 2
		return []circuit.Gate{
			rot(circuit.OpU1, half, q[0]),
			rot(circuit.OpU1, half, q[1]),
			plain(circuit.OpCX, q[0], q[1]),
			rot(circuit.OpU1, -half, q[1]),
			plain(circuit.OpCX, q[0], q[1]),
		}, 0, nil
	case circuit.OpCCX:
		a, b, t := q[0], q[1], q[2]
		return []circuit.Gate{
			plain(circuit.OpH, t),
			plain(circuit.OpCX, b, t),
			plain(circuit.OpTdg, t),
			plain(circuit.OpCX, a, t),
			plain(circuit.OpT, t),
			plain(circuit.OpCX, b, t),
			plain(circuit.OpTdg, t),
			plain(circuit.OpCX, a, t),
			plain(circuit.OpT, b),
			plain(circuit.OpT, t),
			plain(circuit.OpH, t),
			plain(circuit.OpCX, a, b),
			plain(circuit.OpT, a),
			plain(circuit.OpTdg, b),
			plain(circuit.OpCX, a, b),
		}, 0, nil
	default:
		return nil, 0, fmt.Errorf("no decomposition for gate %s", g.Op)
	}
}
