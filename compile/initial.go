package compile

import (
	"github.com/qbridge-team/qbridge-engine/circuit"
)

// SimplifyInitialPass contracts leading gates against the all-zero initial
// state. Gates acting diagonally on the tracked classical state fold into
// the global phase, leading bit flips become native Rx half-turns. The
// rewrite is only valid for circuits run from |0...0>, which is how every
// submitted circuit starts.
type SimplifyInitialPass struct{}

func (SimplifyInitialPass) Name() string { return "SimplifyInitial" }

func (SimplifyInitialPass) Apply(c *circuit.Circuit) error {
	// state is the classical bit a qubit still holds; absent means the
	// qubit has left the classical frontier.
	state := make(map[circuit.Qubit]int, len(c.Qubits))
	for _, q := range c.Qubits {
		state[q] = 0
	}
	active := func(g circuit.Gate) bool {
		for _, q := range g.Qubits {
			if _, ok := state[q]; !ok {
				return false
			}
		}
		return len(g.Conditional) == 0
	}
	retire := func(g circuit.Gate) {
		for _, q := range g.Qubits {
			delete(state, q)
		}
	}

	out := c.Gates[:0]
	for _, g := range c.Gates {
		if len(state) == 0 || !active(g) {
			retire(g)
			out = append(out, g)
			continue
		}
		switch g.Op {
		case circuit.OpZ:
			if state[g.Qubits[0]] == 1 {
				c.AddPhase(1)
			}
		case circuit.OpS:
			if state[g.Qubits[0]] == 1 {
				c.AddPhase(0.5)
			}
		case circuit.OpSdg:
			if state[g.Qubits[0]] == 1 {
				c.AddPhase(-0.5)
			}
		case circuit.OpT:
			if state[g.Qubits[0]] == 1 {
				c.AddPhase(0.25)
			}
		case circuit.OpTdg:
			if state[g.Qubits[0]] == 1 {
				c.AddPhase(-0.25)
			}
		case circuit.OpRz:
			if len(g.Params) != 1 || g.Params[0].Symbolic() {
				retire(g)
				out = append(out, g)
				continue
			}
			t := g.Params[0].Value
			if state[g.Qubits[0]] == 0 {
				c.AddPhase(-t / 2)
			} else {
				c.AddPhase(t / 2)
			}
		case circuit.OpX:
			q := g.Qubits[0]
			state[q] ^= 1
			// X = e^{i pi/2} Rx(pi) on the native gate set
			c.AddPhase(0.5)
			out = append(out, rot(circuit.OpRx, 1, q))
		case circuit.OpCZ:
			if state[g.Qubits[0]] == 1 && state[g.Qubits[1]] == 1 {
				c.AddPhase(1)
			}
		case circuit.OpCX:
			if state[g.Qubits[0]] == 1 {
				state[g.Qubits[1]] ^= 1
				c.AddPhase(0.5)
				out = append(out, rot(circuit.OpRx, 1, g.Qubits[1]))
			}
		case circuit.OpBarrier:
			out = append(out, g)
		default:
			retire(g)
			out = append(out, g)
		}
	}
	c.Gates = out
	return nil
}
