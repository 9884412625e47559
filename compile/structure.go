package compile

import (
	"fmt"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

// DecomposeBoxesPass inlines compound gate boxes into their primitive
// bodies, recursively. Box bodies are bound positionally: body qubit j acts
// on the j-th qubit argument of the box.
type DecomposeBoxesPass struct{}

func (DecomposeBoxesPass) Name() string { return "DecomposeBoxes" }

func (DecomposeBoxesPass) Apply(c *circuit.Circuit) error {
	var out []circuit.Gate
	for _, g := range c.Gates {
		if g.Op != circuit.OpBox {
			out = append(out, g)
			continue
		}
		inlined, phase, err := inlineBox(g)
		if err != nil {
			return err
		}
		out = append(out, inlined...)
		c.AddPhase(phase)
	}
	c.Gates = out
	return nil
}

func inlineBox(g circuit.Gate) ([]circuit.Gate, float64, error) {
	sub := g.Sub
	if sub == nil {
		return nil, 0, fmt.Errorf("box without a body")
	}
	if len(sub.Bits) > 0 {
		return nil, 0, fmt.Errorf("box body declares classical bits")
	}
	if len(sub.Qubits) != len(g.Qubits) {
		return nil, 0, fmt.Errorf("box body has %d qubits, box has %d arguments",
			len(sub.Qubits), len(g.Qubits))
	}
	bind := make(map[circuit.Qubit]circuit.Qubit, len(sub.Qubits))
	for j, q := range sub.Qubits {
		bind[q] = g.Qubits[j]
	}
	phase := 0.0
	if !sub.Phase.Symbolic() {
		phase = sub.Phase.Value
	}
	var out []circuit.Gate
	for _, inner := range sub.Gates {
		mapped := inner.Clone()
		for i, q := range mapped.Qubits {
			mapped.Qubits[i] = bind[q]
		}
		if mapped.Op == circuit.OpBox {
			inlined, p, err := inlineBox(mapped)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, inlined...)
			phase += p
			continue
		}
		out = append(out, mapped)
	}
	return out, phase, nil
}

// FlattenRegistersPass renames every qubit and bit into the canonical
// default registers, preserving the circuit's own ordering.
type FlattenRegistersPass struct{}

func (FlattenRegistersPass) Name() string { return "FlattenRegisters" }

func (FlattenRegistersPass) Apply(c *circuit.Circuit) error {
	qmap := make(map[circuit.Qubit]circuit.Qubit, len(c.Qubits))
	for i, q := range c.Qubits {
		qmap[q] = circuit.Q(i)
	}
	bmap := make(map[circuit.Bit]circuit.Bit, len(c.Bits))
	for i, b := range c.Bits {
		bmap[b] = circuit.B(i)
	}
	for i := range c.Qubits {
		c.Qubits[i] = circuit.Q(i)
	}
	for i := range c.Bits {
		c.Bits[i] = circuit.B(i)
	}
	for gi := range c.Gates {
		g := &c.Gates[gi]
		for i, q := range g.Qubits {
			g.Qubits[i] = qmap[q]
		}
		for i, b := range g.Bits {
			g.Bits[i] = bmap[b]
		}
		for i, b := range g.Conditional {
			g.Conditional[i] = bmap[b]
		}
	}
	perm := c.ImplicitQubitPermutation()
	flat := make(map[circuit.Qubit]circuit.Qubit, len(perm))
	for k, v := range perm {
		flat[qmap[k]] = qmap[v]
	}
	c.SetImplicitPermutation(flat)
	return nil
}
