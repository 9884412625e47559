package backend

import (
	"fmt"

	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/core"
)

// prepareCircuit splits off classically replayable corrections: a trailing X
// immediately before a final measurement is removed from the quantum circuit
// and recorded as a bit flip to apply to the readouts instead. The returned
// correction circuit acts on classical bits only and shares the main
// circuit's bit ordering.
func prepareCircuit(c *circuit.Circuit) (*circuit.Circuit, *circuit.Circuit) {
	main := c.Clone()
	correction := &circuit.Circuit{}
	for _, b := range main.Bits {
		correction.AddBit(b)
	}

	for {
		// lastOn[q] is the index in main.Gates of the latest non-measure
		// gate touching q
		lastOn := map[circuit.Qubit]int{}
		for i, g := range main.Gates {
			if g.Op == circuit.OpMeasure {
				continue
			}
			for _, q := range g.Qubits {
				lastOn[q] = i
			}
		}
		changed := false
		for mi, g := range main.Gates {
			if g.Op != circuit.OpMeasure {
				continue
			}
			q := g.Qubits[0]
			xi, ok := lastOn[q]
			if !ok {
				continue
			}
			x := main.Gates[xi]
			if x.Op != circuit.OpX || len(x.Qubits) != 1 || len(x.Conditional) > 0 {
				continue
			}
			// the X must be the gate directly before this measurement,
			// with nothing on q in between
			if xi > mi || interferes(main.Gates[xi+1:mi], q) {
				continue
			}
			correction.Gates = append(correction.Gates, circuit.Gate{
				Op:   circuit.OpX,
				Bits: []circuit.Bit{g.Bits[0]},
			})
			main.Gates = append(main.Gates[:xi], main.Gates[xi+1:]...)
			changed = true
			break
		}
		if !changed {
			break
		}
	}
	if len(correction.Gates) == 0 {
		return main, nil
	}
	return main, correction
}

func interferes(gates []circuit.Gate, q circuit.Qubit) bool {
	for _, g := range gates {
		for _, have := range g.Qubits {
			if have == q {
				return true
			}
		}
	}
	return false
}

// applyCorrection replays a serialized correction circuit on a filtered
// outcome array. Column j of the array holds the bit at position
// bitIndices[j] of the correction circuit's bit list.
func applyCorrection(a *core.OutcomeArray, serialized string, bitIndices []int) error {
	ppcirc, err := circuit.Deserialize(serialized)
	if err != nil {
		return err
	}
	if ppcirc == nil {
		return nil
	}
	pos := make(map[circuit.Bit]int, len(ppcirc.Bits))
	for i, b := range ppcirc.Bits {
		pos[b] = i
	}
	col := make(map[int]int, len(bitIndices))
	for j, p := range bitIndices {
		col[p] = j
	}
	for _, g := range ppcirc.Gates {
		if g.Op != circuit.OpX || len(g.Bits) != 1 {
			return fmt.Errorf("unsupported correction gate %s", g.Op)
		}
		p, ok := pos[g.Bits[0]]
		if !ok {
			return fmt.Errorf("correction flips unknown bit %s", g.Bits[0])
		}
		j, ok := col[p]
		if !ok {
			// flipped bit was never read out; nothing to correct
			continue
		}
		a.FlipColumn(j)
	}
	return nil
}
