// Package quil renders circuits in the native gate set as Quil program
// text for submission to a QVM endpoint.
package quil

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-faster/errors"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

// Translate renders a circuit as Quil. The circuit must already be in the
// native gate set with default registers only; measured bits address the
// single readout register ro by their positional index.
func Translate(c *circuit.Circuit) (string, error) {
	var sb strings.Builder
	if n := len(c.Bits); n > 0 {
		fmt.Fprintf(&sb, "DECLARE ro BIT[%d]\n", n)
	}
	bitPos := make(map[circuit.Bit]int, len(c.Bits))
	for i, b := range c.Bits {
		bitPos[b] = i
	}
	for _, g := range c.Gates {
		if len(g.Conditional) > 0 {
			return "", fmt.Errorf("classically controlled %s cannot be rendered", g.Op)
		}
		line, err := renderGate(g, bitPos)
		if err != nil {
			return "", err
		}
		if line != "" {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

func renderGate(g circuit.Gate, bitPos map[circuit.Bit]int) (string, error) {
	switch g.Op {
	case circuit.OpRx, circuit.OpRz:
		q, err := circuit.DefaultQubitIndex(g.Qubits[0])
		if err != nil {
			return "", err
		}
		p := g.Params[0]
		if p.Symbolic() {
			return "", fmt.Errorf("symbolic %s(%s) cannot be rendered", g.Op, p.Symbol)
		}
		return fmt.Sprintf("%s(%s) %d", strings.ToUpper(g.Op.String()), formatAngle(p.Value), q), nil
	case circuit.OpCZ:
		a, err := circuit.DefaultQubitIndex(g.Qubits[0])
		if err != nil {
			return "", err
		}
		b, err := circuit.DefaultQubitIndex(g.Qubits[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CZ %d %d", a, b), nil
	case circuit.OpMeasure:
		q, err := circuit.DefaultQubitIndex(g.Qubits[0])
		if err != nil {
			return "", err
		}
		pos, ok := bitPos[g.Bits[0]]
		if !ok {
			return "", fmt.Errorf("measurement into unallocated bit %s", g.Bits[0])
		}
		return fmt.Sprintf("MEASURE %d ro[%d]", q, pos), nil
	case circuit.OpBarrier:
		// no Quil counterpart; ordering is preserved by the program itself
		return "", nil
	default:
		return "", errors.Errorf("gate %s is not in the native set", g.Op)
	}
}

// formatAngle renders a half-turn angle in radians. Multiples of pi/4 use
// the pi literal for readability.
func formatAngle(halfTurns float64) string {
	eighths := halfTurns * 4
	if eighths == math.Trunc(eighths) {
		switch n := int(eighths); n {
		case 0:
			return "0"
		case 4:
			return "pi"
		case -4:
			return "-pi"
		default:
			return fmt.Sprintf("%d*pi/4", n)
		}
	}
	return fmt.Sprintf("%.16g", halfTurns*math.Pi)
}
