//go:build unit
// +build unit

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

func TestDecomposeBoxesInlinesBody(t *testing.T) {
	body := circuit.New(2).H(0).CX(0, 1)
	body.AddPhase(0.25)

	c := circuit.New(3)
	c.AddBox(body, circuit.Q(2), circuit.Q(0))
	assert.NoError(t, DecomposeBoxesPass{}.Apply(c))

	assert.Equal(t, 2, len(c.Gates))
	assert.Equal(t, circuit.OpH, c.Gates[0].Op)
	assert.Equal(t, []circuit.Qubit{circuit.Q(2)}, c.Gates[0].Qubits)
	assert.Equal(t, circuit.OpCX, c.Gates[1].Op)
	assert.Equal(t, []circuit.Qubit{circuit.Q(2), circuit.Q(0)}, c.Gates[1].Qubits)
	assert.InDelta(t, 0.25, c.Phase.Value, 1e-12)
}

func TestDecomposeBoxesNested(t *testing.T) {
	inner := circuit.New(1).X(0)
	outer := circuit.New(2).H(0)
	outer.AddBox(inner, circuit.Q(1))

	c := circuit.New(2)
	c.AddBox(outer, circuit.Q(0), circuit.Q(1))
	assert.NoError(t, DecomposeBoxesPass{}.Apply(c))

	assert.Equal(t, 2, len(c.Gates))
	assert.Equal(t, circuit.OpH, c.Gates[0].Op)
	assert.Equal(t, circuit.OpX, c.Gates[1].Op)
	assert.Equal(t, []circuit.Qubit{circuit.Q(1)}, c.Gates[1].Qubits)
}

func TestDecomposeBoxesRejectsArityMismatch(t *testing.T) {
	body := circuit.New(2).CX(0, 1)
	c := circuit.New(1)
	c.AddBox(body, circuit.Q(0))
	assert.Error(t, DecomposeBoxesPass{}.Apply(c))
}

func TestFlattenRegisters(t *testing.T) {
	c := &circuit.Circuit{}
	c.AddQubit(circuit.Qubit{Register: "anc", Index: 3})
	c.AddQubit(circuit.Q(0))
	c.AddBit(circuit.Bit{Register: "m", Index: 1})
	c.AddGate(circuit.OpCZ, nil, circuit.Qubit{Register: "anc", Index: 3}, circuit.Q(0))
	c.Gates = append(c.Gates, circuit.Gate{
		Op:     circuit.OpMeasure,
		Qubits: []circuit.Qubit{circuit.Q(0)},
		Bits:   []circuit.Bit{{Register: "m", Index: 1}},
	})

	assert.NoError(t, FlattenRegistersPass{}.Apply(c))

	assert.Equal(t, []circuit.Qubit{circuit.Q(0), circuit.Q(1)}, c.Qubits)
	assert.Equal(t, []circuit.Bit{circuit.B(0)}, c.Bits)
	assert.Equal(t, []circuit.Qubit{circuit.Q(0), circuit.Q(1)}, c.Gates[0].Qubits)
	assert.Equal(t, []circuit.Bit{circuit.B(0)}, c.Gates[1].Bits)
	assert.NoError(t, circuit.DefaultRegisterPredicate{}.Verify(c))
}
