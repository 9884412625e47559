//go:build unit
// +build unit

package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeNilCircuit(t *testing.T) {
	s, err := Serialize(nil)
	assert.NoError(t, err)
	assert.Equal(t, NullJSON, s)

	c, err := Deserialize(NullJSON)
	assert.NoError(t, err)
	assert.Nil(t, c)

	c, err = Deserialize("")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestSerializeRoundTrip(t *testing.T) {
	c := NewWithBits(2, 2)
	c.H(0)
	c.Rz(0.25, 1)
	c.CX(0, 1)
	c.Measure(0, 0)
	c.Measure(1, 1)
	c.AddPhase(0.5)
	c.SetImplicitPermutation(map[Qubit]Qubit{Q(0): Q(1), Q(1): Q(0)})

	s, err := Serialize(c)
	assert.NoError(t, err)

	got, err := Deserialize(s)
	assert.NoError(t, err)
	assert.Equal(t, c.Qubits, got.Qubits)
	assert.Equal(t, c.Bits, got.Bits)
	assert.Equal(t, len(c.Gates), len(got.Gates))
	for i := range c.Gates {
		assert.Equal(t, c.Gates[i].Op, got.Gates[i].Op, i)
	}
	assert.InDelta(t, 0.5, got.Phase.Value, 1e-12)
	assert.Equal(t, c.ImplicitQubitPermutation(), got.ImplicitQubitPermutation())
}

func TestSerializeKeepsSubCircuit(t *testing.T) {
	sub := New(1)
	sub.Rx(1, 0)
	c := New(2)
	c.AddBox(sub, Q(1))

	s, err := Serialize(c)
	assert.NoError(t, err)

	got, err := Deserialize(s)
	assert.NoError(t, err)
	assert.Equal(t, OpBox, got.Gates[0].Op)
	assert.NotNil(t, got.Gates[0].Sub)
	assert.Equal(t, OpRx, got.Gates[0].Sub.Gates[0].Op)
}

func TestSerializeKeepsSymbols(t *testing.T) {
	c := New(1)
	c.AddGate(OpRz, []Param{{Symbol: "theta"}}, Q(0))

	s, err := Serialize(c)
	assert.NoError(t, err)

	got, err := Deserialize(s)
	assert.NoError(t, err)
	assert.True(t, got.Gates[0].Params[0].Symbolic())
}

func TestDeserializeRejectsUnknownOp(t *testing.T) {
	_, err := Deserialize(`{"qubits":[{"register":"q","index":0}],"gates":[{"op":"WARP","qubits":[{"register":"q","index":0}]}]}`)
	assert.Error(t, err)
}

func TestDeserializeRejectsMalformedJSON(t *testing.T) {
	_, err := Deserialize("{not json")
	assert.Error(t, err)
}
