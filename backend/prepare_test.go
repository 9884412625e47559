//go:build unit
// +build unit

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/core"
)

func TestPrepareCircuitExtractsTrailingX(t *testing.T) {
	c := circuit.New(1).X(0).Measure(0, 0)

	main, correction := prepareCircuit(c)

	assert.Equal(t, 0, main.CountOps(circuit.OpX))
	assert.Equal(t, 1, main.CountOps(circuit.OpMeasure))
	require.NotNil(t, correction)
	require.Len(t, correction.Gates, 1)
	assert.Equal(t, circuit.OpX, correction.Gates[0].Op)
	assert.Equal(t, circuit.B(0), correction.Gates[0].Bits[0])
}

func TestPrepareCircuitKeepsInterferingX(t *testing.T) {
	c := circuit.New(1).X(0).H(0).Measure(0, 0)

	main, correction := prepareCircuit(c)

	assert.Equal(t, 1, main.CountOps(circuit.OpX))
	assert.Nil(t, correction)
}

func TestPrepareCircuitExtractsChainedX(t *testing.T) {
	// after the trailing X moves out, the one before it becomes trailing too
	c := circuit.New(1).H(0).X(0).X(0).Measure(0, 0)

	main, correction := prepareCircuit(c)

	assert.Equal(t, 0, main.CountOps(circuit.OpX))
	assert.Equal(t, 1, main.CountOps(circuit.OpH))
	require.NotNil(t, correction)
	assert.Len(t, correction.Gates, 2)
}

func TestPrepareCircuitLeavesOtherQubitsAlone(t *testing.T) {
	c := circuit.New(2).X(0).X(1).H(1).Measure(0, 0).Measure(1, 1)

	main, correction := prepareCircuit(c)

	// only the X on qubit 0 sits directly before its measurement
	assert.Equal(t, 1, main.CountOps(circuit.OpX))
	require.NotNil(t, correction)
	require.Len(t, correction.Gates, 1)
	assert.Equal(t, circuit.B(0), correction.Gates[0].Bits[0])
}

func TestApplyCorrectionFlipsColumn(t *testing.T) {
	a := core.NewOutcomeArray(4, 2)
	a.Set(0, 1, 1)

	pp := circuit.NewWithBits(0, 2)
	pp.Gates = append(pp.Gates, circuit.Gate{Op: circuit.OpX, Bits: []circuit.Bit{circuit.B(1)}})
	serialized, err := circuit.Serialize(pp)
	require.NoError(t, err)

	require.NoError(t, applyCorrection(a, serialized, []int{0, 1}))

	assert.Equal(t, uint8(0), a.At(0, 1))
	for i := 1; i < 4; i++ {
		assert.Equal(t, uint8(1), a.At(i, 1))
	}
	for i := 0; i < 4; i++ {
		assert.Equal(t, uint8(0), a.At(i, 0))
	}
}

func TestApplyCorrectionSkipsUnreadBits(t *testing.T) {
	a := core.NewOutcomeArray(2, 1)

	pp := circuit.NewWithBits(0, 2)
	pp.Gates = append(pp.Gates, circuit.Gate{Op: circuit.OpX, Bits: []circuit.Bit{circuit.B(1)}})
	serialized, err := circuit.Serialize(pp)
	require.NoError(t, err)

	// only bit position 0 was read out; the flip on position 1 is moot
	require.NoError(t, applyCorrection(a, serialized, []int{0}))
	assert.Equal(t, uint8(0), a.At(0, 0))
}

func TestApplyCorrectionNull(t *testing.T) {
	a := core.NewOutcomeArray(2, 1)
	a.Set(1, 0, 1)

	require.NoError(t, applyCorrection(a, "null", []int{0}))

	assert.Equal(t, uint8(0), a.At(0, 0))
	assert.Equal(t, uint8(1), a.At(1, 0))
}

func TestApplyCorrectionRejectsQuantumGates(t *testing.T) {
	pp := circuit.New(1).H(0)
	serialized, err := circuit.Serialize(pp)
	require.NoError(t, err)

	a := core.NewOutcomeArray(1, 1)
	assert.Error(t, applyCorrection(a, serialized, []int{0}))
}
