//go:build unit
// +build unit

package qvm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

func TestRunBellState(t *testing.T) {
	c := circuit.New(2).H(0).CX(0, 1)
	state, err := run(c, 2)
	assert.NoError(t, err)
	inv := 1 / math.Sqrt2
	assert.InDelta(t, inv, real(state[0]), 1e-12)
	assert.InDelta(t, 0.0, real(state[1]), 1e-12)
	assert.InDelta(t, 0.0, real(state[2]), 1e-12)
	assert.InDelta(t, inv, real(state[3]), 1e-12)
}

func TestRunNativeDecompositionMatchesX(t *testing.T) {
	// Rx(pi) with a half-turn of global phase equals X exactly
	c := circuit.New(1).Rx(1, 0)
	c.AddPhase(0.5)
	state, err := run(c, 1)
	assert.NoError(t, err)
	applyGlobalPhase(state, c.Phase.Value)

	assert.InDelta(t, 0.0, real(state[0]), 1e-12)
	assert.InDelta(t, 0.0, imag(state[0]), 1e-12)
	assert.InDelta(t, 1.0, real(state[1]), 1e-12)
	assert.InDelta(t, 0.0, imag(state[1]), 1e-12)
}

func TestRunWithoutPhaseDiffersFromX(t *testing.T) {
	// without the global phase the amplitude is -i, not 1
	c := circuit.New(1).Rx(1, 0)
	state, err := run(c, 1)
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, real(state[1]), 1e-12)
	assert.InDelta(t, -1.0, imag(state[1]), 1e-12)
}

func TestRunHadamardDecompositionPhase(t *testing.T) {
	// Rz(pi/2) Rx(pi/2) Rz(pi/2) with phase pi/2 equals H
	c := circuit.New(1).Rz(0.5, 0).Rx(0.5, 0).Rz(0.5, 0)
	c.AddPhase(0.5)
	state, err := run(c, 1)
	assert.NoError(t, err)
	applyGlobalPhase(state, c.Phase.Value)

	inv := 1 / math.Sqrt2
	assert.InDelta(t, inv, real(state[0]), 1e-12)
	assert.InDelta(t, 0.0, imag(state[0]), 1e-12)
	assert.InDelta(t, inv, real(state[1]), 1e-12)
	assert.InDelta(t, 0.0, imag(state[1]), 1e-12)
}

func TestRunRejectsSymbolicGate(t *testing.T) {
	c := circuit.New(1)
	c.AddGate(circuit.OpRz, []circuit.Param{{Symbol: "alpha"}}, circuit.Q(0))
	_, err := run(c, 1)
	assert.Error(t, err)
}

func TestSwapGate(t *testing.T) {
	c := circuit.New(2).X(0).SWAP(0, 1)
	state, err := run(c, 2)
	assert.NoError(t, err)
	// |01> became |10>, index bit 1 set
	assert.InDelta(t, 1.0, real(state[2]), 1e-12)
}
