//go:build unit
// +build unit

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

func TestSimplifyInitialDropsLeadingDiagonals(t *testing.T) {
	c := circuit.New(1).Rz(0.4, 0).H(0)
	assert.NoError(t, SimplifyInitialPass{}.Apply(c))
	// Rz(0.4)|0> contributes only phase e^{-i 0.2 pi}
	assert.Equal(t, 1, len(c.Gates))
	assert.Equal(t, circuit.OpH, c.Gates[0].Op)
	assert.InDelta(t, -0.2, c.Phase.Value, 1e-12)
}

func TestSimplifyInitialLeadingXBecomesNative(t *testing.T) {
	c := circuit.New(1).X(0).Measure(0, 0)
	assert.NoError(t, SimplifyInitialPass{}.Apply(c))
	assert.Equal(t, 2, len(c.Gates))
	assert.Equal(t, circuit.OpRx, c.Gates[0].Op)
	assert.InDelta(t, 1.0, c.Gates[0].Params[0].Value, 1e-12)
	assert.InDelta(t, 0.5, c.Phase.Value, 1e-12)
}

func TestSimplifyInitialTracksFlippedState(t *testing.T) {
	// after X the qubit sits in |1>, so a following Z contributes a
	// half-turn of global phase
	c := circuit.New(1).X(0).Z(0).H(0)
	assert.NoError(t, SimplifyInitialPass{}.Apply(c))
	assert.Equal(t, 2, len(c.Gates))
	assert.Equal(t, circuit.OpRx, c.Gates[0].Op)
	assert.Equal(t, circuit.OpH, c.Gates[1].Op)
	assert.InDelta(t, 1.5, c.Phase.Value, 1e-12)
}

func TestSimplifyInitialStopsAtFrontier(t *testing.T) {
	// the Rz after H acts on a superposition and must survive
	c := circuit.New(1).H(0).Rz(0.3, 0)
	assert.NoError(t, SimplifyInitialPass{}.Apply(c))
	assert.Equal(t, 2, len(c.Gates))
	assert.InDelta(t, 0.0, c.Phase.Value, 1e-12)
}

func TestSimplifyInitialDropsClassicalCZ(t *testing.T) {
	c := circuit.New(2).X(0).X(1).CZ(0, 1).H(0)
	assert.NoError(t, SimplifyInitialPass{}.Apply(c))
	// both X replaced, CZ on |11> folds into phase
	ops := make([]circuit.OpType, 0, len(c.Gates))
	for _, g := range c.Gates {
		ops = append(ops, g.Op)
	}
	assert.Equal(t, []circuit.OpType{circuit.OpRx, circuit.OpRx, circuit.OpH}, ops)
	// two X substitutions (0.5 each) plus the CZ half-turn
	assert.InDelta(t, 2.0, c.Phase.Value, 1e-12)
}
