//go:build unit
// +build unit

package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateSetPredicate(t *testing.T) {
	p := NewGateSetPredicate(OpCZ, OpRx, OpRz, OpMeasure, OpBarrier)
	assert.Equal(t, "GateSet", p.Name())

	ok := New(2)
	ok.Rx(0.5, 0).CZ(0, 1).Measure(0, 0)
	assert.NoError(t, p.Verify(ok))

	bad := New(1)
	bad.H(0)
	assert.Error(t, p.Verify(bad))
}

func TestNoMidMeasurePredicate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Circuit
		wantErr bool
	}{
		{
			name: "terminal measurement",
			build: func() *Circuit {
				c := New(1)
				return c.H(0).Measure(0, 0)
			},
		},
		{
			name: "barrier after measurement",
			build: func() *Circuit {
				c := New(1)
				c.Measure(0, 0)
				return c.AddGate(OpBarrier, nil, Q(0))
			},
		},
		{
			name: "gate after measurement",
			build: func() *Circuit {
				c := New(1)
				return c.Measure(0, 0).X(0)
			},
			wantErr: true,
		},
		{
			name: "other qubit continues",
			build: func() *Circuit {
				c := New(2)
				return c.Measure(0, 0).X(1)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NoMidMeasurePredicate{}.Verify(tt.build())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoClassicalControlPredicate(t *testing.T) {
	c := New(1)
	c.X(0)
	assert.NoError(t, NoClassicalControlPredicate{}.Verify(c))

	c.Gates = append(c.Gates, Gate{Op: OpX, Qubits: []Qubit{Q(0)}, Conditional: []Bit{B(0)}})
	assert.Error(t, NoClassicalControlPredicate{}.Verify(c))
}

func TestNoFastFeedforwardPredicate(t *testing.T) {
	// conditioning on a bit written by an earlier measurement is feedforward
	c := NewWithBits(2, 1)
	c.Measure(0, 0)
	c.Gates = append(c.Gates, Gate{Op: OpX, Qubits: []Qubit{Q(1)}, Conditional: []Bit{B(0)}})
	assert.Error(t, NoFastFeedforwardPredicate{}.Verify(c))

	// conditioning on a bit never measured is plain classical control
	c2 := NewWithBits(2, 1)
	c2.Gates = append(c2.Gates, Gate{Op: OpX, Qubits: []Qubit{Q(1)}, Conditional: []Bit{B(0)}})
	c2.Measure(0, 0)
	assert.NoError(t, NoFastFeedforwardPredicate{}.Verify(c2))
}

func TestNoSymbolsPredicate(t *testing.T) {
	c := New(1)
	c.Rz(0.5, 0)
	assert.NoError(t, NoSymbolsPredicate{}.Verify(c))

	c.AddGate(OpRx, []Param{{Symbol: "theta"}}, Q(0))
	assert.Error(t, NoSymbolsPredicate{}.Verify(c))
}

func TestDefaultRegisterPredicate(t *testing.T) {
	ok := NewWithBits(2, 2)
	assert.NoError(t, DefaultRegisterPredicate{}.Verify(ok))

	gap := New(1)
	gap.AddQubit(Q(2))
	assert.ErrorIs(t, DefaultRegisterPredicate{}.Verify(gap), ErrInvalidRegister)

	foreign := New(1)
	foreign.AddQubit(Qubit{Register: "anc", Index: 1})
	assert.ErrorIs(t, DefaultRegisterPredicate{}.Verify(foreign), ErrInvalidRegister)

	badBit := NewWithBits(1, 0)
	badBit.AddBit(B(1))
	assert.ErrorIs(t, DefaultRegisterPredicate{}.Verify(badBit), ErrInvalidRegister)
}

func TestConnectivityPredicate(t *testing.T) {
	arch := NewArchitecture(nil, []Edge{{0, 1}, {1, 2}})
	p := ConnectivityPredicate{Arch: arch}

	ok := New(3)
	ok.CZ(0, 1).CZ(2, 1).H(2)
	assert.NoError(t, p.Verify(ok))

	bad := New(3)
	bad.CZ(0, 2)
	assert.Error(t, p.Verify(bad))
}
