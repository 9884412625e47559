//go:build unit
// +build unit

package quil

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

func TestTranslateBellPair(t *testing.T) {
	c := circuit.New(2)
	c.Rz(0.5, 0).Rx(0.5, 0).Rz(0.5, 0)
	c.CZ(0, 1)
	c.Measure(0, 0).Measure(1, 1)

	got, err := Translate(c)
	assert.NoError(t, err)
	assert.Equal(t, heredoc.Doc(`
		DECLARE ro BIT[2]
		RZ(2*pi/4) 0
		RX(2*pi/4) 0
		RZ(2*pi/4) 0
		CZ 0 1
		MEASURE 0 ro[0]
		MEASURE 1 ro[1]
	`), got)
}

func TestTranslateAngles(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "zero", in: 0, want: "0"},
		{name: "full half turn", in: 1, want: "pi"},
		{name: "negative half turn", in: -1, want: "-pi"},
		{name: "quarter", in: 0.25, want: "1*pi/4"},
		{name: "irregular", in: 0.3, want: "0.9424777960769379"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAngle(tt.in))
		})
	}
}

func TestTranslateNoMeasurements(t *testing.T) {
	c := circuit.New(1).Rx(1, 0)
	got, err := Translate(c)
	assert.NoError(t, err)
	assert.Equal(t, "RX(pi) 0\n", got)
}

func TestTranslateRejectsNonNativeGate(t *testing.T) {
	c := circuit.New(1).H(0)
	_, err := Translate(c)
	assert.Error(t, err)
}

func TestTranslateRejectsSymbolicAngle(t *testing.T) {
	c := circuit.New(1)
	c.AddGate(circuit.OpRz, []circuit.Param{{Symbol: "alpha"}}, circuit.Q(0))
	_, err := Translate(c)
	assert.Error(t, err)
}

func TestTranslateRejectsForeignRegister(t *testing.T) {
	c := &circuit.Circuit{}
	anc := circuit.Qubit{Register: "anc", Index: 0}
	c.AddQubit(anc)
	c.Gates = append(c.Gates, circuit.Gate{
		Op:     circuit.OpRx,
		Params: []circuit.Param{{Value: 1}},
		Qubits: []circuit.Qubit{anc},
	})
	_, err := Translate(c)
	assert.ErrorIs(t, err, circuit.ErrInvalidRegister)
}
