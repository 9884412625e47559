// Package qvm is the local quantum virtual machine: a statevector
// simulator behind a FIFO run queue, serving as both the shot target and
// the state target.
package qvm

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

// simulator holds the working statevector. Qubit k addresses bit k of the
// amplitude index, little-endian.
type simulator struct {
	n     int
	state []complex128
}

func newSimulator(n int) *simulator {
	s := &simulator{
		n:     n,
		state: make([]complex128, 1<<n),
	}
	s.state[0] = 1
	return s
}

func (s *simulator) apply(g circuit.Gate) error {
	switch g.Op {
	case circuit.OpCZ:
		a, b, err := twoQubitIndices(g)
		if err != nil {
			return err
		}
		s.applyCZ(a, b)
		return nil
	case circuit.OpCX:
		a, b, err := twoQubitIndices(g)
		if err != nil {
			return err
		}
		s.applyCX(a, b)
		return nil
	case circuit.OpSWAP:
		a, b, err := twoQubitIndices(g)
		if err != nil {
			return err
		}
		s.applySWAP(a, b)
		return nil
	case circuit.OpBarrier:
		return nil
	case circuit.OpMeasure:
		return fmt.Errorf("measurement inside statevector simulation")
	}
	m, err := singleQubitMatrix(g)
	if err != nil {
		return err
	}
	k, err := circuit.DefaultQubitIndex(g.Qubits[0])
	if err != nil {
		return err
	}
	if k >= s.n {
		return fmt.Errorf("qubit %d outside simulated range %d", k, s.n)
	}
	s.apply1q(k, m)
	return nil
}

func twoQubitIndices(g circuit.Gate) (int, int, error) {
	a, err := circuit.DefaultQubitIndex(g.Qubits[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := circuit.DefaultQubitIndex(g.Qubits[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func singleQubitMatrix(g circuit.Gate) ([2][2]complex128, error) {
	var zero [2][2]complex128
	angle := func() (float64, error) {
		if len(g.Params) != 1 {
			return 0, fmt.Errorf("gate %s needs one angle", g.Op)
		}
		if g.Params[0].Symbolic() {
			return 0, fmt.Errorf("cannot simulate symbolic %s", g.Op)
		}
		return g.Params[0].Value, nil
	}
	switch g.Op {
	case circuit.OpH:
		h := complex(1/math.Sqrt2, 0)
		return [2][2]complex128{{h, h}, {h, -h}}, nil
	case circuit.OpX:
		return [2][2]complex128{{0, 1}, {1, 0}}, nil
	case circuit.OpY:
		return [2][2]complex128{{0, -1i}, {1i, 0}}, nil
	case circuit.OpZ:
		return [2][2]complex128{{1, 0}, {0, -1}}, nil
	case circuit.OpS:
		return [2][2]complex128{{1, 0}, {0, 1i}}, nil
	case circuit.OpSdg:
		return [2][2]complex128{{1, 0}, {0, -1i}}, nil
	case circuit.OpT:
		return [2][2]complex128{{1, 0}, {0, cmplx.Exp(1i * math.Pi / 4)}}, nil
	case circuit.OpTdg:
		return [2][2]complex128{{1, 0}, {0, cmplx.Exp(-1i * math.Pi / 4)}}, nil
	case circuit.OpRx:
		t, err := angle()
		if err != nil {
			return zero, err
		}
		c := complex(math.Cos(t*math.Pi/2), 0)
		s := complex(0, -math.Sin(t*math.Pi/2))
		return [2][2]complex128{{c, s}, {s, c}}, nil
	case circuit.OpRy:
		t, err := angle()
		if err != nil {
			return zero, err
		}
		c := complex(math.Cos(t*math.Pi/2), 0)
		s := complex(math.Sin(t*math.Pi/2), 0)
		return [2][2]complex128{{c, -s}, {s, c}}, nil
	case circuit.OpRz:
		t, err := angle()
		if err != nil {
			return zero, err
		}
		return [2][2]complex128{
			{cmplx.Exp(complex(0, -t*math.Pi/2)), 0},
			{0, cmplx.Exp(complex(0, t*math.Pi/2))},
		}, nil
	case circuit.OpU1:
		t, err := angle()
		if err != nil {
			return zero, err
		}
		return [2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, t*math.Pi))}}, nil
	default:
		return zero, fmt.Errorf("cannot simulate gate %s", g.Op)
	}
}

func (s *simulator) apply1q(k int, m [2][2]complex128) {
	mask := 1 << k
	for i := range s.state {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a0, a1 := s.state[i], s.state[j]
		s.state[i] = m[0][0]*a0 + m[0][1]*a1
		s.state[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func (s *simulator) applyCZ(a, b int) {
	ma, mb := 1<<a, 1<<b
	for i := range s.state {
		if i&ma != 0 && i&mb != 0 {
			s.state[i] = -s.state[i]
		}
	}
}

func (s *simulator) applyCX(ctrl, tgt int) {
	mc, mt := 1<<ctrl, 1<<tgt
	for i := range s.state {
		if i&mc != 0 && i&mt == 0 {
			j := i | mt
			s.state[i], s.state[j] = s.state[j], s.state[i]
		}
	}
}

func (s *simulator) applySWAP(a, b int) {
	ma, mb := 1<<a, 1<<b
	for i := range s.state {
		if i&ma != 0 && i&mb == 0 {
			j := (i &^ ma) | mb
			s.state[i], s.state[j] = s.state[j], s.state[i]
		}
	}
}

// run executes the unitary part of a circuit on n qubits and returns the
// statevector. Measurements must be handled by the caller.
func run(c *circuit.Circuit, n int) ([]complex128, error) {
	s := newSimulator(n)
	for _, g := range c.Gates {
		if g.Op == circuit.OpMeasure {
			continue
		}
		if err := s.apply(g); err != nil {
			return nil, err
		}
	}
	return s.state, nil
}

// applyGlobalPhase scales the state by e^{i pi phase}.
func applyGlobalPhase(state []complex128, phase float64) {
	if phase == 0 {
		return
	}
	f := cmplx.Exp(complex(0, math.Pi*phase))
	for i := range state {
		state[i] *= f
	}
}
