package qvm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/core"
	"github.com/qbridge-team/qbridge-engine/pauli"
)

const (
	defaultNumQubits = 20
	defaultMaxShots  = 100000
)

// Target is the local QVM. It serves shot execution through a FIFO run
// queue and statevector queries synchronously.
type Target struct {
	numQubits int
	maxShots  int
	queue     *runQueue
}

func NewTarget() *Target {
	return &Target{}
}

func (t *Target) Setup(conf *core.Conf) error {
	t.numQubits = defaultNumQubits
	t.maxShots = defaultMaxShots
	if raw, ok := core.GetComponentSetting("qvm"); ok {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("unexpected qvm setting format %v", raw)
		}
		if v, ok := m["num_qubits"]; ok {
			n, ok := v.(int64)
			if !ok {
				return fmt.Errorf("num_qubits is not an integer:%v", v)
			}
			t.numQubits = int(n)
		}
		if v, ok := m["max_shots"]; ok {
			n, ok := v.(int64)
			if !ok {
				return fmt.Errorf("max_shots is not an integer:%v", v)
			}
			t.maxShots = int(n)
		}
	}
	t.queue = newRunQueue(conf.QueueMaxSize, t.executeShots)
	t.queue.Start()
	zap.L().Info(fmt.Sprintf("QVM target is ready/num_qubits:%d/max_shots:%d",
		t.numQubits, t.maxShots))
	return nil
}

func (t *Target) TearDown() {
	if t.queue != nil {
		t.queue.TearDown()
	}
}

func (t *Target) Describe() *core.TargetDescriptor {
	return &core.TargetDescriptor{
		Name:      "qvm",
		NumQubits: t.numQubits,
		MaxShots:  t.maxShots,
		Simulator: true,
	}
}

func (t *Target) Submit(_ context.Context, p *core.Program) (core.TargetJob, error) {
	if p.Circuit == nil {
		return nil, fmt.Errorf("local QVM needs the circuit form, not just program text")
	}
	if p.Shots > t.maxShots {
		return nil, fmt.Errorf("shots(%d) is over the limit(%d)", p.Shots, t.maxShots)
	}
	job := newQVMJob(uuid.New().String(), p)
	if err := t.queue.Put(job); err != nil {
		return nil, err
	}
	zap.L().Debug(fmt.Sprintf("queued job %s/shots:%d", job.id, p.Shots))
	return job, nil
}

// executeShots simulates the program and samples the measured qubits.
func (t *Target) executeShots(p *core.Program) ([][]int, error) {
	c := p.Circuit
	n := simWidth(c, t.numQubits)
	state, err := run(c, n)
	if err != nil {
		return nil, err
	}
	// measured[j] is the qubit read into bit position j
	measured := make(map[int]int)
	for _, g := range c.Gates {
		if g.Op != circuit.OpMeasure {
			continue
		}
		q, err := circuit.DefaultQubitIndex(g.Qubits[0])
		if err != nil {
			return nil, err
		}
		pos := -1
		for j, b := range c.Bits {
			if b == g.Bits[0] {
				pos = j
				break
			}
		}
		if pos < 0 {
			return nil, fmt.Errorf("measurement into unallocated bit %s", g.Bits[0])
		}
		measured[pos] = q
	}

	rng := newRNG(p.Seed)
	width := len(c.Bits)
	readouts := make([][]int, p.Shots)
	for i := range readouts {
		basis := sampleBasis(state, rng)
		row := make([]int, width)
		for pos, q := range measured {
			row[pos] = (basis >> q) & 1
		}
		readouts[i] = row
	}
	return readouts, nil
}

func newRNG(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func sampleBasis(state []complex128, rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	for i, a := range state {
		acc += real(a)*real(a) + imag(a)*imag(a)
		if r < acc {
			return i
		}
	}
	return len(state) - 1
}

func simWidth(c *circuit.Circuit, limit int) int {
	width := 0
	for _, q := range c.Qubits {
		if i, err := circuit.DefaultQubitIndex(q); err == nil && i+1 > width {
			width = i + 1
		}
	}
	if width == 0 {
		width = 1
	}
	if width > limit {
		width = limit
	}
	return width
}

// Wavefunction simulates the program and applies its global phase, so the
// returned amplitudes are exact, not just equal up to phase.
func (t *Target) Wavefunction(_ context.Context, p *core.Program) ([]complex128, error) {
	if p.Circuit == nil {
		return nil, fmt.Errorf("local QVM needs the circuit form, not just program text")
	}
	c := p.Circuit
	if c.Phase.Symbolic() {
		zap.L().Warn(fmt.Sprintf("ignoring symbolic global phase %s", c.Phase.Symbol))
	}
	n := simWidth(c, t.numQubits)
	if len(p.Qubits) > n {
		n = len(p.Qubits)
	}
	state, err := run(c, n)
	if err != nil {
		return nil, err
	}
	if !c.Phase.Symbolic() {
		applyGlobalPhase(state, c.Phase.Value)
	}
	return state, nil
}

// ExpectationPauli computes <psi|P|psi> for a single Pauli string.
func (t *Target) ExpectationPauli(ctx context.Context, p *core.Program, ps *pauli.QubitPauliString) (complex128, error) {
	state, err := t.Wavefunction(ctx, p)
	if err != nil {
		return 0, err
	}
	return pauliExpectation(state, ps)
}

// ExpectationOperator computes the weighted sum of Pauli term expectations.
func (t *Target) ExpectationOperator(ctx context.Context, p *core.Program, op *pauli.Operator) (complex128, error) {
	state, err := t.Wavefunction(ctx, p)
	if err != nil {
		return 0, err
	}
	var sum complex128
	for _, term := range op.Terms {
		e, err := pauliExpectation(state, term.String)
		if err != nil {
			return 0, err
		}
		sum += term.Coeff * e
	}
	return sum, nil
}

// pauliExpectation applies the Pauli string to a copy of the state and
// takes the inner product with the original.
func pauliExpectation(state []complex128, ps *pauli.QubitPauliString) (complex128, error) {
	applied := append([]complex128(nil), state...)
	for _, q := range ps.Qubits() {
		k, err := circuit.DefaultQubitIndex(q)
		if err != nil {
			return 0, err
		}
		if 1<<k >= len(applied) {
			return 0, fmt.Errorf("qubit %d outside the simulated state", k)
		}
		mask := 1 << k
		switch ps.Factors[q] {
		case pauli.I:
		case pauli.X:
			for i := range applied {
				if i&mask == 0 {
					j := i | mask
					applied[i], applied[j] = applied[j], applied[i]
				}
			}
		case pauli.Y:
			for i := range applied {
				if i&mask == 0 {
					j := i | mask
					// Y|0> = i|1>, Y|1> = -i|0>
					applied[i], applied[j] = -1i*applied[j], 1i*applied[i]
				}
			}
		case pauli.Z:
			for i := range applied {
				if i&mask != 0 {
					applied[i] = -applied[i]
				}
			}
		}
	}
	var sum complex128
	for i := range state {
		sum += cconj(state[i]) * applied[i]
	}
	return sum, nil
}

func cconj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}
