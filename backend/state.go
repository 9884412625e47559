package backend

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/compile"
	"github.com/qbridge-team/qbridge-engine/core"
	"github.com/qbridge-team/qbridge-engine/pauli"
)

// ExpectationTarget is the native expectation primitive a state target may
// offer. The local QVM does.
type ExpectationTarget interface {
	ExpectationPauli(ctx context.Context, p *core.Program, ps *pauli.QubitPauliString) (complex128, error)
	ExpectationOperator(ctx context.Context, p *core.Program, op *pauli.Operator) (complex128, error)
}

// StateBackend computes full statevectors on a state target. Execution is
// synchronous: every issued handle already has its result cached.
type StateBackend struct {
	target core.StateTarget
	cache  *core.JobCache
}

func NewStateBackend(target core.StateTarget) *StateBackend {
	return &StateBackend{
		target: target,
		cache:  core.NewJobCache(),
	}
}

func (b *StateBackend) Describe() *core.TargetDescriptor {
	return b.target.Describe()
}

// DefaultCompilationPass builds the pipeline without routing. Statevector
// targets have no connectivity constraint.
func (b *StateBackend) DefaultCompilationPass(level int) (*compile.SequencePass, error) {
	desc := b.target.Describe()
	if desc != nil && desc.Arch != nil {
		unconstrained := *desc
		unconstrained.Arch = nil
		desc = &unconstrained
	}
	return compile.Build(level, desc)
}

func (b *StateBackend) Compile(c *circuit.Circuit, level int) error {
	p, err := b.DefaultCompilationPass(level)
	if err != nil {
		return err
	}
	return p.Apply(c)
}

// RequiredPredicates lists what the state target demands. Measurements are
// excluded from the gate set, so measured circuits are rejected outright.
func (b *StateBackend) RequiredPredicates() []circuit.Predicate {
	return []circuit.Predicate{
		circuit.NewGateSetPredicate(
			circuit.OpCZ, circuit.OpRx, circuit.OpRz, circuit.OpBarrier,
		),
		circuit.NoSymbolsPredicate{},
		circuit.NoClassicalControlPredicate{},
		circuit.DefaultRegisterPredicate{},
	}
}

// Submit computes the statevector of each circuit and caches it under a
// fresh handle. Postprocess and Seed options do not apply to the state path
// and are ignored.
func (b *StateBackend) Submit(ctx context.Context, circuits []*circuit.Circuit, opts SubmitOptions) ([]core.ResultHandle, error) {
	preds := b.RequiredPredicates()
	handles := make([]core.ResultHandle, 0, len(circuits))
	for i, c := range circuits {
		h, err := b.submitOne(ctx, c, opts, preds)
		if err != nil {
			return handles, errors.Wrapf(err, "circuit %d", i)
		}
		handles = append(handles, h)
	}
	countSubmissions(ctx, b.target.Describe(), len(handles))
	return handles, nil
}

func (b *StateBackend) submitOne(ctx context.Context, c *circuit.Circuit, opts SubmitOptions, preds []circuit.Predicate) (core.ResultHandle, error) {
	if opts.ValidCheck {
		if err := verifyAll(preds, c); err != nil {
			return core.ResultHandle{}, err
		}
	}
	run := c.Clone()
	if opts.SimplifyInitial {
		if err := (compile.SimplifyInitialPass{}).Apply(run); err != nil {
			return core.ResultHandle{}, err
		}
	}
	state, err := b.wavefunction(ctx, run)
	if err != nil {
		return core.ResultHandle{}, err
	}
	h := core.NewResultHandle("")
	b.cache.Register(h, nil)
	if err := b.cache.StoreResult(h, core.NewStateResult(state)); err != nil {
		return core.ResultHandle{}, err
	}
	return h, nil
}

func (b *StateBackend) wavefunction(ctx context.Context, c *circuit.Circuit) ([]complex128, error) {
	prog, err := stateProgram(c)
	if err != nil {
		return nil, err
	}
	state, err := b.target.Wavefunction(ctx, prog)
	if err != nil {
		return nil, err
	}
	return reorderState(state, c.ImplicitQubitPermutation())
}

// stateProgram wraps a circuit for the state target. Listing every allocated
// qubit pads gate-less qubits into the state dimension.
func stateProgram(c *circuit.Circuit) (*core.Program, error) {
	qubits := make([]int, 0, len(c.Qubits))
	for _, q := range c.Qubits {
		i, err := circuit.DefaultQubitIndex(q)
		if err != nil {
			return nil, err
		}
		qubits = append(qubits, i)
	}
	return &core.Program{
		Qubits:  qubits,
		Circuit: c,
	}, nil
}

// reorderState undoes the circuit's implicit qubit permutation so amplitude
// indices are addressed by the caller's original qubit labels.
func reorderState(state []complex128, perm map[circuit.Qubit]circuit.Qubit) ([]complex128, error) {
	if len(perm) == 0 {
		return state, nil
	}
	wire := make(map[int]int, len(perm))
	identity := true
	for from, to := range perm {
		f, err := circuit.DefaultQubitIndex(from)
		if err != nil {
			return nil, err
		}
		t, err := circuit.DefaultQubitIndex(to)
		if err != nil {
			return nil, err
		}
		wire[f] = t
		if f != t {
			identity = false
		}
	}
	if identity {
		return state, nil
	}
	n := 0
	for 1<<n < len(state) {
		n++
	}
	out := make([]complex128, len(state))
	for phys, amp := range state {
		logical := 0
		for q := 0; q < n; q++ {
			w, ok := wire[q]
			if !ok {
				w = q
			}
			logical |= ((phys >> w) & 1) << q
		}
		out[logical] = amp
	}
	return out, nil
}

// GetState runs a single circuit and returns its statevector.
func (b *StateBackend) GetState(ctx context.Context, c *circuit.Circuit, opts SubmitOptions) ([]complex128, error) {
	handles, err := b.Submit(ctx, []*circuit.Circuit{c}, opts)
	if err != nil {
		return nil, err
	}
	r, err := b.Result(ctx, handles[0])
	if err != nil {
		return nil, err
	}
	return r.State, nil
}

// CircuitStatus is trivially Completed for any handle this backend issued,
// because execution is synchronous.
func (b *StateBackend) CircuitStatus(_ context.Context, h core.ResultHandle) (core.Status, error) {
	if _, err := b.cache.Result(h); err != nil {
		return 0, err
	}
	return core.COMPLETED, nil
}

func (b *StateBackend) Result(ctx context.Context, h core.ResultHandle) (*core.BackendResult, error) {
	r, err := b.cache.Result(h)
	if err != nil {
		return nil, err
	}
	countResults(ctx, b.target.Describe(), 1)
	return r, nil
}

// ExpectationPauli evaluates <psi|P|psi> for the state prepared by the
// circuit, using the target's native expectation primitive.
func (b *StateBackend) ExpectationPauli(ctx context.Context, c *circuit.Circuit, ps *pauli.QubitPauliString) (complex128, error) {
	et, ok := b.target.(ExpectationTarget)
	if !ok {
		return 0, errors.Wrapf(core.ErrNotImplemented,
			"target %q has no native expectation support", b.target.Describe().Name)
	}
	for _, q := range ps.Qubits() {
		if _, err := circuit.DefaultQubitIndex(q); err != nil {
			return 0, err
		}
	}
	prog, err := stateProgram(c)
	if err != nil {
		return 0, err
	}
	return et.ExpectationPauli(ctx, prog, ps)
}

// ExpectationOperator evaluates the weighted sum of Pauli term expectations.
func (b *StateBackend) ExpectationOperator(ctx context.Context, c *circuit.Circuit, op *pauli.Operator) (complex128, error) {
	et, ok := b.target.(ExpectationTarget)
	if !ok {
		return 0, errors.Wrapf(core.ErrNotImplemented,
			"target %q has no native expectation support", b.target.Describe().Name)
	}
	for _, term := range op.Terms {
		for _, q := range term.String.Qubits() {
			if _, err := circuit.DefaultQubitIndex(q); err != nil {
				return 0, err
			}
		}
	}
	prog, err := stateProgram(c)
	if err != nil {
		return 0, err
	}
	return et.ExpectationOperator(ctx, prog, op)
}
