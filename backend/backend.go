package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/compile"
	"github.com/qbridge-team/qbridge-engine/core"
	"github.com/qbridge-team/qbridge-engine/quil"
)

// SubmitOptions tunes a batch submission.
type SubmitOptions struct {
	// Seed fixes the target's sampling RNG when the target supports it.
	Seed *int64
	// Postprocess splits classically replayable corrections off the
	// circuit and carries them in the handle instead of executing them.
	Postprocess bool
	// SimplifyInitial rewrites the circuit against the all-zero initial
	// state before submission.
	SimplifyInitial bool
	// ValidCheck verifies the required predicates before dispatch.
	ValidCheck bool
}

// ShotBackend submits measured circuits to a shot target and serves status
// and results through the handle registry.
type ShotBackend struct {
	target core.ShotTarget
	cache  *core.JobCache

	mu   sync.Mutex
	jobs map[uuid.UUID]core.TargetJob
}

func NewShotBackend(target core.ShotTarget) *ShotBackend {
	return &ShotBackend{
		target: target,
		cache:  core.NewJobCache(),
		jobs:   make(map[uuid.UUID]core.TargetJob),
	}
}

func (b *ShotBackend) Describe() *core.TargetDescriptor {
	return b.target.Describe()
}

// DefaultCompilationPass builds the pass pipeline for the given optimisation
// level against this backend's target.
func (b *ShotBackend) DefaultCompilationPass(level int) (*compile.SequencePass, error) {
	return compile.Build(level, b.target.Describe())
}

// Compile rewrites the circuit in place with the default pipeline.
func (b *ShotBackend) Compile(c *circuit.Circuit, level int) error {
	p, err := b.DefaultCompilationPass(level)
	if err != nil {
		return err
	}
	return p.Apply(c)
}

// RequiredPredicates lists what the target demands of a submitted circuit.
func (b *ShotBackend) RequiredPredicates() []circuit.Predicate {
	preds := []circuit.Predicate{
		circuit.NewGateSetPredicate(
			circuit.OpCZ, circuit.OpRx, circuit.OpRz,
			circuit.OpMeasure, circuit.OpBarrier,
		),
		circuit.NoSymbolsPredicate{},
		circuit.NoClassicalControlPredicate{},
		circuit.NoFastFeedforwardPredicate{},
		circuit.NoMidMeasurePredicate{},
		circuit.DefaultRegisterPredicate{},
	}
	if desc := b.target.Describe(); desc != nil && desc.Arch != nil {
		preds = append(preds, circuit.ConnectivityPredicate{Arch: desc.Arch})
	}
	return preds
}

func verifyAll(preds []circuit.Predicate, c *circuit.Circuit) error {
	for _, p := range preds {
		if err := p.Verify(c); err != nil {
			return errors.Wrapf(err, "predicate %s", p.Name())
		}
	}
	return nil
}

// Submit dispatches a batch of circuits for the given shot count and returns
// one handle per circuit, in order. Dispatch is strictly sequential. A
// circuit with no measurements never reaches the target; its empty result is
// cached eagerly.
func (b *ShotBackend) Submit(ctx context.Context, circuits []*circuit.Circuit, shots int, opts SubmitOptions) ([]core.ResultHandle, error) {
	if shots <= 0 {
		return nil, errors.Wrapf(core.ErrInvalidConfig, "shots must be positive, got %d", shots)
	}
	if desc := b.target.Describe(); desc != nil && desc.MaxShots > 0 && shots > desc.MaxShots {
		return nil, errors.Wrapf(core.ErrInvalidConfig,
			"shots(%d) is over the target limit(%d)", shots, desc.MaxShots)
	}

	preds := b.RequiredPredicates()
	handles := make([]core.ResultHandle, 0, len(circuits))
	for i, c := range circuits {
		h, err := b.submitOne(ctx, c, shots, opts, preds)
		if err != nil {
			return handles, errors.Wrapf(err, "circuit %d", i)
		}
		handles = append(handles, h)
	}
	countSubmissions(ctx, b.target.Describe(), len(handles))
	return handles, nil
}

func (b *ShotBackend) submitOne(ctx context.Context, c *circuit.Circuit, shots int, opts SubmitOptions, preds []circuit.Predicate) (core.ResultHandle, error) {
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
	postProcess := ""
	if opts.Postprocess {
		main, correction := prepareCircuit(run)
		if correction != nil {
			serialized, err := circuit.Serialize(correction)
			if err != nil {
				return core.ResultHandle{}, err
			}
			postProcess = serialized
		}
		run = main
	}

	bitIndices, err := circuit.UsedBitIndices(run)
	if err != nil {
		return core.ResultHandle{}, err
	}
	h := core.NewResultHandle(postProcess)
	b.cache.Register(h, bitIndices)

	if len(bitIndices) == 0 {
		// nothing is read out; the result is known without running
		if err := b.cache.StoreResult(h, core.EmptyResult(shots)); err != nil {
			return core.ResultHandle{}, err
		}
		zap.L().Debug(fmt.Sprintf("cached empty result for measureless circuit/handle:%s", h.Tag))
		return h, nil
	}

	text, err := quil.Translate(run)
	if err != nil {
		return core.ResultHandle{}, err
	}
	qubits := make([]int, 0, len(run.Qubits))
	for _, q := range run.Qubits {
		i, err := circuit.DefaultQubitIndex(q)
		if err != nil {
			return core.ResultHandle{}, err
		}
		qubits = append(qubits, i)
	}
	prog := &core.Program{
		Text:       text,
		Qubits:     qubits,
		BitIndices: bitIndices,
		Shots:      shots,
		Seed:       opts.Seed,
		Circuit:    run,
	}
	job, err := b.target.Submit(ctx, prog)
	if err != nil {
		b.cache.Delete(h)
		return core.ResultHandle{}, err
	}
	if err := b.cache.SetTargetID(h, job.ID()); err != nil {
		return core.ResultHandle{}, err
	}
	b.mu.Lock()
	b.jobs[h.Tag] = job
	b.mu.Unlock()
	zap.L().Debug(fmt.Sprintf("submitted handle:%s as target job:%s", h.Tag, job.ID()))
	return h, nil
}

func (b *ShotBackend) job(h core.ResultHandle) core.TargetJob {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jobs[h.Tag]
}

// CircuitStatus reports where a submitted circuit stands. Completed is only
// ever reported once the result is cached.
func (b *ShotBackend) CircuitStatus(ctx context.Context, h core.ResultHandle) (core.Status, error) {
	if _, err := b.cache.Lookup(h); err != nil {
		return 0, err
	}
	if _, err := b.cache.Result(h); err == nil {
		return core.COMPLETED, nil
	} else if !errors.Is(err, core.ErrResultUnavailable) {
		return 0, err
	}
	job := b.job(h)
	if job == nil {
		return 0, errors.Wrapf(core.ErrStatusUnavailable, "handle %s has no target job", h.Tag)
	}
	raw, err := job.Status(ctx)
	if err != nil {
		return 0, errors.Wrapf(core.ErrStatusUnavailable, "target job %s: %s", job.ID(), err)
	}
	status, err := core.ToStatus(raw)
	if err != nil {
		return 0, err
	}
	if status == core.COMPLETED {
		// pull the result in so Completed is never ahead of the cache
		if err := b.fetchResult(ctx, h, job); err != nil {
			return 0, err
		}
	}
	return status, nil
}

// Result returns the outcome table for a handle, fetching and caching it on
// first call. Retrieval is idempotent.
func (b *ShotBackend) Result(ctx context.Context, h core.ResultHandle) (*core.BackendResult, error) {
	r, err := b.cache.Result(h)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, core.ErrResultUnavailable) {
		return nil, err
	}
	job := b.job(h)
	if job == nil {
		return nil, err
	}
	if err := b.fetchResult(ctx, h, job); err != nil {
		return nil, err
	}
	return b.cache.Result(h)
}

func (b *ShotBackend) fetchResult(ctx context.Context, h core.ResultHandle, job core.TargetJob) error {
	entry, err := b.cache.Lookup(h)
	if err != nil {
		return err
	}
	readouts, err := job.Readouts(ctx)
	if err != nil {
		return errors.Wrapf(err, "target job %s", job.ID())
	}
	if len(readouts) == 0 {
		// jobs reach this path only with measured bits, so a finished job
		// with no rows is target misbehaviour; do not cache it
		return errors.Wrapf(core.ErrResultUnavailable,
			"target job %s finished without readouts", job.ID())
	}
	raw, err := core.OutcomeArrayFromReadouts(readouts)
	if err != nil {
		return err
	}
	shots := raw.SelectColumns(entry.BitIndices)
	if err := applyCorrection(shots, h.PostProcess, entry.BitIndices); err != nil {
		return err
	}
	if err := b.cache.StoreResult(h, core.NewShotResult(shots)); err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.jobs, h.Tag)
	b.mu.Unlock()
	countResults(ctx, b.target.Describe(), 1)
	return nil
}
