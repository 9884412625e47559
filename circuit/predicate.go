package circuit

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Predicate is a requirement an execution target places on circuits it
// accepts. Verify returns nil when the circuit satisfies it.
type Predicate interface {
	Name() string
	Verify(*Circuit) error
}

type GateSetPredicate struct {
	Allowed map[OpType]struct{}
}

func NewGateSetPredicate(ops ...OpType) *GateSetPredicate {
	allowed := make(map[OpType]struct{}, len(ops))
	for _, o := range ops {
		allowed[o] = struct{}{}
	}
	return &GateSetPredicate{Allowed: allowed}
}

func (p *GateSetPredicate) Name() string { return "GateSet" }

func (p *GateSetPredicate) Verify(c *Circuit) error {
	for _, g := range c.Gates {
		if _, ok := p.Allowed[g.Op]; !ok {
			return fmt.Errorf("gate %s is not in the target gate set", g.Op)
		}
	}
	return nil
}

type NoMidMeasurePredicate struct{}

func (NoMidMeasurePredicate) Name() string { return "NoMidMeasure" }

func (NoMidMeasurePredicate) Verify(c *Circuit) error {
	measured := make(map[Qubit]struct{})
	for _, g := range c.Gates {
		if g.Op == OpMeasure {
			for _, q := range g.Qubits {
				measured[q] = struct{}{}
			}
			continue
		}
		if g.Op == OpBarrier {
			continue
		}
		for _, q := range g.Qubits {
			if _, ok := measured[q]; ok {
				return fmt.Errorf("qubit %s is used after measurement", q)
			}
		}
	}
	return nil
}

type NoClassicalControlPredicate struct{}

func (NoClassicalControlPredicate) Name() string { return "NoClassicalControl" }

func (NoClassicalControlPredicate) Verify(c *Circuit) error {
	for _, g := range c.Gates {
		if len(g.Conditional) > 0 {
			return fmt.Errorf("gate %s is classically controlled", g.Op)
		}
	}
	return nil
}

// NoFastFeedforwardPredicate rejects circuits that feed a measurement result
// into a later quantum operation.
type NoFastFeedforwardPredicate struct{}

func (NoFastFeedforwardPredicate) Name() string { return "NoFastFeedforward" }

func (NoFastFeedforwardPredicate) Verify(c *Circuit) error {
	written := make(map[Bit]struct{})
	for _, g := range c.Gates {
		for _, b := range g.Conditional {
			if _, ok := written[b]; ok {
				return fmt.Errorf("gate %s is conditioned on measured bit %s", g.Op, b)
			}
		}
		if g.Op == OpMeasure {
			for _, b := range g.Bits {
				written[b] = struct{}{}
			}
		}
	}
	return nil
}

type NoSymbolsPredicate struct{}

func (NoSymbolsPredicate) Name() string { return "NoSymbols" }

func (NoSymbolsPredicate) Verify(c *Circuit) error {
	for _, g := range c.Gates {
		for _, p := range g.Params {
			if p.Symbolic() {
				return fmt.Errorf("gate %s carries unresolved symbol %q", g.Op, p.Symbol)
			}
		}
	}
	return nil
}

type DefaultRegisterPredicate struct{}

func (DefaultRegisterPredicate) Name() string { return "DefaultRegister" }

func (DefaultRegisterPredicate) Verify(c *Circuit) error {
	for i, q := range c.Qubits {
		if q.Register != DefaultQubitRegister || q.Index != i {
			return errors.Wrapf(ErrInvalidRegister, "qubit %s at position %d", q, i)
		}
	}
	for i, b := range c.Bits {
		if b.Register != DefaultBitRegister || b.Index != i {
			return errors.Wrapf(ErrInvalidRegister, "bit %s at position %d", b, i)
		}
	}
	return nil
}

type ConnectivityPredicate struct {
	Arch *Architecture
}

func (p ConnectivityPredicate) Name() string { return "Connectivity" }

func (p ConnectivityPredicate) Verify(c *Circuit) error {
	for _, g := range c.Gates {
		if g.Op.NumQubits() != 2 {
			continue
		}
		x, err := DefaultQubitIndex(g.Qubits[0])
		if err != nil {
			return err
		}
		y, err := DefaultQubitIndex(g.Qubits[1])
		if err != nil {
			return err
		}
		if !p.Arch.HasEdge(x, y) {
			return fmt.Errorf("gate %s acts on uncoupled nodes %d and %d", g.Op, x, y)
		}
	}
	return nil
}
