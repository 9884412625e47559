package circuit

import (
	"sort"

	"github.com/go-faster/errors"
)

// ErrInvalidRegister is reported when a qubit or bit falls outside the
// canonical default register layout (single register, contiguous zero-based
// indices).
var ErrInvalidRegister = errors.New("non-default register")

// DefaultQubitIndex returns the linear index of q within the canonical
// default register.
func DefaultQubitIndex(q Qubit) (int, error) {
	if q.Register != DefaultQubitRegister || q.Index < 0 {
		return 0, errors.Wrapf(ErrInvalidRegister, "qubit %s", q)
	}
	return q.Index, nil
}

// DefaultBitIndex returns the linear index of b within the canonical default
// classical register.
func DefaultBitIndex(b Bit) (int, error) {
	if b.Register != DefaultBitRegister || b.Index < 0 {
		return 0, errors.Wrapf(ErrInvalidRegister, "bit %s", b)
	}
	return b.Index, nil
}

// bitPosition is the position of b within the circuit's bit ordering, -1 if
// absent.
func bitPosition(c *Circuit, b Bit) int {
	for i, have := range c.Bits {
		if have == b {
			return i
		}
	}
	return -1
}

// UsedBitIndices resolves the positions, within the circuit's bit ordering,
// of the classical bits actually referenced by measurement operations. The
// result is sorted ascending and free of duplicates. Execution targets
// report outcome columns for every allocated bit, so these indices are what
// filters the raw outcome table down to measured bits.
func UsedBitIndices(c *Circuit) ([]int, error) {
	seen := make(map[int]struct{})
	for _, g := range c.Gates {
		if g.Op != OpMeasure {
			continue
		}
		for _, q := range g.Qubits {
			if _, err := DefaultQubitIndex(q); err != nil {
				return nil, err
			}
		}
		for _, b := range g.Bits {
			pos := bitPosition(c, b)
			if pos < 0 {
				return nil, errors.Wrapf(ErrInvalidRegister, "measured bit %s is not allocated", b)
			}
			seen[pos] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out, nil
}
