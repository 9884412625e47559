package circuit

import (
	"fmt"
)

// OpType identifies a gate operation. Rotation angles are expressed in
// half-turns, following the convention of the pass pipeline.
type OpType int

const (
	OpUnknown OpType = iota
	OpH
	OpX
	OpY
	OpZ
	OpS
	OpSdg
	OpT
	OpTdg
	OpRx
	OpRy
	OpRz
	OpU1
	OpCU1
	OpCX
	OpCZ
	OpCCX
	OpSWAP
	OpISWAP
	OpMeasure
	OpBarrier
	OpBox
)

func (o OpType) String() string {
	switch o {
	case OpH:
		return "H"
	case OpX:
		return "X"
	case OpY:
		return "Y"
	case OpZ:
		return "Z"
	case OpS:
		return "S"
	case OpSdg:
		return "Sdg"
	case OpT:
		return "T"
	case OpTdg:
		return "Tdg"
	case OpRx:
		return "Rx"
	case OpRy:
		return "Ry"
	case OpRz:
		return "Rz"
	case OpU1:
		return "U1"
	case OpCU1:
		return "CU1"
	case OpCX:
		return "CX"
	case OpCZ:
		return "CZ"
	case OpCCX:
		return "CCX"
	case OpSWAP:
		return "SWAP"
	case OpISWAP:
		return "ISWAP"
	case OpMeasure:
		return "Measure"
	case OpBarrier:
		return "Barrier"
	case OpBox:
		return "Box"
	default:
		return "Unknown"
	}
}

func ToOpType(s string) (OpType, error) {
	for o := OpH; o <= OpBox; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return OpUnknown, fmt.Errorf("unknown op type: %s", s)
}

// NumQubits reports how many qubit arguments the op takes. Boxes and
// barriers are variadic and report -1.
func (o OpType) NumQubits() int {
	switch o {
	case OpCX, OpCZ, OpSWAP, OpISWAP, OpCU1:
		return 2
	case OpCCX:
		return 3
	case OpBox, OpBarrier:
		return -1
	default:
		return 1
	}
}

// IsRotation reports whether the op carries a single angle parameter.
func (o OpType) IsRotation() bool {
	switch o {
	case OpRx, OpRy, OpRz, OpU1, OpCU1:
		return true
	default:
		return false
	}
}

// Qubit is a typed register reference. The canonical default register for
// qubits is named "q" with contiguous zero-based indices.
type Qubit struct {
	Register string `json:"register"`
	Index    int    `json:"index"`
}

func (q Qubit) String() string {
	return fmt.Sprintf("%s[%d]", q.Register, q.Index)
}

// Bit is a classical register reference. The default register is "c".
type Bit struct {
	Register string `json:"register"`
	Index    int    `json:"index"`
}

func (b Bit) String() string {
	return fmt.Sprintf("%s[%d]", b.Register, b.Index)
}

const (
	DefaultQubitRegister = "q"
	DefaultBitRegister   = "c"
)

func Q(i int) Qubit { return Qubit{Register: DefaultQubitRegister, Index: i} }
func B(i int) Bit   { return Bit{Register: DefaultBitRegister, Index: i} }

// Param is a rotation angle in half-turns. A non-empty Symbol marks an
// unresolved symbolic parameter.
type Param struct {
	Value  float64 `json:"value"`
	Symbol string  `json:"symbol,omitempty"`
}

func (p Param) Symbolic() bool {
	return p.Symbol != ""
}

// Gate is one operation in a circuit. Conditional holds the classical bits
// guarding a classically controlled operation, nil otherwise. Sub is set
// only for OpBox.
type Gate struct {
	Op          OpType
	Params      []Param
	Qubits      []Qubit
	Bits        []Bit
	Conditional []Bit
	Sub         *Circuit
}

func (g Gate) Clone() Gate {
	c := Gate{Op: g.Op}
	c.Params = append([]Param(nil), g.Params...)
	c.Qubits = append([]Qubit(nil), g.Qubits...)
	c.Bits = append([]Bit(nil), g.Bits...)
	c.Conditional = append([]Bit(nil), g.Conditional...)
	if g.Sub != nil {
		c.Sub = g.Sub.Clone()
	}
	return c
}

// Circuit is an ordered gate sequence over typed registers. It carries a
// global phase in half-turns and an implicit qubit permutation applied at
// the end of execution, distinct from explicit SWAP gates.
type Circuit struct {
	Qubits []Qubit
	Bits   []Bit
	Gates  []Gate
	Phase  Param

	perm map[Qubit]Qubit
}

// New returns a circuit with n qubits in the default register and no
// classical bits.
func New(n int) *Circuit {
	c := &Circuit{}
	for i := 0; i < n; i++ {
		c.Qubits = append(c.Qubits, Q(i))
	}
	return c
}

// NewWithBits returns a circuit with n qubits and m classical bits, both in
// the default registers.
func NewWithBits(n, m int) *Circuit {
	c := New(n)
	for i := 0; i < m; i++ {
		c.Bits = append(c.Bits, B(i))
	}
	return c
}

func (c *Circuit) AddQubit(q Qubit) {
	for _, have := range c.Qubits {
		if have == q {
			return
		}
	}
	c.Qubits = append(c.Qubits, q)
}

func (c *Circuit) AddBit(b Bit) {
	for _, have := range c.Bits {
		if have == b {
			return
		}
	}
	c.Bits = append(c.Bits, b)
}

func (c *Circuit) AddGate(op OpType, params []Param, qubits ...Qubit) *Circuit {
	for _, q := range qubits {
		c.AddQubit(q)
	}
	c.Gates = append(c.Gates, Gate{Op: op, Params: params, Qubits: qubits})
	return c
}

func (c *Circuit) H(q int) *Circuit { return c.AddGate(OpH, nil, Q(q)) }
func (c *Circuit) X(q int) *Circuit { return c.AddGate(OpX, nil, Q(q)) }
func (c *Circuit) Y(q int) *Circuit { return c.AddGate(OpY, nil, Q(q)) }
func (c *Circuit) Z(q int) *Circuit { return c.AddGate(OpZ, nil, Q(q)) }
func (c *Circuit) S(q int) *Circuit { return c.AddGate(OpS, nil, Q(q)) }
func (c *Circuit) T(q int) *Circuit { return c.AddGate(OpT, nil, Q(q)) }
func (c *Circuit) Rx(angle float64, q int) *Circuit {
	return c.AddGate(OpRx, []Param{{Value: angle}}, Q(q))
}
func (c *Circuit) Ry(angle float64, q int) *Circuit {
	return c.AddGate(OpRy, []Param{{Value: angle}}, Q(q))
}
func (c *Circuit) Rz(angle float64, q int) *Circuit {
	return c.AddGate(OpRz, []Param{{Value: angle}}, Q(q))
}
func (c *Circuit) CX(ctrl, tgt int) *Circuit { return c.AddGate(OpCX, nil, Q(ctrl), Q(tgt)) }
func (c *Circuit) CZ(a, b int) *Circuit      { return c.AddGate(OpCZ, nil, Q(a), Q(b)) }
func (c *Circuit) SWAP(a, b int) *Circuit    { return c.AddGate(OpSWAP, nil, Q(a), Q(b)) }

// Measure appends a measurement of qubit q into classical bit b, both in the
// default registers.
func (c *Circuit) Measure(q, b int) *Circuit {
	c.AddQubit(Q(q))
	c.AddBit(B(b))
	c.Gates = append(c.Gates, Gate{Op: OpMeasure, Qubits: []Qubit{Q(q)}, Bits: []Bit{B(b)}})
	return c
}

// AddBox appends a compound gate box holding sub as its body, applied to the
// given qubits of this circuit. The box body uses default-register indices
// 0..len(qubits)-1 which are bound positionally.
func (c *Circuit) AddBox(sub *Circuit, qubits ...Qubit) *Circuit {
	for _, q := range qubits {
		c.AddQubit(q)
	}
	c.Gates = append(c.Gates, Gate{Op: OpBox, Qubits: qubits, Sub: sub})
	return c
}

// AddPhase accumulates a global phase contribution in half-turns.
func (c *Circuit) AddPhase(v float64) *Circuit {
	if c.Phase.Symbolic() {
		return c
	}
	c.Phase.Value += v
	return c
}

func (c *Circuit) SetSymbolicPhase(symbol string) *Circuit {
	c.Phase = Param{Symbol: symbol}
	return c
}

func (c *Circuit) CountOps(op OpType) int {
	n := 0
	for _, g := range c.Gates {
		if g.Op == op {
			n++
		}
	}
	return n
}

func (c *Circuit) NumMeasurements() int {
	return c.CountOps(OpMeasure)
}

// SetImplicitPermutation records the end-of-circuit qubit permutation.
func (c *Circuit) SetImplicitPermutation(perm map[Qubit]Qubit) {
	c.perm = perm
}

// ImplicitQubitPermutation returns the end-of-circuit permutation, filled
// with identity entries for qubits it does not mention.
func (c *Circuit) ImplicitQubitPermutation() map[Qubit]Qubit {
	out := make(map[Qubit]Qubit, len(c.Qubits))
	for _, q := range c.Qubits {
		out[q] = q
	}
	for k, v := range c.perm {
		out[k] = v
	}
	return out
}

func (c *Circuit) Clone() *Circuit {
	out := &Circuit{Phase: c.Phase}
	out.Qubits = append([]Qubit(nil), c.Qubits...)
	out.Bits = append([]Bit(nil), c.Bits...)
	for _, g := range c.Gates {
		out.Gates = append(out.Gates, g.Clone())
	}
	if c.perm != nil {
		out.perm = make(map[Qubit]Qubit, len(c.perm))
		for k, v := range c.perm {
			out.perm[k] = v
		}
	}
	return out
}
