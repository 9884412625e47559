package pauli

import (
	"fmt"
	"sort"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

// Pauli is a single-qubit Pauli factor. Qubits absent from a string act as
// identity.
type Pauli int

const (
	I Pauli = iota
	X
	Y
	Z
)

func (p Pauli) String() string {
	switch p {
	case I:
		return "I"
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	default:
		return "?"
	}
}

func ToPauli(s string) (Pauli, error) {
	switch s {
	case "I":
		return I, nil
	case "X":
		return X, nil
	case "Y":
		return Y, nil
	case "Z":
		return Z, nil
	default:
		return I, fmt.Errorf("unknown Pauli factor: %s", s)
	}
}

// QubitPauliString maps qubits to Pauli factors, interpreted as their tensor
// product.
type QubitPauliString struct {
	Factors map[circuit.Qubit]Pauli
}

func NewQubitPauliString() *QubitPauliString {
	return &QubitPauliString{Factors: make(map[circuit.Qubit]Pauli)}
}

func (s *QubitPauliString) Set(q circuit.Qubit, p Pauli) *QubitPauliString {
	if p == I {
		delete(s.Factors, q)
	} else {
		s.Factors[q] = p
	}
	return s
}

// Qubits returns the acted-on qubits in default-register index order.
func (s *QubitPauliString) Qubits() []circuit.Qubit {
	out := make([]circuit.Qubit, 0, len(s.Factors))
	for q := range s.Factors {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Register != out[j].Register {
			return out[i].Register < out[j].Register
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func (s *QubitPauliString) String() string {
	str := ""
	for _, q := range s.Qubits() {
		str += fmt.Sprintf("%s@%s ", s.Factors[q], q)
	}
	return str
}

// Term is a Pauli string with a scalar weight.
type Term struct {
	String *QubitPauliString
	Coeff  complex128
}

// Operator is a weighted sum of Pauli strings.
type Operator struct {
	Terms []Term
}

func NewOperator() *Operator {
	return &Operator{}
}

func (o *Operator) Add(s *QubitPauliString, coeff complex128) *Operator {
	o.Terms = append(o.Terms, Term{String: s, Coeff: coeff})
	return o
}

// FromString wraps a single Pauli string as a unit-weight operator.
func FromString(s *QubitPauliString) *Operator {
	return NewOperator().Add(s, 1)
}
