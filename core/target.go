package core

import (
	"context"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

// TargetDescriptor is the static description of an execution target used by
// pipeline construction and placement.
type TargetDescriptor struct {
	Name       string                   `json:"name"`
	NumQubits  int                      `json:"num_qubits"`
	Arch       *circuit.Architecture    `json:"architecture,omitempty"`
	NodeErrors map[int]float64          `json:"node_errors,omitempty"`
	EdgeErrors map[circuit.Edge]float64 `json:"-"`
	Simulator  bool                     `json:"simulator"`
	MaxShots   int                      `json:"max_shots"`
}

// Program is a compiled circuit ready for a target. Text is the wire form
// sent to remote targets; Circuit is kept for local simulation.
type Program struct {
	Text       string
	Qubits     []int
	BitIndices []int
	Shots      int
	Seed       *int64
	Circuit    *circuit.Circuit
}

// TargetJob is a handle to a program running on a target.
type TargetJob interface {
	ID() string
	// Status reports the target-side status string, one of the inputs
	// accepted by ToStatus.
	Status(ctx context.Context) (string, error)
	// Readouts blocks until the job finishes and returns one row per shot.
	Readouts(ctx context.Context) ([][]int, error)
}

// ShotTarget executes measured programs and returns per-shot readouts.
type ShotTarget interface {
	Setup(*Conf) error
	Describe() *TargetDescriptor
	Submit(ctx context.Context, p *Program) (TargetJob, error)
}

// StateTarget computes the full statevector of an unmeasured program.
type StateTarget interface {
	Setup(*Conf) error
	Describe() *TargetDescriptor
	Wavefunction(ctx context.Context, p *Program) ([]complex128, error)
}
