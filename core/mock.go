package core

import (
	"context"
	"fmt"

	"go.uber.org/dig"
)

const MockMaxQubits int = 10
const MockMaxShots int = 10000

// mockTargetJob finishes immediately with fixed readouts.
type mockTargetJob struct {
	id       string
	readouts [][]int
	status   string
}

func (j *mockTargetJob) ID() string { return j.id }

func (j *mockTargetJob) Status(context.Context) (string, error) {
	return j.status, nil
}

func (j *mockTargetJob) Readouts(context.Context) ([][]int, error) {
	return j.readouts, nil
}

type UnimplementedShotTarget struct{}

func (u *UnimplementedShotTarget) Setup(*Conf) error { return nil }

func (u *UnimplementedShotTarget) Describe() *TargetDescriptor {
	return &TargetDescriptor{
		Name:      "unimplementedTarget",
		NumQubits: MockMaxQubits,
		MaxShots:  MockMaxShots,
		Simulator: true,
	}
}

func (u *UnimplementedShotTarget) Submit(context.Context, *Program) (TargetJob, error) {
	return &mockTargetJob{id: "mock", status: "done"}, nil
}

// zeroShotTarget always reads out the all-zero string.
type zeroShotTarget struct {
	UnimplementedShotTarget
}

func (t *zeroShotTarget) Submit(_ context.Context, p *Program) (TargetJob, error) {
	// one column per allocated bit, like a real target
	width := 0
	if p.Circuit != nil {
		width = len(p.Circuit.Bits)
	} else {
		for _, j := range p.BitIndices {
			if j+1 > width {
				width = j + 1
			}
		}
	}
	readouts := make([][]int, p.Shots)
	for i := range readouts {
		readouts[i] = make([]int, width)
	}
	return &mockTargetJob{id: "zero", status: "done", readouts: readouts}, nil
}

// pendingShotTarget accepts submissions but never finishes them.
type pendingShotTarget struct {
	UnimplementedShotTarget
}

func (t *pendingShotTarget) Submit(context.Context, *Program) (TargetJob, error) {
	return &pendingTargetJob{}, nil
}

type pendingTargetJob struct{}

func (j *pendingTargetJob) ID() string { return "pending" }

func (j *pendingTargetJob) Status(context.Context) (string, error) {
	return "loaded", nil
}

func (j *pendingTargetJob) Readouts(context.Context) ([][]int, error) {
	return nil, fmt.Errorf("job never finishes")
}

type UnimplementedStateTarget struct{}

func (u *UnimplementedStateTarget) Setup(*Conf) error { return nil }

func (u *UnimplementedStateTarget) Describe() *TargetDescriptor {
	return &TargetDescriptor{
		Name:      "unimplementedStateTarget",
		NumQubits: MockMaxQubits,
		Simulator: true,
	}
}

func (u *UnimplementedStateTarget) Wavefunction(_ context.Context, p *Program) ([]complex128, error) {
	state := make([]complex128, 1<<len(p.Qubits))
	state[0] = 1
	return state, nil
}

func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() ShotTarget { return &zeroShotTarget{} })
	c.Provide(func() StateTarget { return &UnimplementedStateTarget{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithPendingContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() ShotTarget { return &pendingShotTarget{} })
	c.Provide(func() StateTarget { return &UnimplementedStateTarget{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithTargets(shot ShotTarget, state StateTarget) *SystemComponents {
	c := dig.New()
	c.Provide(func() ShotTarget { return shot })
	c.Provide(func() StateTarget { return state })
	s := NewSystemComponents(c)
	s.Setup(&Conf{QueueMaxSize: 1000})
	return s
}
