//go:build unit
// +build unit

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/core"
)

func lineTarget(n int) *core.TargetDescriptor {
	nodes := make([]int, n)
	edges := make([]circuit.Edge, 0, n-1)
	for i := 0; i < n; i++ {
		nodes[i] = i
		if i > 0 {
			edges = append(edges, circuit.Edge{i - 1, i})
		}
	}
	return &core.TargetDescriptor{
		Name:      "line",
		NumQubits: n,
		Arch:      circuit.NewArchitecture(nodes, edges),
	}
}

func TestBuildRejectsBadLevel(t *testing.T) {
	for _, level := range []int{-1, 3, 42} {
		_, err := Build(level, lineTarget(3))
		assert.ErrorIs(t, err, core.ErrInvalidConfig)
	}
}

func TestBuildLevelPolicy(t *testing.T) {
	tests := []struct {
		name        string
		level       int
		desc        *core.TargetDescriptor
		wantPresent []string
		wantAbsent  []string
		wantLast    string
	}{
		{
			name:        "level 0 with connectivity",
			level:       0,
			desc:        lineTarget(3),
			wantPresent: []string{"DecomposeBoxes", "FlattenRegisters", "RoutingPass", "AutoRebase"},
			wantAbsent:  []string{"LightOptimise", "FullPeepholeOptimise", "EulerAngleReduction", "CliffordSimp"},
			wantLast:    "AutoRebase",
		},
		{
			name:        "level 1 with connectivity",
			level:       1,
			desc:        lineTarget(3),
			wantPresent: []string{"LightOptimise", "RoutingPass", "AutoRebase", "EulerAngleReduction"},
			wantAbsent:  []string{"FullPeepholeOptimise", "TwoQubitSquash", "CliffordSimp"},
			wantLast:    "EulerAngleReduction",
		},
		{
			name:  "level 2 with connectivity",
			level: 2,
			desc:  lineTarget(3),
			wantPresent: []string{
				"FullPeepholeOptimise", "RoutingPass",
				"TwoQubitSquash", "CliffordSimp",
				"AutoRebase", "EulerAngleReduction",
			},
			wantAbsent: []string{"LightOptimise"},
			wantLast:   "EulerAngleReduction",
		},
		{
			name:        "level 2 without connectivity",
			level:       2,
			desc:        &core.TargetDescriptor{Name: "state", NumQubits: 4, Simulator: true},
			wantPresent: []string{"FullPeepholeOptimise", "AutoRebase", "EulerAngleReduction"},
			wantAbsent:  []string{"RoutingPass", "TwoQubitSquash", "CliffordSimp"},
			wantLast:    "EulerAngleReduction",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := Build(tt.level, tt.desc)
			assert.NoError(t, err)
			for _, name := range tt.wantPresent {
				assert.True(t, seq.Contains(name), "missing pass %s", name)
			}
			for _, name := range tt.wantAbsent {
				assert.False(t, seq.Contains(name), "unexpected pass %s", name)
			}
			passes := seq.Passes()
			assert.Equal(t, tt.wantLast, passes[len(passes)-1].Name())
		})
	}
}

func TestBuildOutputSatisfiesTargetPredicates(t *testing.T) {
	desc := lineTarget(3)
	native := circuit.NewGateSetPredicate(
		circuit.OpCZ, circuit.OpRx, circuit.OpRz,
		circuit.OpMeasure, circuit.OpBarrier,
	)
	for level := 0; level <= 2; level++ {
		seq, err := Build(level, desc)
		assert.NoError(t, err)

		c := circuit.New(3)
		c.H(0).CX(0, 2).T(1).SWAP(1, 2).Ry(0.3, 0)
		c.Measure(0, 0)

		assert.NoError(t, seq.Apply(c))
		assert.NoError(t, native.Verify(c), "level %d gate set", level)
		assert.NoError(t, circuit.ConnectivityPredicate{Arch: desc.Arch}.Verify(c), "level %d connectivity", level)
	}
}
