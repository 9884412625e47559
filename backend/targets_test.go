//go:build unit
// +build unit

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbridge-team/qbridge-engine/core"
)

func TestAvailableTargets(t *testing.T) {
	sc := core.SCWithUnimplementedContainer()
	defer sc.TearDown()

	descs := AvailableTargets(sc, nil)
	require.Len(t, descs, 2)

	names := make(map[string]bool)
	for _, d := range descs {
		names[d.Name] = true
	}
	assert.True(t, names["unimplementedTarget"])
	assert.True(t, names["unimplementedStateTarget"])
}

func TestAvailableTargetsFilter(t *testing.T) {
	sc := core.SCWithUnimplementedContainer()
	defer sc.TearDown()

	// both mock targets are simulators
	assert.Len(t, AvailableTargets(sc, SimulatorsOnly), 2)
	assert.Empty(t, AvailableTargets(sc, HardwareOnly))
}
