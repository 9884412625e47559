package backend

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/core"
)

// TargetFilter narrows AvailableTargets. A nil filter keeps everything.
type TargetFilter func(*core.TargetDescriptor) bool

// SimulatorsOnly keeps simulated targets.
func SimulatorsOnly(d *core.TargetDescriptor) bool { return d.Simulator }

// HardwareOnly keeps physical targets.
func HardwareOnly(d *core.TargetDescriptor) bool { return !d.Simulator }

// AvailableTargets describes the targets wired into the system container
// that pass the filter.
func AvailableTargets(sc *core.SystemComponents, filter TargetFilter) []*core.TargetDescriptor {
	var out []*core.TargetDescriptor
	add := func(d *core.TargetDescriptor) {
		if d == nil {
			return
		}
		for _, have := range out {
			if have.Name == d.Name {
				return
			}
		}
		if filter == nil || filter(d) {
			out = append(out, d)
		}
	}
	err := sc.Invoke(
		func(shot core.ShotTarget, state core.StateTarget) error {
			add(shot.Describe())
			add(state.Describe())
			return nil
		})
	if err != nil {
		zap.L().Warn(fmt.Sprintf("failed to enumerate targets/reason:%s", err))
	}
	return out
}
