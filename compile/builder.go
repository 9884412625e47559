package compile

import (
	"github.com/go-faster/errors"

	"github.com/qbridge-team/qbridge-engine/core"
)

// Build assembles the pass pipeline for an optimisation level against a
// target. Levels are mutually exclusive branches. Routing is included only
// when the target describes a connectivity graph; simulator state targets
// do not. Rebasing into the native gate set is always last before the
// final rotation cleanup.
func Build(level int, desc *core.TargetDescriptor) (*SequencePass, error) {
	if level < 0 || level > 2 {
		return nil, errors.Wrapf(core.ErrInvalidConfig, "optimisation level %d not in {0,1,2}", level)
	}

	passes := []Pass{
		DecomposeBoxesPass{},
		FlattenRegistersPass{},
	}
	switch level {
	case 1:
		passes = append(passes, LightOptimisePass{})
	case 2:
		passes = append(passes, FullPeepholeOptimisePass{})
	}
	if desc != nil && desc.Arch != nil {
		var placement Placement = NaivePlacement{}
		if level == 2 {
			placement = NoiseAwarePlacement{
				NodeErrors: desc.NodeErrors,
				EdgeErrors: desc.EdgeErrors,
			}
		}
		passes = append(passes, NewRoutingPass(desc.Arch, placement))
		if level == 2 {
			passes = append(passes,
				TwoQubitSquashPass{AllowSwaps: false},
				CliffordSimpPass{AllowSwaps: false},
			)
		}
	}
	passes = append(passes, AutoRebasePass{})
	if level > 0 {
		passes = append(passes, NewEulerAngleReduction())
	}
	return NewSequencePass(passes...), nil
}
