package compile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/circuit"
)

// Pass is a single circuit rewrite applied in place.
type Pass interface {
	Name() string
	Apply(*circuit.Circuit) error
}

// SequencePass applies its passes in order.
type SequencePass struct {
	passes []Pass
}

func NewSequencePass(passes ...Pass) *SequencePass {
	return &SequencePass{passes: passes}
}

func (s *SequencePass) Name() string { return "SequencePass" }

func (s *SequencePass) Passes() []Pass {
	return append([]Pass(nil), s.passes...)
}

func (s *SequencePass) Contains(name string) bool {
	for _, p := range s.passes {
		if p.Name() == name {
			return true
		}
	}
	return false
}

func (s *SequencePass) Apply(c *circuit.Circuit) error {
	for _, p := range s.passes {
		if err := p.Apply(c); err != nil {
			return fmt.Errorf("pass %s: %w", p.Name(), err)
		}
		zap.L().Debug(fmt.Sprintf("applied pass %s/gates:%d", p.Name(), len(c.Gates)))
	}
	return nil
}
