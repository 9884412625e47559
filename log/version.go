package log

import (
	"github.com/qbridge-team/qbridge-engine/core"
	"go.uber.org/zap"
)

const VersionLogTaskName = "version_log"

type VersionLogTaskImpl struct {
	core.DefaultTaskImpl
}

func (v *VersionLogTaskImpl) Task() {
	zap.L().Debug("Engine version:" + core.Version)
}
