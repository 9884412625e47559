package core

import (
	"fmt"

	"go.uber.org/zap"
)

// Version is the running engine version, resolved once at startup.
var Version string

const NoVersion = "no_version_info"

// SetVersion resolves the version precedence: the -ldflags build value
// wins over the flags/env value, and a placeholder marks an unversioned
// build.
func SetVersion(c *Conf, versionByBuildFlag string) {
	if versionByBuildFlag != "" {
		Version = versionByBuildFlag
	} else if c.Version != "" {
		Version = c.Version
	} else {
		Version = NoVersion
	}
	zap.L().Info(fmt.Sprintf("engine version:%s", Version))
}
