package opts

import (
	"github.com/odexkit/odexpatch/pkg/config"
	"github.com/odexkit/odexpatch/pkg/status"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config     *config.Config
	StatusMgr  *status.Manager
	UserLogger *status.UserLogger
}
