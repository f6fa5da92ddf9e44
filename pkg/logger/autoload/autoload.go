// Package autoload initializes the global logger from LOG_* environment
// variables on import.
package autoload

import (
	configx "github.com/careerninja/learntube/pkg/config"
	logx "github.com/careerninja/learntube/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
