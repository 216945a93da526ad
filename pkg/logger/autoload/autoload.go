// Package autoload initialises the global logger from LOG_* variables when imported.
package autoload

import (
	configx "github.com/tanpawarit/spark/pkg/config"
	logx "github.com/tanpawarit/spark/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
