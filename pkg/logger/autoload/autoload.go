// Package autoload initializes the global logger from LOG_* environment
// variables via a blank import:
//
//	import _ "github.com/jolmarket/listing-agent/pkg/logger/autoload"
package autoload

import (
	"github.com/jolmarket/listing-agent/pkg/config"
	logx "github.com/jolmarket/listing-agent/pkg/logger"
)

func init() {
	logx.Init(*config.MustNew[logx.Config]("LOG"))
}
