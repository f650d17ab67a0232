package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/dltcore/internal/logging"
)

// InitLogger tags the configured global logger with app and installs the
// result as the global logger. The runtime profile is applied first if no
// profile was configured yet.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
