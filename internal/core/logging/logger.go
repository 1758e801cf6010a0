package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentKey is the field that names the subsystem writing a log line.
const ComponentKey = "cmp"

// Component returns the global logger tagged with the subsystem name. The
// global logger is captured when called, so call it after log.Logger is set.
func Component(name string) zerolog.Logger {
	return log.With().Str(ComponentKey, name).Logger()
}
