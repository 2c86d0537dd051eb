package config

import (
	"github.com/rshade/shepherd/internal/logging"
)

// ToLoggingConfig converts LoggingConfig to logging.Config.
//
// The conversion applies these rules:
//   - Level, Format are copied directly
//   - If File is set, or forceFile is true, Output becomes "file"
//   - Otherwise Output defaults to "stderr"
//
// forceFile is used by the interactive dashboard, where console output would
// corrupt the terminal screen.
func (lc LoggingConfig) ToLoggingConfig(forceFile bool) logging.Config {
	output := logging.OutputStderr
	if lc.File != "" || forceFile {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}
