package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/log"
	"github.com/felixgeelhaar/certipro/internal/version"
)

// logFileName is the file under the log directory that receives JSON logs.
const logFileName = "certipro.log"

// setupLogging builds the command logger from cfg. The returned cleanup
// closes the log file.
func setupLogging(cfg *config.Config) (*log.Logger, func()) {
	output, cleanup := configureLogOutput(cfg)

	logger := log.New(log.Config{
		Level:          log.ParseLevel(cfg.Logging.Level),
		Format:         log.ParseFormat(cfg.Logging.Format),
		Output:         output,
		ServiceName:    "certipro",
		ServiceVersion: version.GetInfo().Version,
	})

	return logger, cleanup
}

func configureLogOutput(cfg *config.Config) (log.Output, func()) {
	var writers []io.Writer

	// stdout carries command output unless logs are requested there.
	if os.Getenv(config.EnvLogStdout) == "true" {
		writers = append(writers, os.Stdout)
	}

	var file *os.File
	if cfg.Logging.EnableFile {
		if dir, err := cfg.LogDir(); err == nil {
			if err := os.MkdirAll(dir, 0o750); err == nil {
				f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err == nil {
					file = f
					writers = append(writers, f)
				}
			}
		}
	}

	if len(writers) == 0 {
		return log.OutputDiscard(), func() {}
	}

	cleanup := func() {
		if file != nil {
			_ = file.Close()
		}
	}
	return log.NewOutput(io.MultiWriter(writers...)), cleanup
}
