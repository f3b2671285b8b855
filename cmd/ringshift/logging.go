package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/ringshift/ringshift/pkg/secure"
	"github.com/ringshift/ringshift/ring"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logFilename is the fixed name of the rolling log inside the output
// directory.
const logFilename = "promotion.log"

func parseVerbosity(verbosity string) (zerolog.Level, error) {
	switch strings.ToLower(verbosity) {
	case "minimal":
		return zerolog.WarnLevel, nil
	case "normal":
		return zerolog.InfoLevel, nil
	case "detailed":
		return zerolog.DebugLevel, nil
	default:
		return zerolog.NoLevel, ring.NewValidationError("verbosity", "must be one of Minimal, Normal or Detailed")
	}
}

// setupLogs routes the global logger to stderr and to a rolling log file
// under dir. The log file keeps a history of past runs, so it appends
// rather than truncates.
func setupLogs(dir string, level zerolog.Level, debug bool) error {
	if err := secure.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, logFilename),
		MaxSize:    25, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339Nano, NoColor: true},
		zerolog.ConsoleWriter{Out: logFile, TimeFormat: time.RFC3339Nano, NoColor: true},
	))

	zerolog.SetGlobalLevel(level)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return nil
}

// setupLogsFromCLI validates the verbosity flag and wires the logger
// into the command's output directory.
func setupLogsFromCLI(c *cli.Context) error {
	level, err := parseVerbosity(getVerbosity(c))
	if err != nil {
		return err
	}
	return setupLogs(getOutput(c), level, getDebug(c))
}
