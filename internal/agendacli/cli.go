// Package agendacli implements the agenda command line client: listing the
// calendar, editing custom events through the reconciling view and
// triggering upstream refreshes.
package agendacli

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/agenda/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends logs to stderr and, when logFile is set, to that file.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Agenda client
=============

Usage:
  agenda-client [options] <command> [command options]

Options:
  -url string       Base URL of the service (default "http://localhost:9080")
  -timeout duration HTTP request timeout (default 30s)
  -log string       Also write logs to this file
  -verbose          Enable debug logging
  -help             Show this help message

Commands:
  list   [-category c] [-from t -to t]              Print the aggregated calendar
  add    -title s -start t [-end t] [-category c] [-rrule r] [-id s]
  move   -id s -start t [-end t]                    Move an event after a drag
  resize -id s -end t                               Change the end of an event
  remove -id s                                      Delete an event
  sync                                              Refetch fixtures and schedule

Examples:
  agenda-client add -title Gym -start 2024-06-01T10:00:00Z -category perso
  agenda-client list -category match -from 2024-06-01T00:00:00Z -to 2024-07-01T00:00:00Z
`)
}
