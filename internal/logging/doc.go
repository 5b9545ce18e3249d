// Package logging assembles structured slog loggers and formatting helpers used
// across dionysia jobs and service adapters.
//
// It owns the console/JSON handlers, fans records out to stdout and the
// activity log file, and exposes context-aware helpers so job code can tag log
// lines with the running command and the list being reconciled. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
