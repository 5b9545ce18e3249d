// Package jobs implements the work behind each CLI command.
//
// A job is a plain struct holding its flags and a *Deps. Deps carries the
// loaded configuration, the logger and the memo store, and builds the service
// clients on first use so a command only needs credentials for the services
// it actually touches. Jobs log per-item failures and keep going; the joined
// error returned at the end lets the CLI exit non-zero after printing what
// did happen.
package jobs
