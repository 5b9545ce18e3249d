// Package main hosts the dionysia CLI entrypoint and command graph.
//
// Each command resolves the configuration, opens the memo store and the
// logger through commandContext, then hands a jobs.Deps to the job that does
// the work. Commands only format results: reconciliation summaries and
// per-movie actions print as tables after the job finishes.
package main
