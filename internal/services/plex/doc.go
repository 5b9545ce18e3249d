// Package plex edits a Plex Media Server movie library: it resolves library
// sections by title, finds movies by title and year, and rewrites their
// collection tags and added dates through the library edit endpoint.
//
// Every request carries the server token and a stable client identifier. The
// identifier is a dash-free UUID generated once and remembered in the memo
// store so the server sees the same device on every run.
package plex
