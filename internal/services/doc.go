// Package services defines shared utilities consumed by the jobs and the
// remote service adapters.
//
// Key responsibilities:
//   - Context helpers that stamp the running job, the list being reconciled,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified (configuration vs remote service vs transient) when logged.
//
// The adapters themselves live in subpackages: jsonfeed, trakt, plex and radarr.
package services
