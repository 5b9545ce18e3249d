// Package trakt talks to the Trakt API: public list and chart reads, list
// membership writes for the authorized user, and the OAuth authorization
// that those writes require.
//
// Reads only need the application's client id. Writes additionally need a
// user token obtained once with the out-of-band authorization-code flow
// (AuthCodeURL then Authorize) and persisted by FileTokenStore; the token
// source returned by TokenSource refreshes it and saves the refreshed token.
package trakt
