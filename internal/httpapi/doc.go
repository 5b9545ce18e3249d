// Package httpapi is the JSON request helper shared by every remote service
// adapter.
//
// A Client joins a base URL with request paths, encodes query structs with
// go-querystring and bodies with go-json, and checks the response status
// against an expected set. Each call waits on an optional rate limiter, runs
// through a per-service circuit breaker, and is retried with the policy from
// package retry. Requests, payloads and response codes are logged at debug.
package httpapi
