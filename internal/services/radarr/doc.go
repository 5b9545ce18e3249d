// Package radarr reads the Radarr movie catalog and triggers searches and
// deletions. selection.go holds the cutoff rules that pick which missing
// movies are worth searching for.
package radarr
