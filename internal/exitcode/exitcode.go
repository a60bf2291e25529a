// Package exitcode defines process exit codes for scripting.
package exitcode

const (
	OK     = 0
	Usage  = 2 // bad arguments or missing required fields
	Auth   = 3 // no session; sign in first
	Remote = 4 // remote data service failure
)
