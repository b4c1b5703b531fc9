package monitoring

import "log"

// LogFunc has the signature of log.Printf.
type LogFunc func(format string, v ...any)

// Logf receives resets, render sink failures and the periodic cluster
// diagnostics.
var Logf LogFunc = log.Printf

// SetLogger redirects the simulation's log lines. nil discards them.
func SetLogger(f LogFunc) {
	if f == nil {
		f = func(string, ...any) {}
	}
	Logf = f
}
