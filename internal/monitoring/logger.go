// Package monitoring holds the logging hooks shared by the analysis packages.
//
// Two streams exist: Logf for run lifecycle and actionable warnings, and
// Diagf for per-region and per-group diagnostics (failed metrics, dropped
// contours). Diagf is silent until SetDiagWriter installs a writer.
package monitoring

import (
	"io"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

var (
	mu         sync.RWMutex
	diagLogger *log.Logger
)

// SetDiagWriter routes the diag stream to w. Pass nil to disable it.
func SetDiagWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		diagLogger = nil
		return
	}
	diagLogger = log.New(w, "[volumetrics] ", log.LstdFlags|log.Lmicroseconds)
}

// Diagf logs to the diag stream.
func Diagf(format string, v ...interface{}) {
	mu.RLock()
	l := diagLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, v...)
	}
}
