// Package logging provides the bridge's zap setup and the core that
// relays log entries to a registered script callback.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Logger returns the library's logger instance. It is a no-op logger
// until SetLogger or Init installs a real one.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger installs the logger returned by Logger. Passing nil restores
// the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	log = l
	mu.Unlock()
}
