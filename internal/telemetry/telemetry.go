// Package telemetry owns the process-wide structured logger and the active
// identity side channel: every log line carries the current default account
// address so support traces can be correlated to a wallet.
package telemetry

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu       sync.RWMutex
	base     = logrus.New()
	identity string
)

// SetIdentity records the active account address. Empty clears it.
func SetIdentity(address string) {
	mu.Lock()
	identity = address
	mu.Unlock()
}

// Identity returns the currently recorded account address, if any.
func Identity() string {
	mu.RLock()
	defer mu.RUnlock()
	return identity
}

// Logger returns an entry for a component, stamped with the active identity.
func Logger(component string) *logrus.Entry {
	mu.RLock()
	id := identity
	mu.RUnlock()

	entry := base.WithField("component", component)
	if id != "" {
		entry = entry.WithField("account", id)
	}
	return entry
}

// SetLevel adjusts the process log level.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}
