// Package tags wraps the notification-routing collaborator that associates
// an address with the device's push channel. All operations are best-effort:
// failures are logged and never propagated to the critical path.
package tags

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Tagger registers and unregisters addresses for notification routing.
type Tagger interface {
	Tag(address string) error
	Untag(address string) error
}

// BestEffort wraps a Tagger so callers can fire and forget.
type BestEffort struct {
	Tagger Tagger
	Log    *logrus.Entry
}

func (b BestEffort) Tag(address string) {
	if b.Tagger == nil {
		return
	}
	if err := b.Tagger.Tag(address); err != nil && b.Log != nil {
		b.Log.WithError(err).WithField("address", address).Warn("routing tag failed")
	}
}

func (b BestEffort) Untag(address string) {
	if b.Tagger == nil {
		return
	}
	if err := b.Tagger.Untag(address); err != nil && b.Log != nil {
		b.Log.WithError(err).WithField("address", address).Warn("routing untag failed")
	}
}

// Memory records tag calls for tests. Failures can be injected per address.
type Memory struct {
	mu       sync.Mutex
	tagged   map[string]bool
	Tagged   []string
	Untagged []string

	FailTag   map[string]error
	FailUntag map[string]error
}

// NewMemory creates an in-memory tagger.
func NewMemory() *Memory {
	return &Memory{
		tagged:    make(map[string]bool),
		FailTag:   make(map[string]error),
		FailUntag: make(map[string]error),
	}
}

func (m *Memory) Tag(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailTag[address]; err != nil {
		return err
	}
	m.tagged[address] = true
	m.Tagged = append(m.Tagged, address)
	return nil
}

func (m *Memory) Untag(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailUntag[address]; err != nil {
		return err
	}
	delete(m.tagged, address)
	m.Untagged = append(m.Untagged, address)
	return nil
}

// IsTagged reports whether an address is currently tagged.
func (m *Memory) IsTagged(address string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tagged[address]
}
