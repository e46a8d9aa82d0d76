package keystore

import "sync"

// Memory is an in-memory secure store for tests. Write and deletion
// failures can be injected via FailStore and FailDelete.
type Memory struct {
	mu         sync.Mutex
	data       map[string]*SecureAccount
	FailStore  error
	FailDelete map[string]error

	Deleted []string // addresses passed to Delete/SignOutAll, in call order
}

// NewMemory creates an in-memory secure store.
func NewMemory() *Memory {
	return &Memory{
		data:       make(map[string]*SecureAccount),
		FailDelete: make(map[string]error),
	}
}

func (m *Memory) Store(acct *SecureAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStore != nil {
		return m.FailStore
	}
	m.data[acct.Address] = acct
	return nil
}

func (m *Memory) Retrieve(address string) (*SecureAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.data[address]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return acct, nil
}

func (m *Memory) Delete(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, address)
	if err := m.FailDelete[address]; err != nil {
		return err
	}
	delete(m.data, address)
	return nil
}

func (m *Memory) SignOutAll(addresses []string) error {
	var firstErr error
	for _, addr := range addresses {
		if err := m.Delete(addr); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Len reports how many accounts remain stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
