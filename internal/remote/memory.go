package remote

import (
	"context"
	"sync"

	"github.com/novalabs/novawallet/internal/account"
)

// Memory is an in-memory metadata store for tests. Any operation can be made
// to fail by setting the matching Fail field.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*account.Account
	contacts []*account.Account
	defAddr  string

	FailRestore  error
	FailAccounts error
	FailContacts error
	FailDefault  error
	FailSignOut  error

	SignedOut      bool
	AccountWrites  int
	ContactWrites  int
	DefaultWrites  []string
}

// NewMemory creates an empty in-memory metadata store.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]*account.Account)}
}

// Seed pre-populates the store before Restore is called.
func (m *Memory) Seed(accounts map[string]*account.Account, contacts []*account.Account, defAddr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range accounts {
		m.accounts[k] = v
	}
	m.contacts = append(m.contacts, contacts...)
	m.defAddr = defAddr
}

func (m *Memory) RestoreAccounts(ctx context.Context) (*Restoration, error) {
	if m.FailRestore != nil {
		return nil, m.FailRestore
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res := &Restoration{
		Accounts:       make(map[string]*account.Account, len(m.accounts)),
		Contacts:       append([]*account.Account(nil), m.contacts...),
		DefaultAddress: m.defAddr,
	}
	for k, v := range m.accounts {
		res.Accounts[k] = v
	}
	return res, nil
}

func (m *Memory) UpdateAccounts(ctx context.Context, accounts map[string]*account.Account) error {
	if m.FailAccounts != nil {
		return m.FailAccounts
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AccountWrites++
	m.accounts = make(map[string]*account.Account, len(accounts))
	for k, v := range accounts {
		m.accounts[k] = v
	}
	return nil
}

func (m *Memory) UpdateContacts(ctx context.Context, contacts []*account.Account) error {
	if m.FailContacts != nil {
		return m.FailContacts
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContactWrites++
	m.contacts = append([]*account.Account(nil), contacts...)
	return nil
}

func (m *Memory) GetDefaultAddress(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defAddr, nil
}

func (m *Memory) SetDefaultAddress(ctx context.Context, address string) error {
	if m.FailDefault != nil {
		return m.FailDefault
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefaultWrites = append(m.DefaultWrites, address)
	m.defAddr = address
	return nil
}

func (m *Memory) SignOut(ctx context.Context) error {
	if m.FailSignOut != nil {
		return m.FailSignOut
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SignedOut = true
	m.accounts = make(map[string]*account.Account)
	m.contacts = nil
	m.defAddr = ""
	return nil
}
