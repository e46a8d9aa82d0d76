// Package remote abstracts the cloud-backed metadata store holding the
// account list, the default-account pointer and the contact list. The store
// is eventually consistent with last-writer-wins semantics; there is no
// compare-and-swap. The account registry is its only writer and reads it
// exactly once per session, at restore.
package remote

import (
	"context"

	"github.com/novalabs/novawallet/internal/account"
)

// Restoration is the bootstrap payload loaded once at process start.
// Ownership transfers entirely to the registry.
type Restoration struct {
	Accounts       map[string]*account.Account
	Contacts       []*account.Account
	DefaultAddress string
}

// Store is the metadata store collaborator.
type Store interface {
	RestoreAccounts(ctx context.Context) (*Restoration, error)
	UpdateAccounts(ctx context.Context, accounts map[string]*account.Account) error
	UpdateContacts(ctx context.Context, contacts []*account.Account) error
	GetDefaultAddress(ctx context.Context) (string, error)
	SetDefaultAddress(ctx context.Context, address string) error
	SignOut(ctx context.Context) error
}
