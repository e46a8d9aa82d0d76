// Package registry maintains the authoritative in-memory set of wallet
// accounts and contacts, reconciling the secure key store and the remote
// metadata store. After Restore the in-memory snapshot is the sole source
// of truth for the session; neither backing store is read again.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/keystore"
	"github.com/novalabs/novawallet/internal/pipeline"
	"github.com/novalabs/novawallet/internal/remote"
	"github.com/novalabs/novawallet/internal/tags"
	"github.com/novalabs/novawallet/internal/telemetry"
)

// Errors.
var (
	// ErrNotReady is returned by mutating calls issued before Restore
	// completes. Callers get it immediately; nothing blocks.
	ErrNotReady = errors.New("registry not ready")
)

// State is the registry lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateReady
)

// Restoration is the bootstrap payload handed back from Restore.
type Restoration struct {
	Accounts map[string]*account.Account
	Current  *account.Account
	Contacts []*account.Account
}

// Registry is the account registry. In-memory mutations within one call are
// applied before any backing-store I/O is awaited; the mutex protects map
// integrity only; two concurrent mutating calls racing on the same address
// are the caller's to serialize.
type Registry struct {
	keys   keystore.Store
	meta   remote.Store
	tagger tags.BestEffort
	log    *logrus.Entry

	mu       sync.Mutex
	state    State
	accounts map[string]*account.Account
	contacts []*account.Account
	defAddr  string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger overrides the default component logger.
func WithLogger(log *logrus.Entry) Option {
	return func(r *Registry) { r.log = log }
}

// WithTagger sets the notification-routing collaborator.
func WithTagger(t tags.Tagger) Option {
	return func(r *Registry) { r.tagger.Tagger = t }
}

// New creates a registry over the given stores. Call Restore before use.
func New(keys keystore.Store, meta remote.Store, opts ...Option) *Registry {
	r := &Registry{
		keys:     keys,
		meta:     meta,
		accounts: make(map[string]*account.Account),
		log:      telemetry.Logger("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tagger.Log = r.log
	return r
}

// State returns the current lifecycle state.
func (r *Registry) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Restore loads the remote snapshot once and transfers ownership to the
// registry. It fails soft: a remote-store error yields an empty but valid
// snapshot instead of blocking the wallet. Calling it again returns the
// current snapshot without re-reading.
func (r *Registry) Restore(ctx context.Context) (*Restoration, error) {
	r.mu.Lock()
	if r.state == StateReady {
		r.mu.Unlock()
		return r.snapshot().Restoration, nil
	}
	r.state = StateRestoring
	r.mu.Unlock()

	res, err := r.meta.RestoreAccounts(ctx)
	if err != nil {
		r.log.WithError(err).Warn("remote restore failed, starting empty")
		res = &remote.Restoration{Accounts: make(map[string]*account.Account)}
	}

	r.mu.Lock()
	for addr, a := range res.Accounts {
		a.NetType = account.DeriveNetType(a.Address)
		r.accounts[addr] = a
	}
	r.contacts = append(r.contacts, res.Contacts...)
	if _, ok := r.accounts[res.DefaultAddress]; ok {
		r.defAddr = res.DefaultAddress
	}
	r.state = StateReady
	snap := r.snapshotLocked()
	r.mu.Unlock()

	telemetry.SetIdentity(snap.currentAddress())
	return snap.Restoration, nil
}

// UpsertAccount writes an account into the in-memory map and the remote
// store and makes it current. When secure material is supplied it is written
// to the key store last; a failed secure write is returned to the caller,
// never swallowed. The in-memory update always
// lands first so the UI reflects the action immediately.
func (r *Registry) UpsertAccount(ctx context.Context, alias, address string, secure *keystore.SecureAccount) error {
	r.mu.Lock()
	if r.state != StateReady {
		r.mu.Unlock()
		return ErrNotReady
	}

	acct := &account.Account{
		Alias:   alias,
		Address: address,
		NetType: account.DeriveNetType(address),
	}
	if secure != nil {
		acct.SolanaAddress = secure.SolanaAddress
	} else if existing, ok := r.accounts[address]; ok {
		acct.SolanaAddress = existing.SolanaAddress
	}

	r.accounts[address] = acct
	r.defAddr = address
	snapshot := r.accountsCopyLocked()
	r.mu.Unlock()

	telemetry.SetIdentity(address)

	if err := r.meta.UpdateAccounts(ctx, snapshot); err != nil {
		return &pipeline.PersistError{Op: "updating remote accounts", Err: err}
	}
	if err := r.meta.SetDefaultAddress(ctx, address); err != nil {
		return &pipeline.PersistError{Op: "updating remote default", Err: err}
	}

	if secure != nil {
		r.tagger.Tag(address)
		if err := r.keys.Store(secure); err != nil {
			return &pipeline.PersistError{Op: "secure key write for " + address, Err: err}
		}
	}
	return nil
}

// AddContact appends a contact, replacing any existing entry at the same
// address. Last write wins; there is no merge.
func (r *Registry) AddContact(ctx context.Context, c *account.Account) error {
	return r.putContact(ctx, c, false)
}

// EditContact replaces the contact at c.Address in place, preserving its
// position in the list.
func (r *Registry) EditContact(ctx context.Context, c *account.Account) error {
	return r.putContact(ctx, c, true)
}

func (r *Registry) putContact(ctx context.Context, c *account.Account, inPlace bool) error {
	r.mu.Lock()
	if r.state != StateReady {
		r.mu.Unlock()
		return ErrNotReady
	}

	c.NetType = account.DeriveNetType(c.Address)

	replaced := false
	kept := r.contacts[:0]
	for _, existing := range r.contacts {
		if existing.Address == c.Address {
			if inPlace && !replaced {
				kept = append(kept, c)
				replaced = true
			}
			continue
		}
		kept = append(kept, existing)
	}
	if !replaced {
		kept = append(kept, c)
	}
	r.contacts = kept
	snapshot := r.contactsCopyLocked()
	r.mu.Unlock()

	if err := r.meta.UpdateContacts(ctx, snapshot); err != nil {
		return &pipeline.PersistError{Op: "updating remote contacts", Err: err}
	}
	return nil
}

// DeleteContact removes the contact at the given address, if present.
func (r *Registry) DeleteContact(ctx context.Context, address string) error {
	r.mu.Lock()
	if r.state != StateReady {
		r.mu.Unlock()
		return ErrNotReady
	}

	kept := r.contacts[:0]
	for _, c := range r.contacts {
		if c.Address != address {
			kept = append(kept, c)
		}
	}
	r.contacts = kept
	snapshot := r.contactsCopyLocked()
	r.mu.Unlock()

	if err := r.meta.UpdateContacts(ctx, snapshot); err != nil {
		return &pipeline.PersistError{Op: "updating remote contacts", Err: err}
	}
	return nil
}

// UpdateDefaultAccountAddress changes the default-account pointer. The
// remote write happens first, then memory, then the telemetry identity.
// Empty clears the pointer; the next read auto-selects if accounts remain.
func (r *Registry) UpdateDefaultAccountAddress(ctx context.Context, address string) error {
	r.mu.Lock()
	if r.state != StateReady {
		r.mu.Unlock()
		return ErrNotReady
	}
	if address != "" {
		if _, ok := r.accounts[address]; !ok {
			r.mu.Unlock()
			return fmt.Errorf("no account at %s", address)
		}
	}
	r.mu.Unlock()

	if err := r.meta.SetDefaultAddress(ctx, address); err != nil {
		return &pipeline.PersistError{Op: "updating remote default", Err: err}
	}

	r.mu.Lock()
	r.defAddr = address
	r.mu.Unlock()

	telemetry.SetIdentity(address)
	return nil
}

// DefaultAddress returns the default account address. When the pointer is
// unset and accounts exist, the first-enumerated account is auto-selected
// and becomes the default.
func (r *Registry) DefaultAddress() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateReady {
		return ""
	}
	if r.defAddr == "" && len(r.accounts) > 0 {
		r.defAddr = firstAddressLocked(r.accounts)
	}
	return r.defAddr
}

// Current returns the default account, or nil.
func (r *Registry) Current() *account.Account {
	addr := r.DefaultAddress()
	if addr == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[addr]
}

// Accounts returns a copy of the account map.
func (r *Registry) Accounts() map[string]*account.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accountsCopyLocked()
}

// Contacts returns a copy of the contact list, in order.
func (r *Registry) Contacts() []*account.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contactsCopyLocked()
}

// AccountsForNet filters accounts by derived net type, ordered by address.
func (r *Registry) AccountsForNet(net account.NetType) []*account.Account {
	r.mu.Lock()
	list := make([]*account.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		list = append(list, a)
	}
	r.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Address < list[j].Address })
	return account.FilterNet(list, net)
}

// ContactsForNet filters contacts by derived net type, preserving order.
func (r *Registry) ContactsForNet(net account.NetType) []*account.Account {
	return account.FilterNet(r.Contacts(), net)
}

// --- internal ---

type lockedSnapshot struct {
	*Restoration
}

func (s lockedSnapshot) currentAddress() string {
	if s.Current == nil {
		return ""
	}
	return s.Current.Address
}

func (r *Registry) snapshot() lockedSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() lockedSnapshot {
	res := &Restoration{
		Accounts: r.accountsCopyLocked(),
		Contacts: r.contactsCopyLocked(),
	}
	if r.defAddr == "" && len(r.accounts) > 0 {
		r.defAddr = firstAddressLocked(r.accounts)
	}
	if r.defAddr != "" {
		res.Current = r.accounts[r.defAddr]
	}
	return lockedSnapshot{res}
}

func (r *Registry) accountsCopyLocked() map[string]*account.Account {
	out := make(map[string]*account.Account, len(r.accounts))
	for k, v := range r.accounts {
		out[k] = v
	}
	return out
}

func (r *Registry) contactsCopyLocked() []*account.Account {
	return append([]*account.Account(nil), r.contacts...)
}

// firstAddressLocked picks the first-enumerated account deterministically.
func firstAddressLocked(accounts map[string]*account.Account) string {
	first := ""
	for addr := range accounts {
		if first == "" || addr < first {
			first = addr
		}
	}
	return first
}
