package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/pipeline"
	"github.com/novalabs/novawallet/internal/telemetry"
)

// SignOut removes one account, or wipes everything when acct is nil.
//
// Single-account mode deletes the account's key material and routing tag,
// drops it from the in-memory and remote maps, and re-derives the default
// when the removed account held it. An address absent from the map is a
// no-op: no store call is issued.
//
// Full-wipe mode issues every cleanup concurrently and awaits them jointly;
// a failing sub-operation never stops the others. The in-memory state is
// cleared unconditionally afterward so the wallet always presents as logged
// out even when some remote cleanup failed.
func (r *Registry) SignOut(ctx context.Context, acct *account.Account) error {
	if acct == nil {
		return r.signOutAll(ctx)
	}
	return r.signOutOne(ctx, acct)
}

func (r *Registry) signOutOne(ctx context.Context, acct *account.Account) error {
	r.mu.Lock()
	if r.state != StateReady {
		r.mu.Unlock()
		return ErrNotReady
	}
	if _, ok := r.accounts[acct.Address]; !ok {
		r.mu.Unlock()
		return nil
	}

	delete(r.accounts, acct.Address)
	wasDefault := r.defAddr == acct.Address
	if wasDefault {
		r.defAddr = firstAddressLocked(r.accounts)
	}
	newDefault := r.defAddr
	snapshot := r.accountsCopyLocked()
	r.mu.Unlock()

	if wasDefault {
		telemetry.SetIdentity(newDefault)
	}

	var errs []error
	if err := r.keys.Delete(acct.Address); err != nil {
		errs = append(errs, &pipeline.PersistError{Op: "secure key delete for " + acct.Address, Err: err})
	}
	r.tagger.Untag(acct.Address)

	if err := r.meta.UpdateAccounts(ctx, snapshot); err != nil {
		errs = append(errs, &pipeline.PersistError{Op: "updating remote accounts", Err: err})
	}
	if wasDefault {
		if err := r.meta.SetDefaultAddress(ctx, newDefault); err != nil {
			errs = append(errs, &pipeline.PersistError{Op: "updating remote default", Err: err})
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) signOutAll(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateReady {
		r.mu.Unlock()
		return ErrNotReady
	}
	addresses := make([]string, 0, len(r.accounts))
	for addr := range r.accounts {
		addresses = append(addresses, addr)
	}
	r.mu.Unlock()

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	fail := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	for _, addr := range addresses {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			if err := r.keys.Delete(addr); err != nil {
				fail(&pipeline.PersistError{Op: "secure key delete for " + addr, Err: err})
			}
			r.tagger.Untag(addr)
		}(addr)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := r.keys.SignOutAll(addresses); err != nil {
			fail(&pipeline.PersistError{Op: "secure store sign-out", Err: err})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := r.meta.SignOut(ctx); err != nil {
			fail(&pipeline.PersistError{Op: "remote sign-out", Err: err})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := r.meta.SetDefaultAddress(ctx, ""); err != nil {
			fail(&pipeline.PersistError{Op: "clearing remote default", Err: err})
		}
	}()

	wg.Wait()

	// Unconditional: the UI must see "logged out" even after partial failure.
	r.mu.Lock()
	r.accounts = make(map[string]*account.Account)
	r.contacts = nil
	r.defAddr = ""
	r.mu.Unlock()
	telemetry.SetIdentity("")

	return errors.Join(errs...)
}
