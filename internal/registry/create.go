package registry

import (
	"context"
	"fmt"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/keystore"
)

// CreateAccount generates a fresh mnemonic, derives its keypair on the given
// network and registers the account as the new default. The mnemonic is
// returned exactly once, for the user to back up; it is never logged.
func (r *Registry) CreateAccount(ctx context.Context, alias string, net account.NetType) (*account.Account, string, error) {
	mnemonic, err := keystore.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("generating mnemonic: %w", err)
	}
	acct, err := r.ImportAccount(ctx, alias, mnemonic, net)
	if err != nil {
		return nil, "", err
	}
	return acct, mnemonic, nil
}

// ImportAccount derives an account from an existing mnemonic and registers
// it as the new default. An invalid phrase fails with
// keystore.ErrInvalidMnemonic before anything is written.
func (r *Registry) ImportAccount(ctx context.Context, alias, mnemonic string, net account.NetType) (*account.Account, error) {
	secure, err := keystore.Create(alias, mnemonic, net)
	if err != nil {
		return nil, err
	}
	if err := r.UpsertAccount(ctx, alias, secure.Address, secure); err != nil {
		return nil, err
	}
	r.log.WithField("address", secure.Address).Info("account imported")
	return r.Current(), nil
}
