package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/novalabs/novawallet/internal/chain"
	"github.com/novalabs/novawallet/internal/gate"
	"github.com/novalabs/novawallet/internal/keystore"
	"github.com/novalabs/novawallet/internal/pipeline"
	"github.com/novalabs/novawallet/internal/registry"
	"github.com/novalabs/novawallet/internal/remote"
	"github.com/novalabs/novawallet/internal/telemetry"
)

// wallet bundles everything a command needs: the restored registry and the
// handles to close afterwards.
type wallet struct {
	reg     *registry.Registry
	keys    *keystore.Keyring
	meta    *remote.SQLite
	journal *pipeline.Journal // opened lazily by openSession
}

// openWallet opens secure and metadata storage and restores the registry.
func openWallet(ctx context.Context) (*wallet, error) {
	keys, err := keystore.OpenKeyring()
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	meta, err := remote.OpenSQLite(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("opening wallet store: %w", err)
	}

	reg := registry.New(keys, meta)
	if _, err := reg.Restore(ctx); err != nil {
		meta.Close()
		return nil, fmt.Errorf("restoring accounts: %w", err)
	}
	return &wallet{reg: reg, keys: keys, meta: meta}, nil
}

func (w *wallet) Close() error {
	var errs []error
	if w.journal != nil {
		errs = append(errs, w.journal.Close())
	}
	if w.meta != nil {
		errs = append(errs, w.meta.Close())
	}
	return errors.Join(errs...)
}

// openSession builds a submission session for the current default account.
func (w *wallet) openSession() (*pipeline.Session, error) {
	acct := w.reg.Current()
	if acct == nil {
		return nil, fmt.Errorf("no account: create one with `nova account create`")
	}
	secure, err := w.keys.Retrieve(acct.Address)
	if err != nil {
		return nil, fmt.Errorf("loading signing key: %w", err)
	}
	signer, err := pipeline.NewLocalSigner(secure)
	if err != nil {
		return nil, err
	}

	conn := chain.Dial(cfg.RPC())
	if w.journal == nil {
		w.journal, err = pipeline.OpenJournal(cfg.Journal())
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
	}

	log := telemetry.Logger("cli")
	return &pipeline.Session{
		Account: acct,
		Chain:   conn,
		Gate:    &gate.Terminal{In: os.Stdin, Out: os.Stdout},
		Signer:  signer,
		Dispatcher: &pipeline.QueueDispatcher{
			Chain: conn,
			Notify: func(sig solana.Signature) {
				fmt.Printf("submitted %s\n", sig)
			},
			Log: log,
		},
		Journal: w.journal,
		Log:     log,
	}, nil
}
