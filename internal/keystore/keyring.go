package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
)

const keychainService = "nova-wallet"

// Keyring is a secure store backed by the OS keychain.
type Keyring struct {
	ring keyring.Keyring
}

// OpenKeyring opens the OS-keychain-backed secure store.
func OpenKeyring() (*Keyring, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, err = keyring.Open(keyring.Config{
			ServiceName:     keychainService,
			AllowedBackends: []keyring.BackendType{keyring.FileBackend},
		})
		if err != nil {
			return nil, fmt.Errorf("opening keyring: %w", err)
		}
	}

	return &Keyring{ring: ring}, nil
}

func (k *Keyring) Store(acct *SecureAccount) error {
	data, err := json.Marshal(acct)
	if err != nil {
		return err
	}
	if err := k.ring.Set(keyring.Item{Key: itemKey(acct.Address), Data: data}); err != nil {
		return fmt.Errorf("keychain store %s: %w", acct.Address, err)
	}
	return nil
}

func (k *Keyring) Retrieve(address string) (*SecureAccount, error) {
	item, err := k.ring.Get(itemKey(address))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keychain retrieve %s: %w", address, err)
	}
	var acct SecureAccount
	if err := json.Unmarshal(item.Data, &acct); err != nil {
		return nil, fmt.Errorf("keychain decode %s: %w", address, err)
	}
	return &acct, nil
}

func (k *Keyring) Delete(address string) error {
	err := k.ring.Remove(itemKey(address))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

// SignOutAll removes every listed address. All deletions are attempted; the
// first error (if any) is returned.
func (k *Keyring) SignOutAll(addresses []string) error {
	var firstErr error
	for _, addr := range addresses {
		if err := k.Delete(addr); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func itemKey(address string) string {
	return keychainService + "." + address
}
