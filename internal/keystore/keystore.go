package keystore

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"

	"github.com/novalabs/novawallet/internal/account"
)

// Errors.
var (
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	ErrKeyNotFound     = errors.New("key not found")
)

// SecureAccount is the private material backing one wallet account. It only
// ever lives in the secure store and in transient memory during signing.
type SecureAccount struct {
	Alias         string `json:"alias"`
	Address       string `json:"address"`
	SolanaAddress string `json:"solanaAddress"`
	Mnemonic      string `json:"mnemonic"`
	Keypair       []byte `json:"keypair"` // 64-byte ed25519 seed||pubkey
}

// Store persists private key material, keyed by account address.
type Store interface {
	Store(acct *SecureAccount) error
	Retrieve(address string) (*SecureAccount, error)
	Delete(address string) error
	SignOutAll(addresses []string) error
}

// Generate creates a fresh 24-word mnemonic.
func Generate() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// Create derives a secure account from a mnemonic. The nova address carries
// the net-type version byte; the solana address is the bare pubkey.
func Create(alias, mnemonic string, net account.NetType) (*SecureAccount, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(mnemonic, "")
	priv := ed25519.NewKeyFromSeed(seed[:32])
	pub := priv.Public().(ed25519.PublicKey)

	keypair := make([]byte, 64)
	copy(keypair[:32], seed[:32])
	copy(keypair[32:], pub)

	return &SecureAccount{
		Alias:         alias,
		Address:       account.EncodeAddress(pub, net),
		SolanaAddress: base58.Encode(pub),
		Mnemonic:      mnemonic,
		Keypair:       keypair,
	}, nil
}

// SolanaKey returns the keypair as a solana-go private key.
func (a *SecureAccount) SolanaKey() (solana.PrivateKey, error) {
	if len(a.Keypair) != 64 {
		return nil, fmt.Errorf("keypair for %s: want 64 bytes, have %d", a.Address, len(a.Keypair))
	}
	return solana.PrivateKey(a.Keypair), nil
}
