package account

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// NetType classifies an account as belonging to the main or test network.
// It is always derived from the address, never stored independently.
type NetType string

const (
	NetTypeMain NetType = "main"
	NetTypeTest NetType = "test"
)

// Address version bytes. A nova address is base58(version || ed25519 pubkey).
const (
	versionMain byte = 0x00
	versionTest byte = 0x0e
)

// Account is a wallet identity. Address is the primary key; NetType is a
// pure function of Address (see DeriveNetType). SolanaAddress is the
// chain-level key the pipeline signs and pays with, and may be empty for
// address-book-only entries.
type Account struct {
	Alias         string  `json:"alias"`
	Address       string  `json:"address"`
	NetType       NetType `json:"netType"`
	SolanaAddress string  `json:"solanaAddress,omitempty"`
}

// DeriveNetType classifies an address by its version byte. Unversioned
// payloads (a bare 32-byte pubkey) and undecodable strings classify as main
// so that an account is never silently routed to the test network.
func DeriveNetType(address string) NetType {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) <= ed25519.PublicKeySize {
		return NetTypeMain
	}
	if raw[0] == versionTest {
		return NetTypeTest
	}
	return NetTypeMain
}

// EncodeAddress renders a public key as a versioned nova address.
func EncodeAddress(pub ed25519.PublicKey, net NetType) string {
	version := versionMain
	if net == NetTypeTest {
		version = versionTest
	}
	raw := make([]byte, 0, 1+len(pub))
	raw = append(raw, version)
	raw = append(raw, pub...)
	return base58.Encode(raw)
}

// DecodeAddress returns the public key embedded in a nova address.
func DecodeAddress(address string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, err
	}
	if len(raw) > ed25519.PublicKeySize {
		raw = raw[len(raw)-ed25519.PublicKeySize:]
	}
	return ed25519.PublicKey(raw), nil
}

// FilterNet returns the accounts whose derived net type matches net,
// preserving input order.
func FilterNet(accounts []*Account, net NetType) []*Account {
	out := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		if DeriveNetType(a.Address) == net {
			out = append(out, a)
		}
	}
	return out
}
