package keystore_test

import (
	"testing"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesValidMnemonic(t *testing.T) {
	mnemonic, err := keystore.Generate()
	require.NoError(t, err)

	acct, err := keystore.Create("gen", mnemonic, account.NetTypeMain)
	require.NoError(t, err)
	assert.NotEmpty(t, acct.Address)
	assert.NotEmpty(t, acct.SolanaAddress)
	assert.Len(t, acct.Keypair, 64)
}

func TestCreateRejectsInvalidMnemonic(t *testing.T) {
	_, err := keystore.Create("bad", "definitely not twelve valid words", account.NetTypeMain)
	assert.ErrorIs(t, err, keystore.ErrInvalidMnemonic)
}

func TestCreateIsDeterministic(t *testing.T) {
	mnemonic, err := keystore.Generate()
	require.NoError(t, err)

	a, err := keystore.Create("a", mnemonic, account.NetTypeMain)
	require.NoError(t, err)
	b, err := keystore.Create("b", mnemonic, account.NetTypeMain)
	require.NoError(t, err)

	assert.Equal(t, a.Address, b.Address)
	assert.Equal(t, a.SolanaAddress, b.SolanaAddress)
	assert.Equal(t, a.Keypair, b.Keypair)
}

func TestCreateNetTypeMatchesDerivation(t *testing.T) {
	mnemonic, err := keystore.Generate()
	require.NoError(t, err)

	for _, net := range []account.NetType{account.NetTypeMain, account.NetTypeTest} {
		acct, err := keystore.Create("n", mnemonic, net)
		require.NoError(t, err)
		assert.Equal(t, net, account.DeriveNetType(acct.Address))
	}
}

func TestSolanaKeySignsForSolanaAddress(t *testing.T) {
	mnemonic, err := keystore.Generate()
	require.NoError(t, err)
	acct, err := keystore.Create("k", mnemonic, account.NetTypeMain)
	require.NoError(t, err)

	key, err := acct.SolanaKey()
	require.NoError(t, err)
	assert.Equal(t, acct.SolanaAddress, key.PublicKey().String())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ks := keystore.NewMemory()
	mnemonic, _ := keystore.Generate()
	acct, err := keystore.Create("mem", mnemonic, account.NetTypeMain)
	require.NoError(t, err)

	require.NoError(t, ks.Store(acct))
	got, err := ks.Retrieve(acct.Address)
	require.NoError(t, err)
	assert.Equal(t, acct, got)

	require.NoError(t, ks.Delete(acct.Address))
	_, err = ks.Retrieve(acct.Address)
	assert.ErrorIs(t, err, keystore.ErrKeyNotFound)
}

func TestMemorySignOutAllContinuesPastFailure(t *testing.T) {
	ks := keystore.NewMemory()
	ks.FailDelete["b"] = assert.AnError

	mnemonic, _ := keystore.Generate()
	acct, _ := keystore.Create("a", mnemonic, account.NetTypeMain)
	require.NoError(t, ks.Store(acct))

	err := ks.SignOutAll([]string{"b", acct.Address})
	assert.Error(t, err)
	// The failing entry must not stop the remaining deletions.
	assert.Equal(t, []string{"b", acct.Address}, ks.Deleted)
	assert.Equal(t, 0, ks.Len())
}
