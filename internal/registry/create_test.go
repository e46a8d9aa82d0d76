package registry_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/keystore"
)

func TestCreateAccount(t *testing.T) {
	f := newFixture(t)
	f.restore(t)

	acct, mnemonic, err := f.reg.CreateAccount(context.Background(), "fresh", account.NetTypeMain)
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Len(t, strings.Fields(mnemonic), 24)
	assert.Equal(t, account.NetTypeMain, acct.NetType)
	assert.Equal(t, acct.Address, f.reg.DefaultAddress())

	// The keypair landed in secure storage under the new address.
	secure, err := f.keys.Retrieve(acct.Address)
	require.NoError(t, err)
	assert.Equal(t, acct.SolanaAddress, secure.SolanaAddress)
}

func TestImportAccountDeterministic(t *testing.T) {
	f := newFixture(t)
	f.restore(t)

	mnemonic, err := keystore.Generate()
	require.NoError(t, err)

	first, err := f.reg.ImportAccount(context.Background(), "a", mnemonic, account.NetTypeTest)
	require.NoError(t, err)

	other := newFixture(t)
	other.restore(t)
	second, err := other.reg.ImportAccount(context.Background(), "a", mnemonic, account.NetTypeTest)
	require.NoError(t, err)

	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.SolanaAddress, second.SolanaAddress)
}

func TestImportAccountRejectsBadMnemonic(t *testing.T) {
	f := newFixture(t)
	f.restore(t)

	_, err := f.reg.ImportAccount(context.Background(), "a", "not a phrase", account.NetTypeMain)
	assert.ErrorIs(t, err, keystore.ErrInvalidMnemonic)
	assert.Empty(t, f.reg.Accounts())
	assert.Zero(t, f.meta.AccountWrites)
}
