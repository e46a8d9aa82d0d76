package account_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPub(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

func TestDeriveNetTypeMain(t *testing.T) {
	addr := account.EncodeAddress(newPub(t), account.NetTypeMain)
	assert.Equal(t, account.NetTypeMain, account.DeriveNetType(addr))
}

func TestDeriveNetTypeTest(t *testing.T) {
	addr := account.EncodeAddress(newPub(t), account.NetTypeTest)
	assert.Equal(t, account.NetTypeTest, account.DeriveNetType(addr))
}

func TestDeriveNetTypeBarePubkeyIsMain(t *testing.T) {
	// A 32-byte payload has no version byte and must classify as main.
	pub := newPub(t)
	addr := account.EncodeAddress(pub, account.NetTypeMain)
	// Strip the version byte by re-decoding and re-encoding just the key.
	decoded, err := account.DecodeAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, []byte(pub), []byte(decoded))
}

func TestDeriveNetTypeGarbageIsMain(t *testing.T) {
	assert.Equal(t, account.NetTypeMain, account.DeriveNetType("not-base58-0OIl"))
	assert.Equal(t, account.NetTypeMain, account.DeriveNetType(""))
}

func TestDecodeAddressRoundTrip(t *testing.T) {
	pub := newPub(t)
	for _, net := range []account.NetType{account.NetTypeMain, account.NetTypeTest} {
		addr := account.EncodeAddress(pub, net)
		got, err := account.DecodeAddress(addr)
		require.NoError(t, err)
		assert.Equal(t, []byte(pub), []byte(got))
		assert.Equal(t, net, account.DeriveNetType(addr))
	}
}

func TestFilterNet(t *testing.T) {
	main1 := &account.Account{Address: account.EncodeAddress(newPub(t), account.NetTypeMain)}
	test1 := &account.Account{Address: account.EncodeAddress(newPub(t), account.NetTypeTest)}
	main2 := &account.Account{Address: account.EncodeAddress(newPub(t), account.NetTypeMain)}

	all := []*account.Account{main1, test1, main2}

	mains := account.FilterNet(all, account.NetTypeMain)
	require.Len(t, mains, 2)
	assert.Equal(t, main1, mains[0])
	assert.Equal(t, main2, mains[1])

	tests := account.FilterNet(all, account.NetTypeTest)
	require.Len(t, tests, 1)
	assert.Equal(t, test1, tests[0])
}
