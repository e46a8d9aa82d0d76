package registry_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/keystore"
	"github.com/novalabs/novawallet/internal/pipeline"
	"github.com/novalabs/novawallet/internal/registry"
	"github.com/novalabs/novawallet/internal/remote"
	"github.com/novalabs/novawallet/internal/tags"
)

type fixture struct {
	reg    *registry.Registry
	keys   *keystore.Memory
	meta   *remote.Memory
	tagger *tags.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		keys:   keystore.NewMemory(),
		meta:   remote.NewMemory(),
		tagger: tags.NewMemory(),
	}
	f.reg = registry.New(f.keys, f.meta, registry.WithTagger(f.tagger))
	return f
}

func (f *fixture) restore(t *testing.T) {
	t.Helper()
	_, err := f.reg.Restore(context.Background())
	require.NoError(t, err)
}

func newAddress(t *testing.T, net account.NetType) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return account.EncodeAddress(pub, net)
}

func TestRestoreEmpty(t *testing.T) {
	f := newFixture(t)

	res, err := f.reg.Restore(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Accounts)
	assert.Empty(t, res.Contacts)
	assert.Nil(t, res.Current)
	assert.Equal(t, registry.StateReady, f.reg.State())
}

func TestRestoreFailsSoft(t *testing.T) {
	f := newFixture(t)
	f.meta.FailRestore = assert.AnError

	res, err := f.reg.Restore(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Accounts)
	assert.Equal(t, registry.StateReady, f.reg.State())
}

func TestRestoreIsIdempotent(t *testing.T) {
	f := newFixture(t)
	addr := newAddress(t, account.NetTypeMain)
	f.meta.Seed(map[string]*account.Account{
		addr: {Alias: "seeded", Address: addr},
	}, nil, addr)

	first, err := f.reg.Restore(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Accounts, 1)

	// A second call serves the in-memory snapshot, not a re-read.
	f.meta.FailRestore = assert.AnError
	second, err := f.reg.Restore(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.Accounts, 1)
	require.NotNil(t, second.Current)
	assert.Equal(t, addr, second.Current.Address)
}

func TestOperationsBeforeReadyDoNotBlock(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.reg.UpsertAccount(context.Background(), "a", "addr", nil), registry.ErrNotReady)
	assert.ErrorIs(t, f.reg.AddContact(context.Background(), &account.Account{Address: "x"}), registry.ErrNotReady)
	assert.Empty(t, f.reg.DefaultAddress())
	assert.Nil(t, f.reg.Current())
	assert.Empty(t, f.reg.Accounts())
}

func TestUpsertDerivesNetType(t *testing.T) {
	f := newFixture(t)
	f.restore(t)

	mainAddr := newAddress(t, account.NetTypeMain)
	testAddr := newAddress(t, account.NetTypeTest)

	require.NoError(t, f.reg.UpsertAccount(context.Background(), "m", mainAddr, nil))
	require.NoError(t, f.reg.UpsertAccount(context.Background(), "t", testAddr, nil))

	accounts := f.reg.Accounts()
	assert.Equal(t, account.NetTypeMain, accounts[mainAddr].NetType)
	assert.Equal(t, account.NetTypeTest, accounts[testAddr].NetType)
	// Never independently settable: always equals derivation.
	for addr, a := range accounts {
		assert.Equal(t, account.DeriveNetType(addr), a.NetType)
	}
}

func TestUpsertSetsCurrentAndWritesRemote(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	addr := newAddress(t, account.NetTypeMain)

	require.NoError(t, f.reg.UpsertAccount(context.Background(), "me", addr, nil))

	assert.Equal(t, addr, f.reg.DefaultAddress())
	assert.Equal(t, 1, f.meta.AccountWrites)
	assert.Equal(t, []string{addr}, f.meta.DefaultWrites)
}

func TestUpsertWithSecureMaterial(t *testing.T) {
	f := newFixture(t)
	f.restore(t)

	mnemonic, err := keystore.Generate()
	require.NoError(t, err)
	sec, err := keystore.Create("hot", mnemonic, account.NetTypeMain)
	require.NoError(t, err)

	require.NoError(t, f.reg.UpsertAccount(context.Background(), "hot", sec.Address, sec))

	stored, err := f.keys.Retrieve(sec.Address)
	require.NoError(t, err)
	assert.Equal(t, sec.Mnemonic, stored.Mnemonic)
	assert.True(t, f.tagger.IsTagged(sec.Address))
	assert.Equal(t, sec.SolanaAddress, f.reg.Accounts()[sec.Address].SolanaAddress)
}

func TestUpsertLocalStateSurvivesRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	f.meta.FailAccounts = assert.AnError
	addr := newAddress(t, account.NetTypeMain)

	err := f.reg.UpsertAccount(context.Background(), "me", addr, nil)
	assert.Error(t, err)
	// Local state reflects the action even though the remote write failed.
	assert.Contains(t, f.reg.Accounts(), addr)
}

func TestSecureWriteFailureIsPersistError(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	f.keys.FailStore = assert.AnError

	mnemonic, err := keystore.Generate()
	require.NoError(t, err)
	sec, err := keystore.Create("hot", mnemonic, account.NetTypeMain)
	require.NoError(t, err)

	err = f.reg.UpsertAccount(context.Background(), "hot", sec.Address, sec)
	var persistErr *pipeline.PersistError
	require.ErrorAs(t, err, &persistErr)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRemoteWriteFailureIsPersistError(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	f.meta.FailAccounts = assert.AnError
	addr := newAddress(t, account.NetTypeMain)

	err := f.reg.UpsertAccount(context.Background(), "me", addr, nil)
	var persistErr *pipeline.PersistError
	require.ErrorAs(t, err, &persistErr)
}

func TestAddContactLastWriteWins(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	addr := newAddress(t, account.NetTypeMain)
	ctx := context.Background()

	require.NoError(t, f.reg.AddContact(ctx, &account.Account{Alias: "first", Address: addr}))
	require.NoError(t, f.reg.AddContact(ctx, &account.Account{Alias: "second", Address: addr}))

	contacts := f.reg.Contacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, "second", contacts[0].Alias)
}

func TestEditContactPreservesPosition(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	ctx := context.Background()

	a := newAddress(t, account.NetTypeMain)
	b := newAddress(t, account.NetTypeMain)
	c := newAddress(t, account.NetTypeMain)
	require.NoError(t, f.reg.AddContact(ctx, &account.Account{Alias: "a", Address: a}))
	require.NoError(t, f.reg.AddContact(ctx, &account.Account{Alias: "b", Address: b}))
	require.NoError(t, f.reg.AddContact(ctx, &account.Account{Alias: "c", Address: c}))

	require.NoError(t, f.reg.EditContact(ctx, &account.Account{Alias: "b2", Address: b}))

	contacts := f.reg.Contacts()
	require.Len(t, contacts, 3)
	assert.Equal(t, "b2", contacts[1].Alias)
	assert.Equal(t, b, contacts[1].Address)
}

func TestDeleteContact(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	ctx := context.Background()
	addr := newAddress(t, account.NetTypeMain)

	require.NoError(t, f.reg.AddContact(ctx, &account.Account{Alias: "x", Address: addr}))
	require.NoError(t, f.reg.DeleteContact(ctx, addr))
	assert.Empty(t, f.reg.Contacts())

	// Deleting a missing contact still succeeds.
	require.NoError(t, f.reg.DeleteContact(ctx, addr))
}

func TestContactsIndependentOfAccounts(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	addr := newAddress(t, account.NetTypeMain)

	// A contact needs no matching wallet account.
	require.NoError(t, f.reg.AddContact(context.Background(), &account.Account{Alias: "c", Address: addr}))
	assert.Empty(t, f.reg.Accounts())
	assert.Len(t, f.reg.Contacts(), 1)
}

func TestDefaultAutoSelection(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	ctx := context.Background()

	a := newAddress(t, account.NetTypeMain)
	b := newAddress(t, account.NetTypeMain)
	require.NoError(t, f.reg.UpsertAccount(ctx, "a", a, nil))
	require.NoError(t, f.reg.UpsertAccount(ctx, "b", b, nil))

	require.NoError(t, f.reg.UpdateDefaultAccountAddress(ctx, ""))

	// Cleared default with non-empty accounts re-selects some present key.
	def := f.reg.DefaultAddress()
	assert.NotEmpty(t, def)
	assert.Contains(t, f.reg.Accounts(), def)
}

func TestUpdateDefaultWritesRemoteFirst(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	ctx := context.Background()
	addr := newAddress(t, account.NetTypeMain)
	require.NoError(t, f.reg.UpsertAccount(ctx, "a", addr, nil))

	other := newAddress(t, account.NetTypeMain)
	require.NoError(t, f.reg.UpsertAccount(ctx, "b", other, nil))
	require.Equal(t, other, f.reg.DefaultAddress())

	f.meta.FailDefault = assert.AnError
	err := f.reg.UpdateDefaultAccountAddress(ctx, addr)
	assert.Error(t, err)
	// Remote write failed, so memory must not have moved.
	assert.Equal(t, other, f.reg.DefaultAddress())
}

func TestUpdateDefaultRejectsUnknownAddress(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	err := f.reg.UpdateDefaultAccountAddress(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestPerNetworkViews(t *testing.T) {
	f := newFixture(t)
	f.restore(t)
	ctx := context.Background()

	mainAddr := newAddress(t, account.NetTypeMain)
	testAddr := newAddress(t, account.NetTypeTest)
	require.NoError(t, f.reg.UpsertAccount(ctx, "m", mainAddr, nil))
	require.NoError(t, f.reg.UpsertAccount(ctx, "t", testAddr, nil))
	require.NoError(t, f.reg.AddContact(ctx, &account.Account{Alias: "mc", Address: newAddress(t, account.NetTypeMain)}))
	require.NoError(t, f.reg.AddContact(ctx, &account.Account{Alias: "tc", Address: newAddress(t, account.NetTypeTest)}))

	mains := f.reg.AccountsForNet(account.NetTypeMain)
	require.Len(t, mains, 1)
	assert.Equal(t, mainAddr, mains[0].Address)

	tcs := f.reg.ContactsForNet(account.NetTypeTest)
	require.Len(t, tcs, 1)
	assert.Equal(t, "tc", tcs[0].Alias)
}
