package pipeline

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/chain"
	"github.com/novalabs/novawallet/internal/gate"
	"github.com/novalabs/novawallet/internal/keystore"
)

// Chain is the connection handle the pipeline needs. *chain.Conn satisfies
// it; tests substitute fakes.
type Chain interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	AccountExists(ctx context.Context, key solana.PublicKey) (bool, error)
	Send(ctx context.Context, tx *solana.Transaction, opts chain.SendOpts) (solana.Signature, error)
	SendAndConfirm(ctx context.Context, tx *solana.Transaction, opts chain.SendOpts) (solana.Signature, error)
}

// Signer produces signatures for a built batch. The cryptography lives
// outside this module.
type Signer interface {
	SignAll(ctx context.Context, txs []*solana.Transaction) error
}

// Dispatcher accepts an approved, signed batch into the shared submission
// queue. Confirmation is the dispatcher's responsibility for every intent
// kind except entity-info updates, which the pipeline confirms itself.
type Dispatcher interface {
	Dispatch(ctx context.Context, txs []*solana.Transaction) error
}

// Session is the explicit per-wallet context threaded through every
// pipeline call: the current account, its connection, and the collaborators
// a submission needs. One instance is built at startup and passed along
// rather than held as ambient global state.
type Session struct {
	Account    *account.Account
	Chain      Chain
	Gate       gate.Gate
	Signer     Signer
	Dispatcher Dispatcher
	Journal    *Journal // optional
	Log        *logrus.Entry
}

// LocalSigner signs with an in-process key. Used by the CLI front-end; the
// mobile app supplies its own signer.
type LocalSigner struct {
	Key solana.PrivateKey
}

// NewLocalSigner builds a signer from stored secure material.
func NewLocalSigner(sec *keystore.SecureAccount) (*LocalSigner, error) {
	key, err := sec.SolanaKey()
	if err != nil {
		return nil, err
	}
	return &LocalSigner{Key: key}, nil
}

func (s *LocalSigner) SignAll(ctx context.Context, txs []*solana.Transaction) error {
	for _, tx := range txs {
		_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(s.Key.PublicKey()) {
				return &s.Key
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// QueueDispatcher is the default dispatcher: it hands each signed
// transaction to the RPC node without waiting for confirmation and notifies
// the state-update observer, leaving confirmation to the node's rebroadcast
// loop.
type QueueDispatcher struct {
	Chain Chain
	// Notify, when set, receives each accepted signature. This is the
	// state-update hook downstream observers react to.
	Notify func(sig solana.Signature)
	Log    *logrus.Entry
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, txs []*solana.Transaction) error {
	for _, tx := range txs {
		sig, err := d.Chain.Send(ctx, tx, chain.SendOpts{})
		if err != nil {
			return &SendError{Raw: err}
		}
		if d.Log != nil {
			d.Log.WithField("signature", sig.String()).Info("transaction queued")
		}
		if d.Notify != nil {
			d.Notify(sig)
		}
	}
	return nil
}
