// Package pipeline orchestrates each transaction submission: build the
// intent, present the batch for approval, sign, dispatch, and (for
// entity-info updates only) confirm with retry. One skeleton serves every
// intent kind; the kinds differ only in their build, describe and dispatch
// strategies.
package pipeline

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/novalabs/novawallet/internal/builder"
	"github.com/novalabs/novawallet/internal/chain"
	"github.com/novalabs/novawallet/internal/gate"
	"github.com/novalabs/novawallet/internal/telemetry"
)

// Pipeline runs submissions for one session.
type Pipeline struct {
	s *Session
	b *builder.Builder
}

// New creates a pipeline bound to a session.
func New(s *Session) *Pipeline {
	if s.Log == nil {
		s.Log = telemetry.Logger("pipeline")
	}
	return &Pipeline{s: s, b: builder.New(s.Chain)}
}

// plan is one intent kind's strategy set for the shared skeleton.
type plan struct {
	kind       gate.Kind
	message    string
	contextURL string
	build      func(ctx context.Context) ([]*solana.Transaction, error)
	// warning, when set, runs before the approval request is shown and
	// supplies the risk notice attached to it.
	warning func(ctx context.Context) string
	// dispatch overrides the session dispatcher. Entity updates use it to
	// drive their own confirm sequence.
	dispatch func(ctx context.Context, txs []*solana.Transaction) error
}

// run is the shared protocol skeleton: precondition check, build, approve,
// sign, dispatch. A rejected or failed submission performs no state change.
func (p *Pipeline) run(ctx context.Context, pl plan) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}

	txs, err := pl.build(ctx)
	if err != nil {
		// Builder failures propagate unchanged.
		return err
	}

	serialized := make([][]byte, len(txs))
	for i, tx := range txs {
		// Approval shows the unsigned wire form; signatures come later.
		data, err := tx.Message.MarshalBinary()
		if err != nil {
			return fmt.Errorf("serializing transaction %d: %w", i, err)
		}
		serialized[i] = data
	}

	req := &gate.Request{
		Kind:          pl.kind,
		ContextURL:    pl.contextURL,
		Message:       pl.message,
		SerializedTxs: serialized,
	}
	if pl.warning != nil {
		req.Warning = pl.warning(ctx)
	}

	approved, err := p.s.Gate.Show(ctx, req)
	if err != nil {
		return fmt.Errorf("approval gate: %w", err)
	}
	if !approved {
		return ErrUserRejected
	}

	var entry *JournalEntry
	if p.s.Journal != nil {
		entry, err = p.s.Journal.Begin(string(pl.kind), serialized)
		if err != nil {
			return err
		}
	}

	if err := p.s.Signer.SignAll(ctx, txs); err != nil {
		entry.Fail(err)
		return fmt.Errorf("signing: %w", err)
	}

	dispatch := pl.dispatch
	if dispatch == nil {
		dispatch = p.s.Dispatcher.Dispatch
	}
	if err := dispatch(ctx, txs); err != nil {
		entry.Fail(err)
		return err
	}

	entry.Done()
	p.s.Log.WithField("kind", pl.kind).WithField("txs", len(txs)).Info("submission dispatched")
	return nil
}

// preconditions verifies the session can submit at all. It runs before any
// network or builder call.
func (p *Pipeline) preconditions() (solana.PublicKey, error) {
	if p.s.Account == nil || p.s.Account.SolanaAddress == "" {
		return solana.PublicKey{}, ErrNoAccount
	}
	owner, err := solana.PublicKeyFromBase58(p.s.Account.SolanaAddress)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrNoAccount, err)
	}
	if p.s.Chain == nil {
		return solana.PublicKey{}, ErrNoConnection
	}
	if p.s.Gate == nil {
		return solana.PublicKey{}, ErrNoGate
	}
	if p.s.Signer == nil {
		return solana.PublicKey{}, ErrNoSigner
	}
	if p.s.Dispatcher == nil {
		return solana.PublicKey{}, ErrNoConnection
	}
	return owner, nil
}

// owner returns the session account's chain key. Callers run preconditions
// first, so failures here are impossible in practice.
func (p *Pipeline) owner() solana.PublicKey {
	key, _ := solana.PublicKeyFromBase58(p.s.Account.SolanaAddress)
	return key
}

func shortKey(key solana.PublicKey) string {
	s := key.String()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// missingRecipients reports which of the given keys do not exist on-chain
// yet. Lookup errors are treated as "exists" so a flaky RPC never blocks an
// approval with a false warning.
func (p *Pipeline) missingRecipients(ctx context.Context, keys []solana.PublicKey) string {
	missing := 0
	for _, key := range keys {
		exists, err := p.s.Chain.AccountExists(ctx, key)
		if err == nil && !exists {
			missing++
		}
	}
	switch missing {
	case 0:
		return ""
	case 1:
		return "A recipient account does not yet exist on-chain. Sending will create and fund it."
	default:
		return fmt.Sprintf("%d recipient accounts do not yet exist on-chain. Sending will create and fund them.", missing)
	}
}

// SubmitPayment pays a batch of payees in SOL or an SPL token.
func (p *Pipeline) SubmitPayment(ctx context.Context, pay builder.Payment) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}
	pay.Payer = p.owner()

	recipients := make([]solana.PublicKey, len(pay.Payees))
	for i, payee := range pay.Payees {
		recipients[i] = payee.To
	}

	return p.run(ctx, plan{
		kind:    gate.KindPayment,
		message: fmt.Sprintf("Send payment to %d recipient(s)", len(pay.Payees)),
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildPayment(ctx, pay)
		},
		warning: func(ctx context.Context) string {
			return p.missingRecipients(ctx, recipients)
		},
	})
}

// SubmitCollectable transfers an NFT.
func (p *Pipeline) SubmitCollectable(ctx context.Context, c builder.Collectable) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}
	c.Owner = p.owner()

	return p.run(ctx, plan{
		kind:    gate.KindCollectable,
		message: fmt.Sprintf("Transfer collectable %s", shortKey(c.Mint)),
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildCollectable(ctx, c)
		},
		warning: func(ctx context.Context) string {
			return p.missingRecipients(ctx, []solana.PublicKey{c.To})
		},
	})
}

// SubmitTreasurySwap redeems a subnetwork token against its treasury.
func (p *Pipeline) SubmitTreasurySwap(ctx context.Context, s builder.TreasurySwap) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}
	s.Owner = p.owner()

	return p.run(ctx, plan{
		kind:    gate.KindTreasurySwap,
		message: "Swap tokens through the treasury",
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildTreasurySwap(ctx, s)
		},
	})
}

// SubmitAnchorTxn approves and dispatches an externally prepared
// transaction. The intent's context URL rides along on the approval
// request so the user can see who prepared it.
func (p *Pipeline) SubmitAnchorTxn(ctx context.Context, a builder.AnchorTxn) error {
	return p.run(ctx, plan{
		kind:       gate.KindAnchorTxn,
		message:    "Approve a prepared transaction",
		contextURL: a.ContextURL,
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildAnchorTxn(ctx, a)
		},
	})
}

// ClaimRewards claims pending rewards for one entity.
func (p *Pipeline) ClaimRewards(ctx context.Context, c builder.ClaimRewards) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}
	c.Owner = p.owner()

	return p.run(ctx, plan{
		kind:    gate.KindClaimRewards,
		message: "Claim pending rewards",
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildClaimRewards(ctx, c)
		},
	})
}

// ClaimAllRewards claims every entity's rewards in one approval.
func (p *Pipeline) ClaimAllRewards(ctx context.Context, c builder.ClaimAllRewards) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}
	c.Owner = p.owner()

	return p.run(ctx, plan{
		kind:    gate.KindClaimAllRewards,
		message: fmt.Sprintf("Claim rewards for %d hotspot(s)", len(c.Entities)),
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildClaimAllRewards(ctx, c)
		},
	})
}

// MintDataCredits burns tokens for data credits.
func (p *Pipeline) MintDataCredits(ctx context.Context, m builder.MintDataCredits) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}
	m.Owner = p.owner()

	return p.run(ctx, plan{
		kind:    gate.KindMintCredits,
		message: "Mint data credits",
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildMintDataCredits(ctx, m)
		},
	})
}

// DelegateDataCredits assigns data credits to a router.
func (p *Pipeline) DelegateDataCredits(ctx context.Context, d builder.DelegateDataCredits) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}
	d.Owner = p.owner()

	return p.run(ctx, plan{
		kind:    gate.KindDelegateCredits,
		message: fmt.Sprintf("Delegate data credits to %s", d.RouterKey),
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildDelegateDataCredits(ctx, d)
		},
	})
}

// UpdateEntityInfo asserts a hotspot's location and radio profile. This is
// the one intent kind whose confirmation the pipeline drives itself: the
// signed transactions are submitted strictly in order, since later ones read
// state earlier ones write, with preflight skipped and a retry-until-
// confirmed policy at confirmed commitment. A failure aborts the remainder
// and is re-raised classified. sponsored marks a maker-funded update, which
// changes the actionable text on an underfunded failure.
func (p *Pipeline) UpdateEntityInfo(ctx context.Context, u builder.UpdateEntityInfo, sponsored bool) error {
	if _, err := p.preconditions(); err != nil {
		return err
	}
	u.Owner = p.owner()

	return p.run(ctx, plan{
		kind:    gate.KindUpdateEntity,
		message: "Update hotspot location and profile",
		build: func(ctx context.Context) ([]*solana.Transaction, error) {
			return p.b.BuildUpdateEntityInfo(ctx, u)
		},
		dispatch: func(ctx context.Context, txs []*solana.Transaction) error {
			return p.confirmSequence(ctx, txs, sponsored)
		},
	})
}

// confirmSequence submits each signed transaction sequentially and waits
// for confirmed commitment before moving on. Fail-fast: the first failure
// aborts the remaining sequence.
func (p *Pipeline) confirmSequence(ctx context.Context, txs []*solana.Transaction, sponsored bool) error {
	for i, tx := range txs {
		sig, err := p.s.Chain.SendAndConfirm(ctx, tx, chain.SendOpts{SkipPreflight: true})
		if err != nil {
			p.s.Log.WithError(err).WithField("index", i).Warn("entity update aborted")
			classified := classifyEntityError(err, sponsored)
			if sendErr, ok := classified.(*SendError); ok {
				sendErr.Sig = sig
			}
			return classified
		}
		p.s.Log.WithField("signature", sig.String()).Info("entity update confirmed")
	}
	return nil
}
