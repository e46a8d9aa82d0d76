// Package chain is the on-chain connection handle: a thin wrapper over the
// Solana JSON-RPC client covering the reads and the send/confirm loop the
// wallet core needs.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/novalabs/novawallet/internal/account"
)

// Cluster RPC endpoints per net type.
const (
	MainnetRPC = "https://api.mainnet-beta.solana.com"
	DevnetRPC  = "https://api.devnet.solana.com"
)

const confirmPollInterval = 500 * time.Millisecond

// ErrConfirmTimeout is returned when a sent transaction does not reach the
// requested commitment before the context expires.
var ErrConfirmTimeout = errors.New("timed out waiting for confirmation")

// URLForNet maps a net type to its cluster endpoint.
func URLForNet(net account.NetType) string {
	if net == account.NetTypeTest {
		return DevnetRPC
	}
	return MainnetRPC
}

// SendOpts control transaction submission.
type SendOpts struct {
	// SkipPreflight submits without simulating first.
	SkipPreflight bool
	// MaxRetries caps the RPC node's rebroadcasts; nil lets the node retry
	// until the blockhash expires.
	MaxRetries *uint
}

// Conn is an active connection to one Solana cluster.
type Conn struct {
	url    string
	client *rpc.Client
}

// Dial creates a connection to the given RPC endpoint.
func Dial(url string) *Conn {
	return &Conn{url: url, client: rpc.New(url)}
}

// URL returns the endpoint this connection targets.
func (c *Conn) URL() string {
	return c.url
}

// AccountExists reports whether the account is funded on-chain. A missing
// account is not an error: it is the signal behind the "recipient does not
// yet exist" approval warning.
func (c *Conn) AccountExists(ctx context.Context, key solana.PublicKey) (bool, error) {
	_, err := c.client.GetAccountInfo(ctx, key)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("account lookup %s: %w", key, err)
	}
	return true, nil
}

// LatestBlockhash fetches a recent blockhash at confirmed commitment.
func (c *Conn) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("blockhash: %w", err)
	}
	return out.Value.Blockhash, nil
}

// Send submits a signed transaction and returns its signature without
// waiting for confirmation.
func (c *Conn) Send(ctx context.Context, tx *solana.Transaction, opts SendOpts) (solana.Signature, error) {
	sig, err := c.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: rpc.CommitmentConfirmed,
		MaxRetries:          opts.MaxRetries,
	})
	if err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

// SendAndConfirm submits a signed transaction and polls until it reaches
// confirmed commitment. A transaction that lands with an on-chain error is
// returned as that error.
func (c *Conn) SendAndConfirm(ctx context.Context, tx *solana.Transaction, opts SendOpts) (solana.Signature, error) {
	sig, err := c.Send(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := c.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// Confirm polls signature status until confirmed or finalized.
func (c *Conn) Confirm(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrConfirmTimeout, sig)
		case <-ticker.C:
			out, err := c.client.GetSignatureStatuses(ctx, false, sig)
			if err != nil || len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}

// Balance returns the lamport balance of an account.
func (c *Conn) Balance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	out, err := c.client.GetBalance(ctx, key, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", key, err)
	}
	return out.Value, nil
}
