// Package builder turns domain intents into unsigned Solana transactions.
// Builders are pure with respect to wallet state; they may read the chain
// (blockhash, account lookups) but never mutate anything.
package builder

import (
	"context"
	"fmt"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/novalabs/novawallet/internal/memo"
)

// PaymentChunkSize caps how many payees share one transaction so a large
// batch never exceeds the protocol transaction-size limit.
const PaymentChunkSize = 5

// MemoProgramID is the SPL memo program.
var MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// ChainReader is the read-only chain access a builder needs.
type ChainReader interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	AccountExists(ctx context.Context, key solana.PublicKey) (bool, error)
}

// Builder constructs unsigned transactions against one chain connection.
type Builder struct {
	chain ChainReader
}

// New creates a builder over the given chain reader.
func New(chain ChainReader) *Builder {
	return &Builder{chain: chain}
}

// Payee is one recipient in a payment batch.
type Payee struct {
	To     solana.PublicKey
	Amount uint64
	Memo   string
}

// Payment pays a batch of payees in SOL (Mint unset) or an SPL token.
type Payment struct {
	Payer  solana.PublicKey
	Payees []Payee
	Mint   *solana.PublicKey
}

// Collectable transfers one NFT to a recipient.
type Collectable struct {
	Owner solana.PublicKey
	Mint  solana.PublicKey
	To    solana.PublicKey
}

// AnchorTxn is an externally prepared transaction passed through unchanged.
// ContextURL names the dapp or deep link that prepared it, shown alongside
// the approval prompt.
type AnchorTxn struct {
	Raw        []byte
	ContextURL string
}

// BuildPayment splits payees into fixed-size chunks and builds one
// transaction per chunk. Chunks build concurrently; the returned sequence
// preserves payee order regardless of completion order.
func (b *Builder) BuildPayment(ctx context.Context, p Payment) ([]*solana.Transaction, error) {
	if len(p.Payees) == 0 {
		return nil, fmt.Errorf("payment has no payees")
	}

	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	chunks := ChunkPayees(p.Payees, PaymentChunkSize)
	txs := make([]*solana.Transaction, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []Payee) {
			defer wg.Done()
			txs[i], errs[i] = b.buildPaymentChunk(p.Payer, p.Mint, chunk, blockhash)
		}(i, chunk)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return txs, nil
}

func (b *Builder) buildPaymentChunk(payer solana.PublicKey, mint *solana.PublicKey, payees []Payee, blockhash solana.Hash) (*solana.Transaction, error) {
	var instrs []solana.Instruction

	for _, payee := range payees {
		if mint == nil {
			instrs = append(instrs, system.NewTransferInstruction(payee.Amount, payer, payee.To).Build())
		} else {
			fromATA, _, err := solana.FindAssociatedTokenAddress(payer, *mint)
			if err != nil {
				return nil, fmt.Errorf("payer token account: %w", err)
			}
			toATA, _, err := solana.FindAssociatedTokenAddress(payee.To, *mint)
			if err != nil {
				return nil, fmt.Errorf("payee token account: %w", err)
			}
			instrs = append(instrs, token.NewTransferInstruction(
				payee.Amount, fromATA, toATA, payer, []solana.PublicKey{},
			).Build())
		}
		if payee.Memo != "" {
			ix, err := memoInstruction(payer, payee.Memo)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, ix)
		}
	}

	return solana.NewTransaction(instrs, blockhash, solana.TransactionPayer(payer))
}

// BuildCollectable builds a single-token transfer for an NFT.
func (b *Builder) BuildCollectable(ctx context.Context, c Collectable) ([]*solana.Transaction, error) {
	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	fromATA, _, err := solana.FindAssociatedTokenAddress(c.Owner, c.Mint)
	if err != nil {
		return nil, fmt.Errorf("owner token account: %w", err)
	}
	toATA, _, err := solana.FindAssociatedTokenAddress(c.To, c.Mint)
	if err != nil {
		return nil, fmt.Errorf("recipient token account: %w", err)
	}

	ix := token.NewTransferInstruction(1, fromATA, toATA, c.Owner, []solana.PublicKey{}).Build()

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(c.Owner))
	if err != nil {
		return nil, err
	}
	return []*solana.Transaction{tx}, nil
}

// BuildAnchorTxn decodes an externally prepared transaction.
func (b *Builder) BuildAnchorTxn(ctx context.Context, a AnchorTxn) ([]*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(a.Raw))
	if err != nil {
		return nil, fmt.Errorf("decoding prepared transaction: %w", err)
	}
	return []*solana.Transaction{tx}, nil
}

// ChunkPayees splits payees into groups of at most size, preserving order.
func ChunkPayees(payees []Payee, size int) [][]Payee {
	if size <= 0 {
		size = PaymentChunkSize
	}
	var chunks [][]Payee
	for start := 0; start < len(payees); start += size {
		end := start + size
		if end > len(payees) {
			end = len(payees)
		}
		chunks = append(chunks, payees[start:end])
	}
	return chunks
}

func memoInstruction(signer solana.PublicKey, text string) (solana.Instruction, error) {
	data, err := memo.Encode(text)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		MemoProgramID,
		solana.AccountMetaSlice{solana.Meta(signer).SIGNER()},
		data,
	), nil
}
