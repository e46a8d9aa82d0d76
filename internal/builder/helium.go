package builder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// On-chain programs behind the reward, credit and entity flows.
var (
	LazyDistributorProgramID = solana.MustPublicKeyFromBase58("1azyuavdMyvsivtNxPoz6SucD18eDHeXzFCUPq5XU7w")
	DataCreditsProgramID     = solana.MustPublicKeyFromBase58("credMBJhYFzfn7NxBMdU4aUqFggAjgztaCcv2Fo6fPT")
	EntityManagerProgramID   = solana.MustPublicKeyFromBase58("hemjuPXBpNvggtaUnN1MwT3wrdhttKEfosTcc2P9Pg8")
	TreasuryProgramID        = solana.MustPublicKeyFromBase58("treaf4wWBBty3fHdyBpo35Mz84M8k3heKXmjmi9vFt5")
)

// TreasurySwap redeems amount of a subnetwork token against its treasury.
type TreasurySwap struct {
	Owner    solana.PublicKey
	FromMint solana.PublicKey
	ToMint   solana.PublicKey
	Amount   uint64
}

// ClaimRewards claims pending rewards for one entity from one distributor.
type ClaimRewards struct {
	Owner           solana.PublicKey
	Entity          solana.PublicKey
	LazyDistributor solana.PublicKey
}

// ClaimAllRewards claims for every entity across a set of distributors.
type ClaimAllRewards struct {
	Owner            solana.PublicKey
	Entities         []solana.PublicKey
	LazyDistributors []solana.PublicKey
}

// MintDataCredits burns tokens for data credits.
type MintDataCredits struct {
	Owner  solana.PublicKey
	Amount uint64
}

// DelegateDataCredits assigns credits to a router.
type DelegateDataCredits struct {
	Owner     solana.PublicKey
	Amount    uint64
	RouterKey string
}

// UpdateEntityInfo changes a hotspot's asserted location and radio profile.
// It expands to one transaction per change, and the on-chain effects are
// ordered: the location assert must land before any profile update.
type UpdateEntityInfo struct {
	Owner     solana.PublicKey
	Entity    solana.PublicKey
	Location  uint64 // H3 index; zero means unchanged
	Gain      *int32 // dBi * 10
	Elevation *int32 // meters
}

func (b *Builder) BuildTreasurySwap(ctx context.Context, s TreasurySwap) ([]*solana.Transaction, error) {
	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	treasury, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("treasury"), s.FromMint.Bytes(), s.ToMint.Bytes()},
		TreasuryProgramID,
	)
	if err != nil {
		return nil, fmt.Errorf("treasury address: %w", err)
	}

	data := anchorData("redeem_v0", u64le(s.Amount))
	ix := solana.NewInstruction(
		TreasuryProgramID,
		solana.AccountMetaSlice{
			solana.Meta(s.Owner).SIGNER().WRITE(),
			solana.Meta(treasury).WRITE(),
			solana.Meta(s.FromMint).WRITE(),
			solana.Meta(s.ToMint),
		},
		data,
	)

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(s.Owner))
	if err != nil {
		return nil, err
	}
	return []*solana.Transaction{tx}, nil
}

func (b *Builder) BuildClaimRewards(ctx context.Context, c ClaimRewards) ([]*solana.Transaction, error) {
	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := b.claimTx(c.Owner, c.Entity, c.LazyDistributor, blockhash)
	if err != nil {
		return nil, err
	}
	return []*solana.Transaction{tx}, nil
}

// BuildClaimAllRewards produces one transaction per entity/distributor pair,
// in input order.
func (b *Builder) BuildClaimAllRewards(ctx context.Context, c ClaimAllRewards) ([]*solana.Transaction, error) {
	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	var txs []*solana.Transaction
	for _, entity := range c.Entities {
		for _, distributor := range c.LazyDistributors {
			tx, err := b.claimTx(c.Owner, entity, distributor, blockhash)
			if err != nil {
				return nil, err
			}
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

func (b *Builder) claimTx(owner, entity, distributor solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	recipient, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("recipient"), distributor.Bytes(), entity.Bytes()},
		LazyDistributorProgramID,
	)
	if err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}

	ix := solana.NewInstruction(
		LazyDistributorProgramID,
		solana.AccountMetaSlice{
			solana.Meta(owner).SIGNER().WRITE(),
			solana.Meta(distributor).WRITE(),
			solana.Meta(recipient).WRITE(),
			solana.Meta(entity),
		},
		anchorData("distribute_rewards_v0"),
	)
	return solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(owner))
}

func (b *Builder) BuildMintDataCredits(ctx context.Context, m MintDataCredits) ([]*solana.Transaction, error) {
	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	ix := solana.NewInstruction(
		DataCreditsProgramID,
		solana.AccountMetaSlice{
			solana.Meta(m.Owner).SIGNER().WRITE(),
		},
		anchorData("mint_data_credits_v0", u64le(m.Amount)),
	)

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(m.Owner))
	if err != nil {
		return nil, err
	}
	return []*solana.Transaction{tx}, nil
}

func (b *Builder) BuildDelegateDataCredits(ctx context.Context, d DelegateDataCredits) ([]*solana.Transaction, error) {
	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	delegated, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("delegated_data_credits"), []byte(d.RouterKey)},
		DataCreditsProgramID,
	)
	if err != nil {
		return nil, fmt.Errorf("delegated credits address: %w", err)
	}

	args := append(u64le(d.Amount), lpString(d.RouterKey)...)
	ix := solana.NewInstruction(
		DataCreditsProgramID,
		solana.AccountMetaSlice{
			solana.Meta(d.Owner).SIGNER().WRITE(),
			solana.Meta(delegated).WRITE(),
		},
		anchorData("delegate_data_credits_v0", args),
	)

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(d.Owner))
	if err != nil {
		return nil, err
	}
	return []*solana.Transaction{tx}, nil
}

// BuildUpdateEntityInfo returns the ordered transaction sequence behind an
// entity update. The caller must submit them sequentially: the gain update
// reads state the location assert writes.
func (b *Builder) BuildUpdateEntityInfo(ctx context.Context, u UpdateEntityInfo) ([]*solana.Transaction, error) {
	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	info, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("iot_info"), u.Entity.Bytes()},
		EntityManagerProgramID,
	)
	if err != nil {
		return nil, fmt.Errorf("entity info address: %w", err)
	}

	var txs []*solana.Transaction

	if u.Location != 0 {
		ix := solana.NewInstruction(
			EntityManagerProgramID,
			solana.AccountMetaSlice{
				solana.Meta(u.Owner).SIGNER().WRITE(),
				solana.Meta(info).WRITE(),
				solana.Meta(u.Entity),
			},
			anchorData("update_iot_info_v0", u64le(u.Location)),
		)
		tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(u.Owner))
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	profileTx := func(args []byte) (*solana.Transaction, error) {
		ix := solana.NewInstruction(
			EntityManagerProgramID,
			solana.AccountMetaSlice{
				solana.Meta(u.Owner).SIGNER().WRITE(),
				solana.Meta(info).WRITE(),
				solana.Meta(u.Entity),
			},
			anchorData("update_iot_profile_v0", args),
		)
		return solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(u.Owner))
	}

	if u.Gain != nil {
		args := append(optI32le(u.Gain), optI32le(nil)...)
		tx, err := profileTx(args)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	if u.Elevation != nil {
		args := append(optI32le(nil), optI32le(u.Elevation)...)
		tx, err := profileTx(args)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	if len(txs) == 0 {
		return nil, fmt.Errorf("entity update changes nothing")
	}
	return txs, nil
}

// anchorData prepends the 8-byte anchor method discriminator to args.
func anchorData(method string, args ...[]byte) []byte {
	sum := sha256.Sum256([]byte("global:" + method))
	data := append([]byte{}, sum[:8]...)
	for _, a := range args {
		data = append(data, a...)
	}
	return data
}

func u64le(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

// optI32le encodes a borsh Option<i32>.
func optI32le(v *int32) []byte {
	if v == nil {
		return []byte{0}
	}
	buf := make([]byte, 5)
	buf[0] = 1
	binary.LittleEndian.PutUint32(buf[1:], uint32(*v))
	return buf
}

// lpString encodes a borsh length-prefixed string.
func lpString(s string) []byte {
	buf := make([]byte, 4, 4+len(s))
	binary.LittleEndian.PutUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
