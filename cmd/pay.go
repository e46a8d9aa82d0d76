package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/builder"
	"github.com/novalabs/novawallet/internal/pipeline"
	"github.com/novalabs/novawallet/internal/registry"
)

var lamportsPerSol = decimal.New(1, 9)

var (
	payMemoFlag string
	payMintFlag string
)

var payCmd = &cobra.Command{
	Use:   "pay <to> <amount> [<to> <amount> ...]",
	Short: "Send SOL (or a token with --mint) to one or more recipients",
	Long: `Send a payment. <to> is a contact alias or an address; <amount> is in
SOL (or whole token units with --mint). All recipients go out in a single
approval.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected <to> <amount> pairs")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		var payees []builder.Payee
		for i := 0; i < len(args); i += 2 {
			to, err := resolveRecipient(w.reg, args[i])
			if err != nil {
				return err
			}
			lamports, err := parseAmount(args[i+1])
			if err != nil {
				return err
			}
			payees = append(payees, builder.Payee{To: to, Amount: lamports, Memo: payMemoFlag})
		}

		pay := builder.Payment{Payees: payees}
		if payMintFlag != "" {
			mint, err := solana.PublicKeyFromBase58(payMintFlag)
			if err != nil {
				return fmt.Errorf("invalid mint: %w", err)
			}
			pay.Mint = &mint
		}

		sess, err := w.openSession()
		if err != nil {
			return err
		}
		return pipeline.New(sess).SubmitPayment(cmd.Context(), pay)
	},
}

// resolveRecipient turns a contact alias or raw address into a chain key.
func resolveRecipient(reg *registry.Registry, arg string) (solana.PublicKey, error) {
	address := arg
	for _, c := range reg.Contacts() {
		if c.Alias == arg {
			address = c.Address
			break
		}
	}
	pub, err := account.DecodeAddress(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("recipient %q: %w", arg, err)
	}
	return solana.PublicKeyFromBytes(pub), nil
}

// parseAmount converts a decimal SOL amount to lamports, rejecting values
// too precise to represent.
func parseAmount(s string) (uint64, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if amount.IsNegative() || amount.IsZero() {
		return 0, fmt.Errorf("amount must be positive")
	}
	lamports := amount.Mul(lamportsPerSol)
	if !lamports.IsInteger() {
		return 0, fmt.Errorf("amount %s is below one lamport of precision", s)
	}
	return uint64(lamports.IntPart()), nil
}

func init() {
	payCmd.Flags().StringVar(&payMemoFlag, "memo", "", "memo attached to each transfer (max 8 bytes)")
	payCmd.Flags().StringVar(&payMintFlag, "mint", "", "SPL token mint; omit to send SOL")
}
