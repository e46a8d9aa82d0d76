package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/chain"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the SOL balance of an account (default: current account)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		address := ""
		if len(args) == 1 {
			address = args[0]
		} else if cur := w.reg.Current(); cur != nil {
			address = cur.Address
		}
		if address == "" {
			return fmt.Errorf("no account: create one or pass an address")
		}

		pub, err := account.DecodeAddress(address)
		if err != nil {
			return fmt.Errorf("address %q: %w", address, err)
		}
		key := solana.PublicKeyFromBytes(pub)

		conn := chain.Dial(cfg.RPC())
		lamports, err := conn.Balance(cmd.Context(), key)
		if err != nil {
			return err
		}

		sol := decimal.New(int64(lamports), 0).Div(lamportsPerSol)
		fmt.Printf("%s  %s SOL\n", address, sol)
		return nil
	},
}
