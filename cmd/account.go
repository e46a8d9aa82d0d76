package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create <alias>",
	Short: "Create a new account from a fresh mnemonic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		acct, mnemonic, err := w.reg.CreateAccount(cmd.Context(), args[0], cfg.NetType())
		if err != nil {
			return err
		}

		fmt.Printf("Created account %q: %s\n\n", acct.Alias, acct.Address)
		fmt.Println("Recovery phrase — write it down, it is shown only once:")
		fmt.Printf("\n  %s\n\n", mnemonic)
		return nil
	},
}

var accountImportCmd = &cobra.Command{
	Use:   "import <alias>",
	Short: "Import an account from a recovery phrase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		mnemonic, err := readMnemonic()
		if err != nil {
			return err
		}

		acct, err := w.reg.ImportAccount(cmd.Context(), args[0], mnemonic, cfg.NetType())
		if err != nil {
			return err
		}
		fmt.Printf("Imported account %q: %s\n", acct.Alias, acct.Address)
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts on the current network",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		accounts := w.reg.AccountsForNet(cfg.NetType())
		if len(accounts) == 0 {
			fmt.Println("No accounts. Create one with: nova account create <alias>")
			return nil
		}

		def := w.reg.DefaultAddress()
		for _, a := range accounts {
			marker := " "
			if a.Address == def {
				marker = "*"
			}
			fmt.Printf("%s %-16s %s\n", marker, a.Alias, a.Address)
		}
		return nil
	},
}

var accountUseCmd = &cobra.Command{
	Use:   "use <address>",
	Short: "Set the default account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.reg.UpdateDefaultAccountAddress(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Default account set to %s\n", args[0])
		return nil
	},
}

var signOutAllFlag bool

var accountSignOutCmd = &cobra.Command{
	Use:   "signout [address]",
	Short: "Remove an account and its keys, or everything with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		if signOutAllFlag {
			if err := w.reg.SignOut(cmd.Context(), nil); err != nil {
				return err
			}
			fmt.Println("Signed out. All local accounts, contacts and keys removed.")
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("address required (or --all)")
		}
		acct, ok := w.reg.Accounts()[args[0]]
		if !ok {
			return fmt.Errorf("unknown account %s", args[0])
		}
		if err := w.reg.SignOut(cmd.Context(), acct); err != nil {
			return err
		}
		fmt.Printf("Signed out %s\n", args[0])
		return nil
	},
}

// readMnemonic prompts for a recovery phrase without echoing it.
func readMnemonic() (string, error) {
	fmt.Print("Recovery phrase: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading phrase: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func init() {
	accountSignOutCmd.Flags().BoolVar(&signOutAllFlag, "all", false, "sign out of every account")
	accountCmd.AddCommand(
		accountCreateCmd,
		accountImportCmd,
		accountListCmd,
		accountUseCmd,
		accountSignOutCmd,
	)
}
