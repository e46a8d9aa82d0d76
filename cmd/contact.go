package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novalabs/novawallet/internal/account"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage the contact book",
}

var contactAddCmd = &cobra.Command{
	Use:   "add <alias> <address>",
	Short: "Add a contact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		c := &account.Account{Alias: args[0], Address: args[1]}
		if err := w.reg.AddContact(cmd.Context(), c); err != nil {
			return err
		}
		fmt.Printf("Contact %q added: %s\n", c.Alias, c.Address)
		return nil
	},
}

var contactEditCmd = &cobra.Command{
	Use:   "edit <alias> <address>",
	Short: "Rename an existing contact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		c := &account.Account{Alias: args[0], Address: args[1]}
		if err := w.reg.EditContact(cmd.Context(), c); err != nil {
			return err
		}
		fmt.Printf("Contact updated: %s\n", c.Address)
		return nil
	},
}

var contactRmCmd = &cobra.Command{
	Use:   "rm <address>",
	Short: "Remove a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.reg.DeleteContact(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Contact removed: %s\n", args[0])
		return nil
	},
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts on the current network",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWallet(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		contacts := w.reg.ContactsForNet(cfg.NetType())
		if len(contacts) == 0 {
			fmt.Println("No contacts.")
			return nil
		}
		for _, c := range contacts {
			fmt.Printf("%-16s %s\n", c.Alias, c.Address)
		}
		return nil
	},
}

func init() {
	contactCmd.AddCommand(
		contactAddCmd,
		contactEditCmd,
		contactRmCmd,
		contactListCmd,
	)
}
