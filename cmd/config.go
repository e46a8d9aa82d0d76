package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change persisted settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("network:  %s\n", cfg.Network)
		fmt.Printf("rpc:      %s\n", cfg.RPC())
		fmt.Printf("data dir: %s\n", cfg.Dir())
		return nil
	},
}

var configSetNetworkCmd = &cobra.Command{
	Use:   "set-network <mainnet|testnet>",
	Short: "Persist the network selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "mainnet", "testnet":
		default:
			return fmt.Errorf("unknown network %q (want mainnet or testnet)", args[0])
		}
		cfg.Network = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Network set to %s\n", args[0])
		return nil
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <url>",
	Short: "Persist a custom RPC endpoint (empty to reset)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.RPCURL = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("RPC endpoint set to %s\n", cfg.RPC())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetNetworkCmd, configSetRPCCmd)
}
