package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/novalabs/novawallet/internal/config"
	"github.com/novalabs/novawallet/internal/telemetry"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/novalabs/novawallet/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
	testnet bool
	mainnet bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "nova",
	Short: "Nova wallet CLI",
	Long: `nova — manage wallet accounts and submit Solana transactions.

  Create and restore accounts, keep a contact book, send payments and
  collectables, and run Helium hotspot operations, all from the terminal.

Global flags --testnet and --mainnet override the configured network for
a single invocation. Without either flag the persisted network is used
(default: mainnet). Persist with: nova config set-network <network>`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.Network = "testnet"
		}
		if mainnet {
			cfg.Network = "mainnet"
		}
		if verbose {
			telemetry.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	if envDir := os.Getenv("NOVA_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.nova)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet instead of mainnet")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use mainnet instead of testnet")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		accountCmd,
		contactCmd,
		payCmd,
		balanceCmd,
		configCmd,
	)
}
