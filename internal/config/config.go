// Package config persists the wallet's local settings under ~/.nova.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/novalabs/novawallet/internal/account"
	"github.com/novalabs/novawallet/internal/chain"
)

const (
	defaultNetwork = "mainnet"

	configFile = "config.json"
)

// Config is the wallet's local settings. Zero values fall back to mainnet
// defaults at read time, so an empty file is a valid config.
type Config struct {
	// Network selects "mainnet" or "testnet".
	Network string `json:"network"`
	// RPCURL overrides the network's default RPC endpoint when set.
	RPCURL string `json:"rpcUrl,omitempty"`
	// JournalPath overrides where the submission journal lives.
	JournalPath string `json:"journalPath,omitempty"`

	configDir string
}

func defaults(dir string) *Config {
	return &Config{
		Network:   defaultNetwork,
		configDir: dir,
	}
}

// Load reads config from dir (or creates defaults). dir defaults to ~/.nova.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".nova")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.Network == "" {
		cfg.Network = defaultNetwork
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// NetType maps the configured network name to an address network.
func (c *Config) NetType() account.NetType {
	if c.Network == "testnet" {
		return account.NetTypeTest
	}
	return account.NetTypeMain
}

// RPC returns the endpoint to dial: the configured override, or the
// network's default.
func (c *Config) RPC() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	return chain.URLForNet(c.NetType())
}

// StorePath returns the path of the metadata database.
func (c *Config) StorePath() string {
	return filepath.Join(c.configDir, "wallet.db")
}

// Journal returns the path of the submission journal database.
func (c *Config) Journal() string {
	if c.JournalPath != "" {
		return c.JournalPath
	}
	return filepath.Join(c.configDir, "journal.db")
}
