package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blockberries/palletberry/config"
)

var (
	initChainID  string
	initOverride bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file to the path given by --config.

The default genesis funds alice with 100.

Example:
  palletberry init --chain-id mychain --config config.toml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initChainID, "chain-id", "palletberry-devnet-1", "chain ID")
	initCmd.Flags().BoolVar(&initOverride, "force", false, "override existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !initOverride {
		return fmt.Errorf("%s already exists; use --force to override", cfgFile)
	}

	cfg := config.DefaultConfig()
	cfg.Chain.ChainID = initChainID
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if err := config.WriteConfigFile(cfgFile, cfg); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized Palletberry configuration\n")
	fmt.Fprintf(out, "  Chain ID:    %s\n", cfg.Chain.ChainID)
	fmt.Fprintf(out, "  Config:      %s\n", cfgFile)
	fmt.Fprintf(out, "  gRPC:        %s\n", cfg.Server.ListenAddr)
	return nil
}
