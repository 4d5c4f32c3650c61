package main

import (
	"github.com/spf13/cobra"
)

var (
	// configPath is the --config flag shared by start and init
	configPath string

	// version is overridden at build time with -ldflags "-X main.version=..."
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "deckd",
	Short: "deckd - slide deck generation backend",
	Long: `deckd serves the slide deck generation API over a minimal HTTP/1.1 server.
Each connection carries exactly one request; handlers run on a bounded worker
pool and reach the relational store through a fixed-size connection pool.`,
	Version:       version,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("deckd version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: $XDG_CONFIG_HOME/deckd/config.yaml)")
}
