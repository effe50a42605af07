// Package cmd provides the CLI commands for the storefront.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/logging"
)

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Operator tools for the storefront cart service",
	Long: `storefront inspects the product catalog, prices configurations the
way the cart does and maintains the cart snapshot storage.

Examples:
  storefront catalog --type bracelet
  storefront quote --type bracelet --product b-classic --charms star,heart,moon,sun,flower
  storefront quote --type matchingSet --product ms-bff --set-charms ms-bff-a=star --set-charms ms-bff-b=moon,sun
  storefront storage purge`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(storageCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfg = config.Load()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "storefront version %s\n", version)
	},
}
