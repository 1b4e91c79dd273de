// Package cli wires the storefront modules behind cobra commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront - order pricing, inventory, promotions and segmentation",
	Long: `Storefront runs the catalog, inventory, promotion, segmentation and
order modules as one mono application behind a JSON HTTP API.

Use "serve" to run the application, "migrate" to create the schema and
"seed" to load a demo catalog with promo codes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a config file (default ./storefront.yaml, then /etc/storefront/)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
