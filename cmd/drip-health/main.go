package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vertti/dripcheck/pkg/harness"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	quick bool
	only  string
	flags harness.Flags
)

var rootCmd = &cobra.Command{
	Use:   "drip-health",
	Short: "Health checks against the live Drip API",
	Long: `Runs connectivity and API checks against the live Drip API.

Environment variables:
  DRIP_API_KEY      Required. Your Drip API key.
  DRIP_API_URL      Optional. API base URL (default: production).
  TEST_CUSTOMER_ID  Optional. Existing customer ID to use for tests.`,
	Version:            Version,
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE:               runHealth,
}

func init() {
	rootCmd.Flags().BoolVar(&quick, "quick", false, "run connectivity checks only")
	rootCmd.Flags().StringVar(&only, "only", "", "run only the named checks (comma-separated, partial match)")
	flags.Register(rootCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		harness.PrintFatal(os.Stderr, err)
		os.Exit(1)
	}
}
