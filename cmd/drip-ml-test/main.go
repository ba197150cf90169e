package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vertti/dripcheck/pkg/harness"
	"github.com/vertti/dripcheck/pkg/scenario"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	scenarioNumber scenarioFlag
	flags          harness.Flags
)

var rootCmd = &cobra.Command{
	Use:   "drip-ml-test",
	Short: "ML training integration tests against the Drip API",
	Long: `ML training integration tests for the Drip Go SDK.
Simulates glades-ml / Play2Train training workflows.

Scenarios:
` + scenarioHelp(),
	Version:            Version,
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE:               runScenarios,
}

func init() {
	rootCmd.Flags().VarP(&scenarioNumber, "scenario", "s", "run a specific scenario (1-10)")
	flags.Register(rootCmd.Flags())
}

func scenarioHelp() string {
	var b strings.Builder
	for _, s := range scenario.All() {
		fmt.Fprintf(&b, "  %-3d %s\n", s.Number, s.Description)
	}
	return b.String()
}

func main() {
	rootCmd.SetArgs(trimDanglingScenario(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		harness.PrintFatal(os.Stderr, err)
		os.Exit(1)
	}
}
