package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
	"github.com/vertti/dripcheck/pkg/harness"
	"github.com/vertti/dripcheck/pkg/healthcheck"
	"github.com/vertti/dripcheck/pkg/output"
)

const ruleWidth = 42

var report = harness.Report{
	Noun:  "checks",
	Suite: "health",
	Width: ruleWidth,
}

func runHealth(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if !flags.JSON {
		output.PrintBanner(out, "Drip Go SDK Health Check v"+drip.Version, "", ruleWidth)
	}

	env, err := harness.Bootstrap(flags)
	if err != nil {
		return err
	}
	defer env.Close()
	env.PrintContext(out, flags)

	checks := healthcheck.Suite(env.Client, env.Config.CustomerID, quick)
	if !quick && only != "" {
		if checks, err = healthcheck.Only(checks, strings.Split(only, ",")); err != nil {
			return err
		}
	}
	results, err := check.RunAll(cmd.Context(), checks)
	if err != nil {
		return err
	}

	if !flags.JSON {
		fmt.Fprintln(out)
	}
	return report.Write(out, results, flags)
}
