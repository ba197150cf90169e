package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
	"github.com/vertti/dripcheck/pkg/harness"
	"github.com/vertti/dripcheck/pkg/output"
	"github.com/vertti/dripcheck/pkg/scenario"
)

const ruleWidth = 59

// ErrUnhealthy is returned when the pre-flight ping reports an unhealthy API.
var ErrUnhealthy = errors.New("API not healthy, aborting tests")

var report = harness.Report{
	Noun:     "scenarios",
	Suite:    "ml",
	Width:    ruleWidth,
	Separate: true,
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if !flags.JSON {
		output.PrintBanner(out,
			"Drip ML Training Integration Tests v"+drip.Version,
			"Simulating glades-ml / Play2Train training workflows",
			ruleWidth)
	}

	env, err := harness.Bootstrap(flags)
	if err != nil {
		return err
	}
	defer env.Close()
	env.PrintContext(out, flags)

	health, err := env.Client.Ping(ctx)
	if err != nil {
		return err
	}
	if !health.OK {
		return fmt.Errorf("%w (status: %s)", ErrUnhealthy, health.Status)
	}
	if !flags.JSON {
		output.Dimf(out, "API connected (%dms)", health.Latency.Milliseconds())
		fmt.Fprintln(out)
	}

	selected := scenario.Select(scenario.All(), int(scenarioNumber))
	checks := scenario.Checkers(selected, scenario.Env{
		Client:     env.Client,
		CustomerID: env.Config.CustomerID,
	})

	results, err := check.RunAll(ctx, checks)
	if err != nil {
		return err
	}

	return report.Write(out, results, flags)
}
