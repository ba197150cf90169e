// Package scenario simulates machine-learning workloads against the Drip API:
// training runs, checkpoints, per-user attribution, failures, sweeps and
// inference metering. All synthetic values are derived from loop indices, so
// every run sends the same payloads apart from generated keys.
package scenario

import (
	"context"
	"strconv"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
)

// Client is the part of drip.Client the scenarios use.
type Client interface {
	TrackUsage(ctx context.Context, p drip.TrackUsageParams) (*drip.UsageResult, error)
	RecordRun(ctx context.Context, p drip.RecordRunParams) (*drip.RecordRunResult, error)
	StartRun(ctx context.Context, p drip.StartRunParams) (*drip.Run, error)
	EmitEvent(ctx context.Context, p drip.EmitEventParams) (*drip.EventResult, error)
	EndRun(ctx context.Context, runID string, p drip.EndRunParams) (*drip.EndRunResult, error)
}

// Env is what every scenario runs against.
type Env struct {
	Client     Client
	CustomerID string
}

// Scenario is one numbered workload.
type Scenario struct {
	Number      int
	Name        string
	Description string
	run         func(ctx context.Context, env Env, r *check.Result) error
}

// Cost per token, in cost units.
const (
	trainingRate       = 0.00001
	inferenceRate      = 0.000005
	batchInferenceRate = 0.000003
)

// All returns the ten scenarios in order.
func All() []Scenario {
	return []Scenario{
		{1, "Multi-Epoch Training Run", "Multi-epoch training run with token metering", trainingRun},
		{2, "Checkpoint / State Save Tracking", "Checkpoint / state save tracking", checkpointTracking},
		{3, "Per-User Usage Attribution", "Per-user usage attribution (3 platform users)", perUserAttribution},
		{4, "Failed Training Run (Divergence)", "Failed training run (divergence detection)", failedTraining},
		{5, "Multi-Model Architecture Comparison", "Multi-model architecture comparison", modelComparison},
		{6, "Incremental Run API (start/emit/end)", "Incremental run API (startRun/emitEvent/endRun)", incrementalRun},
		{7, "Inference / Prediction Metering", "Inference / prediction metering (20 requests)", inferenceMetering},
		{8, "Idempotency / Retry Safety", "Idempotency / retry safety (duplicate detection)", idempotency},
		{9, "Hyperparameter Sweep", "Hyperparameter sweep (6 configs, grid search)", hyperparamSweep},
		{10, "Batch Inference Job", "Batch inference job (1000 items scored)", batchInference},
	}
}

// Select returns the scenario numbered n, or all of them when n matches none.
func Select(all []Scenario, n int) []Scenario {
	for _, s := range all {
		if s.Number == n {
			return []Scenario{s}
		}
	}
	return all
}

// Checkers binds scenarios to env so they can be passed to check.RunAll.
func Checkers(list []Scenario, env Env) []check.Checker {
	checkers := make([]check.Checker, 0, len(list))
	for _, s := range list {
		checkers = append(checkers, &bound{scenario: s, env: env})
	}
	return checkers
}

type bound struct {
	scenario Scenario
	env      Env
}

func (b *bound) Run(ctx context.Context) (check.Result, error) {
	result := check.Result{Number: b.scenario.Number, Name: b.scenario.Name}
	if err := b.scenario.run(ctx, b.env, &result); err != nil {
		return result.FromError(err)
	}
	return result, nil
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
