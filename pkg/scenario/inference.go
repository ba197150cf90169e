package scenario

import (
	"context"
	"fmt"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
)

// requestTokens returns the simulated input and output sizes of request i.
func requestTokens(i int) (input, output int) {
	return 64 + (i*13)%200, 32 + (i*7)%100
}

// inferenceMetering meters a burst of 20 prediction requests.
func inferenceMetering(ctx context.Context, env Env, r *check.Result) error {
	params := drip.RecordRunParams{
		CustomerID: env.CustomerID,
		Workflow:   "glades-inference",
		Status:     drip.RunCompleted,
		Metadata: map[string]string{
			"model_name":    "play2train-ffn-v3",
			"model_version": "v3.2-epoch9",
			"deployment":    "production",
		},
	}

	predictions, totalTokens := 0, 0
	for i := 1; i <= 20; i++ {
		input, output := requestTokens(i)
		tokens := input + output
		totalTokens += tokens
		predictions++

		params.Events = append(params.Events, drip.RecordRunEvent{
			EventType: "inference.prediction",
			Quantity:  float64(tokens),
			Units:     "tokens",
			CostUnits: float64(tokens) * inferenceRate,
			Metadata: map[string]string{
				"request_id":    fmt.Sprintf("req-%d", i),
				"input_tokens":  itoa(input),
				"output_tokens": itoa(output),
			},
		})
	}

	params.Events = append(params.Events, drip.RecordRunEvent{
		EventType:   "inference.batch_complete",
		Quantity:    float64(predictions),
		Units:       "predictions",
		Description: fmt.Sprintf("Batch of %d predictions", predictions),
		Metadata: map[string]string{
			"total_tokens": itoa(totalTokens),
			"avg_tokens":   itoa(totalTokens / predictions),
		},
	})

	res, err := env.Client.RecordRun(ctx, params)
	if err != nil {
		return err
	}

	r.AddDetailf("Run ID: %s, Events: %d", res.Run.ID, res.Events.Created)
	r.Passf("%d predictions, %d tokens, cost=%s", predictions, totalTokens, res.TotalCostUnits)
	return nil
}

// batchInference scores a 1000-item dataset in ten batches.
func batchInference(ctx context.Context, env Env, r *check.Result) error {
	params := drip.RecordRunParams{
		CustomerID: env.CustomerID,
		Workflow:   "glades-batch-inference",
		Status:     drip.RunCompleted,
		Metadata: map[string]string{
			"model_name":   "play2train-ffn-v3.2",
			"dataset":      "user-test-set-2024",
			"dataset_size": "1000",
		},
	}

	const items = 100
	scored, totalTokens := 0, 0
	for batch := 1; batch <= 10; batch++ {
		tokens := items * 128
		scored += items
		totalTokens += tokens

		params.Events = append(params.Events, drip.RecordRunEvent{
			EventType:   "inference.batch",
			Quantity:    float64(tokens),
			Units:       "tokens",
			CostUnits:   float64(tokens) * batchInferenceRate,
			Description: fmt.Sprintf("Batch %d/10: %d items, %d tokens", batch, items, tokens),
			Metadata: map[string]string{
				"batch_number": itoa(batch),
				"items_scored": itoa(items),
				"accuracy":     f2(0.89 + 0.001*float64(batch)),
			},
		})
	}

	params.Events = append(params.Events, drip.RecordRunEvent{
		EventType:   "inference.evaluation",
		Quantity:    float64(scored),
		Units:       "predictions",
		Description: "Dataset scoring complete",
		Metadata: map[string]string{
			"total_items":              itoa(scored),
			"total_tokens":             itoa(totalTokens),
			"final_accuracy":           "0.899",
			"throughput_items_per_sec": "250",
		},
	})

	res, err := env.Client.RecordRun(ctx, params)
	if err != nil {
		return err
	}

	r.AddDetailf("Run ID: %s, Events: %d, Accuracy: 0.899", res.Run.ID, res.Events.Created)
	r.Passf("%d items scored in 10 batches, %d tokens, cost=%s", scored, totalTokens, res.TotalCostUnits)
	return nil
}
