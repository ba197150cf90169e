package scenario

import (
	"context"
	"fmt"
	"math"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
)

func epochEvent(epoch, tokens int) drip.RecordRunEvent {
	return drip.RecordRunEvent{
		EventType: "training.epoch",
		Quantity:  float64(tokens),
		Units:     "tokens",
		CostUnits: float64(tokens) * trainingRate,
		Metadata:  map[string]string{"epoch": itoa(epoch)},
	}
}

// trainingRun records five epochs over a growing dataset plus a summary.
func trainingRun(ctx context.Context, env Env, r *check.Result) error {
	params := drip.RecordRunParams{
		CustomerID: env.CustomerID,
		Workflow:   "glades-training",
		Status:     drip.RunCompleted,
		Metadata: map[string]string{
			"model_name":    "play2train-ffn-v3",
			"framework":     "glades-ml",
			"architecture":  "feed_forward",
			"hidden_layers": "3",
			"learning_rate": "0.001",
		},
	}

	losses := []float64{2.31, 1.87, 1.42, 1.08, 0.83}
	totalTokens := 0
	for epoch := 1; epoch <= len(losses); epoch++ {
		tokens := 2048 * epoch
		totalTokens += tokens
		loss := f2(losses[epoch-1])

		evt := epochEvent(epoch, tokens)
		evt.Metadata["loss"] = loss
		evt.Metadata["batch_size"] = "64"
		evt.Description = fmt.Sprintf("Epoch %d/%d: %d tokens, loss=%s", epoch, len(losses), tokens, loss)
		params.Events = append(params.Events, evt)
	}

	params.Events = append(params.Events, drip.RecordRunEvent{
		EventType:   "training.complete",
		Quantity:    float64(totalTokens),
		Units:       "tokens",
		Description: "Training complete: 5 epochs, final loss=0.83",
		Metadata: map[string]string{
			"total_epochs": "5",
			"final_loss":   "0.83",
			"total_tokens": itoa(totalTokens),
		},
	})

	res, err := env.Client.RecordRun(ctx, params)
	if err != nil {
		return err
	}

	r.AddDetailf("Run ID: %s, Workflow: %s, Cost: %s", res.Run.ID, res.Run.WorkflowName, res.TotalCostUnits)
	r.Passf("%s | %d events, %d tokens tracked", res.Summary, res.Events.Created, totalTokens)
	return nil
}

// checkpointLoss is the simulated loss curve for the checkpoint scenario.
func checkpointLoss(epoch int) float64 {
	return 2.5 * math.Exp(-0.15*float64(epoch))
}

// checkpointTracking records nine epochs with a checkpoint every third.
func checkpointTracking(ctx context.Context, env Env, r *check.Result) error {
	params := drip.RecordRunParams{
		CustomerID: env.CustomerID,
		Workflow:   "glades-checkpoint-training",
		Status:     drip.RunCompleted,
		Metadata: map[string]string{
			"model_name":          "play2train-ffn-v3.2",
			"checkpoint_interval": "every_3_epochs",
		},
	}

	for epoch := 1; epoch <= 9; epoch++ {
		loss := f2(checkpointLoss(epoch))

		evt := epochEvent(epoch, 4096)
		evt.Metadata["loss"] = loss
		params.Events = append(params.Events, evt)

		if epoch%3 != 0 {
			continue
		}
		params.Events = append(params.Events, drip.RecordRunEvent{
			EventType:   "model.checkpoint",
			Quantity:    1,
			Units:       "saves",
			CostUnits:   0.005,
			Description: fmt.Sprintf("Checkpoint saved at epoch %d (loss=%s)", epoch, loss),
			Metadata: map[string]string{
				"checkpoint_path": fmt.Sprintf("checkpoints/ffn-v3.2-epoch%d.bin", epoch),
				"epoch":           itoa(epoch),
				"loss_at_save":    loss,
				"model_size_mb":   "24",
			},
		})
	}

	res, err := env.Client.RecordRun(ctx, params)
	if err != nil {
		return err
	}

	r.AddDetailf("Run ID: %s, Cost: %s", res.Run.ID, res.TotalCostUnits)
	r.Passf("%d events (9 epochs + 3 checkpoints)", res.Events.Created)
	return nil
}

// failedTraining records a run that diverged after three epochs.
func failedTraining(ctx context.Context, env Env, r *check.Result) error {
	params := drip.RecordRunParams{
		CustomerID:   env.CustomerID,
		Workflow:     "glades-training",
		Status:       drip.RunFailed,
		ErrorMessage: "Training diverged: loss became NaN at epoch 4",
		ErrorCode:    "DIVERGENCE_DETECTED",
		Metadata: map[string]string{
			"model_name":    "experimental-deep-ffn",
			"framework":     "glades-ml",
			"learning_rate": "0.1",
		},
	}

	losses := []float64{2.31, 2.45, 5.82}
	for epoch := 1; epoch <= len(losses); epoch++ {
		evt := epochEvent(epoch, 2048)
		evt.Metadata["loss"] = f2(losses[epoch-1])
		params.Events = append(params.Events, evt)
	}

	params.Events = append(params.Events, drip.RecordRunEvent{
		EventType:   "training.error",
		Quantity:    1,
		Description: "Loss diverged to NaN at epoch 4, aborting",
		Metadata: map[string]string{
			"last_valid_loss": "5.82",
			"epoch":           "4",
			"cause":           "learning_rate_too_high",
		},
	})

	res, err := env.Client.RecordRun(ctx, params)
	if err != nil {
		return err
	}

	r.AddDetailf("Run ID: %s, Status: %s, Cost: %s", res.Run.ID, res.Run.Status, res.TotalCostUnits)
	r.Passf("Failed run recorded: %d events (3 epochs + error)", res.Events.Created)
	return nil
}

type modelConfig struct {
	name           string
	layers         int
	tokensPerEpoch int
	epochs         int
	finalLoss      float64
}

var architectures = []modelConfig{
	{"ffn-small", 2, 1024, 10, 1.21},
	{"ffn-medium", 4, 2048, 8, 0.87},
	{"ffn-large", 8, 4096, 6, 0.64},
}

// modelComparison trains three architectures in one comparison group.
func modelComparison(ctx context.Context, env Env, r *check.Result) error {
	runs := 0
	for _, m := range architectures {
		params := drip.RecordRunParams{
			CustomerID: env.CustomerID,
			Workflow:   "glades-arch-compare",
			Status:     drip.RunCompleted,
			Metadata: map[string]string{
				"model_name":       m.name,
				"hidden_layers":    itoa(m.layers),
				"comparison_group": "arch-benchmark-001",
			},
		}

		totalTokens := 0
		for e := 1; e <= m.epochs; e++ {
			totalTokens += m.tokensPerEpoch
			params.Events = append(params.Events, epochEvent(e, m.tokensPerEpoch))
		}
		params.Events = append(params.Events, drip.RecordRunEvent{
			EventType:   "training.evaluation",
			Quantity:    1,
			Description: fmt.Sprintf("%s: final_loss=%s", m.name, f2(m.finalLoss)),
			Metadata: map[string]string{
				"final_loss":   f2(m.finalLoss),
				"total_tokens": itoa(totalTokens),
			},
		})

		res, err := env.Client.RecordRun(ctx, params)
		if err != nil {
			return err
		}
		runs++
		r.AddDetailf("%s: %d events, %d tokens, cost=%s", m.name, res.Events.Created, totalTokens, res.TotalCostUnits)
	}

	r.Passf("%d model architectures compared: small(2L), medium(4L), large(8L)", runs)
	return nil
}

// sweepDiverges reports which grid points blow up: the highest learning
// rate with the smallest batch.
func sweepDiverges(lr float64, batchSize int) bool {
	return lr >= 0.1 && batchSize == 32
}

// hyperparamSweep grid-searches learning rate and batch size, one run each.
func hyperparamSweep(ctx context.Context, env Env, r *check.Result) error {
	learningRates := []float64{0.1, 0.01, 0.001}
	batchSizes := []int{32, 64}

	configs, diverged := 0, 0
	var totalCost float64
	for _, lr := range learningRates {
		for _, bs := range batchSizes {
			configs++

			params := drip.RecordRunParams{
				CustomerID: env.CustomerID,
				Workflow:   "glades-hyperparam-sweep",
				Status:     drip.RunCompleted,
				Metadata: map[string]string{
					"sweep_id":      "sweep-001",
					"learning_rate": f2(lr),
					"batch_size":    itoa(bs),
					"config_index":  itoa(configs),
				},
			}

			epochs := 5
			if sweepDiverges(lr, bs) {
				diverged++
				epochs = 3
				params.Status = drip.RunFailed
				params.ErrorMessage = "Diverged at epoch 3"
				params.ErrorCode = "DIVERGENCE"
			}

			for e := 1; e <= epochs; e++ {
				params.Events = append(params.Events, epochEvent(e, bs*32))
			}

			res, err := env.Client.RecordRun(ctx, params)
			if err != nil {
				return err
			}

			totalCost += res.TotalCostUnits.Float()
			outcome := "OK"
			if params.Status == drip.RunFailed {
				outcome = "FAILED"
			}
			r.AddDetailf("lr=%s bs=%d: %s cost=%s", f2(lr), bs, outcome, res.TotalCostUnits)
		}
	}

	r.Passf("%d configs tested (%d LRs x %d batch sizes), %d diverged, total cost=%.4f",
		configs, len(learningRates), len(batchSizes), diverged, totalCost)
	return nil
}
