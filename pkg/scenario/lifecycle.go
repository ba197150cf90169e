package scenario

import (
	"context"
	"fmt"
	"math"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
)

const realtimeWorkflow = "glades-realtime-training"

func realtimeLoss(epoch int) float64 {
	return 2.0 * math.Exp(-0.2*float64(epoch))
}

// resolveWorkflowID makes sure the realtime workflow exists and returns its
// id. RecordRun creates workflows by slug; StartRun needs the id.
func resolveWorkflowID(ctx context.Context, env Env) (string, error) {
	if _, err := env.Client.RecordRun(ctx, drip.RecordRunParams{
		CustomerID: env.CustomerID,
		Workflow:   realtimeWorkflow,
		Status:     drip.RunCompleted,
		Events: []drip.RecordRunEvent{{
			EventType:   "workflow.init",
			Quantity:    1,
			Description: "Workflow bootstrap for incremental API test",
		}},
	}); err != nil {
		return "", err
	}

	probe, err := env.Client.RecordRun(ctx, drip.RecordRunParams{
		CustomerID: env.CustomerID,
		Workflow:   realtimeWorkflow,
		Status:     drip.RunCompleted,
		Events:     []drip.RecordRunEvent{{EventType: "workflow.probe", Quantity: 1}},
	})
	if err != nil {
		return "", err
	}
	return probe.Run.WorkflowID, nil
}

// incrementalRun drives the start, emit, end lifecycle the way a live
// training monitor would.
func incrementalRun(ctx context.Context, env Env, r *check.Result) error {
	workflowID, err := resolveWorkflowID(ctx, env)
	if err != nil {
		return err
	}

	run, err := env.Client.StartRun(ctx, drip.StartRunParams{
		CustomerID: env.CustomerID,
		WorkflowID: workflowID,
		Metadata: map[string]string{
			"model_name": "play2train-live-v1",
			"framework":  "glades-ml",
			"mode":       "incremental",
		},
	})
	if err != nil {
		return err
	}
	r.AddDetailf("Run started: %s", run.ID)

	emitted := 0
	for epoch := 1; epoch <= 4; epoch++ {
		loss := f2(realtimeLoss(epoch))
		evt, err := env.Client.EmitEvent(ctx, drip.EmitEventParams{
			RunID:          run.ID,
			EventType:      "training.epoch",
			Quantity:       1536,
			Units:          "tokens",
			CostUnits:      1536 * trainingRate,
			IdempotencyKey: fmt.Sprintf("incr-epoch-%s-%d", run.ID, epoch),
			Description:    fmt.Sprintf("Epoch %d: 1536 tokens, loss=%s", epoch, loss),
			Metadata: map[string]string{
				"epoch": itoa(epoch),
				"loss":  loss,
			},
		})
		if err != nil {
			return err
		}
		emitted++

		dup := ""
		if evt.IsDuplicate {
			dup = " (dup)"
		}
		r.AddDetailf("  Event %d: %s%s", epoch, evt.ID, dup)
	}

	if _, err := env.Client.EmitEvent(ctx, drip.EmitEventParams{
		RunID:          run.ID,
		EventType:      "model.checkpoint",
		Quantity:       1,
		Units:          "saves",
		Description:    "Mid-training checkpoint",
		IdempotencyKey: "incr-ckpt-" + run.ID,
		Metadata:       map[string]string{"checkpoint_path": "live/play2train-v1-mid.bin"},
	}); err != nil {
		return err
	}
	emitted++

	end, err := env.Client.EndRun(ctx, run.ID, drip.EndRunParams{
		Status: drip.RunCompleted,
		Metadata: map[string]string{
			"final_loss":   "1.10",
			"total_epochs": "4",
		},
	})
	if err != nil {
		return err
	}
	r.AddDetailf("Run ended: duration=%dms, events=%d", end.DurationMs, end.EventCount)

	r.Passf("Lifecycle complete: start -> %d events -> end (%dms run)", emitted, end.DurationMs)
	return nil
}
