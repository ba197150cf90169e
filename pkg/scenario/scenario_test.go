package scenario

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
	"github.com/vertti/dripcheck/pkg/testutil"
)

// recordingClient captures every RecordRun call on top of the mock defaults.
func recordingClient() (*testutil.MockClient, *[]drip.RecordRunParams) {
	var runs []drip.RecordRunParams
	client := &testutil.MockClient{}
	client.RecordRunFunc = func(_ context.Context, p drip.RecordRunParams) (*drip.RecordRunResult, error) {
		runs = append(runs, p)
		return &drip.RecordRunResult{
			Run:            drip.Run{ID: fmt.Sprintf("run_%d", len(runs)), WorkflowID: "wf_" + p.Workflow, WorkflowName: p.Workflow, Status: p.Status},
			Events:         drip.EventCounts{Created: len(p.Events)},
			TotalCostUnits: "0.01",
		}, nil
	}
	return client, &runs
}

func runOne(t *testing.T, n int, client Client) check.Result {
	t.Helper()
	checks := Checkers(Select(All(), n), Env{Client: client, CustomerID: "cust_1"})
	require.Len(t, checks, 1)
	results, err := check.RunAll(context.Background(), checks)
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 10)
	for i, s := range all {
		assert.Equal(t, i+1, s.Number)
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Description)
		assert.NotNil(t, s.run)
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 10},
		{1, 1},
		{10, 1},
		{11, 10},
		{-1, 10},
	}

	for _, tt := range tests {
		got := Select(All(), tt.n)
		assert.Len(t, got, tt.want, "Select(%d)", tt.n)
		if tt.want == 1 {
			assert.Equal(t, tt.n, got[0].Number)
		}
	}
}

func TestTrainingRun(t *testing.T) {
	client, runs := recordingClient()

	got := runOne(t, 1, client)
	require.True(t, got.OK(), got.Message)
	require.Len(t, *runs, 1)

	p := (*runs)[0]
	assert.Equal(t, "cust_1", p.CustomerID)
	assert.Equal(t, "glades-training", p.Workflow)
	require.Len(t, p.Events, 6)
	assert.Equal(t, "training.epoch", p.Events[0].EventType)
	assert.InDelta(t, 2048, p.Events[0].Quantity, 0)
	assert.InDelta(t, 10240, p.Events[4].Quantity, 0)
	assert.InDelta(t, 10240*trainingRate, p.Events[4].CostUnits, 1e-12)
	assert.Equal(t, "0.83", p.Events[4].Metadata["loss"])
	assert.Equal(t, "training.complete", p.Events[5].EventType)
	assert.InDelta(t, 30720, p.Events[5].Quantity, 0)
	assert.Contains(t, got.Message, "6 events, 30720 tokens tracked")
}

func TestCheckpointTracking(t *testing.T) {
	client, runs := recordingClient()

	got := runOne(t, 2, client)
	require.True(t, got.OK())

	events := (*runs)[0].Events
	require.Len(t, events, 12)
	checkpoints := 0
	for i, e := range events {
		if e.EventType == "model.checkpoint" {
			checkpoints++
			assert.Equal(t, "training.epoch", events[i-1].EventType)
			assert.Equal(t, events[i-1].Metadata["loss"], e.Metadata["loss_at_save"])
		}
	}
	assert.Equal(t, 3, checkpoints)
	assert.Equal(t, "checkpoints/ffn-v3.2-epoch9.bin", events[11].Metadata["checkpoint_path"])
	assert.Equal(t, "12 events (9 epochs + 3 checkpoints)", got.Message)
}

func TestCheckpointLoss(t *testing.T) {
	assert.Equal(t, "2.15", f2(checkpointLoss(1)))
	assert.Equal(t, "0.65", f2(checkpointLoss(9)))
}

func TestPerUserAttribution(t *testing.T) {
	var sent []drip.TrackUsageParams
	client := &testutil.MockClient{TrackUsageFunc: func(_ context.Context, p drip.TrackUsageParams) (*drip.UsageResult, error) {
		sent = append(sent, p)
		return &drip.UsageResult{Success: true, UsageEventID: "evt_" + p.Metadata["platform_user"]}, nil
	}}

	got := runOne(t, 3, client)
	require.True(t, got.OK())
	require.Len(t, sent, 3)
	assert.Equal(t, "alice_gamer", sent[0].Metadata["platform_user"])
	assert.InDelta(t, 15000, sent[2].Quantity, 0)
	for _, p := range sent {
		assert.Equal(t, "cust_1", p.CustomerID)
		assert.Equal(t, "ml_training_tokens", p.Meter)
	}
	assert.True(t, testutil.ContainsDetail(got.Details, "bob_trainer -> evt_bob_trainer"))
}

func TestFailedTraining(t *testing.T) {
	client, runs := recordingClient()

	got := runOne(t, 4, client)
	require.True(t, got.OK(), "a recorded failure is a passing scenario")

	p := (*runs)[0]
	assert.Equal(t, drip.RunFailed, p.Status)
	assert.Equal(t, "DIVERGENCE_DETECTED", p.ErrorCode)
	require.Len(t, p.Events, 4)
	assert.Equal(t, "training.error", p.Events[3].EventType)
	assert.Equal(t, "5.82", p.Events[2].Metadata["loss"])
}

func TestModelComparison(t *testing.T) {
	client, runs := recordingClient()

	got := runOne(t, 5, client)
	require.True(t, got.OK())
	require.Len(t, *runs, 3)

	wantEvents := []int{11, 9, 7}
	for i, p := range *runs {
		assert.Equal(t, "arch-benchmark-001", p.Metadata["comparison_group"])
		assert.Len(t, p.Events, wantEvents[i], p.Metadata["model_name"])
	}
	assert.Len(t, got.Details, 3)
}

func TestIncrementalRun(t *testing.T) {
	var emitted []drip.EmitEventParams
	client, runs := recordingClient()
	client.StartRunFunc = func(_ context.Context, p drip.StartRunParams) (*drip.Run, error) {
		assert.Equal(t, "wf_glades-realtime-training", p.WorkflowID)
		return &drip.Run{ID: "run_live", Status: drip.RunRunning}, nil
	}
	client.EmitEventFunc = func(_ context.Context, p drip.EmitEventParams) (*drip.EventResult, error) {
		emitted = append(emitted, p)
		return &drip.EventResult{ID: fmt.Sprintf("evt_%d", len(emitted))}, nil
	}
	client.EndRunFunc = func(_ context.Context, runID string, p drip.EndRunParams) (*drip.EndRunResult, error) {
		assert.Equal(t, "run_live", runID)
		assert.Equal(t, drip.RunCompleted, p.Status)
		return &drip.EndRunResult{ID: runID, DurationMs: 840, EventCount: 5}, nil
	}

	got := runOne(t, 6, client)
	require.True(t, got.OK(), got.Message)

	assert.Len(t, *runs, 2)
	assert.Equal(t, []string{"RecordRun", "RecordRun", "StartRun", "EmitEvent", "EmitEvent", "EmitEvent", "EmitEvent", "EmitEvent", "EndRun"}, client.Calls)
	require.Len(t, emitted, 5)
	assert.Equal(t, "incr-epoch-run_live-1", emitted[0].IdempotencyKey)
	assert.Equal(t, "incr-ckpt-run_live", emitted[4].IdempotencyKey)
	assert.Equal(t, "Lifecycle complete: start -> 5 events -> end (840ms run)", got.Message)
}

func TestInferenceMetering(t *testing.T) {
	client, runs := recordingClient()

	got := runOne(t, 7, client)
	require.True(t, got.OK())

	want := 0
	for i := 1; i <= 20; i++ {
		in, out := requestTokens(i)
		want += in + out
	}

	events := (*runs)[0].Events
	require.Len(t, events, 21)
	assert.InDelta(t, 20, events[20].Quantity, 0)
	assert.Equal(t, fmt.Sprint(want), events[20].Metadata["total_tokens"])
	assert.Contains(t, got.Message, fmt.Sprintf("20 predictions, %d tokens", want))
}

func TestRequestTokens(t *testing.T) {
	in, out := requestTokens(1)
	assert.Equal(t, 77, in)
	assert.Equal(t, 39, out)

	in, out = requestTokens(20)
	assert.Equal(t, 124, in)
	assert.Equal(t, 72, out)
}

func TestIdempotency(t *testing.T) {
	old := newIdempotencyKey
	newIdempotencyKey = func() string { return "idem-test-fixed" }
	t.Cleanup(func() { newIdempotencyKey = old })

	tests := []struct {
		name     string
		ids      []string
		wantPass bool
		wantMsg  string
	}{
		{"deduplicated", []string{"evt_a", "evt_a"}, true, "Sent same key twice: IDs match (dedup works)"},
		{"not deduplicated", []string{"evt_a", "evt_b"}, false, "Sent same key twice: IDs DIFFER (dedup BROKEN!)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys []string
			calls := 0
			client := &testutil.MockClient{TrackUsageFunc: func(_ context.Context, p drip.TrackUsageParams) (*drip.UsageResult, error) {
				keys = append(keys, p.IdempotencyKey)
				id := tt.ids[calls]
				calls++
				return &drip.UsageResult{Success: true, UsageEventID: id}, nil
			}}

			got := runOne(t, 8, client)
			assert.Equal(t, tt.wantPass, got.OK())
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, []string{"idem-test-fixed", "idem-test-fixed"}, keys)
			assert.True(t, testutil.ContainsDetail(got.Details, "Key: idem-test-fixed"))
		})
	}
}

func TestIdempotencyKeyFormat(t *testing.T) {
	a, b := newIdempotencyKey(), newIdempotencyKey()
	assert.Regexp(t, `^idem-test-[0-9a-f-]{36}$`, a)
	assert.NotEqual(t, a, b)
}

func TestHyperparamSweep(t *testing.T) {
	client, runs := recordingClient()

	got := runOne(t, 9, client)
	require.True(t, got.OK())
	require.Len(t, *runs, 6)

	failed := 0
	for _, p := range *runs {
		if p.Status == drip.RunFailed {
			failed++
			assert.Equal(t, "0.10", p.Metadata["learning_rate"])
			assert.Equal(t, "32", p.Metadata["batch_size"])
			assert.Len(t, p.Events, 3)
			continue
		}
		assert.Len(t, p.Events, 5)
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, "6 configs tested (3 LRs x 2 batch sizes), 1 diverged, total cost=0.0600", got.Message)
}

func TestBatchInference(t *testing.T) {
	client, runs := recordingClient()

	got := runOne(t, 10, client)
	require.True(t, got.OK())

	events := (*runs)[0].Events
	require.Len(t, events, 11)
	assert.InDelta(t, 12800, events[0].Quantity, 0)
	assert.Equal(t, "0.90", events[9].Metadata["accuracy"])
	assert.Equal(t, "inference.evaluation", events[10].EventType)
	assert.InDelta(t, 1000, events[10].Quantity, 0)
	assert.Contains(t, got.Message, "1000 items scored in 10 batches, 128000 tokens")
}

func TestAPIErrorFailsOnlyThatScenario(t *testing.T) {
	client, _ := recordingClient()
	client.TrackUsageFunc = func(context.Context, drip.TrackUsageParams) (*drip.UsageResult, error) {
		return nil, &drip.Error{StatusCode: 404, Message: "customer not found"}
	}

	checks := Checkers(All(), Env{Client: client, CustomerID: "cust_1"})
	results, err := check.RunAll(context.Background(), checks)
	require.NoError(t, err)
	require.Len(t, results, 10)

	for _, r := range results {
		switch r.Number {
		case 3, 8:
			assert.False(t, r.OK(), "scenario %d", r.Number)
			assert.Equal(t, "Failed: HTTP 404: customer not found", r.Message)
		default:
			assert.True(t, r.OK(), "scenario %d: %s", r.Number, r.Message)
		}
	}
}

func TestPartialDetailsKeptOnFailure(t *testing.T) {
	calls := 0
	client := &testutil.MockClient{TrackUsageFunc: func(context.Context, drip.TrackUsageParams) (*drip.UsageResult, error) {
		calls++
		if calls == 2 {
			return nil, &drip.Error{StatusCode: 500, Message: "boom"}
		}
		return &drip.UsageResult{Success: true, UsageEventID: "evt_ok"}, nil
	}}

	got := runOne(t, 3, client)
	assert.False(t, got.OK())
	assert.Equal(t, []string{"alice_gamer -> evt_ok"}, got.Details)
}

func TestNonAPIErrorIsFatal(t *testing.T) {
	client, _ := recordingClient()
	client.TrackUsageFunc = func(context.Context, drip.TrackUsageParams) (*drip.UsageResult, error) {
		return nil, context.DeadlineExceeded
	}

	checks := Checkers(All(), Env{Client: client, CustomerID: "cust_1"})
	results, err := check.RunAll(context.Background(), checks)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, results, 2)
}
