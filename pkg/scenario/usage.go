package scenario

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
)

// newIdempotencyKey is swapped in tests.
var newIdempotencyKey = func() string {
	return "idem-test-" + uuid.NewString()
}

type platformUser struct {
	username string
	model    string
	tokens   int
}

var platformUsers = []platformUser{
	{"alice_gamer", "alice-custom-ffn", 3200},
	{"bob_trainer", "bob-reinforcement", 8500},
	{"carol_researcher", "carol-deep-net", 15000},
}

// perUserAttribution meters training tokens for three platform users. They
// share one customer and are told apart by metadata.
func perUserAttribution(ctx context.Context, env Env, r *check.Result) error {
	events := 0
	for _, u := range platformUsers {
		res, err := env.Client.TrackUsage(ctx, drip.TrackUsageParams{
			CustomerID:  env.CustomerID,
			Meter:       "ml_training_tokens",
			Quantity:    float64(u.tokens),
			Units:       "tokens",
			Description: fmt.Sprintf("Training by %s: %d tokens on %s", u.username, u.tokens, u.model),
			Metadata: map[string]string{
				"platform":      "play2train",
				"platform_user": u.username,
				"model_name":    u.model,
				"sdk":           "go",
			},
		})
		if err != nil {
			return err
		}
		events++
		r.AddDetailf("%s -> %s", u.username, res.UsageEventID)
	}

	r.Passf("%d users metered: alice(3.2k), bob(8.5k), carol(15k) tokens", events)
	return nil
}

// idempotency sends the same usage event twice under one key. It passes
// only when both calls return the same usage event id.
func idempotency(ctx context.Context, env Env, r *check.Result) error {
	key := newIdempotencyKey()

	params := drip.TrackUsageParams{
		CustomerID:     env.CustomerID,
		Meter:          "ml_training_tokens",
		Quantity:       5000,
		Units:          "tokens",
		IdempotencyKey: key,
		Description:    "Idempotency test: first send",
		Metadata:       map[string]string{"attempt": "1"},
	}
	first, err := env.Client.TrackUsage(ctx, params)
	if err != nil {
		return err
	}

	params.Description = "Idempotency test: retry (should dedup)"
	params.Metadata = map[string]string{"attempt": "2"}
	second, err := env.Client.TrackUsage(ctx, params)
	if err != nil {
		return err
	}

	r.AddDetailf("Key: %s", key)
	r.AddDetailf("  Call 1: %s", first.UsageEventID)
	r.AddDetailf("  Call 2: %s", second.UsageEventID)

	if first.UsageEventID != second.UsageEventID {
		r.Fail("Sent same key twice: IDs DIFFER (dedup BROKEN!)",
			fmt.Errorf("usage event ids differ: %s != %s", first.UsageEventID, second.UsageEventID))
		return nil
	}
	r.Pass("Sent same key twice: IDs match (dedup works)")
	return nil
}
