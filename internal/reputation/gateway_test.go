package reputation_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robalyx/repledger/internal/database"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/reputation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	actorID  uint64 = 1001
	targetID uint64 = 2002
	botID    uint64 = 3003
	newbieID uint64 = 4004
	bannedID uint64 = 5005
)

var (
	start     = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	errLookup = errors.New("lookup failed")
	testRules = reputation.Rules{
		MinAccountAge:  7 * 24 * time.Hour,
		RepWindow:      240 * time.Second,
		FeedbackWindow: 24 * time.Hour,
		SetMin:         -1000,
		SetMax:         1000,
		ExcludedIDs:    []uint64{bannedID},
	}
)

// fakeDirectory resolves every account as an established human unless told otherwise.
type fakeDirectory struct {
	bots    map[uint64]bool
	created map[uint64]time.Time
	failing map[uint64]bool
}

func (d *fakeDirectory) Identity(_ context.Context, accountID uint64) (*reputation.Identity, error) {
	if d.failing[accountID] {
		return nil, errLookup
	}

	createdAt, ok := d.created[accountID]
	if !ok {
		createdAt = start.Add(-365 * 24 * time.Hour)
	}

	return &reputation.Identity{ID: accountID, CreatedAt: createdAt, Bot: d.bots[accountID]}, nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// countingInvalidator records how often the cache was dropped.
type countingInvalidator struct {
	calls atomic.Int32
}

func (i *countingInvalidator) Invalidate(context.Context) error {
	i.calls.Add(1)
	return nil
}

type fixture struct {
	gateway     *reputation.Gateway
	clock       *fakeClock
	directory   *fakeDirectory
	invalidator *countingInvalidator
}

func setupGateway(t *testing.T) *fixture {
	t.Helper()

	return setupGatewayWithRules(t, testRules)
}

func setupGatewayWithRules(t *testing.T, rules reputation.Rules) *fixture {
	t.Helper()

	client, err := database.NewMemoryConnection(context.Background(), zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		clock: &fakeClock{now: start},
		directory: &fakeDirectory{
			bots:    map[uint64]bool{botID: true},
			created: map[uint64]time.Time{newbieID: start.Add(-2 * 24 * time.Hour)},
			failing: map[uint64]bool{},
		},
		invalidator: &countingInvalidator{},
	}

	f.gateway = reputation.NewGateway(
		client.Service().Reputation(), f.directory, rules, zap.NewNop(),
		reputation.WithClock(f.clock.Now),
		reputation.WithInvalidator(f.invalidator),
	)

	return f
}

func TestSubmitRepAccumulates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupGateway(t)

	const n = 12
	for i := range n {
		result, err := f.gateway.Submit(ctx, reputation.Request{
			ActorID:  actorID + uint64(i)*10,
			TargetID: targetID,
			Action:   enum.ActionKindRep,
		})
		require.NoError(t, err)
		require.True(t, result.Accepted())
		assert.Equal(t, int64(i+1), result.Record.PositiveCount)
	}

	record, _, err := f.gateway.Standing(ctx, targetID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), record.PositiveCount)
	assert.Zero(t, record.NegativeCount)
	assert.Equal(t, int32(n), f.invalidator.calls.Load())
}

func TestSubmitCooldown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupGateway(t)
	req := reputation.Request{ActorID: actorID, TargetID: targetID, Action: enum.ActionKindRep}

	result, err := f.gateway.Submit(ctx, req)
	require.NoError(t, err)
	require.True(t, result.Accepted())

	f.clock.Advance(30 * time.Second)

	result, err = f.gateway.Submit(ctx, req)
	require.NoError(t, err)
	require.False(t, result.Accepted())
	assert.Equal(t, reputation.RejectCooldown, result.Rejection.Reason)
	assert.Equal(t, 210*time.Second, result.Rejection.Remaining)
	assert.Equal(t, "⏳ Cooldown: Try again in **4 minutes**.", result.Rejection.Message())

	// NegRep has its own window
	result, err = f.gateway.Submit(ctx, reputation.Request{
		ActorID: actorID, TargetID: targetID, Action: enum.ActionKindNegRep,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted())
	assert.Equal(t, int64(1), result.Record.NegativeCount)
	assert.Equal(t, int64(1), result.Record.PositiveCount)

	f.clock.Advance(210 * time.Second)

	result, err = f.gateway.Submit(ctx, req)
	require.NoError(t, err)
	require.True(t, result.Accepted())
	assert.Equal(t, int64(2), result.Record.PositiveCount)
}

func TestSubmitConcurrentCooldown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupGateway(t)

	const workers = 8

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		rejected atomic.Int32
	)

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			result, err := f.gateway.Submit(ctx, reputation.Request{
				ActorID: actorID, TargetID: targetID, Action: enum.ActionKindRep,
			})
			if !assert.NoError(t, err) {
				return
			}

			if result.Accepted() {
				accepted.Add(1)
			} else {
				rejected.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, int32(workers-1), rejected.Load())

	record, _, err := f.gateway.Standing(ctx, targetID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.PositiveCount)
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupGateway(t)

	raters := []uint64{11, 12, 13}
	stars := []int64{5, 3, 4}

	var result *reputation.Result

	for i, rater := range raters {
		var err error

		result, err = f.gateway.Submit(ctx, reputation.Request{
			ActorID: rater, TargetID: targetID, Action: enum.ActionKindFeedback, Amount: stars[i],
		})
		require.NoError(t, err)
		require.True(t, result.Accepted())
	}

	require.NotNil(t, result.Rating.Average)
	assert.InDelta(t, 4.00, *result.Rating.Average, 0.001)
	assert.Equal(t, 3, result.Rating.Count)

	// Rating the same target again inside the window is blocked
	result, err := f.gateway.Submit(ctx, reputation.Request{
		ActorID: raters[0], TargetID: targetID, Action: enum.ActionKindFeedback, Amount: 1,
	})
	require.NoError(t, err)
	require.False(t, result.Accepted())
	assert.Equal(t, reputation.RejectCooldown, result.Rejection.Reason)

	f.clock.Advance(24 * time.Hour)

	result, err = f.gateway.Submit(ctx, reputation.Request{
		ActorID: raters[0], TargetID: targetID, Action: enum.ActionKindFeedback, Amount: 1,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted())
	assert.InDelta(t, 2.67, *result.Rating.Average, 0.001)
	assert.Equal(t, 3, result.Rating.Count)

	// Feedback never touches the counters or the leaderboard cache
	assert.True(t, result.Record.IsZero())
	assert.Zero(t, f.invalidator.calls.Load())
}

func TestSubmitSetRep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupGateway(t)

	result, err := f.gateway.Submit(ctx, reputation.Request{
		ActorID: actorID, TargetID: targetID, Action: enum.ActionKindSetRep, Amount: -25,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted())
	assert.Equal(t, int64(0), result.Record.PositiveCount)
	assert.Equal(t, int64(25), result.Record.NegativeCount)
	assert.Equal(t, int64(-25), result.Record.Net())

	// SetRep has no cooldown and skips the tenure check
	result, err = f.gateway.Submit(ctx, reputation.Request{
		ActorID: newbieID, TargetID: targetID, Action: enum.ActionKindSetRep, Amount: 40,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted())
	assert.Equal(t, int64(40), result.Record.Net())
}

func TestSubmitSetRepAsymmetricBounds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rules := testRules
	rules.SetMin = -2000
	f := setupGatewayWithRules(t, rules)

	result, err := f.gateway.Submit(ctx, reputation.Request{
		ActorID: actorID, TargetID: targetID, Action: enum.ActionKindSetRep, Amount: -1500,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted())
	assert.Equal(t, int64(0), result.Record.PositiveCount)
	assert.Equal(t, int64(1500), result.Record.NegativeCount)
	assert.Equal(t, int64(-1500), result.Record.Net())

	result, err = f.gateway.Submit(ctx, reputation.Request{
		ActorID: actorID, TargetID: targetID, Action: enum.ActionKindSetRep, Amount: 1500,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, reputation.RejectOutOfBounds, result.Rejection.Reason)
}

func TestSubmitRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     reputation.Request
		reason  reputation.RejectReason
		message string
	}{
		{
			name:    "self target",
			req:     reputation.Request{ActorID: actorID, TargetID: actorID, Action: enum.ActionKindRep},
			reason:  reputation.RejectSelfTarget,
			message: "❌ You can't rep yourself.",
		},
		{
			name:    "self target setrep",
			req:     reputation.Request{ActorID: actorID, TargetID: actorID, Action: enum.ActionKindSetRep},
			reason:  reputation.RejectSelfTarget,
			message: "❌ You cannot set your own reputation.",
		},
		{
			name:    "bot target",
			req:     reputation.Request{ActorID: actorID, TargetID: botID, Action: enum.ActionKindNegRep},
			reason:  reputation.RejectExcludedTarget,
			message: "🤖 You can't remove rep from bots.",
		},
		{
			name:   "configured excluded target",
			req:    reputation.Request{ActorID: actorID, TargetID: bannedID, Action: enum.ActionKindRep},
			reason: reputation.RejectExcludedTarget,
		},
		{
			name:    "under tenure",
			req:     reputation.Request{ActorID: newbieID, TargetID: targetID, Action: enum.ActionKindRep},
			reason:  reputation.RejectUnderTenure,
			message: "❌ Account too new. Must be **7 days** old.\nYour age: **2 days**",
		},
		{
			name: "setrep out of bounds",
			req: reputation.Request{
				ActorID: actorID, TargetID: targetID, Action: enum.ActionKindSetRep, Amount: 1001,
			},
			reason:  reputation.RejectOutOfBounds,
			message: "⚠️ Amount must be between **-1000** and **1000**.",
		},
		{
			name: "stars out of bounds",
			req: reputation.Request{
				ActorID: actorID, TargetID: targetID, Action: enum.ActionKindFeedback, Amount: 0,
			},
			reason:  reputation.RejectOutOfBounds,
			message: "⚠️ Stars must be between **1** and **5**.",
		},
		{
			name: "self target wins over bounds",
			req: reputation.Request{
				ActorID: newbieID, TargetID: newbieID, Action: enum.ActionKindFeedback, Amount: 9,
			},
			reason: reputation.RejectSelfTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			f := setupGateway(t)

			result, err := f.gateway.Submit(ctx, tt.req)
			require.NoError(t, err)
			require.False(t, result.Accepted())
			assert.Equal(t, tt.reason, result.Rejection.Reason)

			if tt.message != "" {
				assert.Equal(t, tt.message, result.Rejection.Message())
			}

			// Rejections never mutate state
			record, summary, err := f.gateway.Standing(ctx, tt.req.TargetID)
			require.NoError(t, err)
			assert.True(t, record.IsZero())
			assert.False(t, summary.HasRatings())
			assert.Zero(t, f.invalidator.calls.Load())
		})
	}
}

func TestSubmitFaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupGateway(t)

	_, err := f.gateway.Submit(ctx, reputation.Request{ActorID: actorID, TargetID: targetID})
	require.ErrorIs(t, err, types.ErrUnknownAction)

	f.directory.failing[targetID] = true

	_, err = f.gateway.Submit(ctx, reputation.Request{
		ActorID: actorID, TargetID: targetID, Action: enum.ActionKindRep,
	})
	require.ErrorIs(t, err, reputation.ErrIdentityUnavailable)
	require.ErrorIs(t, err, errLookup)
}

func TestSplitSigned(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount, lower, upper int64
		positive, negative   int64
	}{
		{12, -1000, 1000, 12, 0},
		{-7, -1000, 1000, 0, 7},
		{0, -1000, 1000, 0, 0},
		{5000, -1000, 1000, 1000, 0},
		{-5000, -1000, 1000, 0, 1000},
		{-1500, -2000, 1000, 0, 1500},
		{-2500, -2000, 1000, 0, 2000},
		{1500, -2000, 1000, 1000, 0},
		{math.MinInt64 + 1, -math.MaxInt64, math.MaxInt64, 0, math.MaxInt64},
	}

	for _, tt := range tests {
		positive, negative := reputation.SplitSigned(tt.amount, tt.lower, tt.upper)
		assert.Equal(t, tt.positive, positive)
		assert.Equal(t, tt.negative, negative)
	}
}
