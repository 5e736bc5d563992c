package reputation_test

import (
	"testing"

	view "github.com/robalyx/repledger/internal/bot/views/reputation"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/reputation"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestAccepted(t *testing.T) {
	t.Parallel()

	result := &reputation.Result{
		Record: &types.ReputationRecord{AccountID: 2, PositiveCount: 12, NegativeCount: 3},
		Rating: &types.RatingSummary{Average: ptr(4.0), Count: 3},
	}

	tests := []struct {
		name   string
		action enum.ActionKind
		amount int64
		want   string
	}{
		{
			name:   "rep",
			action: enum.ActionKindRep,
			want:   "👍 <@1> gave **+1 rep** to <@2>!\n⭐ New rep: **12**",
		},
		{
			name:   "norep",
			action: enum.ActionKindNegRep,
			want:   "⚠️ <@1> gave **-1 rep** to <@2>.\n👎 Negative rep: **3**",
		},
		{
			name:   "setrep",
			action: enum.ActionKindSetRep,
			amount: 9,
			want:   "🛠️ <@1> set <@2>'s rep to **9**.",
		},
		{
			name:   "feedback",
			action: enum.ActionKindFeedback,
			amount: 4,
			want:   "⭐ <@1> rated <@2> **4/5**.\n★★★★☆ **4.00** (3 ratings)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := reputation.Request{ActorID: 1, TargetID: 2, Action: tt.action, Amount: tt.amount}
			assert.Equal(t, tt.want, view.Accepted(req, result))
		})
	}
}

func TestStanding(t *testing.T) {
	t.Parallel()

	got := view.Standing(7,
		&types.ReputationRecord{AccountID: 7, PositiveCount: 3, NegativeCount: 1},
		&types.RatingSummary{Average: ptr(2.67), Count: 3})
	assert.Equal(t, "📊 <@7> has **3** rep.\n👍 3 • 👎 1 • Trust: **75.0%**\n★★⯨☆☆ **2.67** (3 ratings)", got)

	got = view.Standing(8, &types.ReputationRecord{AccountID: 8}, &types.RatingSummary{})
	assert.Equal(t, "📊 <@8> has **0** rep.\n👍 0 • 👎 0 • Trust: **N/A**\n☆☆☆☆☆ No ratings yet", got)
}

func TestRatingLineSingular(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "★★★★★ **5.00** (1 rating)", view.RatingLine(&types.RatingSummary{Average: ptr(5.0), Count: 1}))
	assert.Equal(t, "☆☆☆☆☆ No ratings yet", view.RatingLine(nil))
}
