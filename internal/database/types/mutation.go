package types

import (
	"time"

	"github.com/robalyx/repledger/internal/database/types/enum"
)

// Mutation is a validated change that must be committed as one unit.
// Cooldown is nil for actions that are not rate limited.
type Mutation struct {
	ActorID  uint64
	TargetID uint64
	Action   enum.ActionKind
	At       time.Time

	Cooldown       *CooldownKey
	CooldownWindow time.Duration

	// Deltas applied to the target for Rep and NegRep.
	PositiveDelta int64
	NegativeDelta int64

	// Exact counters written for SetRep.
	Positive int64
	Negative int64

	// Stars given for Feedback.
	Stars int
}

// MutationOutcome describes the state after a mutation was committed.
// Blocked is set when the cooldown was claimed by a concurrent request first.
type MutationOutcome struct {
	Record    *ReputationRecord
	Rating    *RatingSummary
	Blocked   bool
	Remaining time.Duration
}
