package reputation

import (
	"fmt"
	"time"

	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/pkg/utils"
)

// RejectReason identifies which rule turned a request down.
type RejectReason int

const (
	// RejectSelfTarget is returned when the actor targets themselves.
	RejectSelfTarget RejectReason = iota + 1
	// RejectExcludedTarget is returned for bots and configured excluded accounts.
	RejectExcludedTarget
	// RejectUnderTenure is returned when the actor's account is too new.
	RejectUnderTenure
	// RejectOutOfBounds is returned when the amount falls outside the action's bounds.
	RejectOutOfBounds
	// RejectCooldown is returned while the actor's cooldown window is open.
	RejectCooldown
)

// String returns the name of the reason.
func (r RejectReason) String() string {
	switch r {
	case RejectSelfTarget:
		return "SelfTarget"
	case RejectExcludedTarget:
		return "ExcludedTarget"
	case RejectUnderTenure:
		return "UnderTenure"
	case RejectOutOfBounds:
		return "OutOfBounds"
	case RejectCooldown:
		return "Cooldown"
	default:
		return fmt.Sprintf("RejectReason(%d)", int(r))
	}
}

// Rejection explains why a request was refused. Nothing is mutated when a request is rejected.
type Rejection struct {
	Reason RejectReason
	Action enum.ActionKind

	// Remaining is the wait left on the cooldown.
	Remaining time.Duration

	// AccountAge and MinAccountAge describe a tenure rejection.
	AccountAge    time.Duration
	MinAccountAge time.Duration

	// Min and Max are the bounds of an out of bounds rejection.
	Min int64
	Max int64
}

// Message returns the human-readable reason shown to the actor.
func (r *Rejection) Message() string {
	switch r.Reason {
	case RejectSelfTarget:
		switch r.Action {
		case enum.ActionKindNegRep:
			return "❌ You can't remove rep from yourself."
		case enum.ActionKindSetRep:
			return "❌ You cannot set your own reputation."
		case enum.ActionKindFeedback:
			return "❌ You can't rate yourself."
		default:
			return "❌ You can't rep yourself."
		}

	case RejectExcludedTarget:
		switch r.Action {
		case enum.ActionKindNegRep:
			return "🤖 You can't remove rep from bots."
		case enum.ActionKindSetRep:
			return "🤖 You can't set rep for bots."
		case enum.ActionKindFeedback:
			return "🤖 You can't rate bots."
		default:
			return "🤖 You can't rep bots."
		}

	case RejectUnderTenure:
		return fmt.Sprintf("❌ Account too new. Must be **%d days** old.\nYour age: **%d days**",
			days(r.MinAccountAge), days(r.AccountAge))

	case RejectOutOfBounds:
		if r.Action == enum.ActionKindFeedback {
			return fmt.Sprintf("⚠️ Stars must be between **%d** and **%d**.", r.Min, r.Max)
		}

		return fmt.Sprintf("⚠️ Amount must be between **%d** and **%d**.", r.Min, r.Max)

	case RejectCooldown:
		return fmt.Sprintf("⏳ Cooldown: Try again in **%s**.", utils.FormatWait(r.Remaining))

	default:
		return "❌ Request rejected."
	}
}

func days(d time.Duration) int64 {
	return int64(d / (24 * time.Hour))
}
