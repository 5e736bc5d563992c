package enum

// ActionKind represents a kind of reputation mutation an actor can request.
//
//go:generate go tool enumer -type=ActionKind -trimprefix=ActionKind
type ActionKind int

const (
	// ActionKindRep awards one positive point.
	ActionKindRep ActionKind = iota + 1
	// ActionKindNegRep records one negative point.
	ActionKindNegRep
	// ActionKindSetRep overwrites an account's counters.
	ActionKindSetRep
	// ActionKindFeedback submits a star rating.
	ActionKindFeedback
)

// TenureGated reports whether the actor must meet the minimum account age.
func (a ActionKind) TenureGated() bool {
	switch a {
	case ActionKindRep, ActionKindNegRep, ActionKindFeedback:
		return true
	case ActionKindSetRep:
		return false
	default:
		return false
	}
}

// PerTarget reports whether the cooldown for this action is keyed by target as well as actor.
func (a ActionKind) PerTarget() bool {
	return a == ActionKindFeedback
}

// Cooldowned reports whether the action is rate limited at all.
func (a ActionKind) Cooldowned() bool {
	return a != ActionKindSetRep
}
