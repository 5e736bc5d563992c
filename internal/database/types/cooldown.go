package types

import (
	"time"

	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// CooldownEntry stores when an actor last performed a rate-limited action.
// TargetID is zero for cooldowns that apply to the actor globally.
type CooldownEntry struct {
	bun.BaseModel `bun:"table:cooldown_entries,alias:ce"`

	ActorID  uint64          `bun:",pk"      json:"actorId"`
	TargetID uint64          `bun:",pk"      json:"targetId"`
	Action   enum.ActionKind `bun:",pk"      json:"action"`
	LastAt   time.Time       `bun:",notnull" json:"lastAt"`
}

// CooldownKey identifies a cooldown entry.
type CooldownKey struct {
	ActorID  uint64
	TargetID uint64
	Action   enum.ActionKind
}
