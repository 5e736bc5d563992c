package types

import (
	"time"

	"github.com/uptrace/bun"
)

// ReputationRecord holds the standing counters of a single account.
// Both counters only ever grow; a negative action increments NegativeCount.
type ReputationRecord struct {
	bun.BaseModel `bun:"table:reputation_records,alias:rr"`

	AccountID      uint64    `bun:",pk"      json:"accountId"`
	PositiveCount  int64     `bun:",notnull" json:"positiveCount"`
	NegativeCount  int64     `bun:",notnull" json:"negativeCount"`
	LastMutationAt time.Time `bun:",notnull" json:"lastMutationAt"`
}

// Net returns the positive count minus the negative count.
func (r *ReputationRecord) Net() int64 {
	return r.PositiveCount - r.NegativeCount
}

// IsZero reports whether the record has never been mutated.
func (r *ReputationRecord) IsZero() bool {
	return r.PositiveCount == 0 && r.NegativeCount == 0 && r.LastMutationAt.IsZero()
}
