package types

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	// MinStars is the lowest star rating accepted.
	MinStars = 1
	// MaxStars is the highest star rating accepted.
	MaxStars = 5
)

// RatingEntry stores the latest star rating a rater gave a target.
type RatingEntry struct {
	bun.BaseModel `bun:"table:rating_entries,alias:re"`

	RaterID  uint64    `bun:",pk"      json:"raterId"`
	TargetID uint64    `bun:",pk"      json:"targetId"`
	Stars    int       `bun:",notnull" json:"stars"`
	RatedAt  time.Time `bun:",notnull" json:"ratedAt"`
}

// RatingSummary is the aggregate of all ratings for one target.
// Average is nil when the target has never been rated.
type RatingSummary struct {
	Average *float64 `json:"average,omitempty"`
	Count   int      `json:"count"`
}

// HasRatings reports whether at least one rating exists.
func (s RatingSummary) HasRatings() bool {
	return s.Average != nil && s.Count > 0
}
