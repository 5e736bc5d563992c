package types

import "errors"

var (
	ErrNegativeDelta   = errors.New("reputation deltas must not be negative")
	ErrStarsOutOfRange = errors.New("stars must be between 1 and 5")
	ErrUnknownAction   = errors.New("unknown action kind")
)
