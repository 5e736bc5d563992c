package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robalyx/repledger/internal/bot/constants"
)

// ErrInvalidCustomID is returned for component ids not produced by BuildCustomID.
var ErrInvalidCustomID = errors.New("invalid custom ID")

// ViewerAction represents a leaderboard viewer interaction.
type ViewerAction string

// Actions available on a leaderboard message.
const (
	// ViewerPrevPage moves to the previous page if available.
	ViewerPrevPage ViewerAction = "prev"
	// ViewerNextPage moves to the next page if available.
	ViewerNextPage ViewerAction = "next"
	// ViewerPeriod switches the leaderboard period.
	ViewerPeriod ViewerAction = "period"
)

// IsValid reports whether the action is known.
func (a ViewerAction) IsValid() bool {
	switch a {
	case ViewerPrevPage, ViewerNextPage, ViewerPeriod:
		return true
	default:
		return false
	}
}

// BuildCustomID returns the component id for an action on a pagination session.
func BuildCustomID(action ViewerAction, sessionID string) string {
	return strings.Join([]string{constants.LeaderboardCustomIDPrefix, string(action), sessionID}, constants.CustomIDSeparator)
}

// ParseCustomID splits a component id into its action and session id.
func ParseCustomID(customID string) (ViewerAction, string, error) {
	parts := strings.SplitN(customID, constants.CustomIDSeparator, 3)
	if len(parts) != 3 || parts[0] != constants.LeaderboardCustomIDPrefix || parts[2] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidCustomID, customID)
	}

	action := ViewerAction(parts[1])
	if !action.IsValid() {
		return "", "", fmt.Errorf("%w: unknown action %q", ErrInvalidCustomID, parts[1])
	}

	return action, parts[2], nil
}
