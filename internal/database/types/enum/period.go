package enum

import "time"

// LeaderboardPeriod represents the time window a leaderboard covers.
//
//go:generate go tool enumer -type=LeaderboardPeriod -trimprefix=LeaderboardPeriod
type LeaderboardPeriod int

const (
	LeaderboardPeriodAllTime LeaderboardPeriod = iota
	LeaderboardPeriodWeekly
	LeaderboardPeriodMonthly
)

// Label returns a human friendly name for menus and titles.
func (p LeaderboardPeriod) Label() string {
	switch p {
	case LeaderboardPeriodAllTime:
		return "All Time"
	case LeaderboardPeriodWeekly:
		return "Last 7 Days"
	case LeaderboardPeriodMonthly:
		return "Last 30 Days"
	default:
		return p.String()
	}
}

// Window returns the length of the time window, or zero for all time.
func (p LeaderboardPeriod) Window() time.Duration {
	switch p {
	case LeaderboardPeriodWeekly:
		return 7 * 24 * time.Hour
	case LeaderboardPeriodMonthly:
		return 30 * 24 * time.Hour
	case LeaderboardPeriodAllTime:
		return 0
	default:
		return 0
	}
}

// IsWindowed reports whether the period filters by last mutation time.
func (p LeaderboardPeriod) IsWindowed() bool {
	return p.Window() > 0
}
