package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/leaderboard"
)

// Session is one user's view over leaderboard snapshots.
// Snapshots are built once per mode and never refreshed.
type Session struct {
	ID        string
	OwnerID   uint64
	CreatedAt time.Time

	manager   *Manager
	mu        sync.Mutex
	mode      enum.LeaderboardPeriod
	page      int
	snapshots map[enum.LeaderboardPeriod]*leaderboard.Snapshot
	lastUsed  time.Time
}

// Authorize returns ErrNotOwner for anyone but the session owner.
func (s *Session) Authorize(requesterID uint64) error {
	if requesterID != s.OwnerID {
		return ErrNotOwner
	}

	return nil
}

// Mode returns the current leaderboard mode.
func (s *Session) Mode() enum.LeaderboardPeriod {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

// Current renders the current page again from the same snapshot.
func (s *Session) Current(requesterID uint64) (leaderboard.Page, error) {
	return s.navigate(requesterID, func(int) int { return s.page })
}

// Advance moves to the next page, staying on the last page.
func (s *Session) Advance(requesterID uint64) (leaderboard.Page, error) {
	return s.navigate(requesterID, func(page int) int { return page + 1 })
}

// Retreat moves to the previous page, staying on the first page.
func (s *Session) Retreat(requesterID uint64) (leaderboard.Page, error) {
	return s.navigate(requesterID, func(page int) int { return page - 1 })
}

// SwitchMode changes the mode and returns to the first page.
// A snapshot already built for the mode in this session is reused.
func (s *Session) SwitchMode(
	ctx context.Context, requesterID uint64, mode enum.LeaderboardPeriod,
) (leaderboard.Page, error) {
	if err := s.begin(requesterID); err != nil {
		return leaderboard.Page{}, err
	}

	s.mu.Lock()
	snapshot, ok := s.snapshots[mode]
	s.mu.Unlock()

	if !ok {
		built, err := s.manager.builder.Build(ctx, mode, s.OwnerID)
		if err != nil {
			return leaderboard.Page{}, fmt.Errorf("failed to build leaderboard: %w", err)
		}

		snapshot = built
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Keep a snapshot stored by a concurrent switch so every render of a mode agrees
	if existing, ok := s.snapshots[mode]; ok {
		snapshot = existing
	} else {
		s.snapshots[mode] = snapshot
	}

	s.mode = mode
	s.page = 0
	s.lastUsed = s.manager.now()

	return snapshot.Page(0, s.manager.opts.PageSize), nil
}

// navigate applies a page transition under the session lock.
func (s *Session) navigate(requesterID uint64, next func(page int) int) (leaderboard.Page, error) {
	if err := s.begin(requesterID); err != nil {
		return leaderboard.Page{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshots[s.mode]
	size := s.manager.opts.PageSize

	s.page = snapshot.ClampPage(next(s.page), size)
	s.lastUsed = s.manager.now()

	return snapshot.Page(s.page, size), nil
}

// begin checks expiry and ownership before any transition.
func (s *Session) begin(requesterID uint64) error {
	s.mu.Lock()
	expired := s.expiredLocked(s.manager.now())
	s.mu.Unlock()

	if expired {
		s.manager.remove(s.ID)
		return ErrSessionExpired
	}

	return s.Authorize(requesterID)
}

// expiredLocked reports whether the session has been idle for the whole timeout.
func (s *Session) expiredLocked(now time.Time) bool {
	timeout := s.manager.opts.Timeout
	if timeout <= 0 {
		return false
	}

	return !now.Before(s.lastUsed.Add(timeout))
}
