package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/leaderboard"
	"github.com/robalyx/repledger/internal/setup/config"
	"go.uber.org/zap"
)

var (
	// ErrSessionExpired is returned for unknown sessions and sessions idle past the timeout.
	ErrSessionExpired = errors.New("leaderboard session expired")
	// ErrNotOwner is returned when someone other than the owner drives a session.
	ErrNotOwner = errors.New("only the user who opened this leaderboard can use it")
)

// IsBenign reports whether err is a navigation outcome rather than a fault.
func IsBenign(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNotOwner)
}

// SnapshotBuilder builds leaderboard snapshots.
type SnapshotBuilder interface {
	Build(ctx context.Context, mode enum.LeaderboardPeriod, viewerID uint64) (*leaderboard.Snapshot, error)
}

// Options controls session sizing and lifetime.
type Options struct {
	PageSize    int
	Timeout     time.Duration
	MaxSessions int
}

// OptionsFromConfig builds session options from the leaderboard config section.
func OptionsFromConfig(cfg *config.Leaderboard) Options {
	return Options{
		PageSize:    cfg.PageSize,
		Timeout:     cfg.Timeout(),
		MaxSessions: cfg.MaxSessions,
	}
}

// Manager tracks open leaderboard sessions in memory.
// Expiry is evaluated lazily whenever a session is looked up.
type Manager struct {
	builder  SnapshotBuilder
	opts     Options
	now      func() time.Time
	sessions map[string]*Session
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewManager creates a new session manager.
func NewManager(builder SnapshotBuilder, opts Options, logger *zap.Logger) *Manager {
	return NewManagerWithClock(builder, opts, time.Now, logger)
}

// NewManagerWithClock creates a new session manager that reads the time from now.
func NewManagerWithClock(
	builder SnapshotBuilder, opts Options, now func() time.Time, logger *zap.Logger,
) *Manager {
	return &Manager{
		builder:  builder,
		opts:     opts,
		now:      now,
		sessions: make(map[string]*Session),
		logger:   logger.Named("pagination"),
	}
}

// Open builds a snapshot for the owner and registers a new session on its first page.
func (m *Manager) Open(
	ctx context.Context, ownerID uint64, mode enum.LeaderboardPeriod,
) (*Session, leaderboard.Page, error) {
	snapshot, err := m.builder.Build(ctx, mode, ownerID)
	if err != nil {
		return nil, leaderboard.Page{}, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	now := m.now()
	session := &Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
		manager:   m,
		mode:      mode,
		snapshots: map[enum.LeaderboardPeriod]*leaderboard.Snapshot{mode: snapshot},
		lastUsed:  now,
	}

	m.mu.Lock()
	m.pruneLocked(now)
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Debug("Opened leaderboard session",
		zap.String("sessionID", session.ID),
		zap.Uint64("ownerID", ownerID),
		zap.String("mode", mode.String()))

	return session, snapshot.Page(0, m.opts.PageSize), nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionExpired
	}

	session.mu.Lock()
	expired := session.expiredLocked(m.now())
	session.mu.Unlock()

	if expired {
		m.remove(id)
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Close removes a session.
func (m *Manager) Close(id string) {
	m.remove(id)
}

// Len returns the number of registered sessions, including expired ones not yet pruned.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}

// pruneLocked drops expired sessions and, when still at capacity, the least recently used one.
func (m *Manager) pruneLocked(now time.Time) {
	var (
		oldestID   string
		oldestUsed time.Time
	)

	for id, session := range m.sessions {
		session.mu.Lock()
		expired := session.expiredLocked(now)
		lastUsed := session.lastUsed
		session.mu.Unlock()

		if expired {
			delete(m.sessions, id)
			continue
		}

		if oldestID == "" || lastUsed.Before(oldestUsed) {
			oldestID, oldestUsed = id, lastUsed
		}
	}

	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions && oldestID != "" {
		delete(m.sessions, oldestID)
		m.logger.Debug("Evicted least recently used session", zap.String("sessionID", oldestID))
	}
}
