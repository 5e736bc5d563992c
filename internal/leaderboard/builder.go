package leaderboard

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// buildTimeout bounds a shared scan once it no longer follows the caller's context.
const buildTimeout = 30 * time.Second

// RecordSource reads ledger records.
// A zero since returns all records, otherwise only those mutated at or after it.
type RecordSource interface {
	GetRecords(ctx context.Context, since time.Time) ([]*types.ReputationRecord, error)
}

// ScanCache holds the most recent full scan of the ledger.
// Get reports the generation it observed; Store only accepts a scan taken at the current generation.
type ScanCache interface {
	Get(ctx context.Context) ([]*types.ReputationRecord, int64, bool, error)
	Store(ctx context.Context, generation int64, records []*types.ReputationRecord) (bool, error)
}

// ranking is the shared, viewer independent part of a snapshot.
type ranking struct {
	builtAt time.Time
	cutoff  time.Time
	entries []Entry
}

// Builder produces leaderboard snapshots.
type Builder struct {
	source RecordSource
	cache  ScanCache
	group  singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithCache reads full scans through the given cache.
func WithCache(cache ScanCache) Option {
	return func(b *Builder) {
		b.cache = cache
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a new leaderboard builder.
func NewBuilder(source RecordSource, logger *zap.Logger, opts ...Option) *Builder {
	b := &Builder{
		source: source,
		now:    time.Now,
		logger: logger.Named("leaderboard"),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build ranks the ledger for the given mode and locates the viewer's entry.
// Concurrent builds of the same mode share a single scan, which runs detached
// from any one caller's cancellation and is bounded by its own timeout.
func (b *Builder) Build(ctx context.Context, mode enum.LeaderboardPeriod, viewerID uint64) (*Snapshot, error) {
	result, err, shared := b.group.Do(mode.String(), func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()

		return b.rank(buildCtx, mode)
	})
	if err != nil {
		return nil, err
	}

	r := result.(*ranking)

	snapshot := &Snapshot{
		Mode:    mode,
		BuiltAt: r.builtAt,
		Cutoff:  r.cutoff,
		Entries: r.entries,
	}

	if i := slices.IndexFunc(r.entries, func(e Entry) bool { return e.AccountID == viewerID }); i >= 0 {
		viewer := r.entries[i]
		snapshot.Viewer = &viewer
	}

	b.logger.Debug("Built leaderboard snapshot",
		zap.String("mode", mode.String()),
		zap.Int("entries", len(r.entries)),
		zap.Bool("shared", shared))

	return snapshot, nil
}

// rank reads the records for the mode and orders them.
func (b *Builder) rank(ctx context.Context, mode enum.LeaderboardPeriod) (*ranking, error) {
	builtAt := b.now().UTC()

	var cutoff time.Time
	if mode.IsWindowed() {
		cutoff = builtAt.Add(-mode.Window())
	}

	records, err := b.records(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		if !cutoff.IsZero() && record.LastMutationAt.Before(cutoff) {
			continue
		}

		entries = append(entries, Entry{
			AccountID: record.AccountID,
			Positive:  record.PositiveCount,
			Negative:  record.NegativeCount,
		})
	}

	SortEntries(entries)

	return &ranking{builtAt: builtAt, cutoff: cutoff, entries: entries}, nil
}

// records loads the scan from the cache when possible, falling back to the store.
func (b *Builder) records(ctx context.Context, cutoff time.Time) ([]*types.ReputationRecord, error) {
	if b.cache == nil {
		records, err := b.source.GetRecords(ctx, cutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}

		return records, nil
	}

	records, generation, ok, err := b.cache.Get(ctx)
	if err != nil {
		b.logger.Warn("Failed to read scan cache", zap.Error(err))
	} else if ok {
		return records, nil
	}

	records, scanErr := b.source.GetRecords(ctx, time.Time{})
	if scanErr != nil {
		return nil, fmt.Errorf("failed to scan ledger: %w", scanErr)
	}

	// Without a known generation the scan cannot be proven current
	if err != nil {
		return records, nil
	}

	if _, err := b.cache.Store(ctx, generation, records); err != nil {
		b.logger.Warn("Failed to store scan cache", zap.Error(err))
	}

	return records, nil
}

// SortEntries orders entries by positive count descending, then negative count ascending,
// then account id ascending, and assigns 1-based ranks.
func SortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Positive, a.Positive); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Negative, b.Negative); c != 0 {
			return c
		}

		return cmp.Compare(a.AccountID, b.AccountID)
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
}
