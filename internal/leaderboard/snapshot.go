package leaderboard

import (
	"time"

	"github.com/robalyx/repledger/internal/database/types/enum"
)

// Entry is one ranked account in a snapshot.
type Entry struct {
	Rank      int
	AccountID uint64
	Positive  int64
	Negative  int64
}

// Net returns the positive count minus the negative count.
func (e Entry) Net() int64 {
	return e.Positive - e.Negative
}

// Snapshot is an immutable ranked view of the ledger taken at BuiltAt.
// It does not reflect mutations committed after it was built.
type Snapshot struct {
	Mode    enum.LeaderboardPeriod
	BuiltAt time.Time
	// Cutoff is the earliest last mutation time included, zero for all time.
	Cutoff  time.Time
	Entries []Entry
	// Viewer is the requesting account's own entry, nil when it is not ranked.
	Viewer  *Entry
}

// Page is a slice of a snapshot.
type Page struct {
	Mode         enum.LeaderboardPeriod
	Index        int
	TotalPages   int
	TotalEntries int
	Entries      []Entry
	Viewer       *Entry
}

// IsFirst reports whether there is no previous page.
func (p Page) IsFirst() bool {
	return p.Index == 0
}

// IsLast reports whether there is no next page.
func (p Page) IsLast() bool {
	return p.Index >= p.TotalPages-1
}

// TotalPages returns the number of pages of the given size, at least one.
func (s *Snapshot) TotalPages(size int) int {
	if size <= 0 || len(s.Entries) == 0 {
		return 1
	}

	return (len(s.Entries) + size - 1) / size
}

// ClampPage returns index clamped into the valid page range.
func (s *Snapshot) ClampPage(index, size int) int {
	return max(0, min(index, s.TotalPages(size)-1))
}

// Page returns the entries of page index, clamping out of range indices.
func (s *Snapshot) Page(index, size int) Page {
	index = s.ClampPage(index, size)

	page := Page{
		Mode:         s.Mode,
		Index:        index,
		TotalPages:   s.TotalPages(size),
		TotalEntries: len(s.Entries),
		Viewer:       s.Viewer,
	}

	if size <= 0 {
		page.Entries = s.Entries
		return page
	}

	start := index * size
	if start >= len(s.Entries) {
		return page
	}

	end := min(start+size, len(s.Entries))
	page.Entries = s.Entries[start:end]

	return page
}
