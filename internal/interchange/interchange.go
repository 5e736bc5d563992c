package interchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/reputation"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrMalformedDocument is returned when an import is not a JSON object at all.
var ErrMalformedDocument = errors.New("import document is not a JSON object")

// DefaultConcurrency bounds how many entries are written at once during an import.
const DefaultConcurrency = 8

// numberAPI decodes numbers as json.Number so integers and fractions can be told apart.
var numberAPI = sonic.Config{UseNumber: true}.Froze()

// Entry is the interchange form of one account's counters.
type Entry struct {
	Rep    int64 `json:"rep"`
	NegRep int64 `json:"neg_rep"`
}

// Report summarizes an import.
type Report struct {
	Applied int
	Skipped int
}

// Ledger is the part of the ledger store used for bulk interchange.
type Ledger interface {
	GetRecords(ctx context.Context, since time.Time) ([]*types.ReputationRecord, error)
	SetExact(ctx context.Context, accountID uint64, positive, negative int64, at time.Time) (*types.ReputationRecord, error)
}

// Service exports and imports the whole ledger.
type Service struct {
	ledger      Ledger
	invalidator reputation.Invalidator
	concurrency int64
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithInvalidator registers a cache to drop after an import writes the ledger.
func WithInvalidator(invalidator reputation.Invalidator) Option {
	return func(s *Service) {
		s.invalidator = invalidator
	}
}

// WithConcurrency bounds how many entries an import writes at once.
func WithConcurrency(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a new interchange service.
func NewService(ledger Ledger, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		ledger:      ledger,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      logger.Named("interchange"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Records returns every ledger record in leaderboard order.
func (s *Service) Records(ctx context.Context) ([]*types.ReputationRecord, error) {
	records, err := s.ledger.GetRecords(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	return records, nil
}

// Export serializes the ledger as a JSON object keyed by account id.
// Keys are written in sorted order so identical ledgers produce identical documents.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	return Encode(records)
}

// Encode serializes records in the export format.
func Encode(records []*types.ReputationRecord) ([]byte, error) {
	doc := make(map[string]Entry, len(records))
	for _, record := range records {
		doc[strconv.FormatUint(record.AccountID, 10)] = Entry{
			Rep:    record.PositiveCount,
			NegRep: record.NegativeCount,
		}
	}

	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger: %w", err)
	}

	return data, nil
}

// Import upserts every well-formed entry of a JSON document.
// Each value is either a bare integer or an object with rep and neg_rep (or neg).
// Malformed entries are skipped and counted; only a document that is not an object is an error.
func (s *Service) Import(ctx context.Context, data []byte) (*Report, error) {
	var doc map[string]any
	if err := numberAPI.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if doc == nil {
		return nil, ErrMalformedDocument
	}

	var (
		p       = pool.New().WithContext(ctx).WithCancelOnError()
		sem     = semaphore.NewWeighted(s.concurrency)
		applied atomic.Int64
		skipped int
		at      = s.now().UTC()
	)

	for key, value := range doc {
		accountID, entry, ok := parseEntry(key, value)
		if !ok {
			skipped++

			s.logger.Debug("Skipping malformed import entry", zap.String("key", key))

			continue
		}

		p.Go(func(ctx context.Context) error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return fmt.Errorf("failed to acquire semaphore: %w", err)
			}
			defer sem.Release(1)

			if _, err := s.ledger.SetExact(ctx, accountID, entry.Rep, entry.NegRep, at); err != nil {
				return fmt.Errorf("failed to import account %d: %w", accountID, err)
			}

			applied.Add(1)

			return nil
		})
	}

	err := p.Wait()
	report := &Report{Applied: int(applied.Load()), Skipped: skipped}

	if report.Applied > 0 && s.invalidator != nil {
		if invErr := s.invalidator.Invalidate(ctx); invErr != nil {
			s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(invErr))
		}
	}

	if err != nil {
		return report, err
	}

	s.logger.Info("Imported ledger",
		zap.Int("applied", report.Applied),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

// parseEntry validates one key and value of an import document.
func parseEntry(key string, value any) (uint64, Entry, bool) {
	accountID, err := strconv.ParseUint(key, 10, 64)
	if err != nil || accountID == 0 {
		return 0, Entry{}, false
	}

	switch v := value.(type) {
	case json.Number:
		// Legacy format stores a single signed score
		// MinInt64 has no non-negative counterpart and is treated as malformed
		amount, ok := parseInt(v)
		if !ok || amount == math.MinInt64 {
			return 0, Entry{}, false
		}

		positive, negative := reputation.SplitSigned(amount, -math.MaxInt64, math.MaxInt64)

		return accountID, Entry{Rep: positive, NegRep: negative}, true

	case map[string]any:
		rep, ok := counter(v, "rep")
		if !ok {
			return 0, Entry{}, false
		}

		negKey := "neg_rep"
		if _, exists := v[negKey]; !exists {
			negKey = "neg"
		}

		neg, ok := counter(v, negKey)
		if !ok {
			return 0, Entry{}, false
		}

		return accountID, Entry{Rep: rep, NegRep: neg}, true

	default:
		return 0, Entry{}, false
	}
}

// counter reads a non-negative integer field, treating a missing field as zero.
func counter(obj map[string]any, field string) (int64, bool) {
	raw, exists := obj[field]
	if !exists {
		return 0, true
	}

	n, isNumber := raw.(json.Number)
	if !isNumber {
		return 0, false
	}

	value, ok := parseInt(n)
	if !ok || value < 0 {
		return 0, false
	}

	return value, true
}

func parseInt(n json.Number) (int64, bool) {
	value, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}
