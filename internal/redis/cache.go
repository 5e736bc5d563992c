package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"github.com/robalyx/repledger/internal/database/types"
	"go.uber.org/zap"
)

const (
	// ScanKey holds the serialized full ledger scan.
	ScanKey = "repledger:leaderboard:scan"
	// GenerationKey counts invalidations so a scan read before a write is never stored after it.
	GenerationKey = "repledger:leaderboard:generation"
)

// storeScript writes the scan only while the generation still matches the one read before scanning.
var storeScript = rueidis.NewLuaScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// invalidateScript bumps the generation and drops the scan in one step.
var invalidateScript = rueidis.NewLuaScript(`
redis.call('INCR', KEYS[2])
redis.call('DEL', KEYS[1])
return 1
`)

// ScanCache keeps the last full ledger scan in Redis so leaderboard builds
// skip the database until the next committed mutation.
type ScanCache struct {
	client rueidis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewScanCache creates a scan cache on top of the given client.
func NewScanCache(client rueidis.Client, ttl time.Duration, logger *zap.Logger) *ScanCache {
	return &ScanCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("scan_cache"),
	}
}

// Get returns the cached scan and the current generation. ok is false on a cache miss,
// in which case the generation must be passed to Store after scanning the store.
func (c *ScanCache) Get(ctx context.Context) ([]*types.ReputationRecord, int64, bool, error) {
	results := c.client.DoMulti(ctx,
		c.client.B().Get().Key(GenerationKey).Build(),
		c.client.B().Get().Key(ScanKey).Build(),
	)

	generation, err := results[0].AsInt64()
	if err != nil && !rueidis.IsRedisNil(err) {
		return nil, 0, false, fmt.Errorf("failed to read scan generation: %w", err)
	}

	data, err := results[1].AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, generation, false, nil
		}

		return nil, 0, false, fmt.Errorf("failed to read cached scan: %w", err)
	}

	var records []*types.ReputationRecord
	if err := sonic.Unmarshal(data, &records); err != nil {
		// A corrupt entry is treated as a miss and replaced on the next store
		c.logger.Warn("Discarding unreadable cached scan", zap.Error(err))
		return nil, generation, false, nil
	}

	return records, generation, true, nil
}

// Store writes a full scan taken at the given generation.
// It reports false and writes nothing when an invalidation happened since.
func (c *ScanCache) Store(ctx context.Context, generation int64, records []*types.ReputationRecord) (bool, error) {
	data, err := sonic.Marshal(records)
	if err != nil {
		return false, fmt.Errorf("failed to marshal scan: %w", err)
	}

	stored, err := storeScript.Exec(ctx, c.client,
		[]string{ScanKey, GenerationKey},
		[]string{
			strconv.FormatInt(generation, 10),
			rueidis.BinaryString(data),
			strconv.FormatInt(c.ttl.Milliseconds(), 10),
		},
	).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to store scan: %w", err)
	}

	if stored == 0 {
		c.logger.Debug("Skipped storing outdated scan", zap.Int64("generation", generation))
		return false, nil
	}

	return true, nil
}

// Invalidate drops the cached scan after a ledger write.
func (c *ScanCache) Invalidate(ctx context.Context) error {
	err := invalidateScript.Exec(ctx, c.client, []string{ScanKey, GenerationKey}, nil).Error()
	if err != nil {
		return fmt.Errorf("failed to invalidate scan: %w", err)
	}

	return nil
}
