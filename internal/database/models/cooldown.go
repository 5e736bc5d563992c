package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/repledger/internal/database/dbretry"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// claimQuery records a new use only when the previous one has left the window.
// No row is returned when the cooldown is still active.
const claimQuery = `
INSERT INTO cooldown_entries (actor_id, target_id, action, last_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (actor_id, target_id, action) DO UPDATE SET
	last_at = excluded.last_at
WHERE cooldown_entries.last_at <= ?
RETURNING actor_id`

// CooldownModel handles database operations for action cooldowns.
type CooldownModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewCooldown creates a new CooldownModel.
func NewCooldown(db *bun.DB, logger *zap.Logger) *CooldownModel {
	return &CooldownModel{
		db:     db,
		logger: logger.Named("db_cooldown"),
	}
}

// Remaining returns how long the key stays on cooldown, or zero when it is free.
func (m *CooldownModel) Remaining(
	ctx context.Context, key types.CooldownKey, window time.Duration, now time.Time,
) (time.Duration, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (time.Duration, error) {
		return m.RemainingWithTx(ctx, m.db, key, window, now)
	})
}

// RemainingWithTx returns the remaining cooldown using the given transaction.
func (m *CooldownModel) RemainingWithTx(
	ctx context.Context, tx bun.IDB, key types.CooldownKey, window time.Duration, now time.Time,
) (time.Duration, error) {
	entry := &types.CooldownEntry{
		ActorID:  key.ActorID,
		TargetID: key.TargetID,
		Action:   key.Action,
	}

	err := tx.NewSelect().
		Model(entry).
		WherePK().
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to get cooldown: %w", err)
	}

	remaining := entry.LastAt.Add(window).Sub(now)
	if remaining < 0 {
		return 0, nil
	}

	return remaining, nil
}

// Record stores now as the last use of the key regardless of any active window.
func (m *CooldownModel) Record(ctx context.Context, key types.CooldownKey, now time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(&types.CooldownEntry{
				ActorID:  key.ActorID,
				TargetID: key.TargetID,
				Action:   key.Action,
				LastAt:   now.UTC(),
			}).
			On("CONFLICT (actor_id, target_id, action) DO UPDATE").
			Set("last_at = EXCLUDED.last_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to record cooldown: %w", err)
		}

		return nil
	})
}

// ClaimWithTx atomically checks and records a use of the key.
// It returns false without writing anything when the key is still cooling down.
func (m *CooldownModel) ClaimWithTx(
	ctx context.Context, tx bun.IDB, key types.CooldownKey, window time.Duration, now time.Time,
) (bool, error) {
	now = now.UTC()

	var claimed []uint64

	err := tx.NewRaw(claimQuery,
		key.ActorID, key.TargetID, key.Action, now, now.Add(-window),
	).Scan(ctx, &claimed)
	if err != nil {
		return false, fmt.Errorf("failed to claim cooldown: %w", err)
	}

	return len(claimed) > 0, nil
}
