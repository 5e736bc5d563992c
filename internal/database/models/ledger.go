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

// applyQuery increments both counters in a single statement so concurrent
// writers to the same account never lose an update.
const applyQuery = `
INSERT INTO reputation_records (account_id, positive_count, negative_count, last_mutation_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (account_id) DO UPDATE SET
	positive_count = reputation_records.positive_count + excluded.positive_count,
	negative_count = reputation_records.negative_count + excluded.negative_count,
	last_mutation_at = excluded.last_mutation_at
RETURNING account_id, positive_count, negative_count, last_mutation_at`

// LedgerModel handles database operations for reputation records.
type LedgerModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewLedger creates a new LedgerModel.
func NewLedger(db *bun.DB, logger *zap.Logger) *LedgerModel {
	return &LedgerModel{
		db:     db,
		logger: logger.Named("db_ledger"),
	}
}

// GetRecord returns the record for an account.
// Accounts that were never mutated yield a zero record rather than an error.
func (m *LedgerModel) GetRecord(ctx context.Context, accountID uint64) (*types.ReputationRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ReputationRecord, error) {
		return m.GetRecordWithTx(ctx, m.db, accountID)
	})
}

// GetRecordWithTx returns the record for an account using the given transaction.
func (m *LedgerModel) GetRecordWithTx(
	ctx context.Context, tx bun.IDB, accountID uint64,
) (*types.ReputationRecord, error) {
	record := &types.ReputationRecord{AccountID: accountID}

	err := tx.NewSelect().
		Model(record).
		WherePK().
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &types.ReputationRecord{AccountID: accountID}, nil
		}

		return nil, fmt.Errorf("failed to get reputation record: %w", err)
	}

	return record, nil
}

// Apply adds the deltas to an account's counters and returns the resulting record.
func (m *LedgerModel) Apply(
	ctx context.Context, accountID uint64, positiveDelta, negativeDelta int64, at time.Time,
) (*types.ReputationRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ReputationRecord, error) {
		return m.ApplyWithTx(ctx, m.db, accountID, positiveDelta, negativeDelta, at)
	})
}

// ApplyWithTx adds the deltas to an account's counters using the given transaction.
// Counters never decrease, so negative deltas are rejected.
func (m *LedgerModel) ApplyWithTx(
	ctx context.Context, tx bun.IDB, accountID uint64, positiveDelta, negativeDelta int64, at time.Time,
) (*types.ReputationRecord, error) {
	if positiveDelta < 0 || negativeDelta < 0 {
		return nil, types.ErrNegativeDelta
	}

	var record types.ReputationRecord

	err := tx.NewRaw(applyQuery, accountID, positiveDelta, negativeDelta, at.UTC()).Scan(ctx, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to apply reputation delta: %w", err)
	}

	m.logger.Debug("Applied reputation delta",
		zap.Uint64("accountID", accountID),
		zap.Int64("positiveDelta", positiveDelta),
		zap.Int64("negativeDelta", negativeDelta),
		zap.Int64("positive", record.PositiveCount),
		zap.Int64("negative", record.NegativeCount))

	return &record, nil
}

// SetExact overwrites an account's counters.
func (m *LedgerModel) SetExact(
	ctx context.Context, accountID uint64, positive, negative int64, at time.Time,
) (*types.ReputationRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ReputationRecord, error) {
		return m.SetExactWithTx(ctx, m.db, accountID, positive, negative, at)
	})
}

// SetExactWithTx overwrites an account's counters using the given transaction.
func (m *LedgerModel) SetExactWithTx(
	ctx context.Context, tx bun.IDB, accountID uint64, positive, negative int64, at time.Time,
) (*types.ReputationRecord, error) {
	if positive < 0 || negative < 0 {
		return nil, types.ErrNegativeDelta
	}

	record := &types.ReputationRecord{
		AccountID:      accountID,
		PositiveCount:  positive,
		NegativeCount:  negative,
		LastMutationAt: at.UTC(),
	}

	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (account_id) DO UPDATE").
		Set("positive_count = EXCLUDED.positive_count").
		Set("negative_count = EXCLUDED.negative_count").
		Set("last_mutation_at = EXCLUDED.last_mutation_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to set reputation record: %w", err)
	}

	return record, nil
}

// GetRecords returns every record in leaderboard order.
// A zero since returns all records, otherwise only those mutated at or after it.
func (m *LedgerModel) GetRecords(ctx context.Context, since time.Time) ([]*types.ReputationRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ReputationRecord, error) {
		var records []*types.ReputationRecord

		query := m.db.NewSelect().
			Model(&records).
			Order("positive_count DESC", "negative_count ASC", "account_id ASC")

		if !since.IsZero() {
			query = query.Where("last_mutation_at >= ?", since.UTC())
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to get reputation records: %w", err)
		}

		return records, nil
	})
}

// Count returns the number of accounts with a record.
func (m *LedgerModel) Count(ctx context.Context) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		count, err := m.db.NewSelect().
			Model((*types.ReputationRecord)(nil)).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count reputation records: %w", err)
		}

		return count, nil
	})
}
