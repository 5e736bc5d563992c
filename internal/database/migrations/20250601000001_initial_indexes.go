package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			// Windowed leaderboards filter on the last mutation time
			`CREATE INDEX IF NOT EXISTS idx_reputation_records_last_mutation_at
			 ON reputation_records (last_mutation_at)`,
			// Rating aggregates scan every entry of one target
			`CREATE INDEX IF NOT EXISTS idx_rating_entries_target_id
			 ON rating_entries (target_id)`,
		}

		for _, index := range indexes {
			if _, err := db.ExecContext(ctx, index); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"DROP INDEX IF EXISTS idx_rating_entries_target_id",
			"DROP INDEX IF EXISTS idx_reputation_records_last_mutation_at",
		}

		for _, index := range indexes {
			if _, err := db.ExecContext(ctx, index); err != nil {
				return fmt.Errorf("failed to drop index: %w", err)
			}
		}

		return nil
	})
}
