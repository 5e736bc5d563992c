package models

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/robalyx/repledger/internal/database/dbretry"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// RatingModel handles database operations for star ratings.
type RatingModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRating creates a new RatingModel.
func NewRating(db *bun.DB, logger *zap.Logger) *RatingModel {
	return &RatingModel{
		db:     db,
		logger: logger.Named("db_rating"),
	}
}

// SubmitWithTx stores a rating, replacing any earlier rating by the same rater for the same target.
func (m *RatingModel) SubmitWithTx(
	ctx context.Context, tx bun.IDB, raterID, targetID uint64, stars int, at time.Time,
) error {
	if stars < types.MinStars || stars > types.MaxStars {
		return types.ErrStarsOutOfRange
	}

	_, err := tx.NewInsert().
		Model(&types.RatingEntry{
			RaterID:  raterID,
			TargetID: targetID,
			Stars:    stars,
			RatedAt:  at.UTC(),
		}).
		On("CONFLICT (rater_id, target_id) DO UPDATE").
		Set("stars = EXCLUDED.stars").
		Set("rated_at = EXCLUDED.rated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}

	return nil
}

// Aggregate returns the rating summary for a target.
func (m *RatingModel) Aggregate(ctx context.Context, targetID uint64) (*types.RatingSummary, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.RatingSummary, error) {
		return m.AggregateWithTx(ctx, m.db, targetID)
	})
}

// AggregateWithTx returns the rating summary for a target using the given transaction.
// The average is rounded to two decimal places.
func (m *RatingModel) AggregateWithTx(
	ctx context.Context, tx bun.IDB, targetID uint64,
) (*types.RatingSummary, error) {
	var (
		count   int
		average *float64
	)

	err := tx.NewSelect().
		Model((*types.RatingEntry)(nil)).
		ColumnExpr("COUNT(*)").
		ColumnExpr("CAST(AVG(stars) AS DOUBLE PRECISION)").
		Where("target_id = ?", targetID).
		Scan(ctx, &count, &average)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	summary := &types.RatingSummary{Count: count}
	if count > 0 && average != nil {
		rounded := math.Round(*average*100) / 100
		summary.Average = &rounded
	}

	return summary, nil
}
