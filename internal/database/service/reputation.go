package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/repledger/internal/database/dbretry"
	"github.com/robalyx/repledger/internal/database/models"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// errCooldownActive rolls back a mutation whose cooldown was claimed concurrently.
var errCooldownActive = errors.New("cooldown active")

// ReputationService handles reputation-related business logic.
type ReputationService struct {
	db       *bun.DB
	ledger   *models.LedgerModel
	cooldown *models.CooldownModel
	rating   *models.RatingModel
	logger   *zap.Logger
}

// NewReputation creates a new reputation service.
func NewReputation(
	db *bun.DB,
	ledger *models.LedgerModel,
	cooldown *models.CooldownModel,
	rating *models.RatingModel,
	logger *zap.Logger,
) *ReputationService {
	return &ReputationService{
		db:       db,
		ledger:   ledger,
		cooldown: cooldown,
		rating:   rating,
		logger:   logger.Named("reputation_service"),
	}
}

// Commit claims the cooldown and writes the mutation in a single transaction.
// When the cooldown is already taken nothing is written and the outcome is marked blocked.
func (s *ReputationService) Commit(ctx context.Context, m *types.Mutation) (*types.MutationOutcome, error) {
	var outcome *types.MutationOutcome

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		var err error

		outcome, err = s.commitWithTx(ctx, tx, m)

		return err
	})
	if err != nil {
		if !errors.Is(err, errCooldownActive) {
			return nil, err
		}

		remaining, err := s.cooldown.Remaining(ctx, *m.Cooldown, m.CooldownWindow, m.At)
		if err != nil {
			return nil, err
		}

		s.logger.Debug("Mutation lost cooldown race",
			zap.Uint64("actorID", m.ActorID),
			zap.String("action", m.Action.String()))

		return &types.MutationOutcome{Blocked: true, Remaining: remaining}, nil
	}

	s.logger.Debug("Committed mutation",
		zap.Uint64("actorID", m.ActorID),
		zap.Uint64("targetID", m.TargetID),
		zap.String("action", m.Action.String()))

	return outcome, nil
}

func (s *ReputationService) commitWithTx(
	ctx context.Context, tx bun.Tx, m *types.Mutation,
) (*types.MutationOutcome, error) {
	if m.Cooldown != nil {
		claimed, err := s.cooldown.ClaimWithTx(ctx, tx, *m.Cooldown, m.CooldownWindow, m.At)
		if err != nil {
			return nil, err
		}

		if !claimed {
			return nil, errCooldownActive
		}
	}

	outcome := &types.MutationOutcome{}

	switch m.Action {
	case enum.ActionKindRep, enum.ActionKindNegRep:
		record, err := s.ledger.ApplyWithTx(ctx, tx, m.TargetID, m.PositiveDelta, m.NegativeDelta, m.At)
		if err != nil {
			return nil, err
		}

		outcome.Record = record

	case enum.ActionKindSetRep:
		record, err := s.ledger.SetExactWithTx(ctx, tx, m.TargetID, m.Positive, m.Negative, m.At)
		if err != nil {
			return nil, err
		}

		outcome.Record = record

	case enum.ActionKindFeedback:
		if err := s.rating.SubmitWithTx(ctx, tx, m.ActorID, m.TargetID, m.Stars, m.At); err != nil {
			return nil, err
		}

		record, err := s.ledger.GetRecordWithTx(ctx, tx, m.TargetID)
		if err != nil {
			return nil, err
		}

		outcome.Record = record

	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownAction, m.Action)
	}

	summary, err := s.rating.AggregateWithTx(ctx, tx, m.TargetID)
	if err != nil {
		return nil, err
	}

	outcome.Rating = summary

	return outcome, nil
}

// GetStanding returns the record and rating summary of an account.
func (s *ReputationService) GetStanding(
	ctx context.Context, accountID uint64,
) (*types.ReputationRecord, *types.RatingSummary, error) {
	record, err := s.ledger.GetRecord(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.rating.Aggregate(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	return record, summary, nil
}
