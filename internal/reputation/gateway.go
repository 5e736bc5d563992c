package reputation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/setup/config"
	"go.uber.org/zap"
)

// ErrIdentityUnavailable is returned when the directory cannot resolve an account.
var ErrIdentityUnavailable = errors.New("identity unavailable")

// Identity is what the gateway needs to know about an account.
type Identity struct {
	ID        uint64
	CreatedAt time.Time
	Bot       bool
}

// Directory resolves account identities.
type Directory interface {
	Identity(ctx context.Context, accountID uint64) (*Identity, error)
}

// Store commits validated mutations and reads standings.
type Store interface {
	Commit(ctx context.Context, m *types.Mutation) (*types.MutationOutcome, error)
	GetStanding(ctx context.Context, accountID uint64) (*types.ReputationRecord, *types.RatingSummary, error)
}

// Invalidator is notified after every committed ledger write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Rules holds the limits applied to every request.
type Rules struct {
	MinAccountAge  time.Duration
	RepWindow      time.Duration
	FeedbackWindow time.Duration
	SetMin         int64
	SetMax         int64
	ExcludedIDs    []uint64
}

// RulesFromConfig builds the gateway rules from the reputation config section.
func RulesFromConfig(cfg *config.Reputation) Rules {
	return Rules{
		MinAccountAge:  cfg.MinAccountAge(),
		RepWindow:      cfg.RepWindow(),
		FeedbackWindow: cfg.FeedbackWindow(),
		SetMin:         cfg.SetMin,
		SetMax:         cfg.SetMax,
		ExcludedIDs:    cfg.ExcludedIDs,
	}
}

// Request asks for one mutation. Amount is the signed value for SetRep and the stars for Feedback.
type Request struct {
	ActorID  uint64
	TargetID uint64
	Action   enum.ActionKind
	Amount   int64
}

// Result is the outcome of an accepted or rejected request.
type Result struct {
	Record    *types.ReputationRecord
	Rating    *types.RatingSummary
	Rejection *Rejection
}

// Accepted reports whether the mutation was applied.
func (r *Result) Accepted() bool {
	return r.Rejection == nil
}

// Gateway validates requests and commits them atomically.
type Gateway struct {
	store       Store
	directory   Directory
	invalidator Invalidator
	rules       Rules
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// WithInvalidator registers a cache to drop after ledger writes.
func WithInvalidator(invalidator Invalidator) Option {
	return func(g *Gateway) {
		g.invalidator = invalidator
	}
}

// NewGateway creates a new mutation gateway.
func NewGateway(store Store, directory Directory, rules Rules, logger *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		store:     store,
		directory: directory,
		rules:     rules,
		now:       time.Now,
		logger:    logger.Named("gateway"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Rules returns the rules applied by the gateway.
func (g *Gateway) Rules() Rules {
	return g.rules
}

// Submit validates the request and, if every rule passes, commits it.
// Rule violations are returned as a Result with a Rejection; errors are storage or lookup faults.
func (g *Gateway) Submit(ctx context.Context, req Request) (*Result, error) {
	if !req.Action.IsAActionKind() {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownAction, req.Action)
	}

	now := g.now().UTC()

	rejection, err := g.validate(ctx, req, now)
	if err != nil {
		return nil, err
	}

	if rejection != nil {
		return &Result{Rejection: rejection}, nil
	}

	outcome, err := g.store.Commit(ctx, g.plan(req, now))
	if err != nil {
		return nil, fmt.Errorf("failed to commit %s: %w", req.Action, err)
	}

	if outcome.Blocked {
		return &Result{Rejection: &Rejection{
			Reason:    RejectCooldown,
			Action:    req.Action,
			Remaining: max(outcome.Remaining, time.Second),
		}}, nil
	}

	if req.Action != enum.ActionKindFeedback && g.invalidator != nil {
		if err := g.invalidator.Invalidate(ctx); err != nil {
			g.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
		}
	}

	g.logger.Info("Reputation mutation applied",
		zap.Uint64("actorID", req.ActorID),
		zap.Uint64("targetID", req.TargetID),
		zap.String("action", req.Action.String()),
		zap.Int64("amount", req.Amount))

	return &Result{Record: outcome.Record, Rating: outcome.Rating}, nil
}

// Standing returns the current record and rating summary of an account.
func (g *Gateway) Standing(
	ctx context.Context, accountID uint64,
) (*types.ReputationRecord, *types.RatingSummary, error) {
	return g.store.GetStanding(ctx, accountID)
}

// validate applies the rules in order and returns the first violation.
func (g *Gateway) validate(ctx context.Context, req Request, now time.Time) (*Rejection, error) {
	if req.ActorID == req.TargetID {
		return &Rejection{Reason: RejectSelfTarget, Action: req.Action}, nil
	}

	excluded, err := g.isExcluded(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}

	if excluded {
		return &Rejection{Reason: RejectExcludedTarget, Action: req.Action}, nil
	}

	if req.Action.TenureGated() {
		actor, err := g.directory.Identity(ctx, req.ActorID)
		if err != nil {
			return nil, fmt.Errorf("%w: actor %d: %w", ErrIdentityUnavailable, req.ActorID, err)
		}

		if age := now.Sub(actor.CreatedAt); age < g.rules.MinAccountAge {
			return &Rejection{
				Reason:        RejectUnderTenure,
				Action:        req.Action,
				AccountAge:    max(age, 0),
				MinAccountAge: g.rules.MinAccountAge,
			}, nil
		}
	}

	switch req.Action {
	case enum.ActionKindSetRep:
		if req.Amount < g.rules.SetMin || req.Amount > g.rules.SetMax {
			return &Rejection{
				Reason: RejectOutOfBounds, Action: req.Action, Min: g.rules.SetMin, Max: g.rules.SetMax,
			}, nil
		}
	case enum.ActionKindFeedback:
		if req.Amount < types.MinStars || req.Amount > types.MaxStars {
			return &Rejection{
				Reason: RejectOutOfBounds, Action: req.Action, Min: types.MinStars, Max: types.MaxStars,
			}, nil
		}
	case enum.ActionKindRep, enum.ActionKindNegRep:
	}

	// The cooldown itself is claimed atomically by the commit
	return nil, nil
}

// isExcluded reports whether the target may never receive mutations.
func (g *Gateway) isExcluded(ctx context.Context, targetID uint64) (bool, error) {
	if slices.Contains(g.rules.ExcludedIDs, targetID) {
		return true, nil
	}

	target, err := g.directory.Identity(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("%w: target %d: %w", ErrIdentityUnavailable, targetID, err)
	}

	return target.Bot, nil
}

// plan turns a validated request into the mutation committed by the store.
func (g *Gateway) plan(req Request, now time.Time) *types.Mutation {
	m := &types.Mutation{
		ActorID:  req.ActorID,
		TargetID: req.TargetID,
		Action:   req.Action,
		At:       now,
	}

	switch req.Action {
	case enum.ActionKindRep:
		m.PositiveDelta = 1
	case enum.ActionKindNegRep:
		m.NegativeDelta = 1
	case enum.ActionKindSetRep:
		m.Positive, m.Negative = SplitSigned(req.Amount, g.rules.SetMin, g.rules.SetMax)
	case enum.ActionKindFeedback:
		m.Stars = int(req.Amount)
	}

	if req.Action.Cooldowned() {
		key := &types.CooldownKey{ActorID: req.ActorID, Action: req.Action}
		m.CooldownWindow = g.rules.RepWindow

		if req.Action.PerTarget() {
			key.TargetID = req.TargetID
			m.CooldownWindow = g.rules.FeedbackWindow
		}

		m.Cooldown = key
	}

	return m
}

// SplitSigned maps a signed score onto the two counters so that their difference equals it.
// The score is first clamped to [lower, upper], so the negative counter is bounded by -lower
// and the positive counter by upper. lower must be greater than math.MinInt64.
func SplitSigned(amount, lower, upper int64) (positive, negative int64) {
	amount = max(amount, min(lower, 0))
	amount = min(amount, max(upper, 0))

	if amount >= 0 {
		return amount, 0
	}

	return 0, -amount
}
