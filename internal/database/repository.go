package database

import (
	"github.com/robalyx/repledger/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	ledger   *models.LedgerModel
	cooldown *models.CooldownModel
	rating   *models.RatingModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		ledger:   models.NewLedger(db, logger),
		cooldown: models.NewCooldown(db, logger),
		rating:   models.NewRating(db, logger),
	}
}

// Ledger returns the reputation ledger model.
func (r *Repository) Ledger() *models.LedgerModel {
	return r.ledger
}

// Cooldown returns the cooldown model.
func (r *Repository) Cooldown() *models.CooldownModel {
	return r.cooldown
}

// Rating returns the rating model.
func (r *Repository) Rating() *models.RatingModel {
	return r.rating
}
