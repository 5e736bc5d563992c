package database

import (
	"github.com/robalyx/repledger/internal/database/service"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	reputation *service.ReputationService
}

// NewService creates a new service instance with all services.
func NewService(db *bun.DB, repository *Repository, logger *zap.Logger) *Service {
	return &Service{
		reputation: service.NewReputation(
			db, repository.Ledger(), repository.Cooldown(), repository.Rating(), logger,
		),
	}
}

// Reputation returns the reputation service.
func (s *Service) Reputation() *service.ReputationService {
	return s.reputation
}
