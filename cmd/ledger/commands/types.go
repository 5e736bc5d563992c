package commands

import (
	"errors"

	"github.com/robalyx/repledger/internal/database"
	"github.com/robalyx/repledger/internal/interchange"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

var (
	ErrNameRequired = errors.New("NAME argument required")
	ErrFileRequired = errors.New("FILE argument required")
	ErrIDRequired   = errors.New("ACCOUNT_ID argument required")
)

// CLIDependencies holds the common dependencies needed by CLI commands.
type CLIDependencies struct {
	DB          database.Client
	Migrator    *migrate.Migrator
	Interchange *interchange.Service
	Logger      *zap.Logger
}
