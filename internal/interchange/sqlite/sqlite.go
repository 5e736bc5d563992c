package sqlite

import (
	"fmt"
	"os"
	"time"

	"github.com/robalyx/repledger/internal/database/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Exporter handles exporting ledger records to a standalone SQLite database.
type Exporter struct {
	path string
}

// New creates a new SQLite exporter instance.
func New(path string) *Exporter {
	return &Exporter{path: path}
}

// Export writes the records to a fresh database at the exporter's path.
func (e *Exporter) Export(records []*types.ReputationRecord) error {
	// Remove existing file if it exists
	if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing file: %w", err)
	}

	conn, err := sqlite.OpenConn(e.path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	err = sqlitex.ExecuteTransient(conn, `
		CREATE TABLE reputation (
			account_id TEXT PRIMARY KEY,
			positive_count INTEGER NOT NULL,
			negative_count INTEGER NOT NULL,
			last_mutation_at TEXT NOT NULL
		)
	`, nil)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	// Insert records in batches
	const batchSize = 1000
	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))

		if err := insertBatch(conn, records[i:end]); err != nil {
			return err
		}
	}

	return nil
}

// insertBatch writes one batch inside a transaction.
func insertBatch(conn *sqlite.Conn, records []*types.ReputationRecord) (err error) {
	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer endFn(&err)

	for _, record := range records {
		err = sqlitex.Execute(conn,
			"INSERT INTO reputation (account_id, positive_count, negative_count, last_mutation_at) VALUES (?, ?, ?, ?)",
			&sqlitex.ExecOptions{
				Args: []any{
					fmt.Sprintf("%d", record.AccountID),
					record.PositiveCount,
					record.NegativeCount,
					record.LastMutationAt.UTC().Format(time.RFC3339),
				},
			})
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return nil
}
