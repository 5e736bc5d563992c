package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robalyx/repledger/internal/database/types"
)

// Header lists the exported columns.
var Header = []string{"account_id", "positive_count", "negative_count", "last_mutation_at"}

// Exporter handles exporting ledger records to a csv file.
type Exporter struct {
	path string
}

// New creates a new csv exporter instance.
func New(path string) *Exporter {
	return &Exporter{path: path}
}

// Export writes the records to the exporter's file, replacing it if it exists.
func (e *Exporter) Export(records []*types.ReputationRecord) error {
	file, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write([]string{
			strconv.FormatUint(record.AccountID, 10),
			strconv.FormatInt(record.PositiveCount, 10),
			strconv.FormatInt(record.NegativeCount, 10),
			record.LastMutationAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv file: %w", err)
	}

	return nil
}
