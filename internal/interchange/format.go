package interchange

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robalyx/repledger/internal/interchange/csv"
	"github.com/robalyx/repledger/internal/interchange/sqlite"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents a supported export format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatSQLite}

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range Formats {
		if f == format {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ExportTo writes the whole ledger to path in the given format.
func (s *Service) ExportTo(ctx context.Context, format Format, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch format {
	case FormatJSON:
		data, err := s.Export(ctx)
		if err != nil {
			return err
		}

		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to write json file: %w", err)
		}

	case FormatCSV, FormatSQLite:
		records, err := s.Records(ctx)
		if err != nil {
			return err
		}

		if format == FormatCSV {
			err = csv.New(path).Export(records)
		} else {
			err = sqlite.New(path).Export(records)
		}

		if err != nil {
			return fmt.Errorf("failed to export %s: %w", format, err)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	s.logger.Info("Exported ledger",
		zap.String("format", string(format)),
		zap.String("path", path))

	return nil
}
