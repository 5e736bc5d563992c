package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robalyx/repledger/internal/interchange"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// LedgerCommands returns the commands that read or bulk-write ledger data.
func LedgerCommands(deps *CLIDependencies) []*cli.Command {
	formatNames := make([]string, 0, len(interchange.Formats))
	for _, format := range interchange.Formats {
		formatNames = append(formatNames, string(format))
	}

	return []*cli.Command{
		{
			Name:  "export",
			Usage: "Export the ledger to a file",
			Description: `Export every account's counters in leaderboard order.

Examples:
  ledger export --out backups/rep_data.json                 # JSON document accepted by import
  ledger export --format csv --out backups/ledger.csv       # Spreadsheet friendly
  ledger export --format sqlite --out backups/ledger.db     # Standalone SQLite database`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "format",
					Usage: "Output format (" + strings.Join(formatNames, ", ") + ")",
					Value: string(interchange.FormatJSON),
				},
				&cli.StringFlag{
					Name:     "out",
					Usage:    "Output file path (required)",
					Required: true,
				},
			},
			Action: handleExport(deps),
		},
		{
			Name:      "import",
			Usage:     "Merge a JSON backup into the ledger",
			ArgsUsage: "FILE",
			Action:    handleImport(deps),
		},
		{
			Name:      "show",
			Usage:     "Show one account's counters and rating",
			ArgsUsage: "ACCOUNT_ID",
			Action:    handleShow(deps),
		},
	}
}

// handleExport handles the 'export' command.
func handleExport(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		format, err := interchange.ParseFormat(c.String("format"))
		if err != nil {
			return err
		}

		return deps.Interchange.ExportTo(ctx, format, c.String("out"))
	}
}

// handleImport handles the 'import' command.
func handleImport(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrFileRequired
		}

		data, err := os.ReadFile(c.Args().First())
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}

		report, err := deps.Interchange.Import(ctx, data)
		if err != nil {
			return err
		}

		deps.Logger.Info("Import complete",
			zap.String("file", c.Args().First()),
			zap.Int("applied", report.Applied),
			zap.Int("skipped", report.Skipped))

		return nil
	}
}

// handleShow handles the 'show' command.
func handleShow(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrIDRequired
		}

		accountID, err := strconv.ParseUint(c.Args().First(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid account id %q: %w", c.Args().First(), err)
		}

		record, err := deps.DB.Model().Ledger().GetRecord(ctx, accountID)
		if err != nil {
			return err
		}

		rating, err := deps.DB.Model().Rating().Aggregate(ctx, accountID)
		if err != nil {
			return err
		}

		fields := []zap.Field{
			zap.Uint64("accountID", record.AccountID),
			zap.Int64("positive", record.PositiveCount),
			zap.Int64("negative", record.NegativeCount),
			zap.Int64("net", record.Net()),
			zap.Time("lastMutationAt", record.LastMutationAt),
			zap.Int("ratings", rating.Count),
		}

		if rating.HasRatings() {
			fields = append(fields, zap.Float64("average", *rating.Average))
		}

		deps.Logger.Info("Account standing", fields...)

		return nil
	}
}
