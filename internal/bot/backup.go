package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/robalyx/repledger/internal/bot/constants"
	"github.com/robalyx/repledger/internal/bot/utils"
	"github.com/robalyx/repledger/internal/interchange"
	"go.uber.org/zap"
)

var errAttachmentTooLarge = errors.New("attachment is too large")

// handleBackup sends the current ledger as a JSON attachment.
func (b *Bot) handleBackup(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	records, err := b.interchange.Records(ctx)
	if err != nil {
		b.logger.Error("Failed to read ledger for backup", zap.Error(err))
		b.respondEphemeral(event, "❌ Failed to create the backup. Please try again.")

		return
	}

	if len(records) == 0 {
		b.respondEphemeral(event, "❌ No rep data exists yet.")
		return
	}

	data, err := interchange.Encode(records)
	if err != nil {
		b.logger.Error("Failed to encode backup", zap.Error(err))
		b.respondEphemeral(event, "❌ Failed to create the backup. Please try again.")

		return
	}

	message := discord.NewMessageCreateBuilder().
		SetContent("📁 Here is the current **" + constants.BackupFileName + "**:").
		AddFiles(discord.NewFile(constants.BackupFileName, "", bytes.NewReader(data))).
		SetEphemeral(true).
		Build()

	if err := event.CreateMessage(message); err != nil {
		b.logger.Error("Failed to send backup", zap.Error(err))
	}
}

// handleImport merges an uploaded backup into the ledger.
func (b *Bot) handleImport(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	if !utils.CanManageGuild(event.Member()) {
		b.respondEphemeral(event, "❌ You need the **Manage Server** permission to import rep.")
		return
	}

	attachment, ok := data.OptAttachment(constants.FileOptionName)
	if !ok {
		b.respondEphemeral(event, "❌ Attach a backup file to import.")
		return
	}

	if attachment.Size > constants.MaxImportFileBytes {
		b.respondEphemeral(event, "❌ That file is too large to import.")
		return
	}

	// Downloading and writing may outlast the initial response window
	if err := event.DeferCreateMessage(true); err != nil {
		b.logger.Error("Failed to defer import response", zap.Error(err))
		return
	}

	content := b.importAttachment(ctx, attachment.URL)

	update := discord.NewMessageUpdateBuilder().
		SetContent(content).
		Build()

	if _, err := b.client.Rest().UpdateInteractionResponse(event.ApplicationID(), event.Token(), update); err != nil {
		b.logger.Error("Failed to send import result", zap.Error(err))
	}
}

// importAttachment downloads and imports a backup, returning the message to show.
func (b *Bot) importAttachment(ctx context.Context, url string) string {
	payload, err := b.download(ctx, url)
	if err != nil {
		b.logger.Error("Failed to download import file", zap.Error(err))
		return "❌ Failed to download the file. Please try again."
	}

	report, err := b.interchange.Import(ctx, payload)
	switch {
	case errors.Is(err, interchange.ErrMalformedDocument):
		return "❌ That file is not a valid rep backup."
	case err != nil:
		b.logger.Error("Failed to import ledger", zap.Error(err))

		if report != nil && report.Applied > 0 {
			return fmt.Sprintf("⚠️ Import stopped after **%d** entries. Please try again.", report.Applied)
		}

		return "❌ Failed to import the file. Please try again."
	}

	return fmt.Sprintf("📥 Imported **%d** entries (%d skipped).", report.Applied, report.Skipped)
}

// download fetches an attachment body, refusing anything over the import limit.
func (b *Bot) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxImportFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	if len(payload) > constants.MaxImportFileBytes {
		return nil, errAttachmentTooLarge
	}

	return payload, nil
}
