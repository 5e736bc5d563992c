package bot

import (
	"context"
	"errors"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/robalyx/repledger/internal/bot/constants"
	"github.com/robalyx/repledger/internal/bot/utils"
	view "github.com/robalyx/repledger/internal/bot/views/leaderboard"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/leaderboard"
	"github.com/robalyx/repledger/internal/pagination"
	"go.uber.org/zap"
)

// handleLeaderboard opens a pagination session and posts its first page.
func (b *Bot) handleLeaderboard(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	mode := enum.LeaderboardPeriodAllTime
	if name, ok := data.OptString(constants.PeriodOptionName); ok {
		parsed, err := enum.LeaderboardPeriodString(name)
		if err != nil {
			b.respondEphemeral(event, "❌ Unknown leaderboard period.")
			return
		}

		mode = parsed
	}

	session, page, err := b.sessions.Open(ctx, uint64(event.User().ID), mode)
	if err != nil {
		b.logger.Error("Failed to open leaderboard", zap.String("period", mode.String()), zap.Error(err))
		b.respondEphemeral(event, "❌ Failed to load the leaderboard. Please try again.")

		return
	}

	// An empty ledger has nothing to page through
	if page.TotalEntries == 0 && !mode.IsWindowed() {
		b.sessions.Close(session.ID)
		b.respondEphemeral(event, view.EmptyMessage)

		return
	}

	if err := event.CreateMessage(view.NewBuilder(page, session.ID).Build()); err != nil {
		b.sessions.Close(session.ID)
		b.logger.Error("Failed to send leaderboard", zap.Error(err))
	}
}

// handleLeaderboardComponent applies a button press or period selection to its session.
func (b *Bot) handleLeaderboardComponent(ctx context.Context, event *events.ComponentInteractionCreate) {
	action, sessionID, err := utils.ParseCustomID(event.Data.CustomID())
	if err != nil {
		b.logger.Debug("Ignoring unknown component", zap.String("customID", event.Data.CustomID()))
		b.respondEphemeral(event, "This component is no longer supported.")

		return
	}

	requesterID := uint64(event.User().ID)

	var page leaderboard.Page

	session, err := b.sessions.Get(sessionID)
	if err == nil {
		switch action {
		case utils.ViewerPrevPage:
			page, err = session.Retreat(requesterID)
		case utils.ViewerNextPage:
			page, err = session.Advance(requesterID)
		case utils.ViewerPeriod:
			page, err = b.switchPeriod(ctx, event, session, requesterID)
		}
	}

	switch {
	case errors.Is(err, pagination.ErrNotOwner):
		b.respondEphemeral(event, "Only the user who ran `/leaderboard` can use these buttons.")
		return
	case errors.Is(err, pagination.ErrSessionExpired):
		b.respondEphemeral(event, "⌛ This leaderboard has expired. Run `/leaderboard` again.")
		return
	case err != nil:
		b.logger.Error("Failed to update leaderboard",
			zap.String("action", string(action)),
			zap.String("sessionID", sessionID),
			zap.Error(err))
		b.respondEphemeral(event, "❌ Failed to update the leaderboard. Please try again.")

		return
	}

	if err := event.UpdateMessage(view.NewBuilder(page, session.ID).BuildUpdate()); err != nil {
		b.logger.Error("Failed to update leaderboard message", zap.Error(err))
	}
}

// switchPeriod reads the selected period and switches the session to it.
func (b *Bot) switchPeriod(
	ctx context.Context, event *events.ComponentInteractionCreate, session *pagination.Session, requesterID uint64,
) (leaderboard.Page, error) {
	values := event.StringSelectMenuInteractionData().Values
	if len(values) == 0 {
		return session.Current(requesterID)
	}

	mode, err := enum.LeaderboardPeriodString(values[0])
	if err != nil {
		return leaderboard.Page{}, err
	}

	return session.SwitchMode(ctx, requesterID, mode)
}
