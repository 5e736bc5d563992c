package bot

import (
	"context"
	"errors"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/robalyx/repledger/internal/bot/constants"
	"github.com/robalyx/repledger/internal/bot/utils"
	view "github.com/robalyx/repledger/internal/bot/views/reputation"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/reputation"
	"go.uber.org/zap"
)

// commandActions maps mutation commands to their action kind.
var commandActions = map[string]enum.ActionKind{
	constants.RepCommandName:    enum.ActionKindRep,
	constants.NoRepCommandName:  enum.ActionKindNegRep,
	constants.SetRepCommandName: enum.ActionKindSetRep,
	constants.RateCommandName:   enum.ActionKindFeedback,
}

// handleMutation submits rep, norep, setrep and rate through the gateway.
func (b *Bot) handleMutation(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	action := commandActions[data.CommandName()]

	if action == enum.ActionKindSetRep && !utils.CanManageGuild(event.Member()) {
		b.respondEphemeral(event, "❌ You need the **Manage Server** permission to set rep.")
		return
	}

	req := reputation.Request{
		ActorID:  uint64(event.User().ID),
		TargetID: uint64(data.User(constants.MemberOptionName).ID),
		Action:   action,
	}

	switch action {
	case enum.ActionKindSetRep:
		req.Amount = int64(data.Int(constants.AmountOptionName))
	case enum.ActionKindFeedback:
		req.Amount = int64(data.Int(constants.StarsOptionName))
	case enum.ActionKindRep, enum.ActionKindNegRep:
	}

	result, err := b.gateway.Submit(ctx, req)
	if err != nil {
		b.logger.Error("Failed to submit reputation request",
			zap.String("action", action.String()),
			zap.Uint64("actorID", req.ActorID),
			zap.Uint64("targetID", req.TargetID),
			zap.Error(err))

		if errors.Is(err, reputation.ErrIdentityUnavailable) {
			b.respondEphemeral(event, "❌ Couldn't look up that user. Please try again.")
			return
		}

		b.respondEphemeral(event, "❌ Failed to save reputation. Please try again.")

		return
	}

	if !result.Accepted() {
		b.respondEphemeral(event, result.Rejection.Message())
		return
	}

	b.respond(event, view.Accepted(req, result))
}

// handleCheckRep shows the standing of the given member or the caller.
func (b *Bot) handleCheckRep(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	accountID := uint64(event.User().ID)
	if member, ok := data.OptUser(constants.MemberOptionName); ok {
		accountID = uint64(member.ID)
	}

	record, rating, err := b.gateway.Standing(ctx, accountID)
	if err != nil {
		b.logger.Error("Failed to get standing", zap.Uint64("accountID", accountID), zap.Error(err))
		b.respondEphemeral(event, "❌ Failed to load reputation. Please try again.")

		return
	}

	b.respond(event, view.Standing(accountID, record, rating))
}
