package bot

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/repledger/internal/bot/constants"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/database/types/enum"
)

// Commands returns the global slash commands served by the bot.
func Commands(setMin, setMax int) []discord.ApplicationCommandCreate {
	minStars, maxStars := types.MinStars, types.MaxStars

	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        constants.RepCommandName,
			Description: "Give +1 reputation to a user.",
			Options: []discord.ApplicationCommandOption{
				memberOption("Who gets the rep?", true),
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.NoRepCommandName,
			Description: "Give -1 reputation to a user.",
			Options: []discord.ApplicationCommandOption{
				memberOption("Who loses rep?", true),
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.SetRepCommandName,
			Description: "Set a user's reputation to an exact number.",
			Options: []discord.ApplicationCommandOption{
				memberOption("Whose rep to set?", true),
				discord.ApplicationCommandOptionInt{
					Name:        constants.AmountOptionName,
					Description: "The new reputation value.",
					Required:    true,
					MinValue:    &setMin,
					MaxValue:    &setMax,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.RateCommandName,
			Description: "Rate a user from 1 to 5 stars.",
			Options: []discord.ApplicationCommandOption{
				memberOption("Who are you rating?", true),
				discord.ApplicationCommandOptionInt{
					Name:        constants.StarsOptionName,
					Description: "How many stars?",
					Required:    true,
					MinValue:    &minStars,
					MaxValue:    &maxStars,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.CheckRepCommandName,
			Description: "Check a user's reputation.",
			Options: []discord.ApplicationCommandOption{
				memberOption("Whose rep to check? Defaults to you.", false),
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.LeaderboardCommandName,
			Description: "Show the reputation leaderboard.",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        constants.PeriodOptionName,
					Description: "Time period to rank. Defaults to all time.",
					Choices:     periodChoices(),
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.BackupRepCommandName,
			Description: "Download the reputation data file.",
		},
		discord.SlashCommandCreate{
			Name:        constants.ImportRepCommandName,
			Description: "Import a reputation data file.",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionAttachment{
					Name:        constants.FileOptionName,
					Description: "A rep_data.json backup.",
					Required:    true,
				},
			},
		},
	}
}

func memberOption(description string, required bool) discord.ApplicationCommandOptionUser {
	return discord.ApplicationCommandOptionUser{
		Name:        constants.MemberOptionName,
		Description: description,
		Required:    required,
	}
}

func periodChoices() []discord.ApplicationCommandOptionChoiceString {
	periods := enum.LeaderboardPeriodValues()

	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(periods))
	for _, period := range periods {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  period.Label(),
			Value: period.String(),
		})
	}

	return choices
}
