package bot

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/repledger/internal/bot/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	t.Parallel()

	commands := Commands(-1000, 1000)

	names := make([]string, 0, len(commands))
	for _, command := range commands {
		slash, ok := command.(discord.SlashCommandCreate)
		require.True(t, ok)

		names = append(names, slash.Name)
	}

	assert.Equal(t, []string{
		constants.RepCommandName,
		constants.NoRepCommandName,
		constants.SetRepCommandName,
		constants.RateCommandName,
		constants.CheckRepCommandName,
		constants.LeaderboardCommandName,
		constants.BackupRepCommandName,
		constants.ImportRepCommandName,
	}, names)

	setrep, ok := commands[2].(discord.SlashCommandCreate)
	require.True(t, ok)

	amount, ok := setrep.Options[1].(discord.ApplicationCommandOptionInt)
	require.True(t, ok)
	assert.Equal(t, -1000, *amount.MinValue)
	assert.Equal(t, 1000, *amount.MaxValue)
}

func TestPeriodChoices(t *testing.T) {
	t.Parallel()

	choices := periodChoices()
	require.Len(t, choices, 3)
	assert.Equal(t, "All Time", choices[0].Name)
	assert.Equal(t, "AllTime", choices[0].Value)
	assert.Equal(t, "Weekly", choices[1].Value)
}
