package leaderboard_test

import (
	"strings"
	"testing"

	"github.com/disgoorg/disgo/discord"
	view "github.com/robalyx/repledger/internal/bot/views/leaderboard"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/leaderboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(n int) *leaderboard.Snapshot {
	entries := make([]leaderboard.Entry, n)
	for i := range entries {
		entries[i] = leaderboard.Entry{
			Rank:      i + 1,
			AccountID: uint64(100 + i),
			Positive:  int64(n - i),
		}
	}

	return &leaderboard.Snapshot{Mode: enum.LeaderboardPeriodAllTime, Entries: entries}
}

func TestEmbedLines(t *testing.T) {
	t.Parallel()

	snap := snapshot(25)
	embed := view.NewBuilder(snap.Page(2, 10), "session").Embed()

	lines := strings.Split(embed.Description, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "**#21** — <@120>: **5** rep", lines[0])
	assert.Equal(t, "**#25** — <@124>: **1** rep", lines[4])

	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Page 3/3 • Total users: 25", embed.Footer.Text)
	assert.Equal(t, "🏆 Reputation Leaderboard", embed.Title)
	assert.Empty(t, embed.Fields)
}

func TestEmbedViewerField(t *testing.T) {
	t.Parallel()

	snap := snapshot(25)
	viewer := snap.Entries[22]
	snap.Viewer = &viewer

	embed := view.NewBuilder(snap.Page(0, 10), "session").Embed()
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Your Rank", embed.Fields[0].Name)
	assert.Equal(t, "**#23** — <@122>: **3** rep", embed.Fields[0].Value)

	// No separate field when the viewer is already listed
	embed = view.NewBuilder(snap.Page(2, 10), "session").Embed()
	assert.Empty(t, embed.Fields)
}

func TestEmbedEmptyWindow(t *testing.T) {
	t.Parallel()

	snap := &leaderboard.Snapshot{Mode: enum.LeaderboardPeriodWeekly}
	embed := view.NewBuilder(snap.Page(0, 10), "session").Embed()

	assert.Equal(t, "🏆 Reputation Leaderboard (Last 7 Days)", embed.Title)
	assert.Equal(t, "📭 No reputation data yet!", embed.Description)
	assert.Equal(t, "Page 1/1 • Total users: 0", embed.Footer.Text)
}

func TestComponents(t *testing.T) {
	t.Parallel()

	builder := view.NewBuilder(snapshot(25).Page(0, 10), "session")

	components := builder.Components()
	require.Len(t, components, 2)

	selectRow, ok := components[0].(discord.ActionRowComponent)
	require.True(t, ok)
	require.Len(t, selectRow, 1)

	menu, ok := selectRow[0].(discord.StringSelectMenuComponent)
	require.True(t, ok)
	require.Len(t, menu.Options, 3)
	assert.True(t, menu.Options[0].Default)
	assert.Equal(t, enum.LeaderboardPeriodAllTime.String(), menu.Options[0].Value)

	navRow, ok := components[1].(discord.ActionRowComponent)
	require.True(t, ok)
	require.Len(t, navRow, 2)

	prev, ok := navRow[0].(discord.ButtonComponent)
	require.True(t, ok)
	assert.True(t, prev.Disabled)

	next, ok := navRow[1].(discord.ButtonComponent)
	require.True(t, ok)
	assert.False(t, next.Disabled)

	assert.Len(t, builder.Build().Components, 2)

	update := builder.BuildUpdate()
	require.NotNil(t, update.Components)
	assert.Len(t, *update.Components, 2)
}
