package leaderboard

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/repledger/internal/bot/constants"
	"github.com/robalyx/repledger/internal/bot/utils"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/leaderboard"
)

// EmptyMessage is shown instead of a leaderboard when the ledger has no records.
const EmptyMessage = "📭 No rep data yet!"

// Builder creates the visual layout for one leaderboard page.
type Builder struct {
	page      leaderboard.Page
	sessionID string
}

// NewBuilder creates a new leaderboard builder.
func NewBuilder(page leaderboard.Page, sessionID string) *Builder {
	return &Builder{
		page:      page,
		sessionID: sessionID,
	}
}

// Build creates the message that opens a leaderboard.
func (b *Builder) Build() discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		SetEmbeds(b.Embed()).
		AddContainerComponents(b.Components()...).
		Build()
}

// BuildUpdate creates the edit applied when the viewer navigates.
func (b *Builder) BuildUpdate() discord.MessageUpdate {
	return discord.NewMessageUpdateBuilder().
		SetEmbeds(b.Embed()).
		SetContainerComponents(b.Components()...).
		Build()
}

// Embed renders the ranked lines, the viewer's own standing and the page footer.
func (b *Builder) Embed() discord.Embed {
	title := "🏆 Reputation Leaderboard"
	if b.page.Mode.IsWindowed() {
		title = fmt.Sprintf("%s (%s)", title, b.page.Mode.Label())
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(title).
		SetDescription(b.description()).
		SetColor(constants.DefaultEmbedColor).
		SetFooter(fmt.Sprintf("Page %d/%d • Total users: %d",
			b.page.Index+1, b.page.TotalPages, b.page.TotalEntries), "")

	if viewer := b.page.Viewer; viewer != nil && !b.onPage(viewer.AccountID) {
		embed.AddField("Your Rank", FormatEntry(*viewer), false)
	}

	return embed.Build()
}

// Components returns the period selector and navigation buttons.
func (b *Builder) Components() []discord.ContainerComponent {
	return []discord.ContainerComponent{
		discord.NewActionRow(
			discord.NewStringSelectMenu(utils.BuildCustomID(utils.ViewerPeriod, b.sessionID), "Select Time Period",
				b.periodOptions()...),
		),
		discord.NewActionRow(
			discord.NewSecondaryButton("Previous", utils.BuildCustomID(utils.ViewerPrevPage, b.sessionID)).
				WithDisabled(b.page.IsFirst()),
			discord.NewSecondaryButton("Next", utils.BuildCustomID(utils.ViewerNextPage, b.sessionID)).
				WithDisabled(b.page.IsLast()),
		),
	}
}

// FormatEntry renders one ranked line.
func FormatEntry(entry leaderboard.Entry) string {
	return fmt.Sprintf("**#%d** — %s: **%d** rep", entry.Rank, utils.Mention(entry.AccountID), entry.Positive)
}

func (b *Builder) description() string {
	if len(b.page.Entries) == 0 {
		return "📭 No reputation data yet!"
	}

	lines := make([]string, 0, len(b.page.Entries))
	for _, entry := range b.page.Entries {
		lines = append(lines, FormatEntry(entry))
	}

	return strings.Join(lines, "\n")
}

func (b *Builder) onPage(accountID uint64) bool {
	for _, entry := range b.page.Entries {
		if entry.AccountID == accountID {
			return true
		}
	}

	return false
}

func (b *Builder) periodOptions() []discord.StringSelectMenuOption {
	periods := enum.LeaderboardPeriodValues()

	options := make([]discord.StringSelectMenuOption, 0, len(periods))
	for _, period := range periods {
		options = append(options,
			discord.NewStringSelectMenuOption(period.Label(), period.String()).
				WithDefault(period == b.page.Mode))
	}

	return options
}
