package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/robalyx/repledger/internal/bot/constants"
	discordDirectory "github.com/robalyx/repledger/internal/discord"
	"github.com/robalyx/repledger/internal/interchange"
	"github.com/robalyx/repledger/internal/pagination"
	"github.com/robalyx/repledger/internal/reputation"
	"github.com/robalyx/repledger/internal/setup"
	"go.uber.org/zap"
)

// Bot serves the reputation slash commands and the leaderboard components.
type Bot struct {
	client      bot.Client
	gateway     *reputation.Gateway
	directory   *discordDirectory.Directory
	sessions    *pagination.Manager
	interchange *interchange.Service
	httpClient  *http.Client
	setMin      int
	setMax      int
	logger      *zap.Logger
}

// New creates the Discord client and wires it to the application services.
func New(app *setup.App) (*Bot, error) {
	b := &Bot{
		sessions:    app.Sessions,
		interchange: app.Interchange,
		httpClient:  &http.Client{Timeout: constants.RequestTimeout},
		setMin:      int(app.Config.Bot.Reputation.SetMin),
		setMax:      int(app.Config.Bot.Reputation.SetMax),
		logger:      app.Logger.Named("bot"),
	}

	client, err := disgo.New(app.Config.Bot.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(gateway.IntentGuilds),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnComponentInteraction:          b.handleComponentInteraction,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	ttl := time.Duration(app.Config.Bot.Discord.IdentityCacheTTL) * time.Minute

	b.client = client
	b.directory = discordDirectory.NewDirectory(client.Rest(), ttl, app.Logger)
	b.gateway = app.NewGateway(b.directory)

	return b, nil
}

// Start registers the global commands and opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	_, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), Commands(b.setMin, b.setMax))
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the Discord gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
}

// handleApplicationCommandInteraction dispatches slash commands in their own goroutine.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		data := event.SlashCommandInteractionData()
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in application command interaction handler", zap.Any("panic", r))
				b.respondEphemeral(event, "❌ Internal error. Please report this to an administrator.")
			}

			b.logger.Debug("Application command interaction handled",
				zap.String("command", data.CommandName()),
				zap.Duration("duration", time.Since(start)))
		}()

		// Every payload tells us whether the users involved are bots
		b.directory.Remember(event.User())
		b.directory.RememberAll(data.Resolved.Users)

		ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
		defer cancel()

		switch data.CommandName() {
		case constants.RepCommandName, constants.NoRepCommandName,
			constants.SetRepCommandName, constants.RateCommandName:
			b.handleMutation(ctx, event, data)
		case constants.CheckRepCommandName:
			b.handleCheckRep(ctx, event, data)
		case constants.LeaderboardCommandName:
			b.handleLeaderboard(ctx, event, data)
		case constants.BackupRepCommandName:
			b.handleBackup(ctx, event)
		case constants.ImportRepCommandName:
			b.handleImport(ctx, event, data)
		default:
			b.respondEphemeral(event, "This command is not available.")
		}
	}()
}

// handleComponentInteraction dispatches leaderboard buttons and menus in their own goroutine.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in component interaction handler", zap.Any("panic", r))
				b.respondEphemeral(event, "❌ Internal error. Please report this to an administrator.")
			}
		}()

		b.directory.Remember(event.User())

		ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
		defer cancel()

		b.handleLeaderboardComponent(ctx, event)
	}()
}

// messageCreator is implemented by every interaction event that can reply.
type messageCreator interface {
	CreateMessage(messageCreate discord.MessageCreate, opts ...rest.RequestOpt) error
}

// respondEphemeral replies with a message only the invoking user can see.
func (b *Bot) respondEphemeral(event messageCreator, content string) {
	message := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build()

	if err := event.CreateMessage(message); err != nil {
		b.logger.Error("Failed to send ephemeral response", zap.Error(err))
	}
}

// respond replies with a message visible to the channel.
func (b *Bot) respond(event messageCreator, content string) {
	message := discord.NewMessageCreateBuilder().
		SetContent(content).
		Build()

	if err := event.CreateMessage(message); err != nil {
		b.logger.Error("Failed to send response", zap.Error(err))
	}
}
