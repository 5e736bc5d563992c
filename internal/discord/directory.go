package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/repledger/internal/reputation"
	"github.com/robalyx/repledger/pkg/utils"
	"go.uber.org/zap"
)

// DefaultIdentityTTL is how long a seen user's bot flag is trusted.
const DefaultIdentityTTL = 30 * time.Minute

// UserFetcher is the part of the Discord REST client used to resolve unknown users.
type UserFetcher interface {
	GetUser(userID snowflake.ID, opts ...rest.RequestOpt) (*discord.User, error)
}

// Directory resolves account identities for the mutation gateway.
// Creation time comes from the snowflake itself. The bot flag comes from users
// seen in interactions and falls back to the REST API for anyone else.
type Directory struct {
	users  UserFetcher
	seen   *utils.TTLMap[uint64, bool]
	retry  utils.RetryOptions
	logger *zap.Logger
}

// NewDirectory creates a new identity directory.
func NewDirectory(users UserFetcher, ttl time.Duration, logger *zap.Logger) *Directory {
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}

	return &Directory{
		users:  users,
		seen:   utils.NewTTLMap[uint64, bool](ttl),
		retry:  utils.GetDiscordRetryOptions(),
		logger: logger.Named("discord_directory"),
	}
}

// Remember records a user observed in an interaction payload.
func (d *Directory) Remember(user discord.User) {
	d.seen.Set(uint64(user.ID), user.Bot)
}

// RememberAll records every resolved user of an interaction.
func (d *Directory) RememberAll(users map[snowflake.ID]discord.User) {
	for _, user := range users {
		d.Remember(user)
	}
}

// Identity implements reputation.Directory.
func (d *Directory) Identity(ctx context.Context, accountID uint64) (*reputation.Identity, error) {
	identity := &reputation.Identity{
		ID:        accountID,
		CreatedAt: CreatedAt(accountID),
	}

	if bot, ok := d.seen.Get(accountID); ok {
		identity.Bot = bot
		return identity, nil
	}

	user, err := utils.WithRetry(ctx, func() (*discord.User, error) {
		return d.users.GetUser(snowflake.ID(accountID), rest.WithCtx(ctx))
	}, d.retry)
	if err != nil {
		d.logger.Warn("Failed to fetch user",
			zap.Uint64("accountID", accountID),
			zap.Error(err))

		return nil, fmt.Errorf("failed to fetch user %d: %w", accountID, err)
	}

	d.Remember(*user)
	identity.Bot = user.Bot

	return identity, nil
}

// CreatedAt returns the account creation time encoded in a Discord snowflake.
func CreatedAt(accountID uint64) time.Time {
	return snowflake.ID(accountID).Time().UTC()
}
