package discord_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	disgo "github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/repledger/internal/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errUnknownUser = errors.New("unknown user")

// fakeUsers serves users from a map and counts REST calls.
type fakeUsers struct {
	users map[snowflake.ID]disgo.User
	calls atomic.Int32
}

func (f *fakeUsers) GetUser(userID snowflake.ID, _ ...rest.RequestOpt) (*disgo.User, error) {
	f.calls.Add(1)

	user, ok := f.users[userID]
	if !ok {
		return nil, errUnknownUser
	}

	return &user, nil
}

func TestCreatedAt(t *testing.T) {
	t.Parallel()

	// Snowflake from the Discord developer documentation
	createdAt := discord.CreatedAt(175928847299117063)
	assert.Equal(t, time.Date(2016, 4, 30, 11, 18, 25, 796000000, time.UTC), createdAt)
}

func TestDirectoryRememberedUsers(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{}
	directory := discord.NewDirectory(users, time.Minute, zap.NewNop())

	directory.Remember(disgo.User{ID: 175928847299117063, Bot: true})
	directory.RememberAll(map[snowflake.ID]disgo.User{
		200: {ID: 200},
	})

	identity, err := directory.Identity(context.Background(), 175928847299117063)
	require.NoError(t, err)
	assert.True(t, identity.Bot)
	assert.Equal(t, uint64(175928847299117063), identity.ID)
	assert.Equal(t, 2016, identity.CreatedAt.Year())

	identity, err = directory.Identity(context.Background(), 200)
	require.NoError(t, err)
	assert.False(t, identity.Bot)

	assert.Zero(t, users.calls.Load())
}

func TestDirectoryFetchesUnknownUsers(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{users: map[snowflake.ID]disgo.User{
		300: {ID: 300, Bot: true},
	}}
	directory := discord.NewDirectory(users, time.Minute, zap.NewNop())

	identity, err := directory.Identity(context.Background(), 300)
	require.NoError(t, err)
	assert.True(t, identity.Bot)

	// The fetched user is cached
	_, err = directory.Identity(context.Background(), 300)
	require.NoError(t, err)
	assert.Equal(t, int32(1), users.calls.Load())
}

func TestDirectoryFetchFailure(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{}
	directory := discord.NewDirectory(users, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := directory.Identity(ctx, 400)
	require.Error(t, err)
}
