package utils

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
)

// Mention returns the mention markup for an account.
func Mention(accountID uint64) string {
	return fmt.Sprintf("<@%d>", accountID)
}

// CanManageGuild reports whether the interacting member holds the Manage Server permission.
// Interactions outside a guild have no member and are never allowed.
func CanManageGuild(member *discord.ResolvedMember) bool {
	return member != nil && member.Permissions.Has(discord.PermissionManageGuild)
}
