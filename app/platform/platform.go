// Package platform declares the outbound chat-platform surface the engines depend on.
// Implementations live in the bus and discordrest subpackages.
package platform

import (
	"context"
	"errors"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// ErrMemberNotFound is returned by MemberRoles when the user has left the guild.
var ErrMemberNotFound = errors.New("member not found")

// VoteOption is one entry rendered on a ballot.
type VoteOption struct {
	EntryID  sharedtypes.EntryID
	Title    string
	AuthorID sharedtypes.DiscordID
	ImageURL string
}

// Announcer sends messages. It decides nothing about content.
type Announcer interface {
	Announce(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, content string) error
	SendDirectNotice(ctx context.Context, userID sharedtypes.DiscordID, content string) error
	PostVotePrompts(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, seasonID sharedtypes.SeasonID, options []VoteOption) error
}

// RoleGateway grants and revokes roles. Granting a held role or revoking an
// absent one is harmless at the platform.
type RoleGateway interface {
	GrantRole(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID) error
	RevokeRole(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID) error
	MemberRoles(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) ([]sharedtypes.RoleID, error)
}

// Gateway is the full outbound surface.
type Gateway interface {
	Announcer
	RoleGateway
}
