// Package discordevents defines the topics and payloads exchanged with the
// Discord gateway worker.
package discordevents

import (
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// StreamName is the JetStream stream holding every discord.* subject.
const StreamName = "discord"

// Inbound gateway events.
const (
	// MessageCreatedV1 is published for every guild message the gateway sees.
	MessageCreatedV1 = "discord.message.created.v1"
)

// Outbound platform commands executed by the gateway worker.
const (
	AnnounceRequestedV1     = "discord.announce.requested.v1"
	DirectNoticeRequestedV1 = "discord.dm.requested.v1"
	RoleGrantRequestedV1    = "discord.role.grant.requested.v1"
	RoleRevokeRequestedV1   = "discord.role.revoke.requested.v1"
	VotePromptsRequestedV1  = "discord.vote.prompts.requested.v1"
	InteractionReplyV1      = "discord.interaction.reply.v1"
)

// Request/reply subjects answered synchronously by the gateway worker.
const (
	MemberRolesRequestV1 = "discord.member.roles.request.v1"
)

// MessageCreatedPayloadV1 is an inbound chat message.
type MessageCreatedPayloadV1 struct {
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	MessageID string                `json:"message_id"`
	IsBot     bool                  `json:"is_bot"`
	Timestamp time.Time             `json:"timestamp"`
}

// Interaction identifies who invoked a slash command or button, and how to answer them.
type Interaction struct {
	GuildID         sharedtypes.GuildID   `json:"guild_id"`
	UserID          sharedtypes.DiscordID `json:"user_id"`
	RoleIDs         []sharedtypes.RoleID  `json:"role_ids"`
	IsAdministrator bool                  `json:"is_administrator"`
	InteractionID   string                `json:"interaction_id"`
	Token           string                `json:"token"`
}

// AnnouncePayloadV1 posts content to a channel or thread.
type AnnouncePayloadV1 struct {
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	Content   string                `json:"content"`
}

// DirectNoticePayloadV1 sends a private message to a user.
type DirectNoticePayloadV1 struct {
	UserID  sharedtypes.DiscordID `json:"user_id"`
	Content string                `json:"content"`
}

// RoleChangePayloadV1 grants or revokes a role.
type RoleChangePayloadV1 struct {
	GuildID sharedtypes.GuildID   `json:"guild_id"`
	UserID  sharedtypes.DiscordID `json:"user_id"`
	RoleID  sharedtypes.RoleID    `json:"role_id"`
	Reason  string                `json:"reason,omitempty"`
}

// VoteOption is one button on a ballot.
type VoteOption struct {
	EntryID  sharedtypes.EntryID   `json:"entry_id"`
	Title    string                `json:"title"`
	AuthorID sharedtypes.DiscordID `json:"author_id"`
	ImageURL string                `json:"image_url,omitempty"`
}

// VotePromptsPayloadV1 posts one interactive vote prompt per option.
type VotePromptsPayloadV1 struct {
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	SeasonID  sharedtypes.SeasonID  `json:"season_id"`
	Options   []VoteOption          `json:"options"`
}

// InteractionReplyPayloadV1 answers an interaction.
type InteractionReplyPayloadV1 struct {
	InteractionID string `json:"interaction_id"`
	Token         string `json:"token"`
	Content       string `json:"content"`
	Ephemeral     bool   `json:"ephemeral"`
	Diagnostic    string `json:"diagnostic,omitempty"`
}

// MemberRolesRequestV1Payload asks the gateway for a member's current roles.
type MemberRolesRequestV1Payload struct {
	GuildID sharedtypes.GuildID   `json:"guild_id"`
	UserID  sharedtypes.DiscordID `json:"user_id"`
}

// MemberRolesResponseV1Payload is the reply to MemberRolesRequestV1Payload.
// Found is false when the user is no longer a guild member.
type MemberRolesResponseV1Payload struct {
	Found   bool                 `json:"found"`
	RoleIDs []sharedtypes.RoleID `json:"role_ids"`
	Error   string               `json:"error,omitempty"`
}
