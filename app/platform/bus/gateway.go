// Package bus implements the platform gateway by publishing commands to the
// Discord worker over the event bus.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// Gateway publishes platform commands and issues member role requests.
type Gateway struct {
	bus    eventbus.EventBus
	logger *slog.Logger
}

var _ platform.Gateway = (*Gateway)(nil)

// NewGateway creates a bus-backed gateway.
func NewGateway(bus eventbus.EventBus, logger *slog.Logger) *Gateway {
	return &Gateway{bus: bus, logger: logger}
}

func (g *Gateway) publish(ctx context.Context, topic string, payload any) error {
	msg, err := handlerwrapper.NewMessage(ctx, handlerwrapper.Result{Topic: topic, Payload: payload})
	if err != nil {
		return err
	}
	if err := g.bus.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (g *Gateway) Announce(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, content string) error {
	if channelID == "" {
		return fmt.Errorf("announce in guild %s: empty channel", guildID)
	}
	return g.publish(ctx, discordevents.AnnounceRequestedV1, discordevents.AnnouncePayloadV1{
		GuildID:   guildID,
		ChannelID: channelID,
		Content:   content,
	})
}

func (g *Gateway) SendDirectNotice(ctx context.Context, userID sharedtypes.DiscordID, content string) error {
	return g.publish(ctx, discordevents.DirectNoticeRequestedV1, discordevents.DirectNoticePayloadV1{
		UserID:  userID,
		Content: content,
	})
}

func (g *Gateway) PostVotePrompts(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, seasonID sharedtypes.SeasonID, options []platform.VoteOption) error {
	out := make([]discordevents.VoteOption, 0, len(options))
	for _, o := range options {
		out = append(out, discordevents.VoteOption{
			EntryID:  o.EntryID,
			Title:    o.Title,
			AuthorID: o.AuthorID,
			ImageURL: o.ImageURL,
		})
	}
	return g.publish(ctx, discordevents.VotePromptsRequestedV1, discordevents.VotePromptsPayloadV1{
		GuildID:   guildID,
		ChannelID: channelID,
		SeasonID:  seasonID,
		Options:   out,
	})
}

func (g *Gateway) GrantRole(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID) error {
	return g.publish(ctx, discordevents.RoleGrantRequestedV1, discordevents.RoleChangePayloadV1{
		GuildID: guildID,
		UserID:  userID,
		RoleID:  roleID,
		Reason:  "level role sync",
	})
}

func (g *Gateway) RevokeRole(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID) error {
	return g.publish(ctx, discordevents.RoleRevokeRequestedV1, discordevents.RoleChangePayloadV1{
		GuildID: guildID,
		UserID:  userID,
		RoleID:  roleID,
		Reason:  "level role sync",
	})
}

// MemberRoles asks the Discord worker for the member's current roles.
func (g *Gateway) MemberRoles(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) ([]sharedtypes.RoleID, error) {
	body, err := json.Marshal(discordevents.MemberRolesRequestV1Payload{GuildID: guildID, UserID: userID})
	if err != nil {
		return nil, err
	}
	raw, err := g.bus.Request(ctx, discordevents.MemberRolesRequestV1, body)
	if err != nil {
		if errors.Is(err, eventbus.ErrNoResponders) {
			g.logger.WarnContext(ctx, "No Discord worker answering member role requests",
				attr.GuildID(guildID),
				attr.UserID(userID),
			)
		}
		return nil, fmt.Errorf("member roles: %w", err)
	}
	var resp discordevents.MemberRolesResponseV1Payload
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("member roles: decode reply: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("member roles: %s", resp.Error)
	}
	if !resp.Found {
		return nil, platform.ErrMemberNotFound
	}
	return resp.RoleIDs, nil
}
