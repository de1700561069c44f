// Package discordrest implements the platform gateway with direct Discord REST calls.
package discordrest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/bwmarrin/discordgo"
)

// VoteButtonPrefix prefixes the custom id of every ballot button: vote:<season>:<entry>.
const VoteButtonPrefix = "vote:"

// Gateway talks to Discord through a discordgo session.
type Gateway struct {
	session *discordgo.Session
	logger  *slog.Logger
}

var _ platform.Gateway = (*Gateway)(nil)

// New opens a REST-only session for token. No gateway websocket is opened.
func New(token string, logger *slog.Logger) (*Gateway, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Gateway{session: s, logger: logger}, nil
}

func (g *Gateway) Announce(ctx context.Context, _ sharedtypes.GuildID, channelID sharedtypes.ChannelID, content string) error {
	_, err := g.session.ChannelMessageSend(string(channelID), content, discordgo.WithContext(ctx))
	return wrap("announce", err)
}

func (g *Gateway) SendDirectNotice(ctx context.Context, userID sharedtypes.DiscordID, content string) error {
	ch, err := g.session.UserChannelCreate(string(userID), discordgo.WithContext(ctx))
	if err != nil {
		return wrap("open dm", err)
	}
	_, err = g.session.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx))
	return wrap("send dm", err)
}

func (g *Gateway) PostVotePrompts(ctx context.Context, _ sharedtypes.GuildID, channelID sharedtypes.ChannelID, seasonID sharedtypes.SeasonID, options []platform.VoteOption) error {
	var errs []error
	for _, o := range options {
		send := &discordgo.MessageSend{
			Content: fmt.Sprintf("**%s** by <@%s>", o.Title, o.AuthorID),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Vote",
						Style:    discordgo.PrimaryButton,
						CustomID: VoteButtonPrefix + seasonID.String() + ":" + o.EntryID.String(),
					},
				}},
			},
		}
		if o.ImageURL != "" {
			send.Embeds = []*discordgo.MessageEmbed{{Image: &discordgo.MessageEmbedImage{URL: o.ImageURL}}}
		}
		if _, err := g.session.ChannelMessageSendComplex(string(channelID), send, discordgo.WithContext(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("entry %s: %w", o.EntryID, err))
		}
	}
	return wrap("post vote prompts", errors.Join(errs...))
}

func (g *Gateway) GrantRole(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID) error {
	err := g.session.GuildMemberRoleAdd(string(guildID), string(userID), string(roleID), discordgo.WithContext(ctx))
	return wrap("grant role", err)
}

func (g *Gateway) RevokeRole(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID) error {
	err := g.session.GuildMemberRoleRemove(string(guildID), string(userID), string(roleID), discordgo.WithContext(ctx))
	return wrap("revoke role", err)
}

func (g *Gateway) MemberRoles(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) ([]sharedtypes.RoleID, error) {
	m, err := g.session.GuildMember(string(guildID), string(userID), discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownMember(err) {
			return nil, platform.ErrMemberNotFound
		}
		return nil, wrap("member roles", err)
	}
	out := make([]sharedtypes.RoleID, 0, len(m.Roles))
	for _, r := range m.Roles {
		out = append(out, sharedtypes.RoleID(r))
	}
	return out, nil
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMember {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("discord %s: %w", op, err)
}
