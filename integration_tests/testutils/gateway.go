package testutils

import (
	"context"
	"sync"

	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// RecordingGateway accepts every platform call and remembers announcements.
type RecordingGateway struct {
	mu            sync.Mutex
	Announcements []string
	Notices       []string
}

var _ platform.Gateway = (*RecordingGateway)(nil)

func (g *RecordingGateway) Announce(_ context.Context, _ sharedtypes.GuildID, _ sharedtypes.ChannelID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Announcements = append(g.Announcements, content)
	return nil
}

func (g *RecordingGateway) SendDirectNotice(_ context.Context, _ sharedtypes.DiscordID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Notices = append(g.Notices, content)
	return nil
}

func (g *RecordingGateway) PostVotePrompts(context.Context, sharedtypes.GuildID, sharedtypes.ChannelID, sharedtypes.SeasonID, []platform.VoteOption) error {
	return nil
}

func (g *RecordingGateway) GrantRole(context.Context, sharedtypes.GuildID, sharedtypes.DiscordID, sharedtypes.RoleID) error {
	return nil
}

func (g *RecordingGateway) RevokeRole(context.Context, sharedtypes.GuildID, sharedtypes.DiscordID, sharedtypes.RoleID) error {
	return nil
}

func (g *RecordingGateway) MemberRoles(context.Context, sharedtypes.GuildID, sharedtypes.DiscordID) ([]sharedtypes.RoleID, error) {
	return nil, nil
}
