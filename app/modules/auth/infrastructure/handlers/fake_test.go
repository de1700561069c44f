package authhandlers

import (
	"context"

	authservice "github.com/Black-And-White-Club/guild-bot/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// FakeService is a programmable fake for authservice.Service.
type FakeService struct {
	trace []string

	Tier              authdomain.Role
	IssueTokenFunc    func(ctx context.Context, requester authdomain.Role, userID sharedtypes.DiscordID, guildID sharedtypes.GuildID, role authdomain.Role) (string, error)
	ValidateTokenFunc func(ctx context.Context, token string) (*authdomain.Claims, error)
}

func (f *FakeService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) ResolveTier(context.Context, sharedtypes.GuildID, []sharedtypes.RoleID, bool) authdomain.Role {
	return f.Tier
}

func (f *FakeService) IssueToken(ctx context.Context, requester authdomain.Role, userID sharedtypes.DiscordID, guildID sharedtypes.GuildID, role authdomain.Role) (string, error) {
	f.record("IssueToken")
	if f.IssueTokenFunc != nil {
		return f.IssueTokenFunc(ctx, requester, userID, guildID, role)
	}
	return "signed-token", nil
}

func (f *FakeService) ValidateToken(ctx context.Context, token string) (*authdomain.Claims, error) {
	f.record("ValidateToken")
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(ctx, token)
	}
	return nil, nil
}

var _ authservice.Service = (*FakeService)(nil)
