package api

import (
	"context"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// httpInvoker adapts an authenticated API request to commands.Invoker. A
// token only grants its tier inside the guild it was issued for.
type httpInvoker struct {
	claims  *authdomain.Claims
	guildID sharedtypes.GuildID
	reply   *commands.Reply
}

var _ commands.Invoker = (*httpInvoker)(nil)

func newHTTPInvoker(claims *authdomain.Claims, guildID sharedtypes.GuildID) *httpInvoker {
	return &httpInvoker{claims: claims, guildID: guildID}
}

func (i *httpInvoker) UserID() sharedtypes.DiscordID {
	if i.claims == nil {
		return ""
	}
	return sharedtypes.DiscordID(i.claims.UserID)
}

func (i *httpInvoker) GuildID() sharedtypes.GuildID { return i.guildID }

func (i *httpInvoker) Tier() authdomain.Role {
	if i.claims == nil || !i.claims.CanAccessGuild(string(i.guildID)) {
		return authdomain.RoleViewer
	}
	return i.claims.Role
}

func (i *httpInvoker) Respond(_ context.Context, reply commands.Reply) error {
	i.reply = &reply
	return nil
}
