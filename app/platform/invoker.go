package platform

import (
	"context"

	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// TierResolver maps a guild member onto a permission tier.
type TierResolver interface {
	ResolveTier(ctx context.Context, guildID sharedtypes.GuildID, roleIDs []sharedtypes.RoleID, isAdministrator bool) authdomain.Role
}

// InteractionInvoker adapts a chat interaction to commands.Invoker. The
// reply is held until the handler returns it as an interaction reply result.
type InteractionInvoker struct {
	in    discordevents.Interaction
	tier  authdomain.Role
	reply *commands.Reply
}

var _ commands.Invoker = (*InteractionInvoker)(nil)

// NewInteractionInvoker resolves the invoker's tier up front.
func NewInteractionInvoker(ctx context.Context, tiers TierResolver, in discordevents.Interaction) *InteractionInvoker {
	return &InteractionInvoker{
		in:   in,
		tier: tiers.ResolveTier(ctx, in.GuildID, in.RoleIDs, in.IsAdministrator),
	}
}

func (i *InteractionInvoker) UserID() sharedtypes.DiscordID { return i.in.UserID }
func (i *InteractionInvoker) GuildID() sharedtypes.GuildID  { return i.in.GuildID }
func (i *InteractionInvoker) Tier() authdomain.Role         { return i.tier }

func (i *InteractionInvoker) Respond(_ context.Context, reply commands.Reply) error {
	i.reply = &reply
	return nil
}

// Results returns the interaction reply, if one was produced.
func (i *InteractionInvoker) Results() []handlerwrapper.Result {
	if i.reply == nil {
		return nil
	}
	return []handlerwrapper.Result{{
		Topic: discordevents.InteractionReplyV1,
		Payload: discordevents.InteractionReplyPayloadV1{
			InteractionID: i.in.InteractionID,
			Token:         i.in.Token,
			Content:       i.reply.Content,
			Ephemeral:     i.reply.Ephemeral,
			Diagnostic:    i.reply.Diagnostic,
		},
	}}
}
