package authhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	authevents "github.com/Black-And-White-Club/guild-bot/app/events/auth"
	authservice "github.com/Black-And-White-Club/guild-bot/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
)

// Handlers is the set of auth event handlers registered on the router.
type Handlers interface {
	HandleTokenRequested(ctx context.Context, payload *authevents.TokenRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// AuthHandlers implements the Handlers interface for auth events.
type AuthHandlers struct {
	service authservice.Service
	logger  *slog.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance. The service doubles
// as the tier resolver for the invoking member.
func NewAuthHandlers(service authservice.Service, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		service: service,
		logger:  logger,
	}
}

// HandleTokenRequested issues an admin API token to the invoker. Players may
// request tokens for the rank and vote endpoints; nobody may mint a token
// above their own tier.
func (h *AuthHandlers) HandleTokenRequested(ctx context.Context, payload *authevents.TokenRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.service, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RolePlayer, func(ctx context.Context) (commands.Reply, error) {
		role := inv.Tier()
		if payload.Role != "" {
			parsed, err := authdomain.ParseRole(payload.Role)
			if err != nil {
				return commands.Reply{}, commands.Reject("Unknown tier %q. Use player, editor or admin.", payload.Role)
			}
			role = parsed
		}

		token, err := h.service.IssueToken(ctx, inv.Tier(), inv.UserID(), inv.GuildID(), role)
		if errors.Is(err, authservice.ErrInsufficientTier) {
			return commands.Reply{}, commands.Reject("You cannot issue %s tokens.", role)
		}
		if err != nil {
			return commands.Reply{}, err
		}
		return commands.Reply{
			Content:   fmt.Sprintf("Your %s API token for this server:\n```%s```\nKeep it private.", role, token),
			Ephemeral: true,
		}, nil
	})
	return inv.Results(), err
}
