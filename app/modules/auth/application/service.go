package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/guild-bot/app/modules/auth/infrastructure/jwt"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// ErrInsufficientTier is returned when a token is requested above the requester's own tier.
var ErrInsufficientTier = errors.New("insufficient tier")

// GuildConfigReader is the slice of the guild service the resolver needs.
type GuildConfigReader interface {
	GetConfig(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error)
}

// Service resolves permission tiers and issues admin API tokens.
type Service interface {
	ResolveTier(ctx context.Context, guildID sharedtypes.GuildID, roleIDs []sharedtypes.RoleID, isAdministrator bool) authdomain.Role
	IssueToken(ctx context.Context, requester authdomain.Role, userID sharedtypes.DiscordID, guildID sharedtypes.GuildID, role authdomain.Role) (string, error)
	ValidateToken(ctx context.Context, token string) (*authdomain.Claims, error)
}

// AuthService implements Service.
type AuthService struct {
	guilds     GuildConfigReader
	jwt        authjwt.Provider
	defaultTTL time.Duration
	logger     *slog.Logger
}

var _ Service = (*AuthService)(nil)

// NewAuthService creates a new AuthService.
func NewAuthService(guilds GuildConfigReader, jwt authjwt.Provider, defaultTTL time.Duration, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{guilds: guilds, jwt: jwt, defaultTTL: defaultTTL, logger: logger}
}

// ResolveTier maps a member onto a tier using the guild's configured admin and editor roles.
// A missing or unreadable configuration degrades to administrator-permission-only resolution.
func (s *AuthService) ResolveTier(ctx context.Context, guildID sharedtypes.GuildID, roleIDs []sharedtypes.RoleID, isAdministrator bool) authdomain.Role {
	in := authdomain.TierInput{IsGuildAdministrator: isAdministrator}
	for _, r := range roleIDs {
		in.HeldRoleIDs = append(in.HeldRoleIDs, string(r))
	}

	cfg, err := s.guilds.GetConfig(ctx, guildID)
	switch {
	case err == nil:
		in.AdminRoleID = string(cfg.AdminRoleID)
		in.EditorRoleID = string(cfg.EditorRoleID)
	case errors.Is(err, guilddomain.ErrConfigNotFound):
	default:
		s.logger.WarnContext(ctx, "Tier resolution without guild config",
			attr.ExtractCorrelationID(ctx),
			attr.GuildID(guildID),
			attr.Error(err),
		)
	}
	return authdomain.TierFor(in)
}

// IssueToken signs an admin API token. Requesters cannot mint tokens above their own tier.
func (s *AuthService) IssueToken(ctx context.Context, requester authdomain.Role, userID sharedtypes.DiscordID, guildID sharedtypes.GuildID, role authdomain.Role) (string, error) {
	if !requester.AtLeast(role) {
		return "", fmt.Errorf("%w: %s cannot issue %s tokens", ErrInsufficientTier, requester, role)
	}
	token, err := s.jwt.GenerateToken(string(userID), string(guildID), role, s.defaultTTL)
	if err != nil {
		return "", fmt.Errorf("IssueToken: %w", err)
	}
	s.logger.InfoContext(ctx, "Issued admin API token",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(userID),
		attr.GuildID(guildID),
		attr.String("role", role.String()),
	)
	return token, nil
}

func (s *AuthService) ValidateToken(_ context.Context, token string) (*authdomain.Claims, error) {
	return s.jwt.ValidateToken(token)
}
