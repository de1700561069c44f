package guildhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	guildevents "github.com/Black-And-White-Club/guild-bot/app/events/guild"
	guildservice "github.com/Black-And-White-Club/guild-bot/app/modules/guild/application"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
)

// Handlers is the set of guild event handlers registered on the router.
type Handlers interface {
	HandleRetrieveGuildConfig(ctx context.Context, payload *guildevents.GuildConfigRetrievalRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleUpdateGuildConfig(ctx context.Context, payload *guildevents.GuildConfigUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleDeleteGuildConfig(ctx context.Context, payload *guildevents.GuildConfigDeletionRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// GuildHandlers implements the Handlers interface for guild events.
type GuildHandlers struct {
	service guildservice.Service
	tiers   platform.TierResolver
	logger  *slog.Logger
}

// NewGuildHandlers creates a new GuildHandlers instance.
func NewGuildHandlers(service guildservice.Service, tiers platform.TierResolver, logger *slog.Logger) *GuildHandlers {
	return &GuildHandlers{
		service: service,
		tiers:   tiers,
		logger:  logger,
	}
}

// rejectInvalid turns validation failures into user-facing rejections.
func rejectInvalid(err error) error {
	if errors.Is(err, guildservice.ErrInvalidConfig) {
		return &commands.Rejection{Reason: err.Error()}
	}
	return err
}

func describe(cfg *guilddomain.GuildConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cooldown: %ds\n", cfg.CooldownSeconds)
	fmt.Fprintf(&b, "Points per message: %d-%d\n", cfg.PointsPerMessage, cfg.PointsPerMessage*3)
	if len(cfg.BlockedChannels) > 0 {
		chans := make([]string, 0, len(cfg.BlockedChannels))
		for _, ch := range cfg.BlockedChannels {
			chans = append(chans, "<#"+string(ch)+">")
		}
		fmt.Fprintf(&b, "Blocked channels: %s\n", strings.Join(chans, ", "))
	}
	if cfg.LogChannelID != "" {
		fmt.Fprintf(&b, "Log channel: <#%s>\n", cfg.LogChannelID)
	}
	if cfg.LevelUpChannelID != "" {
		fmt.Fprintf(&b, "Level-up channel: <#%s>\n", cfg.LevelUpChannelID)
	}
	fmt.Fprintf(&b, "Weekly role audit: %t", cfg.AuditEnabled)
	return b.String()
}
