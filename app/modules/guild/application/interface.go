package guildservice

import (
	"context"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// GuildConfigResult is a type alias to reduce generic verbosity.
type GuildConfigResult = results.OperationResult[*guilddomain.GuildConfig, error]

// Service defines the interface for guild configuration operations.
type Service interface {
	// GetConfig reads through the config cache. Returns guilddomain.ErrConfigNotFound
	// when the guild was never configured.
	GetConfig(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error)
	// UpdateConfig creates the configuration from defaults if absent, then applies updates.
	UpdateConfig(ctx context.Context, guildID sharedtypes.GuildID, updates guilddb.UpdateFields) (*guilddomain.GuildConfig, error)
	DeleteConfig(ctx context.Context, guildID sharedtypes.GuildID) error
	ListAuditEnabled(ctx context.Context) ([]*guilddomain.GuildConfig, error)
}
