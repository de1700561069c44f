package competitionservice

import (
	"context"
	"errors"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// GetBuildConfig returns competitiondomain.ErrBuildConfigNotFound for a guild
// that has not set up the competition.
func (s *CompetitionService) GetBuildConfig(ctx context.Context, guildID sharedtypes.GuildID) (*competitiondomain.BuildConfig, error) {
	cfg, err := s.repo.GetBuildConfig(ctx, nil, guildID)
	if errors.Is(err, competitiondb.ErrNotFound) {
		return nil, competitiondomain.ErrBuildConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetBuildConfig: %w", err)
	}
	return cfg, nil
}

// UpdateBuildConfig creates or replaces the guild's competition channels.
func (s *CompetitionService) UpdateBuildConfig(ctx context.Context, cfg *competitiondomain.BuildConfig) (*competitiondomain.BuildConfig, error) {
	guildID := ""
	if cfg != nil {
		guildID = string(cfg.GuildID)
	}
	return unwrap(withTelemetry(s, ctx, "UpdateBuildConfig", guildID, func(ctx context.Context) (BuildConfigResult, error) {
		if cfg == nil {
			return results.FailureResult[*competitiondomain.BuildConfig, error](competitiondomain.ErrInvalidBuildConfig), nil
		}
		if err := cfg.Validate(); err != nil {
			return results.FailureResult[*competitiondomain.BuildConfig, error](err), nil
		}
		out := *cfg
		if err := s.repo.UpsertBuildConfig(ctx, nil, &out); err != nil {
			return BuildConfigResult{}, fmt.Errorf("upsert build config: %w", err)
		}
		return results.SuccessResult[*competitiondomain.BuildConfig, error](&out), nil
	}))
}
