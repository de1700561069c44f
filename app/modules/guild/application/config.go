package guildservice

import (
	"context"
	"errors"
	"fmt"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// GetConfig returns the guild's configuration, reading through the cache.
// Called on every inbound message, so it skips telemetry on cache hits.
func (s *GuildService) GetConfig(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error) {
	cfg, hit, gen := s.cache.Lookup(ctx, guildID)
	if hit {
		if cfg == nil {
			return nil, guilddomain.ErrConfigNotFound
		}
		return cfg, nil
	}

	cfg, err := s.repo.GetConfig(ctx, nil, guildID)
	switch {
	case errors.Is(err, guilddb.ErrNotFound):
		s.cache.Fill(guildID, nil, gen)
		return nil, guilddomain.ErrConfigNotFound
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to load guild config",
			attr.ExtractCorrelationID(ctx),
			attr.GuildID(guildID),
			attr.Error(err),
		)
		return nil, fmt.Errorf("GetConfig: %w", err)
	}
	s.cache.Fill(guildID, cfg, gen)
	return cfg, nil
}

// UpdateConfig creates or partially updates a guild configuration and
// invalidates the cached copy once the write has committed.
func (s *GuildService) UpdateConfig(ctx context.Context, guildID sharedtypes.GuildID, updates guilddb.UpdateFields) (*guilddomain.GuildConfig, error) {
	updateTx := func(ctx context.Context, db bun.IDB) (GuildConfigResult, error) {
		return s.updateConfigLogic(ctx, db, guildID, &updates)
	}

	result, err := withTelemetry(s, ctx, "UpdateConfig", string(guildID), func(ctx context.Context) (GuildConfigResult, error) {
		return runInTx(s, ctx, updateTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	s.cache.Invalidate(ctx, guildID)
	return *result.Success, nil
}

func (s *GuildService) updateConfigLogic(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, updates *guilddb.UpdateFields) (GuildConfigResult, error) {
	if guildID == "" {
		return results.FailureResult[*guilddomain.GuildConfig, error](fmt.Errorf("%w: guild id is required", ErrInvalidConfig)), nil
	}

	current, err := s.repo.GetConfig(ctx, db, guildID)
	created := false
	switch {
	case errors.Is(err, guilddb.ErrNotFound):
		created = true
		current = &guilddomain.GuildConfig{
			GuildID:          guildID,
			CooldownSeconds:  s.defaults.CooldownSeconds,
			PointsPerMessage: s.defaults.PointsPerMessage,
		}
	case err != nil:
		return GuildConfigResult{}, fmt.Errorf("failed to load guild config: %w", err)
	}

	next := current.Clone()
	updates.Apply(next)
	if err := next.Validate(); err != nil {
		return results.FailureResult[*guilddomain.GuildConfig, error](fmt.Errorf("%w: %v", ErrInvalidConfig, err)), nil
	}

	if created {
		if err := s.repo.SaveConfig(ctx, db, next); err != nil {
			return GuildConfigResult{}, fmt.Errorf("failed to create guild config: %w", err)
		}
	} else if err := s.repo.UpdateConfig(ctx, db, guildID, updates); err != nil {
		return GuildConfigResult{}, fmt.Errorf("failed to update guild config: %w", err)
	}

	return results.SuccessResult[*guilddomain.GuildConfig, error](next), nil
}

// DeleteConfig removes the configuration. Deleting an absent configuration succeeds.
func (s *GuildService) DeleteConfig(ctx context.Context, guildID sharedtypes.GuildID) error {
	deleteTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.repo.DeleteConfig(ctx, db, guildID); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	}

	_, err := withTelemetry(s, ctx, "DeleteConfig", string(guildID), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, deleteTx)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, guildID)
	return nil
}

// ListAuditEnabled bypasses the cache so the auditor always sees current flags.
func (s *GuildService) ListAuditEnabled(ctx context.Context) ([]*guilddomain.GuildConfig, error) {
	result, err := withTelemetry(s, ctx, "ListAuditEnabled", "*", func(ctx context.Context) (results.OperationResult[[]*guilddomain.GuildConfig, error], error) {
		cfgs, err := s.repo.ListAuditEnabled(ctx, nil)
		if err != nil {
			return results.OperationResult[[]*guilddomain.GuildConfig, error]{}, err
		}
		return results.SuccessResult[[]*guilddomain.GuildConfig, error](cfgs), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}
