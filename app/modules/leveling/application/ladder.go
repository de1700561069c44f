package levelingservice

import (
	"context"
	"errors"
	"fmt"
	"slices"

	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// SetupLevelRoles replaces the guild's ladder in one transaction. Invalid
// bindings are returned as an error wrapping levelingdomain.ErrInvalidLadder.
// Roles dropped from the ladder are revoked from scored members after commit,
// since later syncs no longer treat them as ladder roles.
func (s *LevelingService) SetupLevelRoles(ctx context.Context, guildID sharedtypes.GuildID, bindings []levelingdomain.RoleBinding) (levelingdomain.Ladder, error) {
	var retired []sharedtypes.RoleID
	setupTx := func(ctx context.Context, db bun.IDB) (LadderResult, error) {
		ladder, err := levelingdomain.NewLadder(bindings)
		if err != nil {
			return results.FailureResult[levelingdomain.Ladder, error](err), nil
		}
		previous, err := s.loadLadder(ctx, db, guildID)
		if err != nil {
			return LadderResult{}, fmt.Errorf("load ladder: %w", err)
		}
		if err := s.repo.ReplaceLadder(ctx, db, guildID, ladder.Bindings()); err != nil {
			return LadderResult{}, fmt.Errorf("replace ladder: %w", err)
		}
		retired = previous.Retired(ladder)
		return results.SuccessResult[levelingdomain.Ladder, error](ladder), nil
	}

	result, err := withTelemetry(s, ctx, "SetupLevelRoles", string(guildID), func(ctx context.Context) (LadderResult, error) {
		return runInTx(s, ctx, setupTx)
	})
	if err != nil {
		return levelingdomain.Ladder{}, err
	}
	if result.IsFailure() {
		return levelingdomain.Ladder{}, *result.Failure
	}
	if len(retired) > 0 {
		s.revokeRetiredRoles(ctx, guildID, retired)
	}
	return *result.Success, nil
}

// revokeRetiredRoles strips roles that left the ladder from every scored
// member holding them. Failures are logged per member and never abort the sweep.
func (s *LevelingService) revokeRetiredRoles(ctx context.Context, guildID sharedtypes.GuildID, retired []sharedtypes.RoleID) {
	records, err := s.repo.ListScores(ctx, nil, guildID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list members for retired role cleanup",
			attr.GuildID(guildID),
			attr.Error(err),
		)
		return
	}
	for _, rec := range records {
		if err := s.pacer.Wait(ctx); err != nil {
			return
		}
		held, err := s.gateway.MemberRoles(ctx, guildID, rec.UserID)
		switch {
		case errors.Is(err, platform.ErrMemberNotFound):
			continue
		case err != nil:
			s.logger.WarnContext(ctx, "Member roles unavailable, retired roles left in place",
				attr.GuildID(guildID),
				attr.UserID(rec.UserID),
				attr.Error(err),
			)
			continue
		}
		for _, roleID := range retired {
			if !slices.Contains(held, roleID) {
				continue
			}
			if err := s.gateway.RevokeRole(ctx, guildID, rec.UserID, roleID); err != nil {
				s.roleCallFailed(ctx, "revoke", guildID, rec.UserID, roleID, err)
				continue
			}
			s.metrics.RecordRoleChange(ctx, "revoke", true)
		}
	}
}
