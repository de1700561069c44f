package levelingservice

import (
	"context"
	"errors"

	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

func (s *LevelingService) SyncRoleForLevel(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, level int) RoleSyncReport {
	ladder, err := s.loadLadder(ctx, nil, guildID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load level ladder, roles not synced",
			attr.ExtractCorrelationID(ctx),
			attr.GuildID(guildID),
			attr.UserID(userID),
			attr.Error(err),
		)
		return RoleSyncReport{Failed: 1}
	}
	return s.syncRoles(ctx, ladder, guildID, userID, level)
}

func (s *LevelingService) loadLadder(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (levelingdomain.Ladder, error) {
	bindings, err := s.repo.GetLadder(ctx, db, guildID)
	if err != nil {
		return levelingdomain.Ladder{}, err
	}
	return levelingdomain.NewLadder(bindings)
}

// syncRoles revokes stale ladder roles, then grants the target. Each call is
// attempted independently so one failure never blocks the other.
func (s *LevelingService) syncRoles(ctx context.Context, ladder levelingdomain.Ladder, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, level int) RoleSyncReport {
	var report RoleSyncReport
	if ladder.IsEmpty() {
		return report
	}

	var plan levelingdomain.RoleSyncPlan
	held, err := s.gateway.MemberRoles(ctx, guildID, userID)
	switch {
	case errors.Is(err, platform.ErrMemberNotFound):
		s.logger.DebugContext(ctx, "Member left the guild, skipping role sync",
			attr.GuildID(guildID),
			attr.UserID(userID),
		)
		report.MemberMissing = true
		return report
	case err != nil:
		s.logger.WarnContext(ctx, "Member roles unavailable, syncing every ladder role",
			attr.GuildID(guildID),
			attr.UserID(userID),
			attr.Error(err),
		)
		plan = levelingdomain.PlanBlindRoleSync(ladder, level)
	default:
		plan = levelingdomain.PlanRoleSync(ladder, level, held)
	}
	report.Target = plan.Target

	for _, roleID := range plan.Revoke {
		if err := s.gateway.RevokeRole(ctx, guildID, userID, roleID); err != nil {
			s.roleCallFailed(ctx, "revoke", guildID, userID, roleID, err)
			report.Failed++
			continue
		}
		s.metrics.RecordRoleChange(ctx, "revoke", true)
		report.Revoked = append(report.Revoked, roleID)
	}
	for _, roleID := range plan.Grant {
		if err := s.gateway.GrantRole(ctx, guildID, userID, roleID); err != nil {
			s.roleCallFailed(ctx, "grant", guildID, userID, roleID, err)
			report.Failed++
			continue
		}
		s.metrics.RecordRoleChange(ctx, "grant", true)
		report.Granted = append(report.Granted, roleID)
	}
	return report
}

func (s *LevelingService) roleCallFailed(ctx context.Context, action string, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID, err error) {
	s.metrics.RecordRoleChange(ctx, action, false)
	s.logger.ErrorContext(ctx, "Role change failed",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", action),
		attr.GuildID(guildID),
		attr.UserID(userID),
		attr.RoleID(roleID),
		attr.Error(err),
	)
}
