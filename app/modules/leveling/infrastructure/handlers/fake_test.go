package levelinghandlers

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	levelingservice "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/application"
	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// FakeLevelingService is a programmable fake for levelingservice.Service.
type FakeLevelingService struct {
	trace []string

	RecordActivityFunc    func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, channelID sharedtypes.ChannelID, now time.Time) (levelingservice.ActivityOutcome, error)
	SyncRoleForLevelFunc  func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, level int) levelingservice.RoleSyncReport
	AuditGuildFunc        func(ctx context.Context, cfg *guilddomain.GuildConfig) (levelingservice.AuditReport, error)
	AuditAllFunc          func(ctx context.Context) (levelingservice.AuditSummary, error)
	SetupLevelRolesFunc   func(ctx context.Context, guildID sharedtypes.GuildID, bindings []levelingdomain.RoleBinding) (levelingdomain.Ladder, error)
	GetRankFunc           func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (levelingservice.Rank, error)
	LeaderboardFunc       func(ctx context.Context, guildID sharedtypes.GuildID, limit int) ([]levelingservice.LeaderboardEntry, error)
	SetScoreFunc          func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, score int64) (levelingservice.ScoreChange, error)
	ExportLeaderboardFunc func(ctx context.Context, guildID sharedtypes.GuildID) ([]byte, error)
}

func NewFakeLevelingService() *FakeLevelingService {
	return &FakeLevelingService{trace: []string{}}
}

func (f *FakeLevelingService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeLevelingService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLevelingService) RecordActivity(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, channelID sharedtypes.ChannelID, now time.Time) (levelingservice.ActivityOutcome, error) {
	f.record("RecordActivity")
	if f.RecordActivityFunc != nil {
		return f.RecordActivityFunc(ctx, guildID, userID, channelID, now)
	}
	return levelingservice.ActivityOutcome{Status: levelingservice.ActivityNoConfig}, nil
}

func (f *FakeLevelingService) SyncRoleForLevel(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, level int) levelingservice.RoleSyncReport {
	f.record("SyncRoleForLevel")
	if f.SyncRoleForLevelFunc != nil {
		return f.SyncRoleForLevelFunc(ctx, guildID, userID, level)
	}
	return levelingservice.RoleSyncReport{}
}

func (f *FakeLevelingService) AuditGuild(ctx context.Context, cfg *guilddomain.GuildConfig) (levelingservice.AuditReport, error) {
	f.record("AuditGuild")
	if f.AuditGuildFunc != nil {
		return f.AuditGuildFunc(ctx, cfg)
	}
	return levelingservice.AuditReport{GuildID: cfg.GuildID}, nil
}

func (f *FakeLevelingService) AuditAll(ctx context.Context) (levelingservice.AuditSummary, error) {
	f.record("AuditAll")
	if f.AuditAllFunc != nil {
		return f.AuditAllFunc(ctx)
	}
	return levelingservice.AuditSummary{}, nil
}

func (f *FakeLevelingService) SetupLevelRoles(ctx context.Context, guildID sharedtypes.GuildID, bindings []levelingdomain.RoleBinding) (levelingdomain.Ladder, error) {
	f.record("SetupLevelRoles")
	if f.SetupLevelRolesFunc != nil {
		return f.SetupLevelRolesFunc(ctx, guildID, bindings)
	}
	return levelingdomain.NewLadder(bindings)
}

func (f *FakeLevelingService) GetRank(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (levelingservice.Rank, error) {
	f.record("GetRank")
	if f.GetRankFunc != nil {
		return f.GetRankFunc(ctx, guildID, userID)
	}
	return levelingservice.Rank{GuildID: guildID, UserID: userID, Position: 1, Info: levelingdomain.LevelFor(0)}, nil
}

func (f *FakeLevelingService) Leaderboard(ctx context.Context, guildID sharedtypes.GuildID, limit int) ([]levelingservice.LeaderboardEntry, error) {
	f.record("Leaderboard")
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, guildID, limit)
	}
	return nil, nil
}

func (f *FakeLevelingService) SetScore(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, score int64) (levelingservice.ScoreChange, error) {
	f.record("SetScore")
	if f.SetScoreFunc != nil {
		return f.SetScoreFunc(ctx, guildID, userID, score)
	}
	before := levelingdomain.NewScoreRecord(guildID, userID)
	return levelingservice.ScoreChange{Before: before, After: before.WithScore(score, time.Time{})}, nil
}

func (f *FakeLevelingService) ExportLeaderboard(ctx context.Context, guildID sharedtypes.GuildID) ([]byte, error) {
	f.record("ExportLeaderboard")
	if f.ExportLeaderboardFunc != nil {
		return f.ExportLeaderboardFunc(ctx, guildID)
	}
	return nil, nil
}

var _ levelingservice.Service = (*FakeLevelingService)(nil)

// FakeGuildConfigs serves one optional config.
type FakeGuildConfigs struct {
	cfg *guilddomain.GuildConfig
}

func (f FakeGuildConfigs) GetConfig(_ context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error) {
	if f.cfg == nil || f.cfg.GuildID != guildID {
		return nil, guilddomain.ErrConfigNotFound
	}
	return f.cfg, nil
}

func (f FakeGuildConfigs) ListAuditEnabled(context.Context) ([]*guilddomain.GuildConfig, error) {
	if f.cfg == nil {
		return nil, nil
	}
	return []*guilddomain.GuildConfig{f.cfg}, nil
}

type staticTier authdomain.Role

func (s staticTier) ResolveTier(context.Context, sharedtypes.GuildID, []sharedtypes.RoleID, bool) authdomain.Role {
	return authdomain.Role(s)
}
