package guildhandlers

import (
	"context"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	guildservice "github.com/Black-And-White-Club/guild-bot/app/modules/guild/application"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// FakeGuildService is a programmable fake for guildservice.Service.
type FakeGuildService struct {
	trace []string

	GetConfigFunc        func(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error)
	UpdateConfigFunc     func(ctx context.Context, guildID sharedtypes.GuildID, updates guilddb.UpdateFields) (*guilddomain.GuildConfig, error)
	DeleteConfigFunc     func(ctx context.Context, guildID sharedtypes.GuildID) error
	ListAuditEnabledFunc func(ctx context.Context) ([]*guilddomain.GuildConfig, error)
}

func NewFakeGuildService() *FakeGuildService {
	return &FakeGuildService{trace: []string{}}
}

func (f *FakeGuildService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeGuildService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeGuildService) GetConfig(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error) {
	f.record("GetConfig")
	if f.GetConfigFunc != nil {
		return f.GetConfigFunc(ctx, guildID)
	}
	return nil, guilddomain.ErrConfigNotFound
}

func (f *FakeGuildService) UpdateConfig(ctx context.Context, guildID sharedtypes.GuildID, updates guilddb.UpdateFields) (*guilddomain.GuildConfig, error) {
	f.record("UpdateConfig")
	if f.UpdateConfigFunc != nil {
		return f.UpdateConfigFunc(ctx, guildID, updates)
	}
	cfg := &guilddomain.GuildConfig{GuildID: guildID, CooldownSeconds: 60, PointsPerMessage: 5}
	updates.Apply(cfg)
	return cfg, nil
}

func (f *FakeGuildService) DeleteConfig(ctx context.Context, guildID sharedtypes.GuildID) error {
	f.record("DeleteConfig")
	if f.DeleteConfigFunc != nil {
		return f.DeleteConfigFunc(ctx, guildID)
	}
	return nil
}

func (f *FakeGuildService) ListAuditEnabled(ctx context.Context) ([]*guilddomain.GuildConfig, error) {
	f.record("ListAuditEnabled")
	if f.ListAuditEnabledFunc != nil {
		return f.ListAuditEnabledFunc(ctx)
	}
	return nil, nil
}

var _ guildservice.Service = (*FakeGuildService)(nil)

type staticTier authdomain.Role

func (s staticTier) ResolveTier(context.Context, sharedtypes.GuildID, []sharedtypes.RoleID, bool) authdomain.Role {
	return authdomain.Role(s)
}
