package guildservice

import (
	"context"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Guild Repo
// ------------------------

type FakeGuildRepo struct {
	trace []string

	GetConfigFunc        func(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error)
	SaveConfigFunc       func(ctx context.Context, db bun.IDB, config *guilddomain.GuildConfig) error
	UpdateConfigFunc     func(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, updates *guilddb.UpdateFields) error
	DeleteConfigFunc     func(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) error
	ListAuditEnabledFunc func(ctx context.Context, db bun.IDB) ([]*guilddomain.GuildConfig, error)
}

func NewFakeGuildRepo() *FakeGuildRepo {
	return &FakeGuildRepo{
		trace: []string{},
	}
}

func (f *FakeGuildRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeGuildRepo) GetConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error) {
	f.record("GetConfig")
	if f.GetConfigFunc != nil {
		return f.GetConfigFunc(ctx, db, guildID)
	}
	return nil, guilddb.ErrNotFound
}

func (f *FakeGuildRepo) SaveConfig(ctx context.Context, db bun.IDB, config *guilddomain.GuildConfig) error {
	f.record("SaveConfig")
	if f.SaveConfigFunc != nil {
		return f.SaveConfigFunc(ctx, db, config)
	}
	return nil
}

func (f *FakeGuildRepo) UpdateConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, updates *guilddb.UpdateFields) error {
	f.record("UpdateConfig")
	if f.UpdateConfigFunc != nil {
		return f.UpdateConfigFunc(ctx, db, guildID, updates)
	}
	return nil
}

func (f *FakeGuildRepo) DeleteConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) error {
	f.record("DeleteConfig")
	if f.DeleteConfigFunc != nil {
		return f.DeleteConfigFunc(ctx, db, guildID)
	}
	return nil
}

func (f *FakeGuildRepo) ListAuditEnabled(ctx context.Context, db bun.IDB) ([]*guilddomain.GuildConfig, error) {
	f.record("ListAuditEnabled")
	if f.ListAuditEnabledFunc != nil {
		return f.ListAuditEnabledFunc(ctx, db)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeGuildRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ guilddb.Repository = (*FakeGuildRepo)(nil)
