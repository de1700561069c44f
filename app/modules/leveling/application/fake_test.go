package levelingservice

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	levelingdb "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// ------------------------
// In-memory score store
// ------------------------

type scoreKey struct {
	guild sharedtypes.GuildID
	user  sharedtypes.DiscordID
}

// MemRepo is a goroutine-safe repository with the same optimistic semantics as
// the bun implementation. Hooks let tests inject failures or interleavings.
type MemRepo struct {
	mu      sync.Mutex
	scores  map[scoreKey]levelingdomain.ScoreRecord
	ladders map[sharedtypes.GuildID][]levelingdomain.RoleBinding
	writes  int

	BeforeWrite  func(rec *levelingdomain.ScoreRecord) error
	GetLadderErr error
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		scores:  map[scoreKey]levelingdomain.ScoreRecord{},
		ladders: map[sharedtypes.GuildID][]levelingdomain.RoleBinding{},
	}
}

func (m *MemRepo) Put(rec levelingdomain.ScoreRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Version == 0 {
		rec.Version = 1
	}
	m.scores[scoreKey{rec.GuildID, rec.UserID}] = rec
}

func (m *MemRepo) Get(guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (levelingdomain.ScoreRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.scores[scoreKey{guildID, userID}]
	return rec, ok
}

func (m *MemRepo) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemRepo) GetScore(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*levelingdomain.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.scores[scoreKey{guildID, userID}]
	if !ok {
		return nil, levelingdb.ErrNotFound
	}
	return &rec, nil
}

func (m *MemRepo) GetScoreForUpdate(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*levelingdomain.ScoreRecord, error) {
	return m.GetScore(ctx, db, guildID, userID)
}

func (m *MemRepo) beforeWrite(rec *levelingdomain.ScoreRecord) error {
	if m.BeforeWrite == nil {
		return nil
	}
	return m.BeforeWrite(rec)
}

func (m *MemRepo) InsertScore(_ context.Context, _ bun.IDB, rec *levelingdomain.ScoreRecord) error {
	if err := m.beforeWrite(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scoreKey{rec.GuildID, rec.UserID}
	if _, ok := m.scores[key]; ok {
		return levelingdb.ErrAlreadyExists
	}
	rec.Version = 1
	m.scores[key] = *rec
	m.writes++
	return nil
}

func (m *MemRepo) CompareAndSwapScore(_ context.Context, _ bun.IDB, rec *levelingdomain.ScoreRecord, expectedVersion int64) error {
	if err := m.beforeWrite(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scoreKey{rec.GuildID, rec.UserID}
	stored, ok := m.scores[key]
	if !ok || stored.Version != expectedVersion {
		return levelingdb.ErrVersionConflict
	}
	next := *rec
	if next.LastActivityAt.IsZero() {
		next.LastActivityAt = stored.LastActivityAt
	}
	next.Version = expectedVersion + 1
	rec.Version = next.Version
	m.scores[key] = next
	m.writes++
	return nil
}

func (m *MemRepo) guildScores(guildID sharedtypes.GuildID) []*levelingdomain.ScoreRecord {
	var out []*levelingdomain.ScoreRecord
	for k, v := range m.scores {
		if k.guild == guildID {
			rec := v
			out = append(out, &rec)
		}
	}
	return out
}

func (m *MemRepo) ListScores(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID) ([]*levelingdomain.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.guildScores(guildID)
	slices.SortFunc(out, func(a, b *levelingdomain.ScoreRecord) int { return cmp.Compare(a.UserID, b.UserID) })
	return out, nil
}

func (m *MemRepo) TopScores(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID, limit int) ([]*levelingdomain.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.guildScores(guildID)
	slices.SortFunc(out, func(a, b *levelingdomain.ScoreRecord) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemRepo) CountAbove(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID, score int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rec := range m.guildScores(guildID) {
		if rec.Score > score {
			n++
		}
	}
	return n, nil
}

func (m *MemRepo) GetLadder(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID) ([]levelingdomain.RoleBinding, error) {
	if m.GetLadderErr != nil {
		return nil, m.GetLadderErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ladders[guildID]), nil
}

func (m *MemRepo) ReplaceLadder(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID, bindings []levelingdomain.RoleBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ladders[guildID] = slices.Clone(bindings)
	return nil
}

var _ levelingdb.Repository = (*MemRepo)(nil)

// ------------------------
// Fake guild configs
// ------------------------

type FakeGuildConfigs struct {
	configs map[sharedtypes.GuildID]*guilddomain.GuildConfig
	Err     error
}

func NewFakeGuildConfigs(cfgs ...*guilddomain.GuildConfig) *FakeGuildConfigs {
	f := &FakeGuildConfigs{configs: map[sharedtypes.GuildID]*guilddomain.GuildConfig{}}
	for _, c := range cfgs {
		f.configs[c.GuildID] = c
	}
	return f
}

func (f *FakeGuildConfigs) GetConfig(_ context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	cfg, ok := f.configs[guildID]
	if !ok {
		return nil, guilddomain.ErrConfigNotFound
	}
	return cfg.Clone(), nil
}

func (f *FakeGuildConfigs) ListAuditEnabled(_ context.Context) ([]*guilddomain.GuildConfig, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []*guilddomain.GuildConfig
	for _, c := range f.configs {
		if c.AuditEnabled {
			out = append(out, c.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *guilddomain.GuildConfig) int { return cmp.Compare(a.GuildID, b.GuildID) })
	return out, nil
}

// ------------------------
// Fake platform gateway
// ------------------------

type announcement struct {
	Channel sharedtypes.ChannelID
	Content string
}

// FakeGateway tracks member roles so repeated syncs observe earlier effects.
type FakeGateway struct {
	mu            sync.Mutex
	roles         map[scoreKey][]sharedtypes.RoleID
	trace         []string
	announcements []announcement

	AnnounceErr    error
	GrantErr       error
	RevokeErr      error
	MemberRolesErr error
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{roles: map[scoreKey][]sharedtypes.RoleID{}}
}

func (f *FakeGateway) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGateway) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeGateway) Announcements() []announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.announcements)
}

func (f *FakeGateway) SetRoles(guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roles ...sharedtypes.RoleID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[scoreKey{guildID, userID}] = roles
}

func (f *FakeGateway) Roles(guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) []sharedtypes.RoleID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.roles[scoreKey{guildID, userID}])
	slices.Sort(out)
	return out
}

func (f *FakeGateway) Announce(_ context.Context, _ sharedtypes.GuildID, channelID sharedtypes.ChannelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Announce")
	if f.AnnounceErr != nil {
		return f.AnnounceErr
	}
	f.announcements = append(f.announcements, announcement{channelID, content})
	return nil
}

func (f *FakeGateway) SendDirectNotice(context.Context, sharedtypes.DiscordID, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendDirectNotice")
	return nil
}

func (f *FakeGateway) PostVotePrompts(context.Context, sharedtypes.GuildID, sharedtypes.ChannelID, sharedtypes.SeasonID, []platform.VoteOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PostVotePrompts")
	return nil
}

func (f *FakeGateway) GrantRole(_ context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GrantRole:" + string(roleID))
	if f.GrantErr != nil {
		return f.GrantErr
	}
	key := scoreKey{guildID, userID}
	if !slices.Contains(f.roles[key], roleID) {
		f.roles[key] = append(f.roles[key], roleID)
	}
	return nil
}

func (f *FakeGateway) RevokeRole(_ context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, roleID sharedtypes.RoleID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RevokeRole:" + string(roleID))
	if f.RevokeErr != nil {
		return f.RevokeErr
	}
	key := scoreKey{guildID, userID}
	f.roles[key] = slices.DeleteFunc(f.roles[key], func(r sharedtypes.RoleID) bool { return r == roleID })
	return nil
}

func (f *FakeGateway) MemberRoles(_ context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) ([]sharedtypes.RoleID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MemberRoles")
	if f.MemberRolesErr != nil {
		return nil, f.MemberRolesErr
	}
	return slices.Clone(f.roles[scoreKey{guildID, userID}]), nil
}

var _ platform.Gateway = (*FakeGateway)(nil)

var errBoom = errors.New("boom")
