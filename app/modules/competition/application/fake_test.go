package competitionservice

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

var errBoom = errors.New("boom")

// ------------------------
// In-memory competition store
// ------------------------

type voteKey struct {
	season sharedtypes.SeasonID
	voter  sharedtypes.DiscordID
}

// MemRepo mirrors the bun repository's constraints: status compare-and-swap,
// one vote per voter per season and one open season per guild.
type MemRepo struct {
	mu      sync.Mutex
	configs map[sharedtypes.GuildID]competitiondomain.BuildConfig
	seasons map[sharedtypes.SeasonID]competitiondomain.Season
	entries map[sharedtypes.EntryID]competitiondomain.Entry
	votes   map[voteKey]competitiondomain.Vote

	// BeforeCAS runs before a status write, outside the lock.
	BeforeCAS      func(seasonID sharedtypes.SeasonID, from, to competitiondomain.Status)
	ListEntriesErr map[sharedtypes.SeasonID]error
	ListOpenErr    error
}

var _ competitiondb.Repository = (*MemRepo)(nil)

func NewMemRepo() *MemRepo {
	return &MemRepo{
		configs:        map[sharedtypes.GuildID]competitiondomain.BuildConfig{},
		seasons:        map[sharedtypes.SeasonID]competitiondomain.Season{},
		entries:        map[sharedtypes.EntryID]competitiondomain.Entry{},
		votes:          map[voteKey]competitiondomain.Vote{},
		ListEntriesErr: map[sharedtypes.SeasonID]error{},
	}
}

func (m *MemRepo) PutSeason(s competitiondomain.Season) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seasons[s.ID] = s
}

func (m *MemRepo) Season(id sharedtypes.SeasonID) competitiondomain.Season {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seasons[id]
}

func (m *MemRepo) PutEntry(e competitiondomain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
}

// Entry returns a copy of the stored entry.
func (m *MemRepo) Entry(id sharedtypes.EntryID) *competitiondomain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[id]
	return &e
}

func (m *MemRepo) SetStatus(id sharedtypes.SeasonID, st competitiondomain.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.seasons[id]
	s.Status = st
	m.seasons[id] = s
}

func (m *MemRepo) VoteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.votes)
}

func (m *MemRepo) VoteOf(season sharedtypes.SeasonID, voter sharedtypes.DiscordID) (competitiondomain.Vote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[voteKey{season, voter}]
	return v, ok
}

func (m *MemRepo) GetBuildConfig(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.BuildConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[guildID]
	if !ok {
		return nil, competitiondb.ErrNotFound
	}
	return &cfg, nil
}

func (m *MemRepo) UpsertBuildConfig(_ context.Context, _ bun.IDB, cfg *competitiondomain.BuildConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.GuildID] = *cfg
	return nil
}

func (m *MemRepo) InsertSeason(_ context.Context, _ bun.IDB, season *competitiondomain.Season) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.seasons {
		if s.GuildID == season.GuildID && s.Status.IsOpen() {
			return competitiondb.ErrOpenSeasonExists
		}
	}
	m.seasons[season.ID] = *season
	return nil
}

func (m *MemRepo) GetSeason(_ context.Context, _ bun.IDB, seasonID sharedtypes.SeasonID, _ competitiondb.Lock) (*competitiondomain.Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seasons[seasonID]
	if !ok {
		return nil, competitiondb.ErrNotFound
	}
	return &s, nil
}

func (m *MemRepo) GetOpenSeason(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.Season, error) {
	return m.latest(guildID, true)
}

func (m *MemRepo) GetLatestSeason(_ context.Context, _ bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.Season, error) {
	return m.latest(guildID, false)
}

func (m *MemRepo) latest(guildID sharedtypes.GuildID, openOnly bool) (*competitiondomain.Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *competitiondomain.Season
	for _, s := range m.seasons {
		if s.GuildID != guildID || (openOnly && !s.Status.IsOpen()) {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			s := s
			best = &s
		}
	}
	if best == nil {
		return nil, competitiondb.ErrNotFound
	}
	return best, nil
}

func (m *MemRepo) ListOpenSeasons(context.Context, bun.IDB) ([]*competitiondomain.Season, error) {
	if m.ListOpenErr != nil {
		return nil, m.ListOpenErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*competitiondomain.Season
	for _, s := range m.seasons {
		if s.Status.IsOpen() {
			s := s
			out = append(out, &s)
		}
	}
	slices.SortFunc(out, func(a, b *competitiondomain.Season) int {
		if c := a.SubmissionStart.Compare(b.SubmissionStart); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (m *MemRepo) CompareAndSwapStatus(_ context.Context, _ bun.IDB, seasonID sharedtypes.SeasonID, from, to competitiondomain.Status) error {
	if m.BeforeCAS != nil {
		m.BeforeCAS(seasonID, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seasons[seasonID]
	if !ok || s.Status != from {
		return competitiondb.ErrStatusConflict
	}
	s.Status = to
	m.seasons[seasonID] = s
	return nil
}

func (m *MemRepo) SetWinner(_ context.Context, _ bun.IDB, seasonID sharedtypes.SeasonID, entryID sharedtypes.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seasons[seasonID]
	if !ok {
		return competitiondb.ErrNotFound
	}
	s.WinnerEntryID = &entryID
	m.seasons[seasonID] = s
	return nil
}

func (m *MemRepo) InsertEntry(_ context.Context, _ bun.IDB, entry *competitiondomain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = *entry
	return nil
}

func (m *MemRepo) GetEntry(_ context.Context, _ bun.IDB, entryID sharedtypes.EntryID) (*competitiondomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryID]
	if !ok {
		return nil, competitiondb.ErrNotFound
	}
	return &e, nil
}

func (m *MemRepo) ListEntries(_ context.Context, _ bun.IDB, seasonID sharedtypes.SeasonID) ([]*competitiondomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ListEntriesErr[seasonID]; err != nil {
		return nil, err
	}
	var out []*competitiondomain.Entry
	for _, e := range m.entries {
		if e.SeasonID == seasonID {
			e := e
			out = append(out, &e)
		}
	}
	slices.SortFunc(out, func(a, b *competitiondomain.Entry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (m *MemRepo) CountEntriesByAuthor(_ context.Context, _ bun.IDB, seasonID sharedtypes.SeasonID, authorID sharedtypes.DiscordID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.SeasonID == seasonID && e.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (m *MemRepo) AddEntryTag(_ context.Context, _ bun.IDB, entryID sharedtypes.EntryID, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryID]
	if !ok || slices.Contains(e.Tags, tag) {
		return nil
	}
	e.Tags = append(slices.Clone(e.Tags), tag)
	m.entries[entryID] = e
	return nil
}

func (m *MemRepo) InsertVote(_ context.Context, _ bun.IDB, vote *competitiondomain.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := voteKey{vote.SeasonID, vote.VoterID}
	if _, ok := m.votes[k]; ok {
		return competitiondb.ErrDuplicateVote
	}
	m.votes[k] = *vote
	return nil
}

func (m *MemRepo) ListVotes(_ context.Context, _ bun.IDB, seasonID sharedtypes.SeasonID) ([]*competitiondomain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*competitiondomain.Vote
	for _, v := range m.votes {
		if v.SeasonID == seasonID {
			v := v
			out = append(out, &v)
		}
	}
	slices.SortFunc(out, func(a, b *competitiondomain.Vote) int {
		return cmp.Compare(string(a.VoterID), string(b.VoterID))
	})
	return out, nil
}

// ------------------------
// Announcer
// ------------------------

type Post struct {
	GuildID   sharedtypes.GuildID
	ChannelID sharedtypes.ChannelID
	Content   string
}

type Ballot struct {
	ChannelID sharedtypes.ChannelID
	SeasonID  sharedtypes.SeasonID
	Options   []platform.VoteOption
}

// FakeAnnouncer records every call. trace holds the call order as
// "announce", "ballot" and "dm".
type FakeAnnouncer struct {
	mu      sync.Mutex
	posts   []Post
	ballots []Ballot
	notices []sharedtypes.DiscordID
	trace   []string

	AnnounceErr error
	BallotErr   error
}

var _ platform.Announcer = (*FakeAnnouncer)(nil)

func (f *FakeAnnouncer) Announce(_ context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "announce")
	if f.AnnounceErr != nil {
		return f.AnnounceErr
	}
	f.posts = append(f.posts, Post{guildID, channelID, content})
	return nil
}

func (f *FakeAnnouncer) SendDirectNotice(_ context.Context, userID sharedtypes.DiscordID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "dm")
	f.notices = append(f.notices, userID)
	return nil
}

func (f *FakeAnnouncer) PostVotePrompts(_ context.Context, _ sharedtypes.GuildID, channelID sharedtypes.ChannelID, seasonID sharedtypes.SeasonID, options []platform.VoteOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "ballot")
	if f.BallotErr != nil {
		return f.BallotErr
	}
	f.ballots = append(f.ballots, Ballot{channelID, seasonID, options})
	return nil
}

func (f *FakeAnnouncer) Posts() []Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.posts)
}

func (f *FakeAnnouncer) Ballots() []Ballot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ballots)
}

func (f *FakeAnnouncer) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}
