package api

import (
	"context"
	"errors"
	"sync"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	levelingservice "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/application"
	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/ThreeDotsLabs/watermill/message"
)

// staticTokens maps raw bearer tokens to claims.
type staticTokens map[string]*authdomain.Claims

func (s staticTokens) ValidateToken(_ context.Context, token string) (*authdomain.Claims, error) {
	c, ok := s[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// fakeLeveling implements the leveling calls the API makes. Anything else
// panics through the nil embedded interface.
type fakeLeveling struct {
	levelingservice.Service
	score     int64
	export    []byte
	exportErr error
	audited   []sharedtypes.GuildID
}

func (f *fakeLeveling) GetRank(_ context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (levelingservice.Rank, error) {
	return levelingservice.Rank{GuildID: guildID, UserID: userID, Score: f.score, Info: levelingdomain.LevelFor(f.score), Position: 2}, nil
}

func (f *fakeLeveling) ExportLeaderboard(context.Context, sharedtypes.GuildID) ([]byte, error) {
	return f.export, f.exportErr
}

func (f *fakeLeveling) AuditGuild(_ context.Context, cfg *guilddomain.GuildConfig) (levelingservice.AuditReport, error) {
	f.audited = append(f.audited, cfg.GuildID)
	return levelingservice.AuditReport{GuildID: cfg.GuildID, Members: 4, Corrected: 1}, nil
}

type fakeGuilds struct {
	configs map[sharedtypes.GuildID]*guilddomain.GuildConfig
}

func (f fakeGuilds) GetConfig(_ context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error) {
	cfg, ok := f.configs[guildID]
	if !ok {
		return nil, guilddomain.ErrConfigNotFound
	}
	return cfg, nil
}

func (f fakeGuilds) ListAuditEnabled(context.Context) ([]*guilddomain.GuildConfig, error) {
	return nil, nil
}

type fakeCompetition struct {
	competitionservice.Service
	seasons  map[sharedtypes.SeasonID]*competitiondomain.Season
	created  []competitionservice.SeasonRequest
	createFn func(req competitionservice.SeasonRequest) (*competitiondomain.Season, error)
	voteFn   func(voter sharedtypes.DiscordID, entryID sharedtypes.EntryID) (competitionservice.VoteOutcome, error)
	advanced []competitiondomain.Status
}

func (f *fakeCompetition) GetSeason(_ context.Context, id sharedtypes.SeasonID) (*competitiondomain.Season, error) {
	s, ok := f.seasons[id]
	if !ok {
		return nil, competitionservice.ErrSeasonNotFound
	}
	return s, nil
}

func (f *fakeCompetition) CreateSeason(_ context.Context, req competitionservice.SeasonRequest) (*competitiondomain.Season, error) {
	f.created = append(f.created, req)
	return f.createFn(req)
}

func (f *fakeCompetition) ForceAdvance(_ context.Context, id sharedtypes.SeasonID, target competitiondomain.Status) (competitionservice.AdvanceOutcome, error) {
	s := f.seasons[id]
	path, err := s.PathTo(target)
	if err != nil {
		return competitionservice.AdvanceOutcome{}, err
	}
	var out competitionservice.AdvanceOutcome
	for _, to := range path {
		out.Transitions = append(out.Transitions, competitionservice.Transition{GuildID: s.GuildID, SeasonID: s.ID, From: s.Status, To: to, Forced: true})
		s.Status = to
		f.advanced = append(f.advanced, to)
	}
	out.Season = s
	return out, nil
}

func (f *fakeCompetition) RecordVote(_ context.Context, voter sharedtypes.DiscordID, _ sharedtypes.SeasonID, entryID sharedtypes.EntryID) (competitionservice.VoteOutcome, error) {
	return f.voteFn(voter, entryID)
}

func (f *fakeCompetition) ExportSeasonResults(context.Context, sharedtypes.SeasonID) ([]byte, error) {
	return []byte("xlsx"), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakePublisher) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for range msgs {
		f.topics = append(f.topics, topic)
	}
	return nil
}
