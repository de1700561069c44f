package competitionhandlers

import (
	"context"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// FakeCompetitionService is a programmable fake for competitionservice.Service.
type FakeCompetitionService struct {
	trace []string

	TickFunc                func(ctx context.Context) (competitionservice.TickReport, error)
	ForceAdvanceFunc        func(ctx context.Context, seasonID sharedtypes.SeasonID, target competitiondomain.Status) (competitionservice.AdvanceOutcome, error)
	CreateSeasonFunc        func(ctx context.Context, req competitionservice.SeasonRequest) (*competitiondomain.Season, error)
	SeasonStatusFunc        func(ctx context.Context, guildID sharedtypes.GuildID) (competitionservice.SeasonSummary, error)
	GetSeasonFunc           func(ctx context.Context, seasonID sharedtypes.SeasonID) (*competitiondomain.Season, error)
	CanSubmitFunc           func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (bool, error)
	SubmitEntryFunc         func(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, title string, imageURLs []string) (competitionservice.SubmissionOutcome, error)
	RecordVoteFunc          func(ctx context.Context, voterID sharedtypes.DiscordID, seasonID sharedtypes.SeasonID, entryID sharedtypes.EntryID) (competitionservice.VoteOutcome, error)
	GetBuildConfigFunc      func(ctx context.Context, guildID sharedtypes.GuildID) (*competitiondomain.BuildConfig, error)
	UpdateBuildConfigFunc   func(ctx context.Context, cfg *competitiondomain.BuildConfig) (*competitiondomain.BuildConfig, error)
	ExportSeasonResultsFunc func(ctx context.Context, seasonID sharedtypes.SeasonID) ([]byte, error)
}

func NewFakeCompetitionService() *FakeCompetitionService {
	return &FakeCompetitionService{trace: []string{}}
}

func (f *FakeCompetitionService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeCompetitionService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeCompetitionService) Tick(ctx context.Context) (competitionservice.TickReport, error) {
	f.record("Tick")
	if f.TickFunc != nil {
		return f.TickFunc(ctx)
	}
	return competitionservice.TickReport{}, nil
}

func (f *FakeCompetitionService) ForceAdvance(ctx context.Context, seasonID sharedtypes.SeasonID, target competitiondomain.Status) (competitionservice.AdvanceOutcome, error) {
	f.record("ForceAdvance")
	if f.ForceAdvanceFunc != nil {
		return f.ForceAdvanceFunc(ctx, seasonID, target)
	}
	return competitionservice.AdvanceOutcome{}, nil
}

func (f *FakeCompetitionService) CreateSeason(ctx context.Context, req competitionservice.SeasonRequest) (*competitiondomain.Season, error) {
	f.record("CreateSeason")
	if f.CreateSeasonFunc != nil {
		return f.CreateSeasonFunc(ctx, req)
	}
	return &competitiondomain.Season{GuildID: req.GuildID, Theme: req.Theme, MaxImages: competitiondomain.DefaultMaxImages}, nil
}

func (f *FakeCompetitionService) SeasonStatus(ctx context.Context, guildID sharedtypes.GuildID) (competitionservice.SeasonSummary, error) {
	f.record("SeasonStatus")
	if f.SeasonStatusFunc != nil {
		return f.SeasonStatusFunc(ctx, guildID)
	}
	return competitionservice.SeasonSummary{}, competitionservice.ErrNoSeason
}

func (f *FakeCompetitionService) GetSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (*competitiondomain.Season, error) {
	f.record("GetSeason")
	if f.GetSeasonFunc != nil {
		return f.GetSeasonFunc(ctx, seasonID)
	}
	return nil, competitionservice.ErrSeasonNotFound
}

func (f *FakeCompetitionService) CanSubmit(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (bool, error) {
	f.record("CanSubmit")
	if f.CanSubmitFunc != nil {
		return f.CanSubmitFunc(ctx, guildID, userID)
	}
	return false, nil
}

func (f *FakeCompetitionService) SubmitEntry(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, title string, imageURLs []string) (competitionservice.SubmissionOutcome, error) {
	f.record("SubmitEntry")
	if f.SubmitEntryFunc != nil {
		return f.SubmitEntryFunc(ctx, guildID, userID, title, imageURLs)
	}
	return competitionservice.SubmissionOutcome{}, nil
}

func (f *FakeCompetitionService) RecordVote(ctx context.Context, voterID sharedtypes.DiscordID, seasonID sharedtypes.SeasonID, entryID sharedtypes.EntryID) (competitionservice.VoteOutcome, error) {
	f.record("RecordVote")
	if f.RecordVoteFunc != nil {
		return f.RecordVoteFunc(ctx, voterID, seasonID, entryID)
	}
	return competitionservice.VoteOutcome{}, nil
}

func (f *FakeCompetitionService) GetBuildConfig(ctx context.Context, guildID sharedtypes.GuildID) (*competitiondomain.BuildConfig, error) {
	f.record("GetBuildConfig")
	if f.GetBuildConfigFunc != nil {
		return f.GetBuildConfigFunc(ctx, guildID)
	}
	return nil, competitiondomain.ErrBuildConfigNotFound
}

func (f *FakeCompetitionService) UpdateBuildConfig(ctx context.Context, cfg *competitiondomain.BuildConfig) (*competitiondomain.BuildConfig, error) {
	f.record("UpdateBuildConfig")
	if f.UpdateBuildConfigFunc != nil {
		return f.UpdateBuildConfigFunc(ctx, cfg)
	}
	return cfg, nil
}

func (f *FakeCompetitionService) ExportSeasonResults(ctx context.Context, seasonID sharedtypes.SeasonID) ([]byte, error) {
	f.record("ExportSeasonResults")
	if f.ExportSeasonResultsFunc != nil {
		return f.ExportSeasonResultsFunc(ctx, seasonID)
	}
	return nil, nil
}

var _ competitionservice.Service = (*FakeCompetitionService)(nil)

type staticTier authdomain.Role

func (s staticTier) ResolveTier(context.Context, sharedtypes.GuildID, []sharedtypes.RoleID, bool) authdomain.Role {
	return authdomain.Role(s)
}
