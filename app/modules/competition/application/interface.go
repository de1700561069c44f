package competitionservice

import (
	"context"
	"time"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// Transition is one committed status change.
type Transition struct {
	GuildID  sharedtypes.GuildID
	SeasonID sharedtypes.SeasonID
	Theme    string
	From     competitiondomain.Status
	To       competitiondomain.Status
	Forced   bool
}

// TickReport summarises one scheduler pass.
type TickReport struct {
	Seasons     int
	Transitions []Transition
	Failures    int
	Duration    time.Duration
}

// AdvanceOutcome is the result of an admin forced advance.
type AdvanceOutcome struct {
	Season      *competitiondomain.Season
	Transitions []Transition
}

// SeasonRequest carries admin input for a new season. Boundaries are RFC 3339
// or natural language, read in Timezone (default: the configured zone).
type SeasonRequest struct {
	GuildID              sharedtypes.GuildID
	Theme                string
	SubmissionStart      string
	SubmissionEnd        string
	VotingStart          string
	VotingEnd            string
	Timezone             string
	MaxImages            int
	AllowMultipleEntries bool
}

// SubmissionOutcome reports an entry submission. Rejections are outcomes, not errors.
type SubmissionOutcome struct {
	Accepted  bool
	Rejection competitiondomain.SubmissionRejection
	Reason    string
	Season    *competitiondomain.Season
	Entry     *competitiondomain.Entry
}

// VoteOutcome reports a vote. Rejections are outcomes, not errors.
type VoteOutcome struct {
	Accepted  bool
	Rejection competitiondomain.VoteRejection
	Entry     *competitiondomain.Entry
}

// SeasonSummary describes a guild's current or most recent season.
// Standings is only filled once the season is closed.
type SeasonSummary struct {
	Season    *competitiondomain.Season
	Entries   int
	Votes     int
	Standings []competitiondomain.Standing
}

type (
	TickResult        = results.OperationResult[TickReport, error]
	AdvanceResult     = results.OperationResult[AdvanceOutcome, error]
	SeasonResult      = results.OperationResult[*competitiondomain.Season, error]
	SubmissionResult  = results.OperationResult[SubmissionOutcome, error]
	VoteResult        = results.OperationResult[VoteOutcome, error]
	SummaryResult     = results.OperationResult[SeasonSummary, error]
	BuildConfigResult = results.OperationResult[*competitiondomain.BuildConfig, error]
	TransitionResult  = results.OperationResult[transitionCommit, error]
)

// Service is the build competition engine. The scheduler is the only writer
// of season status; ForceAdvance goes through the same transition path.
type Service interface {
	// Tick advances every open season whose boundaries have passed.
	Tick(ctx context.Context) (TickReport, error)
	ForceAdvance(ctx context.Context, seasonID sharedtypes.SeasonID, target competitiondomain.Status) (AdvanceOutcome, error)

	CreateSeason(ctx context.Context, req SeasonRequest) (*competitiondomain.Season, error)
	SeasonStatus(ctx context.Context, guildID sharedtypes.GuildID) (SeasonSummary, error)
	GetSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (*competitiondomain.Season, error)

	CanSubmit(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (bool, error)
	SubmitEntry(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, title string, imageURLs []string) (SubmissionOutcome, error)
	RecordVote(ctx context.Context, voterID sharedtypes.DiscordID, seasonID sharedtypes.SeasonID, entryID sharedtypes.EntryID) (VoteOutcome, error)

	GetBuildConfig(ctx context.Context, guildID sharedtypes.GuildID) (*competitiondomain.BuildConfig, error)
	UpdateBuildConfig(ctx context.Context, cfg *competitiondomain.BuildConfig) (*competitiondomain.BuildConfig, error)

	ExportSeasonResults(ctx context.Context, seasonID sharedtypes.SeasonID) ([]byte, error)
}
