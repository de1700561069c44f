package competitionintegrationtests

import (
	"context"
	"sync"
	"testing"
	"time"

	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/integration_tests/testutils"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	competitionmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/competition"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newService(env *testutils.TestEnvironment, gw *testutils.RecordingGateway) *competitionservice.CompetitionService {
	return competitionservice.NewCompetitionService(
		competitiondb.NewRepository(env.DB),
		gw,
		observability.NoOpLogger,
		competitionmetrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
		competitionservice.Options{BallotSize: 25, Location: time.UTC},
	)
}

func newSeason(guildID sharedtypes.GuildID, status competitiondomain.Status, start time.Time) *competitiondomain.Season {
	return &competitiondomain.Season{
		ID:              sharedtypes.NewSeasonID(),
		GuildID:         guildID,
		Theme:           gofakeit.Adjective() + " " + gofakeit.Noun(),
		SubmissionStart: start,
		SubmissionEnd:   start.Add(24 * time.Hour),
		VotingStart:     start.Add(24 * time.Hour),
		VotingEnd:       start.Add(48 * time.Hour),
		Status:          status,
		MaxImages:       5,
	}
}

func seedEntry(t *testing.T, repo competitiondb.Repository, season *competitiondomain.Season, author sharedtypes.DiscordID) *competitiondomain.Entry {
	t.Helper()
	entry := &competitiondomain.Entry{
		ID:        sharedtypes.NewEntryID(),
		SeasonID:  season.ID,
		GuildID:   season.GuildID,
		AuthorID:  author,
		Title:     gofakeit.BookTitle(),
		ImageURLs: []string{gofakeit.URL()},
	}
	require.NoError(t, repo.InsertEntry(context.Background(), nil, entry))
	return entry
}

func TestInsertSeason_OneOpenSeasonPerGuild(t *testing.T) {
	env := testutils.Require(t, testEnv)
	ctx := context.Background()
	repo := competitiondb.NewRepository(env.DB)
	now := time.Now().UTC().Truncate(time.Second)

	first := newSeason("g-open", competitiondomain.StatusScheduled, now.Add(time.Hour))
	require.NoError(t, repo.InsertSeason(ctx, nil, first))

	second := newSeason("g-open", competitiondomain.StatusScheduled, now.Add(72*time.Hour))
	assert.ErrorIs(t, repo.InsertSeason(ctx, nil, second), competitiondb.ErrOpenSeasonExists)

	other := newSeason("g-other", competitiondomain.StatusScheduled, now.Add(time.Hour))
	require.NoError(t, repo.InsertSeason(ctx, nil, other), "the index is per guild")

	require.NoError(t, repo.CompareAndSwapStatus(ctx, nil, first.ID, competitiondomain.StatusScheduled, competitiondomain.StatusClosed))
	require.NoError(t, repo.InsertSeason(ctx, nil, second), "a closed season frees the slot")
}

func TestCompareAndSwapStatus_Conflict(t *testing.T) {
	env := testutils.Require(t, testEnv)
	ctx := context.Background()
	repo := competitiondb.NewRepository(env.DB)

	season := newSeason("g-cas", competitiondomain.StatusScheduled, time.Now().UTC())
	require.NoError(t, repo.InsertSeason(ctx, nil, season))

	require.NoError(t, repo.CompareAndSwapStatus(ctx, nil, season.ID, competitiondomain.StatusScheduled, competitiondomain.StatusSubmissions))
	err := repo.CompareAndSwapStatus(ctx, nil, season.ID, competitiondomain.StatusScheduled, competitiondomain.StatusSubmissions)
	assert.ErrorIs(t, err, competitiondb.ErrStatusConflict)

	got, err := repo.GetSeason(ctx, nil, season.ID, competitiondb.LockNone)
	require.NoError(t, err)
	assert.Equal(t, competitiondomain.StatusSubmissions, got.Status)
}

// Simultaneous votes from one member: exactly one is stored and the rest are
// reported as already voted.
func TestRecordVote_DuplicateUnderContention(t *testing.T) {
	env := testutils.Require(t, testEnv)
	ctx := context.Background()
	repo := competitiondb.NewRepository(env.DB)
	svc := newService(env, &testutils.RecordingGateway{})

	season := newSeason("g-vote", competitiondomain.StatusVoting, time.Now().UTC().Add(-36*time.Hour))
	require.NoError(t, repo.InsertSeason(ctx, nil, season))
	a := seedEntry(t, repo, season, "author-a")
	b := seedEntry(t, repo, season, "author-b")

	const voters = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		dupes    int
	)
	for i := range voters {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := a
			if i%2 == 1 {
				entry = b
			}
			out, err := svc.RecordVote(ctx, "voter", season.ID, entry.ID)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case out.Accepted:
				accepted++
			case out.Rejection == competitiondomain.VoteAlreadyVoted:
				dupes++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, voters-1, dupes)

	votes, err := repo.ListVotes(ctx, nil, season.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestTick_ClosesSeasonAndCrownsWinner(t *testing.T) {
	env := testutils.Require(t, testEnv)
	ctx := context.Background()
	repo := competitiondb.NewRepository(env.DB)
	gw := &testutils.RecordingGateway{}
	svc := newService(env, gw)

	require.NoError(t, repo.UpsertBuildConfig(ctx, nil, &competitiondomain.BuildConfig{
		GuildID:               "g-tick",
		AnnouncementChannelID: "announce",
	}))
	season := newSeason("g-tick", competitiondomain.StatusVoting, time.Now().UTC().Add(-72*time.Hour))
	require.NoError(t, repo.InsertSeason(ctx, nil, season))
	winner := seedEntry(t, repo, season, "author-win")
	seedEntry(t, repo, season, "author-lose")
	require.NoError(t, repo.InsertVote(ctx, nil, &competitiondomain.Vote{SeasonID: season.ID, VoterID: "v1", EntryID: winner.ID}))

	_, err := svc.Tick(ctx)
	require.NoError(t, err)

	got, err := repo.GetSeason(ctx, nil, season.ID, competitiondb.LockNone)
	require.NoError(t, err)
	assert.Equal(t, competitiondomain.StatusClosed, got.Status)
	require.NotNil(t, got.WinnerEntryID)
	assert.Equal(t, winner.ID, *got.WinnerEntryID)

	_, err = svc.Tick(ctx)
	require.NoError(t, err)
	assert.Len(t, gw.Notices, 1, "a second tick must not repeat the winner notice")
}
