package competitionservice

import (
	"context"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// Side-effect step names, used in logs and metrics.
const (
	stepSubmissionsOpen   = "submissions_open"
	stepSubmissionsClosed = "submissions_closed"
	stepBallot            = "ballot"
	stepWinner            = "winner"
	stepWinnerNotice      = "winner_notice"
	stepSeasonClosed      = "season_closed"
)

// announceTransition performs the side effects of a committed step. Every
// failure is logged and counted; none undo the status change.
func (s *CompetitionService) announceTransition(
	ctx context.Context,
	cfg *competitiondomain.BuildConfig,
	season *competitiondomain.Season,
	to competitiondomain.Status,
	commit transitionCommit,
) {
	if cfg == nil {
		return
	}
	channel := cfg.AnnouncementChannelID

	switch to {
	case competitiondomain.StatusSubmissions:
		s.post(ctx, season, stepSubmissionsOpen, channel, fmt.Sprintf(
			"Submissions are open for **%s**! Submit your build before %s.",
			season.Theme, discordTime(season.SubmissionEnd)))

	case competitiondomain.StatusVoting:
		if len(commit.entries) == 0 {
			s.post(ctx, season, stepSubmissionsClosed, channel, fmt.Sprintf(
				"Submissions for **%s** are closed. No builds were submitted, so there is nothing to vote on.",
				season.Theme))
			return
		}
		s.post(ctx, season, stepSubmissionsClosed, channel, fmt.Sprintf(
			"Submissions for **%s** are closed! Voting is open in <#%s> until %s.",
			season.Theme, cfg.VotingChannel(), discordTime(season.VotingEnd)))
		s.postBallot(ctx, cfg, season, commit.entries)

	case competitiondomain.StatusClosed:
		if !commit.hasWinner {
			s.post(ctx, season, stepWinner, channel, fmt.Sprintf(
				"**%s** has ended with no valid entries.", season.Theme))
		} else {
			winner := commit.standings[0]
			s.post(ctx, season, stepWinner, channel, fmt.Sprintf(
				"The winner of **%s** is **%s** by <@%s> with %s!",
				season.Theme, winner.Entry.Title, winner.Entry.AuthorID, plural(winner.Votes, "vote")))
			s.notifyWinner(ctx, season, winner)
		}
		s.post(ctx, season, stepSeasonClosed, channel, fmt.Sprintf(
			"Season **%s** is now closed. Thanks to everyone who took part!", season.Theme))
	}
}

func (s *CompetitionService) postBallot(ctx context.Context, cfg *competitiondomain.BuildConfig, season *competitiondomain.Season, entries []*competitiondomain.Entry) {
	ballot, omitted := competitiondomain.BuildBallot(entries, s.ballotSize)
	if omitted > 0 {
		s.logger.WarnContext(ctx, "Ballot truncated",
			attr.GuildID(season.GuildID),
			attr.SeasonID(season.ID),
			attr.Int("posted", len(ballot)),
			attr.Int("omitted", omitted),
		)
	}
	options := make([]platform.VoteOption, 0, len(ballot))
	for _, o := range ballot {
		options = append(options, platform.VoteOption{
			EntryID:  o.EntryID,
			Title:    o.Title,
			AuthorID: o.AuthorID,
			ImageURL: o.ImageURL,
		})
	}
	if err := s.announcer.PostVotePrompts(ctx, season.GuildID, cfg.VotingChannel(), season.ID, options); err != nil {
		s.sideEffectFailed(ctx, season, stepBallot, cfg.VotingChannel(), err)
	}
}

func (s *CompetitionService) notifyWinner(ctx context.Context, season *competitiondomain.Season, winner competitiondomain.Standing) {
	content := fmt.Sprintf("Congratulations! Your build **%s** won **%s**.", winner.Entry.Title, season.Theme)
	if err := s.announcer.SendDirectNotice(ctx, winner.Entry.AuthorID, content); err != nil {
		s.sideEffectFailed(ctx, season, stepWinnerNotice, "", err)
	}
}

func (s *CompetitionService) post(ctx context.Context, season *competitiondomain.Season, step string, channel sharedtypes.ChannelID, content string) {
	if err := s.announcer.Announce(ctx, season.GuildID, channel, content); err != nil {
		s.sideEffectFailed(ctx, season, step, channel, err)
	}
}

func (s *CompetitionService) sideEffectFailed(ctx context.Context, season *competitiondomain.Season, step string, channel sharedtypes.ChannelID, err error) {
	s.metrics.RecordSideEffectFailure(ctx, step)
	s.logger.ErrorContext(ctx, "Season side effect failed",
		attr.ExtractCorrelationID(ctx),
		attr.GuildID(season.GuildID),
		attr.SeasonID(season.ID),
		attr.ChannelID(channel),
		attr.String("step", step),
		attr.Error(err),
	)
}

// discordTime renders t as a client-localised timestamp.
func discordTime(t time.Time) string {
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
