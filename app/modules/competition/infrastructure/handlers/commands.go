package competitionhandlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	competitionevents "github.com/Black-And-White-Club/guild-bot/app/events/competition"
	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
)

// HandleBuildConfigUpdateRequested stores the guild's competition channels.
func (h *CompetitionHandlers) HandleBuildConfigUpdateRequested(ctx context.Context, payload *competitionevents.BuildConfigUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleAdmin, func(ctx context.Context) (commands.Reply, error) {
		cfg, err := h.service.UpdateBuildConfig(ctx, &competitiondomain.BuildConfig{
			GuildID:               inv.GuildID(),
			AnnouncementChannelID: payload.AnnouncementChannelID,
			VotingChannelID:       payload.VotingChannelID,
		})
		if errors.Is(err, competitiondomain.ErrInvalidBuildConfig) {
			return commands.Reply{}, commands.Reject("Pick an announcement channel.")
		}
		if err != nil {
			return commands.Reply{}, err
		}
		return commands.Reply{
			Content: fmt.Sprintf("Competition announcements go to <#%s>, ballots to <#%s>.",
				cfg.AnnouncementChannelID, cfg.VotingChannel()),
			Ephemeral: true,
		}, nil
	})
	return inv.Results(), err
}

// HandleSeasonCreateRequested schedules a new season.
func (h *CompetitionHandlers) HandleSeasonCreateRequested(ctx context.Context, payload *competitionevents.SeasonCreateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleAdmin, func(ctx context.Context) (commands.Reply, error) {
		season, err := h.service.CreateSeason(ctx, competitionservice.SeasonRequest{
			GuildID:              inv.GuildID(),
			Theme:                payload.Theme,
			SubmissionStart:      payload.SubmissionStart,
			SubmissionEnd:        payload.SubmissionEnd,
			VotingStart:          payload.VotingStart,
			VotingEnd:            payload.VotingEnd,
			Timezone:             payload.Timezone,
			MaxImages:            payload.MaxImages,
			AllowMultipleEntries: payload.AllowMultipleEntries,
		})
		switch {
		case errors.Is(err, competitiondomain.ErrBuildConfigNotFound):
			return commands.Reply{}, commands.Reject("Set up the competition channels first.")
		case errors.Is(err, competitionservice.ErrSeasonAlreadyOpen):
			return commands.Reply{}, commands.Reject("A season is already scheduled or running.")
		case errors.Is(err, competitiondomain.ErrInvalidSeason):
			return commands.Reply{}, commands.Reject("%s", err.Error())
		case err != nil:
			return commands.Reply{}, err
		}
		return commands.Reply{Content: formatSchedule(season), Ephemeral: true}, nil
	})
	return inv.Results(), err
}

func formatSchedule(s *competitiondomain.Season) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Season **%s** scheduled (`%s`).", s.Theme, s.ID)
	fmt.Fprintf(&b, "\nSubmissions: %s to %s", discordTime(s.SubmissionStart), discordTime(s.SubmissionEnd))
	fmt.Fprintf(&b, "\nVoting: %s to %s", discordTime(s.VotingStart), discordTime(s.VotingEnd))
	fmt.Fprintf(&b, "\nUp to %d images per entry", s.MaxImages)
	if s.AllowMultipleEntries {
		b.WriteString(", multiple entries allowed.")
	} else {
		b.WriteString(", one entry per member.")
	}
	return b.String()
}

// HandleSeasonAdvanceRequested forces a season forward. Each committed step is
// also published as a SeasonTransitioned event.
func (h *CompetitionHandlers) HandleSeasonAdvanceRequested(ctx context.Context, payload *competitionevents.SeasonAdvanceRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	var transitions []competitionservice.Transition
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleAdmin, func(ctx context.Context) (commands.Reply, error) {
		target, err := competitiondomain.ParseStatus(payload.Target)
		if err != nil {
			return commands.Reply{}, commands.Reject("Unknown status %q. Use submissions, voting or closed.", payload.Target)
		}
		season, err := h.service.GetSeason(ctx, payload.SeasonID)
		if errors.Is(err, competitionservice.ErrSeasonNotFound) || (err == nil && season.GuildID != inv.GuildID()) {
			return commands.Reply{}, commands.Reject("That season does not exist.")
		}
		if err != nil {
			return commands.Reply{}, err
		}
		outcome, err := h.service.ForceAdvance(ctx, season.ID, target)
		switch {
		case errors.Is(err, competitionservice.ErrSeasonNotFound):
			return commands.Reply{}, commands.Reject("That season does not exist.")
		case errors.Is(err, competitiondomain.ErrInvalidTarget):
			return commands.Reply{}, commands.Reject("A season can only move forward.")
		case err != nil:
			return commands.Reply{}, err
		}
		transitions = outcome.Transitions
		return commands.Reply{
			Content:   fmt.Sprintf("Season **%s** is now in %s.", outcome.Season.Theme, outcome.Season.Status),
			Ephemeral: true,
		}, nil
	})
	return append(inv.Results(), TransitionResults(transitions)...), err
}

// HandleSeasonStatusRequested describes the guild's current or latest season.
func (h *CompetitionHandlers) HandleSeasonStatusRequested(ctx context.Context, payload *competitionevents.SeasonStatusRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RolePlayer, func(ctx context.Context) (commands.Reply, error) {
		summary, err := h.service.SeasonStatus(ctx, inv.GuildID())
		if errors.Is(err, competitionservice.ErrNoSeason) {
			return commands.Reply{}, commands.Reject("No build season has been scheduled yet.")
		}
		if err != nil {
			return commands.Reply{}, err
		}
		return commands.Reply{Content: formatSummary(summary)}, nil
	})
	return inv.Results(), err
}

func formatSummary(sum competitionservice.SeasonSummary) string {
	s := sum.Season
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**: ", s.Theme)
	switch s.Status {
	case competitiondomain.StatusScheduled:
		fmt.Fprintf(&b, "submissions open %s.", discordTime(s.SubmissionStart))
	case competitiondomain.StatusSubmissions:
		fmt.Fprintf(&b, "submissions close %s.", discordTime(s.SubmissionEnd))
	case competitiondomain.StatusVoting:
		fmt.Fprintf(&b, "voting closes %s.", discordTime(s.VotingEnd))
	case competitiondomain.StatusClosed:
		b.WriteString("closed.")
	}
	fmt.Fprintf(&b, "\n%d entries, %d votes.", sum.Entries, sum.Votes)
	for i, st := range sum.Standings {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s by <@%s> (%d)", i+1, st.Entry.Title, st.Entry.AuthorID, st.Votes)
	}
	return b.String()
}

// HandleEntrySubmitRequested submits the invoker's build to the open season.
func (h *CompetitionHandlers) HandleEntrySubmitRequested(ctx context.Context, payload *competitionevents.EntrySubmitRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RolePlayer, func(ctx context.Context) (commands.Reply, error) {
		outcome, err := h.service.SubmitEntry(ctx, inv.GuildID(), inv.UserID(), payload.Title, payload.ImageURLs)
		if err != nil {
			return commands.Reply{}, err
		}
		if !outcome.Accepted {
			return commands.Reply{}, commands.Reject("%s", outcome.Reason)
		}
		return commands.Reply{
			Content:   fmt.Sprintf("Your entry **%s** is in for **%s**. Good luck!", outcome.Entry.Title, outcome.Season.Theme),
			Ephemeral: true,
		}, nil
	})
	return inv.Results(), err
}

// HandleVoteRequested records a ballot press.
func (h *CompetitionHandlers) HandleVoteRequested(ctx context.Context, payload *competitionevents.VoteRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RolePlayer, func(ctx context.Context) (commands.Reply, error) {
		outcome, err := h.service.RecordVote(ctx, inv.UserID(), payload.SeasonID, payload.EntryID)
		if err != nil {
			return commands.Reply{}, err
		}
		if !outcome.Accepted {
			return commands.Reply{}, commands.Reject("%s", voteRejectionMessage(outcome.Rejection))
		}
		return commands.Reply{
			Content:   fmt.Sprintf("Vote recorded for **%s**.", outcome.Entry.Title),
			Ephemeral: true,
		}, nil
	})
	return inv.Results(), err
}

func voteRejectionMessage(r competitiondomain.VoteRejection) string {
	switch r {
	case competitiondomain.VoteSeasonNotVoting:
		return "Voting is not open for this season."
	case competitiondomain.VoteSelfVote:
		return "You cannot vote for your own entry."
	case competitiondomain.VoteAlreadyVoted:
		return "You have already voted this season."
	case competitiondomain.VoteSeasonNotFound:
		return "That season no longer exists."
	default:
		return "That entry is not part of this season."
	}
}

func discordTime(t time.Time) string {
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}
