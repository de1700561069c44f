package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/go-chi/chi/v5"
)

const healthTimeout = 3 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	checks := make(map[string]string, len(s.deps.Checks))
	status := http.StatusOK
	for _, c := range s.deps.Checks {
		if err := c.Check(ctx); err != nil {
			checks[c.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[c.Name] = "ok"
	}
	msg := "ok"
	if status != http.StatusOK {
		msg = "degraded"
	}
	writeJSON(w, status, response{Message: msg, Data: checks})
}

type rankBody struct {
	UserID             sharedtypes.DiscordID `json:"user_id"`
	Score              int64                 `json:"score"`
	Level              int                   `json:"level"`
	Progress           float64               `json:"progress"`
	NextLevelThreshold int64                 `json:"next_level_threshold"`
	Position           int                   `json:"position"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	guildID := sharedtypes.GuildID(chi.URLParam(r, "guildID"))
	userID := sharedtypes.DiscordID(chi.URLParam(r, "userID"))
	s.run(w, r, guildID, authdomain.RolePlayer, func(ctx context.Context, out *result) (commands.Reply, error) {
		rank, err := s.deps.Leveling.GetRank(ctx, guildID, userID)
		if err != nil {
			return commands.Reply{}, err
		}
		out.data = rankBody{
			UserID:             rank.UserID,
			Score:              rank.Score,
			Level:              rank.Info.Level,
			Progress:           rank.Info.Progress,
			NextLevelThreshold: rank.Info.NextLevelThreshold,
			Position:           rank.Position,
		}
		return commands.Reply{}, nil
	})
}

func (s *Server) handleLeaderboardExport(w http.ResponseWriter, r *http.Request) {
	guildID := sharedtypes.GuildID(chi.URLParam(r, "guildID"))
	s.run(w, r, guildID, authdomain.RoleEditor, func(ctx context.Context, out *result) (commands.Reply, error) {
		file, err := s.deps.Leveling.ExportLeaderboard(ctx, guildID)
		if err != nil {
			return commands.Reply{}, err
		}
		out.file = file
		out.filename = fmt.Sprintf("leaderboard-%s.xlsx", guildID)
		return commands.Reply{}, nil
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	guildID := sharedtypes.GuildID(chi.URLParam(r, "guildID"))
	s.run(w, r, guildID, authdomain.RoleAdmin, func(ctx context.Context, out *result) (commands.Reply, error) {
		cfg, err := s.deps.Guilds.GetConfig(ctx, guildID)
		if errors.Is(err, guilddomain.ErrConfigNotFound) {
			return commands.Reply{}, reject(http.StatusNotFound, "This server has not been configured yet.")
		}
		if err != nil {
			return commands.Reply{}, err
		}
		report, err := s.deps.Leveling.AuditGuild(ctx, cfg)
		if err != nil {
			return commands.Reply{}, err
		}
		out.data = report
		return commands.Reply{Content: fmt.Sprintf("Audit complete: %d of %d members corrected, %d failures.",
			report.Corrected, report.Members, report.Failures)}, nil
	})
}

type createSeasonBody struct {
	Theme                string `json:"theme"`
	SubmissionStart      string `json:"submission_start"`
	SubmissionEnd        string `json:"submission_end"`
	VotingStart          string `json:"voting_start"`
	VotingEnd            string `json:"voting_end"`
	Timezone             string `json:"timezone"`
	MaxImages            int    `json:"max_images"`
	AllowMultipleEntries bool   `json:"allow_multiple_entries"`
}

type seasonBody struct {
	ID                   sharedtypes.SeasonID `json:"id"`
	GuildID              sharedtypes.GuildID  `json:"guild_id"`
	Theme                string               `json:"theme"`
	Status               string               `json:"status"`
	SubmissionStart      time.Time            `json:"submission_start"`
	SubmissionEnd        time.Time            `json:"submission_end"`
	VotingStart          time.Time            `json:"voting_start"`
	VotingEnd            time.Time            `json:"voting_end"`
	MaxImages            int                  `json:"max_images"`
	AllowMultipleEntries bool                 `json:"allow_multiple_entries"`
	WinnerEntryID        *sharedtypes.EntryID `json:"winner_entry_id,omitempty"`
}

func toSeasonBody(s *competitiondomain.Season) seasonBody {
	return seasonBody{
		ID:                   s.ID,
		GuildID:              s.GuildID,
		Theme:                s.Theme,
		Status:               s.Status.String(),
		SubmissionStart:      s.SubmissionStart,
		SubmissionEnd:        s.SubmissionEnd,
		VotingStart:          s.VotingStart,
		VotingEnd:            s.VotingEnd,
		MaxImages:            s.MaxImages,
		AllowMultipleEntries: s.AllowMultipleEntries,
		WinnerEntryID:        s.WinnerEntryID,
	}
}

func (s *Server) handleCreateSeason(w http.ResponseWriter, r *http.Request) {
	guildID := sharedtypes.GuildID(chi.URLParam(r, "guildID"))
	s.run(w, r, guildID, authdomain.RoleAdmin, func(ctx context.Context, out *result) (commands.Reply, error) {
		var body createSeasonBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return commands.Reply{}, reject(http.StatusBadRequest, "Request body is not valid JSON.")
		}
		season, err := s.deps.Competition.CreateSeason(ctx, competitionservice.SeasonRequest{
			GuildID:              guildID,
			Theme:                body.Theme,
			SubmissionStart:      body.SubmissionStart,
			SubmissionEnd:        body.SubmissionEnd,
			VotingStart:          body.VotingStart,
			VotingEnd:            body.VotingEnd,
			Timezone:             body.Timezone,
			MaxImages:            body.MaxImages,
			AllowMultipleEntries: body.AllowMultipleEntries,
		})
		switch {
		case errors.Is(err, competitiondomain.ErrBuildConfigNotFound):
			return commands.Reply{}, reject(http.StatusConflict, "Set up the competition channels first.")
		case errors.Is(err, competitionservice.ErrSeasonAlreadyOpen):
			return commands.Reply{}, reject(http.StatusConflict, "A season is already scheduled or running.")
		case errors.Is(err, competitiondomain.ErrInvalidSeason):
			return commands.Reply{}, commands.Reject("%s", err.Error())
		case err != nil:
			return commands.Reply{}, err
		}
		out.data = toSeasonBody(season)
		return commands.Reply{Content: fmt.Sprintf("Season %s scheduled.", season.Theme)}, nil
	})
}

// seasonFor resolves the season in the path and checks it belongs to the
// token's guild. Unknown and foreign seasons look the same to the caller.
func (s *Server) seasonFor(w http.ResponseWriter, r *http.Request) (*competitiondomain.Season, bool) {
	seasonID, err := sharedtypes.ParseSeasonID(chi.URLParam(r, "seasonID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Season id is not a valid uuid."})
		return nil, false
	}
	season, err := s.deps.Competition.GetSeason(r.Context(), seasonID)
	claims := claimsFrom(r.Context())
	switch {
	case errors.Is(err, competitionservice.ErrSeasonNotFound),
		err == nil && (claims == nil || !claims.CanAccessGuild(string(season.GuildID))):
		writeJSON(w, http.StatusNotFound, response{Message: "That season does not exist."})
		return nil, false
	case err != nil:
		s.run(w, r, "", authdomain.RoleViewer, func(context.Context, *result) (commands.Reply, error) {
			return commands.Reply{}, err
		})
		return nil, false
	}
	return season, true
}

type advanceBody struct {
	Target string `json:"target"`
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	season, ok := s.seasonFor(w, r)
	if !ok {
		return
	}
	s.run(w, r, season.GuildID, authdomain.RoleAdmin, func(ctx context.Context, out *result) (commands.Reply, error) {
		var body advanceBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return commands.Reply{}, reject(http.StatusBadRequest, "Request body is not valid JSON.")
		}
		target, err := competitiondomain.ParseStatus(body.Target)
		if err != nil {
			return commands.Reply{}, commands.Reject("Unknown status %q. Use submissions, voting or closed.", body.Target)
		}
		outcome, err := s.deps.Competition.ForceAdvance(ctx, season.ID, target)
		switch {
		case errors.Is(err, competitiondomain.ErrInvalidTarget):
			return commands.Reply{}, reject(http.StatusConflict, "A season can only move forward.")
		case err != nil:
			return commands.Reply{}, err
		}
		out.transitions = outcome.Transitions
		out.data = toSeasonBody(outcome.Season)
		return commands.Reply{Content: fmt.Sprintf("Season %s is now in %s.", outcome.Season.Theme, outcome.Season.Status)}, nil
	})
}

type voteBody struct {
	EntryID sharedtypes.EntryID `json:"entry_id"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	season, ok := s.seasonFor(w, r)
	if !ok {
		return
	}
	s.run(w, r, season.GuildID, authdomain.RolePlayer, func(ctx context.Context, out *result) (commands.Reply, error) {
		var body voteBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return commands.Reply{}, reject(http.StatusBadRequest, "Request body needs an entry_id uuid.")
		}
		voter := sharedtypes.DiscordID(claimsFrom(ctx).UserID)
		outcome, err := s.deps.Competition.RecordVote(ctx, voter, season.ID, body.EntryID)
		if err != nil {
			return commands.Reply{}, err
		}
		if !outcome.Accepted {
			status := http.StatusUnprocessableEntity
			if outcome.Rejection == competitiondomain.VoteAlreadyVoted {
				status = http.StatusConflict
			}
			return commands.Reply{}, reject(status, "%s", outcome.Rejection)
		}
		return commands.Reply{Content: fmt.Sprintf("Vote recorded for %s.", outcome.Entry.Title)}, nil
	})
}

func (s *Server) handleResultsExport(w http.ResponseWriter, r *http.Request) {
	season, ok := s.seasonFor(w, r)
	if !ok {
		return
	}
	s.run(w, r, season.GuildID, authdomain.RoleEditor, func(ctx context.Context, out *result) (commands.Reply, error) {
		file, err := s.deps.Competition.ExportSeasonResults(ctx, season.ID)
		if err != nil {
			return commands.Reply{}, err
		}
		out.file = file
		out.filename = fmt.Sprintf("season-%s.xlsx", season.ID)
		return commands.Reply{}, nil
	})
}
