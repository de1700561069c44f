package competitiondomain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// WinnerTag marks the entry that won its season.
const WinnerTag = "winner"

// Entry is one user's submission within a season.
type Entry struct {
	ID        sharedtypes.EntryID
	SeasonID  sharedtypes.SeasonID
	GuildID   sharedtypes.GuildID
	AuthorID  sharedtypes.DiscordID
	Title     string
	ImageURLs []string
	Tags      []string
	CreatedAt time.Time
}

// HasTag reports whether the entry carries tag.
func (e *Entry) HasTag(tag string) bool { return slices.Contains(e.Tags, tag) }

// CoverImage is the first image, used on ballots.
func (e *Entry) CoverImage() string {
	if len(e.ImageURLs) == 0 {
		return ""
	}
	return e.ImageURLs[0]
}

// Vote is one voter's choice in one season.
type Vote struct {
	SeasonID  sharedtypes.SeasonID
	VoterID   sharedtypes.DiscordID
	EntryID   sharedtypes.EntryID
	CreatedAt time.Time
}

// SubmissionRejection explains why an entry was refused. The zero value means accepted.
type SubmissionRejection string

const (
	SubmissionNoOpenSeason     SubmissionRejection = "no season is accepting submissions right now"
	SubmissionAlreadySubmitted SubmissionRejection = "you have already submitted an entry this season"
	SubmissionNoTitle          SubmissionRejection = "an entry needs a title"
	SubmissionNoImages         SubmissionRejection = "an entry needs at least one image"
	SubmissionTooManyImages    SubmissionRejection = "too many images for this season"
)

// CheckEntryShape validates title and images against the season's limit.
func CheckEntryShape(season *Season, title string, imageURLs []string) SubmissionRejection {
	switch {
	case strings.TrimSpace(title) == "":
		return SubmissionNoTitle
	case len(imageURLs) == 0:
		return SubmissionNoImages
	case len(imageURLs) > season.MaxImages:
		return SubmissionTooManyImages
	}
	return ""
}

// Describe renders the rejection for the submitting user.
func (r SubmissionRejection) Describe(season *Season) string {
	if r == SubmissionTooManyImages && season != nil {
		return fmt.Sprintf("this season allows at most %d images per entry", season.MaxImages)
	}
	return string(r)
}

// VoteRejection explains why a vote was refused. The zero value means accepted.
type VoteRejection string

const (
	VoteSeasonNotVoting  VoteRejection = "voting is not open for this season"
	VoteEntryNotInSeason VoteRejection = "that entry is not part of this season"
	VoteSelfVote         VoteRejection = "you cannot vote for your own entry"
	VoteAlreadyVoted     VoteRejection = "you have already voted this season"
	VoteSeasonNotFound   VoteRejection = "that season does not exist"
	VoteEntryNotFound    VoteRejection = "that entry does not exist"
)

// CheckVote applies the rules that can be decided without the vote table.
// Uniqueness per voter is enforced by storage.
func CheckVote(season *Season, entry *Entry, voterID sharedtypes.DiscordID) VoteRejection {
	if season.Status != StatusVoting {
		return VoteSeasonNotVoting
	}
	if entry.SeasonID != season.ID {
		return VoteEntryNotInSeason
	}
	if entry.AuthorID == voterID {
		return VoteSelfVote
	}
	return ""
}
