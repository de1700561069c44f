package competitiondb

import (
	"time"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// BuildConfig is a guild's competition channel configuration row.
type BuildConfig struct {
	bun.BaseModel         `bun:"table:build_configs,alias:bc"`
	GuildID               sharedtypes.GuildID `bun:"guild_id,pk,notnull,type:varchar(20)"`
	AnnouncementChannelID string              `bun:"announcement_channel_id,notnull,type:varchar(20)"`
	VotingChannelID       string              `bun:"voting_channel_id,nullzero,type:varchar(20)"`
	CreatedAt             time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// BuildSeason is one competition season row.
type BuildSeason struct {
	bun.BaseModel        `bun:"table:build_seasons,alias:bs"`
	ID                   sharedtypes.SeasonID `bun:"id,pk,type:uuid"`
	GuildID              sharedtypes.GuildID  `bun:"guild_id,notnull,type:varchar(20)"`
	Theme                string               `bun:"theme,notnull"`
	SubmissionStart      time.Time            `bun:"submission_start,notnull"`
	SubmissionEnd        time.Time            `bun:"submission_end,notnull"`
	VotingStart          time.Time            `bun:"voting_start,notnull"`
	VotingEnd            time.Time            `bun:"voting_end,notnull"`
	Status               string               `bun:"status,notnull,type:varchar(16)"`
	MaxImages            int                  `bun:"max_images,notnull,default:5"`
	AllowMultipleEntries bool                 `bun:"allow_multiple_entries,notnull,default:false"`
	WinnerEntryID        *sharedtypes.EntryID `bun:"winner_entry_id,type:uuid,nullzero"`
	CreatedAt            time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt            time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// BuildEntry is one submission row.
type BuildEntry struct {
	bun.BaseModel `bun:"table:build_entries,alias:be"`
	ID            sharedtypes.EntryID   `bun:"id,pk,type:uuid"`
	SeasonID      sharedtypes.SeasonID  `bun:"season_id,notnull,type:uuid"`
	GuildID       sharedtypes.GuildID   `bun:"guild_id,notnull,type:varchar(20)"`
	AuthorID      sharedtypes.DiscordID `bun:"author_id,notnull,type:varchar(20)"`
	Title         string                `bun:"title,notnull"`
	ImageURLs     []string              `bun:"image_urls,array,type:text[]"`
	Tags          []string              `bun:"tags,array,type:text[]"`
	CreatedAt     time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// BuildVote is one voter's ballot row. The (season_id, voter_id) primary key
// is the one-vote-per-season constraint.
type BuildVote struct {
	bun.BaseModel `bun:"table:build_votes,alias:bv"`
	SeasonID      sharedtypes.SeasonID  `bun:"season_id,pk,type:uuid"`
	VoterID       sharedtypes.DiscordID `bun:"voter_id,pk,type:varchar(20)"`
	EntryID       sharedtypes.EntryID   `bun:"entry_id,notnull,type:uuid"`
	CreatedAt     time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func configToDomain(row *BuildConfig) *competitiondomain.BuildConfig {
	return &competitiondomain.BuildConfig{
		GuildID:               row.GuildID,
		AnnouncementChannelID: sharedtypes.ChannelID(row.AnnouncementChannelID),
		VotingChannelID:       sharedtypes.ChannelID(row.VotingChannelID),
		UpdatedAt:             row.UpdatedAt,
	}
}

func seasonToDomain(row *BuildSeason) *competitiondomain.Season {
	return &competitiondomain.Season{
		ID:                   row.ID,
		GuildID:              row.GuildID,
		Theme:                row.Theme,
		SubmissionStart:      row.SubmissionStart.UTC(),
		SubmissionEnd:        row.SubmissionEnd.UTC(),
		VotingStart:          row.VotingStart.UTC(),
		VotingEnd:            row.VotingEnd.UTC(),
		Status:               competitiondomain.Status(row.Status),
		MaxImages:            row.MaxImages,
		AllowMultipleEntries: row.AllowMultipleEntries,
		WinnerEntryID:        row.WinnerEntryID,
		CreatedAt:            row.CreatedAt,
	}
}

func seasonToDBModel(s *competitiondomain.Season) *BuildSeason {
	return &BuildSeason{
		ID:                   s.ID,
		GuildID:              s.GuildID,
		Theme:                s.Theme,
		SubmissionStart:      s.SubmissionStart,
		SubmissionEnd:        s.SubmissionEnd,
		VotingStart:          s.VotingStart,
		VotingEnd:            s.VotingEnd,
		Status:               string(s.Status),
		MaxImages:            s.MaxImages,
		AllowMultipleEntries: s.AllowMultipleEntries,
		WinnerEntryID:        s.WinnerEntryID,
		CreatedAt:            s.CreatedAt,
	}
}

func entryToDomain(row *BuildEntry) *competitiondomain.Entry {
	return &competitiondomain.Entry{
		ID:        row.ID,
		SeasonID:  row.SeasonID,
		GuildID:   row.GuildID,
		AuthorID:  row.AuthorID,
		Title:     row.Title,
		ImageURLs: row.ImageURLs,
		Tags:      row.Tags,
		CreatedAt: row.CreatedAt,
	}
}

func voteToDomain(row *BuildVote) *competitiondomain.Vote {
	return &competitiondomain.Vote{
		SeasonID:  row.SeasonID,
		VoterID:   row.VoterID,
		EntryID:   row.EntryID,
		CreatedAt: row.CreatedAt,
	}
}
