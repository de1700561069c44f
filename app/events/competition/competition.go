// Package competitionevents defines build competition topics and payloads.
package competitionevents

import (
	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

const StreamName = "competition"

const (
	BuildConfigUpdateRequestedV1 = "competition.config.update.requested.v1"
	SeasonCreateRequestedV1      = "competition.season.create.requested.v1"
	SeasonAdvanceRequestedV1     = "competition.season.advance.requested.v1"
	SeasonStatusRequestedV1      = "competition.season.status.requested.v1"
	EntrySubmitRequestedV1       = "competition.entry.submit.requested.v1"
	VoteRequestedV1              = "competition.vote.requested.v1"

	// SeasonTransitionedV1 is published after every committed status change.
	SeasonTransitionedV1 = "competition.season.transitioned.v1"
)

// BuildConfigUpdateRequestedPayloadV1 sets the guild's competition channels.
type BuildConfigUpdateRequestedPayloadV1 struct {
	Interaction           discordevents.Interaction `json:"interaction"`
	AnnouncementChannelID sharedtypes.ChannelID     `json:"announcement_channel_id"`
	VotingChannelID       sharedtypes.ChannelID     `json:"voting_channel_id"`
}

// SeasonCreateRequestedPayloadV1 schedules a season. Times are RFC 3339 or natural language.
type SeasonCreateRequestedPayloadV1 struct {
	Interaction          discordevents.Interaction `json:"interaction"`
	Theme                string                    `json:"theme"`
	SubmissionStart      string                    `json:"submission_start"`
	SubmissionEnd        string                    `json:"submission_end"`
	VotingStart          string                    `json:"voting_start"`
	VotingEnd            string                    `json:"voting_end"`
	Timezone             string                    `json:"timezone,omitempty"`
	MaxImages            int                       `json:"max_images,omitempty"`
	AllowMultipleEntries bool                      `json:"allow_multiple_entries"`
}

// SeasonAdvanceRequestedPayloadV1 forces a season forward to Target.
type SeasonAdvanceRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
	SeasonID    sharedtypes.SeasonID      `json:"season_id"`
	Target      string                    `json:"target"`
}

// SeasonStatusRequestedPayloadV1 asks for the guild's current season.
type SeasonStatusRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
}

// EntrySubmitRequestedPayloadV1 submits a build.
type EntrySubmitRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
	Title       string                    `json:"title"`
	ImageURLs   []string                  `json:"image_urls"`
}

// VoteRequestedPayloadV1 is a ballot button press.
type VoteRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
	SeasonID    sharedtypes.SeasonID      `json:"season_id"`
	EntryID     sharedtypes.EntryID       `json:"entry_id"`
}

// SeasonTransitionedPayloadV1 reports a committed status change.
type SeasonTransitionedPayloadV1 struct {
	GuildID  sharedtypes.GuildID  `json:"guild_id"`
	SeasonID sharedtypes.SeasonID `json:"season_id"`
	From     string               `json:"from"`
	To       string               `json:"to"`
}
