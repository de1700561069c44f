package competitiondomain

import (
	"errors"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

var (
	// ErrBuildConfigNotFound is returned when a guild has not set up the competition.
	ErrBuildConfigNotFound = errors.New("build config not found")

	ErrInvalidBuildConfig = errors.New("invalid build config")
)

// BuildConfig holds a guild's competition channels.
type BuildConfig struct {
	GuildID               sharedtypes.GuildID
	AnnouncementChannelID sharedtypes.ChannelID
	VotingChannelID       sharedtypes.ChannelID
	UpdatedAt             time.Time
}

// VotingChannel is where ballots are posted, falling back to the announcement channel.
func (c *BuildConfig) VotingChannel() sharedtypes.ChannelID {
	if c.VotingChannelID != "" {
		return c.VotingChannelID
	}
	return c.AnnouncementChannelID
}

func (c *BuildConfig) Validate() error {
	if c.GuildID == "" {
		return fmt.Errorf("%w: guild id is required", ErrInvalidBuildConfig)
	}
	if c.AnnouncementChannelID == "" {
		return fmt.Errorf("%w: an announcement channel is required", ErrInvalidBuildConfig)
	}
	return nil
}
