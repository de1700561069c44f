package guilddomain

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// MaxPointsPerMessage caps the per-message award floor; awards range up to three times it.
const MaxPointsPerMessage = 1000

// ErrConfigNotFound is returned when a guild has never been configured.
var ErrConfigNotFound = errors.New("guild config not found")

// GuildConfig is a guild's leveling and permission configuration.
type GuildConfig struct {
	GuildID          sharedtypes.GuildID
	CooldownSeconds  int
	PointsPerMessage int
	BlockedChannels  []sharedtypes.ChannelID
	LogChannelID     sharedtypes.ChannelID
	LevelUpChannelID sharedtypes.ChannelID
	AuditEnabled     bool
	AdminRoleID      sharedtypes.RoleID
	EditorRoleID     sharedtypes.RoleID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Cooldown is the minimum interval between two scoring messages from the same member.
func (c *GuildConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// IsBlocked reports whether messages in channelID never earn score.
func (c *GuildConfig) IsBlocked(channelID sharedtypes.ChannelID) bool {
	return slices.Contains(c.BlockedChannels, channelID)
}

// AnnouncementChannel is where level-ups are posted, falling back to the log channel.
func (c *GuildConfig) AnnouncementChannel() sharedtypes.ChannelID {
	if c.LevelUpChannelID != "" {
		return c.LevelUpChannelID
	}
	return c.LogChannelID
}

// Validate checks the numeric bounds.
func (c *GuildConfig) Validate() error {
	if c.GuildID == "" {
		return errors.New("guild id is required")
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown seconds must be >= 0, got %d", c.CooldownSeconds)
	}
	if c.PointsPerMessage < 1 || c.PointsPerMessage > MaxPointsPerMessage {
		return fmt.Errorf("points per message must be between 1 and %d, got %d", MaxPointsPerMessage, c.PointsPerMessage)
	}
	return nil
}

// Clone returns a deep copy.
func (c *GuildConfig) Clone() *GuildConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.BlockedChannels = slices.Clone(c.BlockedChannels)
	return &out
}
