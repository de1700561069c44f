package levelingdomain

import (
	"math"
	"time"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

const progressTolerance = 1e-9

// ScoreRecord is a member's cumulative score in one guild. Level and Progress
// are a cache of LevelFor(Score); Version increments on every write.
type ScoreRecord struct {
	GuildID        sharedtypes.GuildID
	UserID         sharedtypes.DiscordID
	Score          int64
	Level          int
	Progress       float64
	LastActivityAt time.Time
	Version        int64
}

// NewScoreRecord is the state of a member before their first scoring message.
func NewScoreRecord(guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) *ScoreRecord {
	return &ScoreRecord{GuildID: guildID, UserID: userID}
}

// WithScore returns a copy holding score with level and progress recomputed.
// A non-zero activityAt replaces LastActivityAt.
func (r ScoreRecord) WithScore(score int64, activityAt time.Time) *ScoreRecord {
	info := LevelFor(score)
	r.Score = max(score, 0)
	r.Level = info.Level
	r.Progress = info.Progress
	if !activityAt.IsZero() {
		r.LastActivityAt = activityAt
	}
	return &r
}

// Recomputed returns a copy whose cached level fields are derived from Score.
func (r ScoreRecord) Recomputed() *ScoreRecord {
	return r.WithScore(r.Score, time.Time{})
}

// Drifted reports whether the cached level fields disagree with Score.
func (r *ScoreRecord) Drifted() bool {
	info := LevelFor(r.Score)
	return r.Level != info.Level || math.Abs(r.Progress-info.Progress) > progressTolerance
}

// CooldownActive reports whether a message at now is too soon after the last scoring message.
func (r *ScoreRecord) CooldownActive(now time.Time, cooldown time.Duration) bool {
	if r.LastActivityAt.IsZero() || cooldown <= 0 {
		return false
	}
	return now.Sub(r.LastActivityAt) < cooldown
}

// PointsRange is the inclusive award range for a guild's points-per-message
// setting, clamped to [1, guilddomain.MaxPointsPerMessage] for rows stored
// before the cap existed.
func PointsRange(pointsPerMessage int) (lo, hi int64) {
	p := int64(min(max(pointsPerMessage, 1), guilddomain.MaxPointsPerMessage))
	return p, p * 3
}

// RollPoints draws uniformly from PointsRange using intn, which must return a value in [0, n).
func RollPoints(pointsPerMessage int, intn func(n int) int) int64 {
	lo, hi := PointsRange(pointsPerMessage)
	return lo + int64(intn(int(hi-lo+1)))
}
