package levelingdb

import (
	"time"

	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// ServerScore is one member's score row in a guild.
type ServerScore struct {
	bun.BaseModel  `bun:"table:server_scores,alias:ss"`
	GuildID        sharedtypes.GuildID   `bun:"guild_id,pk,notnull,type:varchar(20)"`
	UserID         sharedtypes.DiscordID `bun:"user_id,pk,notnull,type:varchar(20)"`
	Score          int64                 `bun:"score,notnull,default:0"`
	Level          int                   `bun:"level,notnull,default:0"`
	Progress       float64               `bun:"progress,notnull,default:0"`
	LastActivityAt time.Time             `bun:"last_activity_at,nullzero"`
	Version        int64                 `bun:"version,notnull,default:1"`
	CreatedAt      time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time             `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// LeveledRole binds a ladder role to a level threshold.
type LeveledRole struct {
	bun.BaseModel  `bun:"table:leveled_roles,alias:lr"`
	GuildID        sharedtypes.GuildID `bun:"guild_id,pk,notnull,type:varchar(20)"`
	LevelThreshold int                 `bun:"level_threshold,pk,notnull"`
	RoleID         sharedtypes.RoleID  `bun:"role_id,notnull,type:varchar(20)"`
	RoleName       string              `bun:"role_name"`
	CreatedAt      time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func scoreToDomain(s *ServerScore) *levelingdomain.ScoreRecord {
	return &levelingdomain.ScoreRecord{
		GuildID:        s.GuildID,
		UserID:         s.UserID,
		Score:          s.Score,
		Level:          s.Level,
		Progress:       s.Progress,
		LastActivityAt: s.LastActivityAt.UTC(),
		Version:        s.Version,
	}
}

func scoreToDBModel(r *levelingdomain.ScoreRecord) *ServerScore {
	return &ServerScore{
		GuildID:        r.GuildID,
		UserID:         r.UserID,
		Score:          r.Score,
		Level:          r.Level,
		Progress:       r.Progress,
		LastActivityAt: r.LastActivityAt,
		Version:        r.Version,
	}
}
