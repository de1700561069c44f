// Package attr holds the slog attribute helpers used across services, handlers and workers.
package attr

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

type ctxKey string

const correlationIDKey ctxKey = "correlation_id"

func String(key, value string) slog.Attr              { return slog.String(key, value) }
func Int(key string, value int) slog.Attr             { return slog.Int(key, value) }
func Int64(key string, value int64) slog.Attr         { return slog.Int64(key, value) }
func Bool(key string, value bool) slog.Attr           { return slog.Bool(key, value) }
func Any(key string, value any) slog.Attr             { return slog.Any(key, value) }
func Time(key string, value time.Time) slog.Attr      { return slog.Time(key, value) }
func Duration(key string, d time.Duration) slog.Attr  { return slog.Duration(key, d) }
func GuildID(value sharedtypes.GuildID) slog.Attr     { return slog.String("guild_id", string(value)) }
func UserID(value sharedtypes.DiscordID) slog.Attr    { return slog.String("user_id", string(value)) }
func ChannelID(value sharedtypes.ChannelID) slog.Attr { return slog.String("channel_id", string(value)) }
func RoleID(value sharedtypes.RoleID) slog.Attr       { return slog.String("role_id", string(value)) }
func SeasonID(value sharedtypes.SeasonID) slog.Attr   { return slog.String("season_id", value.String()) }

// Error renders err under the "error" key. A nil error renders as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// WithCorrelationID stores a correlation id on the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFrom returns the correlation id stored on ctx, if any.
func CorrelationIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// ExtractCorrelationID returns the correlation id on ctx as a log attribute.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationIDFrom(ctx))
}
