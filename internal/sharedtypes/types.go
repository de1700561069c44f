package sharedtypes

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

// GuildID is a Discord guild (server) snowflake.
type GuildID string

// DiscordID is a Discord user snowflake.
type DiscordID string

// ChannelID is a Discord channel or thread snowflake.
type ChannelID string

// RoleID is a Discord role snowflake.
type RoleID string

func (g GuildID) String() string   { return string(g) }
func (d DiscordID) String() string { return string(d) }
func (c ChannelID) String() string { return string(c) }
func (r RoleID) String() string    { return string(r) }

// SeasonID identifies a build competition season.
type SeasonID uuid.UUID

// EntryID identifies a build competition entry.
type EntryID uuid.UUID

func (s SeasonID) String() string { return uuid.UUID(s).String() }
func (e EntryID) String() string  { return uuid.UUID(e).String() }

// IsZero reports whether the id is the nil uuid.
func (s SeasonID) IsZero() bool { return uuid.UUID(s) == uuid.Nil }

// IsZero reports whether the id is the nil uuid.
func (e EntryID) IsZero() bool { return uuid.UUID(e) == uuid.Nil }

// NewSeasonID returns a random season id.
func NewSeasonID() SeasonID { return SeasonID(uuid.New()) }

// NewEntryID returns a random entry id.
func NewEntryID() EntryID { return EntryID(uuid.New()) }

// ParseSeasonID parses the canonical uuid form of a season id.
func ParseSeasonID(s string) (SeasonID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SeasonID{}, err
	}
	return SeasonID(id), nil
}

// ParseEntryID parses the canonical uuid form of an entry id.
func ParseEntryID(s string) (EntryID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EntryID{}, err
	}
	return EntryID(id), nil
}

// MarshalText implements encoding.TextMarshaler so ids travel as strings in JSON payloads.
func (s SeasonID) MarshalText() ([]byte, error) { return uuid.UUID(s).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SeasonID) UnmarshalText(b []byte) error { return (*uuid.UUID)(s).UnmarshalText(b) }

// MarshalText implements encoding.TextMarshaler.
func (e EntryID) MarshalText() ([]byte, error) { return uuid.UUID(e).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EntryID) UnmarshalText(b []byte) error { return (*uuid.UUID)(e).UnmarshalText(b) }

// Value implements driver.Valuer so bun stores ids in uuid columns.
func (s SeasonID) Value() (driver.Value, error) { return uuid.UUID(s).Value() }

// Scan implements sql.Scanner.
func (s *SeasonID) Scan(src any) error { return (*uuid.UUID)(s).Scan(src) }

// Value implements driver.Valuer.
func (e EntryID) Value() (driver.Value, error) { return uuid.UUID(e).Value() }

// Scan implements sql.Scanner.
func (e *EntryID) Scan(src any) error { return (*uuid.UUID)(e).Scan(src) }
