// Package authevents defines admin API token topics and payloads.
package authevents

import discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"

const StreamName = "auth"

const (
	TokenRequestedV1 = "auth.token.requested.v1"
)

// TokenRequestedPayloadV1 asks for an admin API bearer token scoped to the
// invoking guild. An empty Role issues a token at the invoker's own tier.
type TokenRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
	Role        string                    `json:"role,omitempty"`
}
