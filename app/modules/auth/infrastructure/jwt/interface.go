package authjwt

import (
	"time"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
)

// Provider signs and verifies admin API bearer tokens. A token names one
// member, one guild and the tier it grants there.
type Provider interface {
	GenerateToken(userID, guildID string, role authdomain.Role, ttl time.Duration) (string, error)

	// ValidateToken checks signature, issuer and expiry before returning claims.
	ValidateToken(tokenString string) (*authdomain.Claims, error)
}
