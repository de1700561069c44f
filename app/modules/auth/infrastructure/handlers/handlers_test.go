package authhandlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	authevents "github.com/Black-And-White-Club/guild-bot/app/events/auth"
	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	authservice "github.com/Black-And-White-Club/guild-bot/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var interaction = discordevents.Interaction{GuildID: "g1", UserID: "u1", InteractionID: "i1", Token: "t"}

func replyOf(t *testing.T, results []handlerwrapper.Result) discordevents.InteractionReplyPayloadV1 {
	t.Helper()
	require.Len(t, results, 1)
	require.Equal(t, discordevents.InteractionReplyV1, results[0].Topic)
	return results[0].Payload.(discordevents.InteractionReplyPayloadV1)
}

func TestHandleTokenRequested(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		tier        authdomain.Role
		role        string
		issueErr    error
		wantTrace   []string
		wantRole    authdomain.Role
		wantContent string
	}{
		{
			name:      "defaults to invoker tier",
			tier:      authdomain.RoleEditor,
			wantTrace: []string{"IssueToken"},
			wantRole:  authdomain.RoleEditor,
		},
		{
			name:      "admin requests player token",
			tier:      authdomain.RoleAdmin,
			role:      "player",
			wantTrace: []string{"IssueToken"},
			wantRole:  authdomain.RolePlayer,
		},
		{
			name:        "unknown tier",
			tier:        authdomain.RoleAdmin,
			role:        "owner",
			wantTrace:   nil,
			wantContent: `Unknown tier "owner". Use player, editor or admin.`,
		},
		{
			name:        "escalation rejected",
			tier:        authdomain.RolePlayer,
			role:        "admin",
			issueErr:    fmt.Errorf("%w: player cannot issue admin tokens", authservice.ErrInsufficientTier),
			wantTrace:   []string{"IssueToken"},
			wantRole:    authdomain.RoleAdmin,
			wantContent: "You cannot issue admin tokens.",
		},
		{
			name:        "viewer denied",
			tier:        authdomain.RoleViewer,
			wantTrace:   nil,
			wantContent: "You need the player tier to do that.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRole authdomain.Role
			svc := &FakeService{Tier: tt.tier}
			svc.IssueTokenFunc = func(_ context.Context, requester authdomain.Role, userID sharedtypes.DiscordID, guildID sharedtypes.GuildID, role authdomain.Role) (string, error) {
				assert.Equal(t, tt.tier, requester)
				assert.Equal(t, sharedtypes.DiscordID("u1"), userID)
				assert.Equal(t, sharedtypes.GuildID("g1"), guildID)
				gotRole = role
				if tt.issueErr != nil {
					return "", tt.issueErr
				}
				return "signed-token", nil
			}
			h := NewAuthHandlers(svc, logger)

			results, err := h.HandleTokenRequested(context.Background(), &authevents.TokenRequestedPayloadV1{
				Interaction: interaction,
				Role:        tt.role,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTrace, svc.trace)
			assert.Equal(t, tt.wantRole, gotRole)

			reply := replyOf(t, results)
			if tt.wantContent != "" {
				assert.Equal(t, tt.wantContent, reply.Content)
				return
			}
			assert.Contains(t, reply.Content, "signed-token")
			assert.True(t, reply.Ephemeral)
		})
	}
}
