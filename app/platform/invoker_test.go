package platform

import (
	"context"
	"testing"

	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTier authdomain.Role

func (s staticTier) ResolveTier(context.Context, sharedtypes.GuildID, []sharedtypes.RoleID, bool) authdomain.Role {
	return authdomain.Role(s)
}

func TestInteractionInvoker(t *testing.T) {
	in := discordevents.Interaction{GuildID: "g1", UserID: "u1", InteractionID: "i1", Token: "tok"}
	inv := NewInteractionInvoker(context.Background(), staticTier(authdomain.RoleEditor), in)

	assert.Equal(t, authdomain.RoleEditor, inv.Tier())
	assert.Empty(t, inv.Results())

	require.NoError(t, inv.Respond(context.Background(), commands.Reply{Content: "done", Ephemeral: true}))
	res := inv.Results()
	require.Len(t, res, 1)
	assert.Equal(t, discordevents.InteractionReplyV1, res[0].Topic)
	payload := res[0].Payload.(discordevents.InteractionReplyPayloadV1)
	assert.Equal(t, "i1", payload.InteractionID)
	assert.Equal(t, "done", payload.Content)
}
