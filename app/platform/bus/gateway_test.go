package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_GrantRolePublishes(t *testing.T) {
	bus := eventbus.NewMemoryBus(slog.Default())
	defer bus.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := bus.Subscribe(ctx, discordevents.RoleGrantRequestedV1)
	require.NoError(t, err)

	g := NewGateway(bus, slog.Default())
	require.NoError(t, g.GrantRole(attr.WithCorrelationID(ctx, "corr-1"), "g1", "u1", "r1"))

	select {
	case msg := <-msgs:
		msg.Ack()
		var p discordevents.RoleChangePayloadV1
		require.NoError(t, json.Unmarshal(msg.Payload, &p))
		assert.Equal(t, sharedtypes.RoleID("r1"), p.RoleID)
		assert.Equal(t, "corr-1", middleware.MessageCorrelationID(msg))
	case <-ctx.Done():
		t.Fatal("no message published")
	}
}

func TestGateway_MemberRoles(t *testing.T) {
	tests := []struct {
		name    string
		respond func([]byte) ([]byte, error)
		want    []sharedtypes.RoleID
		wantErr error
	}{
		{
			name: "found",
			respond: func([]byte) ([]byte, error) {
				return json.Marshal(discordevents.MemberRolesResponseV1Payload{Found: true, RoleIDs: []sharedtypes.RoleID{"a", "b"}})
			},
			want: []sharedtypes.RoleID{"a", "b"},
		},
		{
			name: "member left",
			respond: func([]byte) ([]byte, error) {
				return json.Marshal(discordevents.MemberRolesResponseV1Payload{Found: false})
			},
			wantErr: platform.ErrMemberNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := eventbus.NewMemoryBus(slog.Default())
			defer bus.Close()
			bus.Respond(discordevents.MemberRolesRequestV1, tt.respond)

			got, err := NewGateway(bus, slog.Default()).MemberRoles(context.Background(), "g1", "u1")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_MemberRolesNoWorker(t *testing.T) {
	bus := eventbus.NewMemoryBus(slog.Default())
	defer bus.Close()

	_, err := NewGateway(bus, slog.Default()).MemberRoles(context.Background(), "g1", "u1")
	assert.ErrorIs(t, err, eventbus.ErrNoResponders)
}

func TestGateway_AnnounceRequiresChannel(t *testing.T) {
	bus := eventbus.NewMemoryBus(slog.Default())
	defer bus.Close()

	err := NewGateway(bus, slog.Default()).Announce(context.Background(), "g1", "", "hello")
	assert.Error(t, err)
}
