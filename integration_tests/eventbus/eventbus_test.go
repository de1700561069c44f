package eventbusintegrationtests

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Black-And-White-Club/guild-bot/integration_tests/containers"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var natsURL string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	ctx := context.Background()
	container, url, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		log.Printf("NATS unavailable: %v", err)
		os.Exit(1)
	}
	natsURL = url
	code := m.Run()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate NATS container: %v", err)
	}
	os.Exit(code)
}

func newBus(t *testing.T) eventbus.EventBus {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped under -short")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	bus, err := eventbus.NewEventBus(ctx, eventbus.Config{URL: natsURL, QueueGroup: "guild-bot-test"}, observability.NoOpLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestEventBus_JetStreamRoundTrip(t *testing.T) {
	bus := newBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, bus.CreateStream(ctx, "leveling"))
	msgs, err := bus.Subscribe(ctx, "leveling.level.up.v1")
	require.NoError(t, err)

	require.NoError(t, bus.Publish("leveling.level.up.v1", message.NewMessage("", []byte(`{"level":3}`))))

	select {
	case msg := <-msgs:
		assert.JSONEq(t, `{"level":3}`, string(msg.Payload))
		assert.NotEmpty(t, msg.UUID)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestEventBus_Request(t *testing.T) {
	bus := newBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := bus.Request(ctx, "discord.member.roles.request.v1", []byte(`{}`))
	require.ErrorIs(t, err, eventbus.ErrNoResponders)

	conn, err := nc.Connect(natsURL)
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	sub, err := conn.Subscribe("discord.member.roles.request.v1", func(m *nc.Msg) {
		_ = m.Respond([]byte(`{"role_ids":["r1"]}`))
	})
	require.NoError(t, err)
	require.NoError(t, conn.Flush())
	t.Cleanup(func() { _ = sub.Unsubscribe() })

	out, err := bus.Request(ctx, "discord.member.roles.request.v1", []byte(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role_ids":["r1"]}`, string(out))
}
