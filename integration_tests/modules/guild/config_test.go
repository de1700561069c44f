package guildintegrationtests

import (
	"context"
	"testing"
	"time"

	guildservice "github.com/Black-And-White-Club/guild-bot/app/modules/guild/application"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/integration_tests/testutils"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	guildmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/guild"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newService(env *testutils.TestEnvironment) *guildservice.GuildService {
	return guildservice.NewGuildService(
		guilddb.NewRepository(env.DB),
		guildservice.NewConfigCache(time.Hour, guildmetrics.NoOpMetrics{}),
		guildservice.Defaults{CooldownSeconds: 60, PointsPerMessage: 5},
		observability.NoOpLogger,
		guildmetrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
	)
}

func TestUpdateConfig_CreatesWithDefaultsThenPatches(t *testing.T) {
	env := testutils.Require(t, testEnv)
	ctx := context.Background()
	svc := newService(env)

	_, err := svc.GetConfig(ctx, "g1")
	require.ErrorIs(t, err, guilddomain.ErrConfigNotFound)

	logChannel := sharedtypes.ChannelID("log")
	created, err := svc.UpdateConfig(ctx, "g1", guilddb.UpdateFields{LogChannelID: &logChannel})
	require.NoError(t, err)
	assert.Equal(t, 60, created.CooldownSeconds)
	assert.Equal(t, 5, created.PointsPerMessage)

	// The cached miss above must not survive the write.
	got, err := svc.GetConfig(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, logChannel, got.LogChannelID)

	blocked := []sharedtypes.ChannelID{"c1", "c2"}
	audit := true
	_, err = svc.UpdateConfig(ctx, "g1", guilddb.UpdateFields{BlockedChannels: &blocked, AuditEnabled: &audit})
	require.NoError(t, err)

	stored, err := guilddb.NewRepository(env.DB).GetConfig(ctx, nil, "g1")
	require.NoError(t, err)
	want := &guilddomain.GuildConfig{
		GuildID:          "g1",
		CooldownSeconds:  60,
		PointsPerMessage: 5,
		BlockedChannels:  blocked,
		LogChannelID:     logChannel,
		AuditEnabled:     true,
	}
	if diff := cmp.Diff(want, stored, cmpopts.IgnoreFields(guilddomain.GuildConfig{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Errorf("stored config mismatch (-want +got):\n%s", diff)
	}

	enabled, err := svc.ListAuditEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, sharedtypes.GuildID("g1"), enabled[0].GuildID)
}

func TestDeleteConfig_InvalidatesCache(t *testing.T) {
	env := testutils.Require(t, testEnv)
	ctx := context.Background()
	svc := newService(env)

	points := 7
	_, err := svc.UpdateConfig(ctx, "g2", guilddb.UpdateFields{PointsPerMessage: &points})
	require.NoError(t, err)
	_, err = svc.GetConfig(ctx, "g2")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConfig(ctx, "g2"))
	require.NoError(t, svc.DeleteConfig(ctx, "g2"), "deletion is idempotent")

	_, err = svc.GetConfig(ctx, "g2")
	assert.ErrorIs(t, err, guilddomain.ErrConfigNotFound)
}
