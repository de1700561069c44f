package guildhandlers

import (
	"context"
	"errors"

	guildevents "github.com/Black-And-White-Club/guild-bot/app/events/guild"
	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
)

// HandleRetrieveGuildConfig handles the GuildConfigRetrievalRequested event.
func (h *GuildHandlers) HandleRetrieveGuildConfig(ctx context.Context, payload *guildevents.GuildConfigRetrievalRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleEditor, func(ctx context.Context) (commands.Reply, error) {
		cfg, err := h.service.GetConfig(ctx, inv.GuildID())
		if errors.Is(err, guilddomain.ErrConfigNotFound) {
			return commands.Reply{}, commands.Reject("This server has not been configured yet.")
		}
		if err != nil {
			return commands.Reply{}, err
		}
		return commands.Reply{Content: describe(cfg), Ephemeral: true}, nil
	})
	return inv.Results(), err
}

// HandleUpdateGuildConfig handles the GuildConfigUpdateRequested event.
func (h *GuildHandlers) HandleUpdateGuildConfig(ctx context.Context, payload *guildevents.GuildConfigUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	changed := false
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleAdmin, func(ctx context.Context) (commands.Reply, error) {
		updates := guilddb.UpdateFields{
			CooldownSeconds:  payload.CooldownSeconds,
			PointsPerMessage: payload.PointsPerMessage,
			BlockedChannels:  payload.BlockedChannels,
			LogChannelID:     payload.LogChannelID,
			LevelUpChannelID: payload.LevelUpChannelID,
			AuditEnabled:     payload.AuditEnabled,
			AdminRoleID:      payload.AdminRoleID,
			EditorRoleID:     payload.EditorRoleID,
		}
		cfg, err := h.service.UpdateConfig(ctx, inv.GuildID(), updates)
		if err != nil {
			return commands.Reply{}, rejectInvalid(err)
		}
		changed = true
		return commands.Reply{Content: "Configuration saved.\n" + describe(cfg), Ephemeral: true}, nil
	})

	results := inv.Results()
	if changed {
		results = append(results, handlerwrapper.Result{
			Topic:   guildevents.GuildConfigChangedV1,
			Payload: guildevents.GuildConfigChangedPayloadV1{GuildID: inv.GuildID()},
		})
	}
	return results, err
}

// HandleDeleteGuildConfig handles the GuildConfigDeletionRequested event.
func (h *GuildHandlers) HandleDeleteGuildConfig(ctx context.Context, payload *guildevents.GuildConfigDeletionRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	deleted := false
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleAdmin, func(ctx context.Context) (commands.Reply, error) {
		if err := h.service.DeleteConfig(ctx, inv.GuildID()); err != nil {
			return commands.Reply{}, err
		}
		deleted = true
		return commands.Reply{Content: "Configuration removed. Activity no longer earns score here.", Ephemeral: true}, nil
	})

	results := inv.Results()
	if deleted {
		results = append(results, handlerwrapper.Result{
			Topic:   guildevents.GuildConfigChangedV1,
			Payload: guildevents.GuildConfigChangedPayloadV1{GuildID: inv.GuildID(), Deleted: true},
		})
	}
	return results, err
}
