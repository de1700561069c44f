package levelinghandlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	levelingevents "github.com/Black-And-White-Club/guild-bot/app/events/leveling"
	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	levelingservice "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/application"
	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
)

// HandleRankRequested replies with a member's rank card.
func (h *LevelingHandlers) HandleRankRequested(ctx context.Context, payload *levelingevents.RankRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RolePlayer, func(ctx context.Context) (commands.Reply, error) {
		target := payload.TargetUserID
		if target == "" {
			target = inv.UserID()
		}
		rank, err := h.service.GetRank(ctx, inv.GuildID(), target)
		if err != nil {
			return commands.Reply{}, err
		}
		return commands.Reply{Content: formatRank(rank)}, nil
	})
	return inv.Results(), err
}

func formatRank(r levelingservice.Rank) string {
	return fmt.Sprintf("<@%s> is #%d with %d points.\nLevel %d, %.0f%% of the way to level %d (%d points).",
		r.UserID, r.Position, r.Score, r.Info.Level, r.Info.Progress*100, r.Info.Level+1, r.Info.NextLevelThreshold)
}

// HandleRoleSetupRequested replaces the guild's level ladder.
func (h *LevelingHandlers) HandleRoleSetupRequested(ctx context.Context, payload *levelingevents.RoleSetupRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleAdmin, func(ctx context.Context) (commands.Reply, error) {
		bindings := make([]levelingdomain.RoleBinding, 0, len(payload.Bindings))
		for _, b := range payload.Bindings {
			bindings = append(bindings, levelingdomain.RoleBinding{
				LevelThreshold: b.LevelThreshold,
				RoleID:         b.RoleID,
				RoleName:       b.RoleName,
			})
		}
		ladder, err := h.service.SetupLevelRoles(ctx, inv.GuildID(), bindings)
		if errors.Is(err, levelingdomain.ErrInvalidLadder) {
			return commands.Reply{}, commands.Reject("%s", err.Error())
		}
		if err != nil {
			return commands.Reply{}, err
		}
		return commands.Reply{Content: formatLadder(ladder), Ephemeral: true}, nil
	})
	return inv.Results(), err
}

func formatLadder(l levelingdomain.Ladder) string {
	if l.IsEmpty() {
		return "Level roles cleared."
	}
	var b strings.Builder
	b.WriteString("Level roles saved:")
	for _, binding := range l.Bindings() {
		fmt.Fprintf(&b, "\nLevel %d: <@&%s>", binding.LevelThreshold, binding.RoleID)
	}
	return b.String()
}

// HandleScoreCorrectionRequested sets a member's score.
func (h *LevelingHandlers) HandleScoreCorrectionRequested(ctx context.Context, payload *levelingevents.ScoreCorrectionRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleAdmin, func(ctx context.Context) (commands.Reply, error) {
		if payload.TargetUserID == "" {
			return commands.Reply{}, commands.Reject("Pick a member to correct.")
		}
		change, err := h.service.SetScore(ctx, inv.GuildID(), payload.TargetUserID, payload.Score)
		if errors.Is(err, levelingservice.ErrNegativeScore) {
			return commands.Reply{}, commands.Reject("Scores cannot be negative.")
		}
		if err != nil {
			return commands.Reply{}, err
		}
		content := fmt.Sprintf("<@%s> now has %d points (level %d, was %d).",
			payload.TargetUserID, change.After.Score, change.After.Level, change.Before.Level)
		if change.Roles.Failed > 0 {
			content += "\nSome role updates failed; the next audit will retry them."
		}
		return commands.Reply{Content: content, Ephemeral: true}, nil
	})
	return inv.Results(), err
}

// HandleAuditRequested runs the role audit for the invoker's guild now.
func (h *LevelingHandlers) HandleAuditRequested(ctx context.Context, payload *levelingevents.AuditRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	inv := platform.NewInteractionInvoker(ctx, h.tiers, payload.Interaction)
	err := commands.Run(ctx, h.logger, inv, authdomain.RoleAdmin, func(ctx context.Context) (commands.Reply, error) {
		cfg, err := h.guilds.GetConfig(ctx, inv.GuildID())
		if errors.Is(err, guilddomain.ErrConfigNotFound) {
			return commands.Reply{}, commands.Reject("This server has not been configured yet.")
		}
		if err != nil {
			return commands.Reply{}, err
		}
		report, err := h.service.AuditGuild(ctx, cfg)
		if err != nil {
			return commands.Reply{}, err
		}
		return commands.Reply{
			Content: fmt.Sprintf("Audit complete: %d of %d members corrected, %d failures.",
				report.Corrected, report.Members, report.Failures),
			Ephemeral: true,
		}, nil
	})
	return inv.Results(), err
}
