package levelingservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	levelingdb "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
)

// AuditGuild recomputes every member's level from their score, fixes drift,
// and reconciles ladder roles. Per-member failures are counted, not returned.
// Every completed run posts one summary with the corrected count to the log
// channel; a repeat run over unchanged data writes nothing but still reports 0.
func (s *LevelingService) AuditGuild(ctx context.Context, cfg *guilddomain.GuildConfig) (AuditReport, error) {
	var report AuditReport
	_, err := withTelemetry(s, ctx, "AuditGuild", string(cfg.GuildID), func(ctx context.Context) (results.OperationResult[AuditReport, error], error) {
		var err error
		report, err = s.auditGuild(ctx, cfg)
		return results.SuccessResult[AuditReport, error](report), err
	})

	s.metrics.RecordAuditCorrections(ctx, report.Corrected)
	if err == nil {
		s.sendAuditSummary(ctx, cfg, report)
	}
	return report, err
}

func (s *LevelingService) auditGuild(ctx context.Context, cfg *guilddomain.GuildConfig) (AuditReport, error) {
	report := AuditReport{GuildID: cfg.GuildID}

	records, err := s.repo.ListScores(ctx, nil, cfg.GuildID)
	if err != nil {
		return report, fmt.Errorf("list scores: %w", err)
	}
	ladder, err := s.loadLadder(ctx, nil, cfg.GuildID)
	if err != nil {
		return report, fmt.Errorf("load ladder: %w", err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Members++
		corrected := false

		fixed := rec.Recomputed()
		if rec.Drifted() {
			err := s.repo.CompareAndSwapScore(ctx, nil, fixed, rec.Version)
			switch {
			case err == nil:
				report.LevelsFixed++
				corrected = true
				s.logger.InfoContext(ctx, "Corrected drifted level",
					attr.GuildID(cfg.GuildID),
					attr.UserID(rec.UserID),
					attr.Int("cached_level", rec.Level),
					attr.Int("level", fixed.Level),
				)
			case errors.Is(err, levelingdb.ErrVersionConflict):
				// A concurrent write recomputed the level itself; the next run re-checks roles.
				report.Conflicts++
				continue
			default:
				report.Failures++
				s.logger.ErrorContext(ctx, "Failed to persist corrected level",
					attr.GuildID(cfg.GuildID),
					attr.UserID(rec.UserID),
					attr.Error(err),
				)
			}
		}

		if !ladder.IsEmpty() {
			if err := s.pacer.Wait(ctx); err != nil {
				return report, err
			}
			roles := s.syncRoles(ctx, ladder, cfg.GuildID, rec.UserID, fixed.Level)
			report.Failures += roles.Failed
			if roles.MemberMissing {
				report.MembersMissing++
			}
			if roles.Changed() {
				report.RolesChanged++
				corrected = true
			}
		}
		if corrected {
			report.Corrected++
		}
	}
	return report, nil
}

// AuditAll audits every guild with auditing enabled. One guild's failure does
// not stop the sweep; cancellation does, between members.
func (s *LevelingService) AuditAll(ctx context.Context) (AuditSummary, error) {
	start := time.Now()
	var summary AuditSummary

	cfgs, err := s.guilds.ListAuditEnabled(ctx)
	if err != nil {
		return summary, fmt.Errorf("AuditAll: list guilds: %w", err)
	}

	for _, cfg := range cfgs {
		report, err := s.AuditGuild(ctx, cfg)
		summary.Guilds = append(summary.Guilds, report)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				summary.Duration = time.Since(start)
				return summary, ctxErr
			}
			summary.GuildErrors++
		}
	}
	summary.Duration = time.Since(start)

	s.logger.InfoContext(ctx, "Role audit finished",
		attr.Int("guilds", len(cfgs)),
		attr.Int("guild_errors", summary.GuildErrors),
		attr.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (s *LevelingService) sendAuditSummary(ctx context.Context, cfg *guilddomain.GuildConfig, r AuditReport) {
	content := fmt.Sprintf("Level audit: %d of %d members corrected (%d levels recomputed, %d role updates), %d failures.",
		r.Corrected, r.Members, r.LevelsFixed, r.RolesChanged, r.Failures)

	if cfg.LogChannelID == "" {
		s.logger.InfoContext(ctx, "No log channel configured for audit summary",
			attr.GuildID(cfg.GuildID),
			attr.String("summary", content),
		)
		return
	}
	if err := s.gateway.Announce(ctx, cfg.GuildID, cfg.LogChannelID, content); err != nil {
		s.logger.WarnContext(ctx, "Failed to send audit summary",
			attr.GuildID(cfg.GuildID),
			attr.ChannelID(cfg.LogChannelID),
			attr.Error(err),
		)
	}
}
