// Package commands runs user-invoked operations behind a single invocation
// abstraction, whatever surface the invocation arrived on.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/google/uuid"
)

// GenericFailure is shown to every invoker when an operation fails unexpectedly.
const GenericFailure = "Something went wrong while handling that request."

// Reply is a response to an invocation.
type Reply struct {
	Content   string `json:"content"`
	Ephemeral bool   `json:"ephemeral"`
	// Diagnostic is a reference id for support. Only set for privileged invokers.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Invoker is whoever triggered an operation: a chat interaction, a bus command, or an API call.
type Invoker interface {
	UserID() sharedtypes.DiscordID
	GuildID() sharedtypes.GuildID
	Tier() authdomain.Role
	Respond(ctx context.Context, reply Reply) error
}

// Rejection is an expected refusal of user input. Its message is shown verbatim.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

// Reject builds a Rejection with a formatted reason.
func Reject(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// Run checks inv against minTier, runs fn, and responds with its reply.
// Rejections are surfaced verbatim and never logged as errors. Any other
// error is logged with a fresh diagnostic reference; the invoker sees a
// generic notice, with the reference attached only for editor or admin tiers.
func Run(ctx context.Context, logger *slog.Logger, inv Invoker, minTier authdomain.Role, fn func(ctx context.Context) (Reply, error)) error {
	if !inv.Tier().AtLeast(minTier) {
		logger.InfoContext(ctx, "Command denied",
			attr.UserID(inv.UserID()),
			attr.GuildID(inv.GuildID()),
			attr.String("tier", inv.Tier().String()),
			attr.String("required", minTier.String()),
		)
		return inv.Respond(ctx, Reply{
			Content:   fmt.Sprintf("You need the %s tier to do that.", minTier),
			Ephemeral: true,
		})
	}

	reply, err := fn(ctx)
	if err == nil {
		return inv.Respond(ctx, reply)
	}

	var rej *Rejection
	if errors.As(err, &rej) {
		return inv.Respond(ctx, Reply{Content: rej.Reason, Ephemeral: true})
	}

	ref := uuid.NewString()
	logger.ErrorContext(ctx, "Command failed",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(inv.UserID()),
		attr.GuildID(inv.GuildID()),
		attr.String("diagnostic_ref", ref),
		attr.Error(err),
	)
	out := Reply{Content: GenericFailure, Ephemeral: true}
	if inv.Tier().IsPrivileged() {
		out.Diagnostic = ref
	}
	return inv.Respond(ctx, out)
}
