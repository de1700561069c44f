// Package api serves the admin HTTP surface: health, metrics, reports and
// season administration for token holders.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	authdomain "github.com/Black-And-White-Club/guild-bot/app/modules/auth/domain"
	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	competitionhandlers "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/handlers"
	levelingservice "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/application"
	"github.com/Black-And-White-Club/guild-bot/config"
	"github.com/Black-And-White-Club/guild-bot/internal/commands"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// HealthCheck is one named readiness probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Publisher is satisfied by the event bus.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}

// Dependencies are the services the API fronts.
type Dependencies struct {
	Tokens      TokenValidator
	Leveling    levelingservice.Service
	Guilds      levelingservice.GuildConfigs
	Competition competitionservice.Service
	Events      Publisher
	Metrics     prometheus.Gatherer
	Checks      []HealthCheck
	Logger      *slog.Logger
}

// Server is the admin HTTP API.
type Server struct {
	addr    string
	deps    Dependencies
	limiter *IPRateLimiter
	logger  *slog.Logger
}

// NewServer creates a new Server.
func NewServer(cfg config.HTTPConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = prometheus.NewRegistry()
	}
	return &Server{
		addr:    cfg.Address,
		deps:    deps,
		limiter: NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		logger:  logger,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.limiter))
		r.Use(AuthMiddleware(s.deps.Tokens, s.logger))

		r.Route("/guilds/{guildID}", func(r chi.Router) {
			r.Get("/rank/{userID}", s.handleRank)
			r.Get("/leaderboard.xlsx", s.handleLeaderboardExport)
			r.Post("/audit", s.handleAudit)
			r.Post("/seasons", s.handleCreateSeason)
		})
		r.Route("/seasons/{seasonID}", func(r chi.Router) {
			r.Post("/advance", s.handleAdvance)
			r.Post("/votes", s.handleVote)
			r.Get("/results.xlsx", s.handleResultsExport)
		})
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.InfoContext(ctx, "Admin API listening", attr.String("address", s.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown admin API: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin API: %w", err)
	}
}

type response struct {
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusError attaches an HTTP status to a rejection.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func reject(status int, format string, args ...any) error {
	return &statusError{status: status, err: commands.Reject(format, args...)}
}

// result is what a command produced besides its reply.
type result struct {
	data        any
	file        []byte
	filename    string
	transitions []competitionservice.Transition
}

type command func(ctx context.Context, out *result) (commands.Reply, error)

// run executes fn through commands.Run on behalf of the token holder and
// writes the outcome. Rejections map to 4xx, anything else to 500 with a
// diagnostic reference for privileged callers.
func (s *Server) run(w http.ResponseWriter, r *http.Request, guildID sharedtypes.GuildID, minTier authdomain.Role, fn command) {
	ctx := r.Context()
	inv := newHTTPInvoker(claimsFrom(ctx), guildID)
	status := http.StatusOK
	if !inv.Tier().AtLeast(minTier) {
		status = http.StatusForbidden
	}

	var out result
	_ = commands.Run(ctx, s.logger, inv, minTier, func(ctx context.Context) (commands.Reply, error) {
		reply, err := fn(ctx, &out)
		var se *statusError
		var rej *commands.Rejection
		switch {
		case err == nil:
		case errors.As(err, &se):
			status = se.status
		case errors.As(err, &rej):
			status = http.StatusUnprocessableEntity
		default:
			status = http.StatusInternalServerError
		}
		return reply, err
	})

	s.publishTransitions(ctx, out.transitions)

	if status == http.StatusOK && out.file != nil {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out.file)
		return
	}

	body := response{}
	if inv.reply != nil {
		body.Message = inv.reply.Content
		body.Diagnostic = inv.reply.Diagnostic
	}
	if status == http.StatusOK {
		body.Data = out.data
	}
	writeJSON(w, status, body)
}

func (s *Server) publishTransitions(ctx context.Context, transitions []competitionservice.Transition) {
	if s.deps.Events == nil {
		return
	}
	for _, res := range competitionhandlers.TransitionResults(transitions) {
		msg, err := handlerwrapper.NewMessage(ctx, res)
		if err == nil {
			err = s.deps.Events.Publish(res.Topic, msg)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to publish season transition",
				attr.String("topic", res.Topic),
				attr.Error(err),
			)
		}
	}
}
