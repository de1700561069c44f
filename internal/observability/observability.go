// Package observability builds the logger, tracer and metric registry handed to every module.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Black-And-White-Club/guild-bot/internal/observability/metrics"
	competitionmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/competition"
	guildmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/guild"
	levelingmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/leveling"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects log format, level and sinks.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	LogLevel    string // debug|info|warn|error
	LogFormat   string // json|text
	LogFile     string // optional rotating file sink
	LogMaxSize  int    // megabytes
	LogMaxFiles int
	LogMaxAge   int // days
}

// Provider owns the process logger and the closer for any file sink.
type Provider struct {
	Logger *slog.Logger
	closer io.Closer
}

// Registry holds the per-module metric sets and the tracer.
type Registry struct {
	Prometheus         *prometheus.Registry
	Tracer             trace.Tracer
	GuildMetrics       guildmetrics.GuildMetrics
	LevelingMetrics    levelingmetrics.LevelingMetrics
	CompetitionMetrics competitionmetrics.CompetitionMetrics
	QueueMetrics       metrics.Recorder
}

// Observability is passed by value into module constructors.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init builds the observability stack from cfg.
func Init(cfg Config) (Observability, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    orDefault(cfg.LogMaxSize, 100),
			MaxBackups: orDefault(cfg.LogMaxFiles, 5),
			MaxAge:     orDefault(cfg.LogMaxAge, 28),
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, lj)
		closer = lj
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("version", cfg.Version),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Provider: &Provider{Logger: logger, closer: closer},
		Registry: &Registry{
			Prometheus:         reg,
			Tracer:             otel.Tracer(cfg.ServiceName),
			GuildMetrics:       guildmetrics.NewPrometheus(reg),
			LevelingMetrics:    levelingmetrics.NewPrometheus(reg),
			CompetitionMetrics: competitionmetrics.NewPrometheus(reg),
			QueueMetrics:       metrics.NewOperations(reg, "queue"),
		},
	}, nil
}

// NewNoOp returns an Observability that discards logs, metrics and spans.
func NewNoOp() Observability {
	return Observability{
		Provider: &Provider{Logger: NoOpLogger},
		Registry: &Registry{
			Prometheus:         prometheus.NewRegistry(),
			Tracer:             noop.NewTracerProvider().Tracer("noop"),
			GuildMetrics:       guildmetrics.NoOpMetrics{},
			LevelingMetrics:    levelingmetrics.NoOpMetrics{},
			CompetitionMetrics: competitionmetrics.NoOpMetrics{},
			QueueMetrics:       metrics.NoOpOperations{},
		},
	}
}

// NoOpLogger discards everything.
var NoOpLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Shutdown flushes and closes the file sink if one was configured.
func (o Observability) Shutdown() error {
	if o.Provider == nil || o.Provider.closer == nil {
		return nil
	}
	return o.Provider.closer.Close()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
