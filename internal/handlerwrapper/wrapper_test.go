package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type pingPayload struct {
	Name string `json:"name"`
}

func TestWrapTransformingTyped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name        string
		body        string
		handler     func(context.Context, *pingPayload) ([]Result, error)
		wantErr     bool
		wantPublish bool
	}{
		{
			name: "publishes results with correlation id",
			body: `{"name":"ada"}`,
			handler: func(ctx context.Context, p *pingPayload) ([]Result, error) {
				if attr.CorrelationIDFrom(ctx) != "corr-1" {
					return nil, errors.New("missing correlation id")
				}
				return []Result{{Topic: "out.v1", Payload: pingPayload{Name: "hi " + p.Name}}}, nil
			},
			wantPublish: true,
		},
		{
			name: "undecodable payload is acked",
			body: `not json`,
			handler: func(context.Context, *pingPayload) ([]Result, error) {
				return nil, errors.New("should not be called")
			},
		},
		{
			name: "handler error nacks",
			body: `{"name":"x"}`,
			handler: func(context.Context, *pingPayload) ([]Result, error) {
				return nil, errors.New("db down")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := eventbus.NewMemoryBus(logger)
			t.Cleanup(func() { _ = bus.Close() })

			fn := WrapTransformingTyped("test.handler", logger, tracer, bus, tt.handler)
			msg := message.NewMessage("m-1", []byte(tt.body))
			middleware.SetCorrelationID("corr-1", msg)

			err := fn(msg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if !tt.wantPublish {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			out, err := bus.Subscribe(ctx, "out.v1")
			require.NoError(t, err)
			select {
			case m := <-out:
				var got pingPayload
				require.NoError(t, json.Unmarshal(m.Payload, &got))
				assert.Equal(t, "hi ada", got.Name)
				assert.Equal(t, "corr-1", middleware.MessageCorrelationID(m))
				m.Ack()
			case <-ctx.Done():
				t.Fatal("no message published")
			}
		})
	}
}
