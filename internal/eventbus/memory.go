package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// MemoryBus is an in-process EventBus backed by a watermill GoChannel.
// Request is answered by handlers registered with Respond.
type MemoryBus struct {
	*gochannel.GoChannel

	mu         sync.RWMutex
	responders map[string]func(payload []byte) ([]byte, error)
}

var _ EventBus = (*MemoryBus)(nil)

// NewMemoryBus returns a MemoryBus that persists messages for late subscribers.
func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		GoChannel: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
			Persistent:          true,
		}, watermill.NewSlogLogger(logger)),
		responders: make(map[string]func([]byte) ([]byte, error)),
	}
}

func (m *MemoryBus) CreateStream(context.Context, string) error { return nil }

// Respond registers fn as the reply handler for subject.
func (m *MemoryBus) Respond(subject string, fn func(payload []byte) ([]byte, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responders[subject] = fn
}

func (m *MemoryBus) Request(_ context.Context, subject string, payload []byte) ([]byte, error) {
	m.mu.RLock()
	fn, ok := m.responders[subject]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", subject, ErrNoResponders)
	}
	return fn(payload)
}
