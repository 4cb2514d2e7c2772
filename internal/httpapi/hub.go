package httpapi

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/domain"
)

const subscriberBuffer = 4

// Hub fans reports out to websocket subscribers. A subscriber that falls
// behind misses reports instead of blocking the scheduler.
type Hub struct {
	logger *zap.Logger
	mu     sync.Mutex
	subs   map[chan domain.Report]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{logger: logger, subs: make(map[chan domain.Report]struct{})}
}

func (h *Hub) Publish(_ context.Context, r domain.Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- r:
		default:
			h.logger.Debug("stream_subscriber_lagging", zap.Int("round", r.Round))
		}
	}
	return nil
}

func (h *Hub) subscribe() (<-chan domain.Report, func()) {
	ch := make(chan domain.Report, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Subscribers returns the number of connected stream clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
