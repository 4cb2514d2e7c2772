package report

import (
	"context"

	"github.com/hamed0406/healthcheck/internal/domain"
)

// Sink receives one report per completed round.
type Sink interface {
	Publish(ctx context.Context, r domain.Report) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r domain.Report) error

func (f SinkFunc) Publish(ctx context.Context, r domain.Report) error { return f(ctx, r) }

// Multi publishes to every sink and returns the first error.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, r domain.Report) error {
	var firstErr error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
