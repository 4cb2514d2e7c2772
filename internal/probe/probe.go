package probe

import (
	"context"

	"github.com/hamed0406/healthcheck/internal/domain"
)

// Checker performs exactly one probe of an endpoint.
//
// Implementations never return an error: every failure is reported through
// the Outcome (Up=false plus Error or DownReason).
type Checker interface {
	Check(ctx context.Context, ep domain.Endpoint) domain.Outcome
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(ctx context.Context, ep domain.Endpoint) domain.Outcome

func (f CheckerFunc) Check(ctx context.Context, ep domain.Endpoint) domain.Outcome {
	return f(ctx, ep)
}
