package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/probe"
)

const DefaultConcurrency = 10

// Pool runs one probe per endpoint with a hard cap on parallelism.
type Pool struct {
	Logger      *zap.Logger
	Checker     probe.Checker
	Concurrency int
}

func NewPool(logger *zap.Logger, checker probe.Checker, concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		Logger:      logger,
		Checker:     checker,
		Concurrency: concurrency,
	}
}

// Round probes every endpoint exactly once and returns when all launched
// probes have finished. If ctx is cancelled before the round completes, no
// further probes are launched and the partial outcomes are returned together
// with ctx.Err(); callers must not aggregate them.
func (p *Pool) Round(ctx context.Context, endpoints []domain.Endpoint) ([]domain.Outcome, error) {
	sem := make(chan struct{}, p.Concurrency)
	results := make(chan domain.Outcome, len(endpoints))
	var wg sync.WaitGroup

launch:
	for _, ep := range endpoints {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break launch
		}
		wg.Add(1)
		go func(ep domain.Endpoint) {
			defer func() { <-sem }()
			defer wg.Done()
			results <- p.probe(ctx, ep)
		}(ep)
	}

	wg.Wait()
	close(results)

	outcomes := make([]domain.Outcome, 0, len(endpoints))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// probe runs the checker, converting a panic into a down outcome.
func (p *Pool) probe(ctx context.Context, ep domain.Endpoint) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			id := uuid.NewString()
			p.Logger.Error("probe_panic",
				zap.String("correlation_id", id),
				zap.String("endpoint", ep.Name),
				zap.String("panic", fmt.Sprint(r)),
				zap.ByteString("stack", debug.Stack()),
			)
			out = domain.Outcome{
				Endpoint:   ep.Name,
				Domain:     ep.Domain(),
				Error:      fmt.Sprintf("probe panic (correlation_id: %s)", id),
				DownReason: "probe panic",
				CheckedAt:  time.Now().UTC(),
			}
		}
	}()

	out = p.Checker.Check(ctx, ep)
	p.Logger.Debug("probe_checked",
		zap.String("endpoint", ep.Name),
		zap.String("url", ep.URL),
		zap.Int("status", out.Status()),
		zap.Bool("up", out.Up),
		zap.Float64("latency_ms", out.LatencyMS),
		zap.String("error", out.Error),
	)
	return out
}
