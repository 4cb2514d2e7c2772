package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/aggregate"
	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/report"
)

const DefaultInterval = 15 * time.Second

var (
	// ErrStopped is returned when Run is called after the scheduler stopped.
	ErrStopped = errors.New("scheduler stopped")
	ErrRunning = errors.New("scheduler already running")
)

type State int32

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}

// Dispatcher runs one probe per endpoint and returns when the round is done.
type Dispatcher interface {
	Round(ctx context.Context, endpoints []domain.Endpoint) ([]domain.Outcome, error)
}

// Scheduler repeats dispatch, aggregation and reporting on a fixed cycle
// until its context is cancelled. Rounds never overlap.
type Scheduler struct {
	Logger     *zap.Logger
	Endpoints  []domain.Endpoint
	Dispatcher Dispatcher
	Aggregator *aggregate.Aggregator
	Sink       report.Sink
	Interval   time.Duration

	state   atomic.Int32
	started atomic.Bool
	round   atomic.Int64
}

func New(
	logger *zap.Logger,
	endpoints []domain.Endpoint,
	dispatcher Dispatcher,
	agg *aggregate.Aggregator,
	sink report.Sink,
	interval time.Duration,
) *Scheduler {
	if interval < 0 {
		interval = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = report.Multi{}
	}
	return &Scheduler{
		Logger:     logger,
		Endpoints:  endpoints,
		Dispatcher: dispatcher,
		Aggregator: agg,
		Sink:       sink,
		Interval:   interval,
	}
}

func (s *Scheduler) State() State { return State(s.state.Load()) }

// Rounds returns how many rounds have been started.
func (s *Scheduler) Rounds() int { return int(s.round.Load()) }

// Run starts with an immediate round, then one round per interval.
// It returns nil once ctx is cancelled; the scheduler is then Stopped.
func (s *Scheduler) Run(ctx context.Context) error {
	return s.RunRounds(ctx, 0)
}

// RunRounds is Run limited to n rounds; n <= 0 means no limit.
func (s *Scheduler) RunRounds(ctx context.Context, n int) error {
	if s.State() == StateStopped {
		return ErrStopped
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.state.Store(int32(StateStopped))

	s.Logger.Info("scheduler_started",
		zap.Int("endpoints", len(s.Endpoints)),
		zap.Duration("interval", s.Interval),
		zap.Int("max_rounds", n),
	)

	for i := 0; n <= 0 || i < n; i++ {
		started := time.Now()
		last := n > 0 && i == n-1
		if err := s.tick(ctx, started, last); err != nil {
			s.Logger.Info("scheduler_stopped", zap.String("cause", err.Error()), zap.Int("rounds", s.Rounds()))
			return nil
		}
		if last {
			break
		}

		wait := s.remaining(started)
		s.Logger.Debug("cycle_sleep", zap.Duration("wait", wait), zap.Duration("cycle", s.Interval))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.Logger.Info("scheduler_stopped", zap.String("cause", ctx.Err().Error()), zap.Int("rounds", s.Rounds()))
			return nil
		case <-timer.C:
		}
	}

	s.Logger.Info("scheduler_finished", zap.Int("rounds", s.Rounds()))
	return nil
}

// tick runs one full round. A round interrupted by cancellation is dropped
// before aggregation so counters never include a partial round.
func (s *Scheduler) tick(ctx context.Context, cycleStart time.Time, last bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	round := int(s.round.Add(1))
	id := uuid.NewString()
	started := time.Now().UTC()
	s.Logger.Debug("round_started", zap.Int("round", round), zap.String("round_id", id))

	outcomes, err := s.Dispatcher.Round(ctx, s.Endpoints)
	if err != nil {
		s.Logger.Warn("round_abandoned",
			zap.Int("round", round),
			zap.String("round_id", id),
			zap.Int("completed", len(outcomes)),
			zap.Int("endpoints", len(s.Endpoints)),
			zap.Error(err),
		)
		return err
	}

	rep := s.Aggregator.Apply(aggregate.Round{
		Number:     round,
		ID:         id,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Outcomes:   outcomes,
	})
	rep.Cycle = s.Interval
	rep.Last = last
	if !last {
		rep.NextRoundIn = s.remaining(cycleStart)
	}
	if err := s.Sink.Publish(ctx, rep); err != nil {
		s.Logger.Warn("report_publish_error", zap.Int("round", round), zap.Error(err))
	}
	return nil
}

// remaining is the pause that keeps round starts one interval apart.
func (s *Scheduler) remaining(cycleStart time.Time) time.Duration {
	wait := s.Interval - time.Since(cycleStart)
	if wait < 0 {
		return 0
	}
	return wait
}
