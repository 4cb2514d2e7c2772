package report

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/domain"
)

// LogSink writes each report as structured log entries.
type LogSink struct {
	Logger *zap.Logger
}

func NewLogSink(l *zap.Logger) *LogSink {
	return &LogSink{Logger: l}
}

func (s *LogSink) Publish(_ context.Context, r domain.Report) error {
	for _, o := range r.Endpoints {
		fields := []zap.Field{
			zap.Int("round", r.Round),
			zap.String("endpoint", o.Endpoint),
			zap.String("domain", o.Domain),
			zap.Bool("up", o.Up),
			zap.Float64("latency_ms", o.LatencyMS),
		}
		if o.StatusCode != nil {
			fields = append(fields, zap.Int("status", *o.StatusCode))
		}
		if o.Up {
			s.Logger.Info("endpoint_up", fields...)
			continue
		}
		fields = append(fields, zap.String("reason", o.DownReason))
		if o.Error != "" {
			fields = append(fields, zap.String("error", o.Error))
		}
		s.Logger.Warn("endpoint_down", fields...)
	}

	for _, d := range r.Domains {
		s.Logger.Info("domain_availability",
			zap.Int("round", r.Round),
			zap.String("domain", d.Domain),
			zap.Int64("total_checks", d.TotalChecks),
			zap.Int64("up_checks", d.UpChecks),
			zap.Int("availability_pct", d.AvailabilityPercent),
		)
	}

	s.Logger.Info("round_reported",
		zap.Int("round", r.Round),
		zap.String("round_id", r.RoundID),
		zap.Int("endpoints", len(r.Endpoints)),
		zap.Int("up", r.UpCount()),
		zap.Duration("duration", r.Duration()),
	)
	return nil
}
