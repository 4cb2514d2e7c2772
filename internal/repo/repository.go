package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/healthcheck/internal/domain"
)

// ErrNoReport is returned by Latest before the first round was saved.
var ErrNoReport = errors.New("no report yet")

// ReportStore keeps the most recent round reports for readers.
type ReportStore interface {
	Save(ctx context.Context, r domain.Report) error
	Latest(ctx context.Context) (domain.Report, error)
	Recent(ctx context.Context, limit int) ([]domain.Report, error)
}
