// Package aggregate folds probe outcomes into cumulative per-domain
// availability counters.
//
// The Aggregator is the only writer of the counters. Apply runs on the
// scheduler goroutine strictly between rounds; readers such as the status API
// take consistent copies through Snapshot.
package aggregate

import (
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/healthcheck/internal/domain"
)

// Round is one completed dispatch round handed to the Aggregator.
type Round struct {
	Number     int
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []domain.Outcome
}

type Aggregator struct {
	mu       sync.RWMutex
	counters map[string]*domain.DomainCounter
}

func New() *Aggregator {
	return &Aggregator{counters: make(map[string]*domain.DomainCounter)}
}

// Apply adds every outcome of the round to its domain counter and returns the
// report for the round. Percentages cover all rounds applied so far.
func (a *Aggregator) Apply(r Round) domain.Report {
	a.mu.Lock()
	for _, o := range r.Outcomes {
		c := a.counters[o.Domain]
		if c == nil {
			c = &domain.DomainCounter{Domain: o.Domain}
			a.counters[o.Domain] = c
		}
		c.TotalChecks++
		if o.Up {
			c.UpChecks++
		}
	}
	summaries := a.summariesLocked()
	a.mu.Unlock()

	details := make([]domain.Outcome, len(r.Outcomes))
	copy(details, r.Outcomes)
	sort.SliceStable(details, func(i, j int) bool {
		if details[i].Domain != details[j].Domain {
			return details[i].Domain < details[j].Domain
		}
		return details[i].Endpoint < details[j].Endpoint
	})

	return domain.Report{
		Round:      r.Number,
		RoundID:    r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Domains:    summaries,
		Endpoints:  details,
	}
}

// Snapshot returns a copy of every counter, sorted by domain.
func (a *Aggregator) Snapshot() []domain.DomainSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.summariesLocked()
}

// Counter returns the current counter for one domain.
func (a *Aggregator) Counter(d string) (domain.DomainCounter, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.counters[d]
	if !ok {
		return domain.DomainCounter{}, false
	}
	return *c, true
}

func (a *Aggregator) summariesLocked() []domain.DomainSummary {
	out := make([]domain.DomainSummary, 0, len(a.counters))
	for _, c := range a.counters {
		out = append(out, domain.DomainSummary{
			DomainCounter:       *c,
			AvailabilityPercent: c.RoundedAvailability(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}
