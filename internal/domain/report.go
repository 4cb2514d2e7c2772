package domain

import "time"

// DomainSummary is a counter plus its display percentage at report time.
type DomainSummary struct {
	DomainCounter
	AvailabilityPercent int `json:"availability_percent"`
}

// Report is the structured summary emitted once per completed round.
type Report struct {
	Round      int             `json:"round"`
	RoundID    string          `json:"round_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Domains    []DomainSummary `json:"domains"`   // cumulative, sorted by domain
	Endpoints  []Outcome       `json:"endpoints"` // this round only

	// Set by the scheduler. NextRoundIn is the planned pause before the next
	// round; Last marks a round with no successor.
	Cycle       time.Duration `json:"cycle_ns,omitempty"`
	NextRoundIn time.Duration `json:"next_round_in_ns"`
	Last        bool          `json:"last,omitempty"`
}

// Duration is how long the round's dispatch took.
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// UpCount returns how many of the round's probes were up.
func (r Report) UpCount() int {
	n := 0
	for _, o := range r.Endpoints {
		if o.Up {
			n++
		}
	}
	return n
}
