package domain

import "math"

// DomainCounter holds cumulative probe counts for one domain.
type DomainCounter struct {
	Domain      string `json:"domain"`
	TotalChecks int64  `json:"total_checks"`
	UpChecks    int64  `json:"up_checks"`
}

// Availability is 100 * up / total, or 0 before the first probe.
func (c DomainCounter) Availability() float64 {
	if c.TotalChecks == 0 {
		return 0
	}
	return 100 * float64(c.UpChecks) / float64(c.TotalChecks)
}

// RoundedAvailability is the display value: nearest whole percent.
func (c DomainCounter) RoundedAvailability() int {
	return int(math.Round(c.Availability()))
}
