package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/hamed0406/healthcheck/internal/domain"
)

const (
	ansiReset  = "\033[00m"
	ansiRed    = "\033[91m"
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
)

// Console renders reports as text lines. Availability lines are always
// printed; per-endpoint detail and cycle headers only in verbose mode.
type Console struct {
	Out      io.Writer
	Colorize bool
	Verbose  bool

	firstStart time.Time
}

func NewConsole(out io.Writer, colorize, verbose bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{Out: out, Colorize: colorize, Verbose: verbose}
}

// IsTerminal reports whether f is attached to a terminal that can show colors.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *Console) Publish(_ context.Context, r domain.Report) error {
	if c.firstStart.IsZero() {
		c.firstStart = r.StartedAt
	}

	if c.Verbose {
		offset := int(r.StartedAt.Sub(c.firstStart).Seconds())
		if _, err := fmt.Fprintf(c.Out, "\nTest cycle #%d begins at time = %d seconds:\n", r.Round, offset); err != nil {
			return err
		}
		for _, o := range r.Endpoints {
			if _, err := fmt.Fprintln(c.Out, c.endpointLine(o)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(c.Out, "\nAvailability Report:"); err != nil {
			return err
		}
	}

	for _, d := range r.Domains {
		line := fmt.Sprintf("%s has %d%% availability percentage", d.Domain, d.AvailabilityPercent)
		if _, err := fmt.Fprintln(c.Out, c.paint(availabilityColor(d), line)); err != nil {
			return err
		}
	}

	if c.Verbose {
		var total int64
		for _, d := range r.Domains {
			total += d.TotalChecks
		}
		if _, err := fmt.Fprintf(c.Out, "\nRound #%d: %d/%d up in %s, %s probes since start\n",
			r.Round, r.UpCount(), len(r.Endpoints),
			r.Duration().Round(time.Millisecond), humanize.Comma(total)); err != nil {
			return err
		}
		if r.Cycle > 0 && !r.Last {
			_, err := fmt.Fprintf(c.Out, "\nWaiting for %.2f seconds to complete %gs cycle before the next iteration...\n",
				r.NextRoundIn.Seconds(), r.Cycle.Seconds())
			return err
		}
	}
	return nil
}

func (c *Console) endpointLine(o domain.Outcome) string {
	name := c.paint(ansiGreen, o.Endpoint)
	latency := int64(math.Round(o.LatencyMS))
	if o.StatusCode == nil {
		return fmt.Sprintf(" - Endpoint with name %s encountered an error => %s (%s)",
			name, c.paint(ansiRed, "DOWN"), o.Error)
	}
	line := fmt.Sprintf(" - Endpoint with name %s has HTTP response code %d and latency %d ms => ",
		name, *o.StatusCode, latency)
	if o.Up {
		return line + c.paint(ansiGreen, "UP")
	}
	return line + c.paint(ansiRed, "DOWN") + " (" + o.DownReason + ")"
}

func (c *Console) paint(color, s string) string {
	if !c.Colorize {
		return s
	}
	return color + s + ansiReset
}

func availabilityColor(d domain.DomainSummary) string {
	switch {
	case d.UpChecks == d.TotalChecks:
		return ansiGreen
	case d.UpChecks == 0:
		return ansiRed
	default:
		return ansiYellow
	}
}
