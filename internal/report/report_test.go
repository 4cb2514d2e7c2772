package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/healthcheck/internal/domain"
)

func intp(i int) *int { return &i }

func sampleReport() domain.Report {
	start := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)
	return domain.Report{
		Round:      1,
		RoundID:    "r-1",
		StartedAt:  start,
		FinishedAt: start.Add(120 * time.Millisecond),
		Domains: []domain.DomainSummary{
			{DomainCounter: domain.DomainCounter{Domain: "fetch.com", TotalChecks: 2, UpChecks: 1}, AvailabilityPercent: 50},
			{DomainCounter: domain.DomainCounter{Domain: "www.fetchrewards.com", TotalChecks: 1, UpChecks: 1}, AvailabilityPercent: 100},
		},
		Endpoints: []domain.Outcome{
			{Endpoint: "index", Domain: "fetch.com", Up: true, StatusCode: intp(200), LatencyMS: 41.6},
			{Endpoint: "careers", Domain: "fetch.com", StatusCode: intp(500), LatencyMS: 12, DownReason: "status 500 not in 200-399"},
			{Endpoint: "rewards", Domain: "www.fetchrewards.com", Up: true, StatusCode: intp(204), LatencyMS: 3},
		},
	}
}

func TestConsole_PlainAvailabilityOnly(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false, false)
	if err := c.Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := "fetch.com has 50% availability percentage\n" +
		"www.fetchrewards.com has 100% availability percentage\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestConsole_VerboseDetail(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false, true)
	rep := sampleReport()
	rep.Endpoints = append(rep.Endpoints, domain.Outcome{
		Endpoint: "offline", Domain: "down.test", Error: "connection refused", DownReason: "transport error",
	})
	if err := c.Publish(context.Background(), rep); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Test cycle #1 begins at time = 0 seconds:",
		" - Endpoint with name index has HTTP response code 200 and latency 42 ms => UP",
		" - Endpoint with name careers has HTTP response code 500 and latency 12 ms => DOWN (status 500 not in 200-399)",
		" - Endpoint with name offline encountered an error => DOWN (connection refused)",
		"Availability Report:",
		"Round #1: 2/4 up",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestConsole_VerboseWaitLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false, true)
	rep := sampleReport()
	rep.Cycle = 15 * time.Second
	rep.NextRoundIn = 14880 * time.Millisecond
	if err := c.Publish(context.Background(), rep); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := "Waiting for 14.88 seconds to complete 15s cycle before the next iteration..."
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("missing %q in output:\n%s", want, buf.String())
	}

	buf.Reset()
	rep.Last = true
	_ = c.Publish(context.Background(), rep)
	if strings.Contains(buf.String(), "Waiting for") {
		t.Fatalf("last round must not announce a wait:\n%s", buf.String())
	}

	buf.Reset()
	quiet := NewConsole(&buf, false, false)
	rep.Last = false
	_ = quiet.Publish(context.Background(), rep)
	if strings.Contains(buf.String(), "Waiting for") {
		t.Fatalf("wait line is verbose only:\n%s", buf.String())
	}
}

func TestConsole_CycleOffsetAndColors(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true, true)
	first := sampleReport()
	second := sampleReport()
	second.Round = 2
	second.StartedAt = first.StartedAt.Add(15 * time.Second)

	_ = c.Publish(context.Background(), first)
	buf.Reset()
	_ = c.Publish(context.Background(), second)

	out := buf.String()
	if !strings.Contains(out, "Test cycle #2 begins at time = 15 seconds:") {
		t.Fatalf("want relative offset, got:\n%s", out)
	}
	if !strings.Contains(out, ansiYellow+"fetch.com has 50% availability percentage"+ansiReset) {
		t.Fatalf("want colored availability line, got:\n%q", out)
	}
}

func TestMulti_PublishesToAllReturnsFirstError(t *testing.T) {
	var calls int
	first := errors.New("first")
	m := Multi{
		SinkFunc(func(context.Context, domain.Report) error { calls++; return first }),
		nil,
		SinkFunc(func(context.Context, domain.Report) error { calls++; return errors.New("second") }),
	}
	err := m.Publish(context.Background(), sampleReport())
	if !errors.Is(err, first) {
		t.Fatalf("want first error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("want both sinks called, got %d", calls)
	}
}

func TestLogSink_WritesEntries(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewLogSink(zap.New(core))

	if err := s.Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n := logs.FilterMessage("endpoint_down").Len(); n != 1 {
		t.Fatalf("want 1 endpoint_down entry, got %d", n)
	}
	if n := logs.FilterMessage("domain_availability").Len(); n != 2 {
		t.Fatalf("want 2 domain_availability entries, got %d", n)
	}
	if n := logs.FilterMessage("round_reported").Len(); n != 1 {
		t.Fatalf("want 1 round_reported entry, got %d", n)
	}
}
