package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/repo"
)

func TestMemoryStore_LatestBeforeSave(t *testing.T) {
	s := New(3)
	if _, err := s.Latest(context.Background()); !errors.Is(err, repo.ErrNoReport) {
		t.Fatalf("want ErrNoReport, got %v", err)
	}
}

func TestMemoryStore_KeepsNewestReports(t *testing.T) {
	ctx := context.Background()
	s := New(3)

	for i := 1; i <= 5; i++ {
		if err := s.Publish(ctx, domain.Report{Round: i}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	latest, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Round != 5 {
		t.Fatalf("want round 5, got %d", latest.Round)
	}

	recent, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 || recent[0].Round != 5 || recent[2].Round != 3 {
		t.Fatalf("unexpected recent reports: %+v", recent)
	}

	two, _ := s.Recent(ctx, 2)
	if len(two) != 2 || two[1].Round != 4 {
		t.Fatalf("unexpected limited reports: %+v", two)
	}
}
