package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"strikeout/internal/journal"
	"strikeout/internal/testsupport"
)

func TestOpenAppliesMigrationsIdempotently(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	second := testsupport.MustOpenJournal(t, cfg)
	if second.Path() != cfg.Journal.Path {
		t.Fatalf("Path = %q, want %q", second.Path(), cfg.Journal.Path)
	}
}

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	run, err := j.BeginRun(ctx, journal.Run{ID: "run-1", Mode: "link", SourceRoot: "/src", DestRoot: "/dest"})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.Status != journal.RunRunning || run.StartedAt.IsZero() {
		t.Fatalf("unexpected run %+v", run)
	}

	entries := []journal.Entry{
		{Source: "/src/a/[G][01].mkv", Destination: "/dest/a/a 1.mkv", Renamed: true, Status: journal.EntryLinked, Size: 2048},
		{Source: "/src/b.mkv", Destination: "/dest/b.mkv", Status: journal.EntryFailed, Error: "destination exists"},
	}
	for _, e := range entries {
		if err := j.RecordLink(ctx, run.ID, e); err != nil {
			t.Fatalf("RecordLink: %v", err)
		}
	}
	if err := j.FinishRun(ctx, run.ID, journal.Summary{NewFiles: 2, Linked: 1, Failed: 1, BytesLinked: 2048}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := j.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Status != journal.RunCompleted || got.Linked != 1 || got.Failed != 1 || got.BytesLinked != 2048 || got.FinishedAt.IsZero() {
		t.Fatalf("unexpected finished run %+v", got)
	}
	if got.DestRoot != "/dest" || got.IndexPath != "" {
		t.Fatalf("unexpected roots %+v", got)
	}

	recorded, err := j.RunEntries(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunEntries: %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recorded))
	}
	if !recorded[0].Renamed || recorded[0].Status != journal.EntryLinked || recorded[0].Size != 2048 {
		t.Fatalf("unexpected first entry %+v", recorded[0])
	}
	if recorded[1].Error != "destination exists" || recorded[1].Status != journal.EntryFailed {
		t.Fatalf("unexpected second entry %+v", recorded[1])
	}
}

func TestRecentRunsNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if _, err := j.BeginRun(ctx, journal.Run{ID: id, Mode: "link", SourceRoot: "/src", StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("BeginRun %s: %v", id, err)
		}
	}

	runs, err := j.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("unexpected order: %+v", runs)
	}

	all, err := j.RecentRuns(ctx, 0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 runs, got %d", len(all))
	}
}

func TestFindRunByPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"abc-111", "abd-222"} {
		if _, err := j.BeginRun(ctx, journal.Run{ID: id, Mode: "link", SourceRoot: "/src"}); err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
	}

	run, err := j.FindRun(ctx, "abc")
	if err != nil || run.ID != "abc-111" {
		t.Fatalf("FindRun(abc) = %+v, %v", run, err)
	}
	if _, err := j.FindRun(ctx, "ab"); err == nil {
		t.Fatal("expected ambiguous prefix error")
	}
	if _, err := j.FindRun(ctx, "zzz"); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("FindRun(zzz) err = %v, want ErrRunNotFound", err)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	if err := j.FinishRun(context.Background(), "missing", journal.Summary{}); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("FinishRun err = %v, want ErrRunNotFound", err)
	}
}

func TestPruneRemovesOldRunsAndEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	if _, err := j.BeginRun(ctx, journal.Run{ID: "old", Mode: "link", SourceRoot: "/src", StartedAt: old}); err != nil {
		t.Fatal(err)
	}
	if err := j.RecordLink(ctx, "old", journal.Entry{Source: "/src/a", Destination: "/dest/a", Status: journal.EntryLinked}); err != nil {
		t.Fatal(err)
	}
	if _, err := j.BeginRun(ctx, journal.Run{ID: "recent", Mode: "link", SourceRoot: "/src"}); err != nil {
		t.Fatal(err)
	}

	removed, err := j.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	entries, err := j.RunEntries(ctx, "old")
	if err != nil {
		t.Fatalf("RunEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected entries pruned, got %d", len(entries))
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := journal.Open("  "); err == nil {
		t.Fatal("expected error")
	}
}
