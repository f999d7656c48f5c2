package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"strikeout/internal/config"
	"strikeout/internal/fileindex"
	"strikeout/internal/journal"
	"strikeout/internal/organizer"
	"strikeout/internal/services"
	"strikeout/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	src   string
	dest  string
	store *fileindex.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	store, err := fileindex.Open(cfg.Paths.IndexPath, nil)
	if err != nil {
		t.Fatalf("fileindex.Open: %v", err)
	}
	src := filepath.Join(base, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	return fixture{cfg: cfg, src: src, dest: filepath.Join(base, "dest"), store: store}
}

func (f fixture) request(mode organizer.Mode) organizer.Request {
	return organizer.Request{
		Source:              f.src,
		Destination:         f.dest,
		Mode:                mode,
		CheckSameFilesystem: true,
	}
}

func assertLinked(t *testing.T, src, dest string) {
	t.Helper()
	si, err := os.Stat(src)
	if err != nil {
		t.Fatalf("stat %s: %v", src, err)
	}
	di, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("stat %s: %v", dest, err)
	}
	if !os.SameFile(si, di) {
		t.Fatalf("%s is not a hard link of %s", dest, src)
	}
}

func TestRunLinksCanonicalNames(t *testing.T) {
	f := newFixture(t)
	files := map[string]string{
		"[Munou na Nana][06][BIG5][1080P].mp4": "S01E06.mp4",
		"1.text":                               "S01E01.text",
		"Akudama Drive/[SweetSub&LoliHouse] Akudama Drive - 05 [WebRip 1080p HEVC-10bit AAC ASSx2].mkv": "Akudama Drive/Akudama Drive 5.mkv",
		"notes/readme.txt": "notes/readme.txt",
	}
	for rel := range files {
		testsupport.WriteFile(t, filepath.Join(f.src, filepath.FromSlash(rel)), 100)
	}
	testsupport.WriteFile(t, filepath.Join(f.src, ".staging", "[G][01].mkv"), 100)

	report, err := organizer.New(f.store).Run(context.Background(), f.request(organizer.ModeLink))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.NewFiles != 4 || report.Linked != 4 || report.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if report.BytesLinked != 400 {
		t.Fatalf("BytesLinked = %d, want 400", report.BytesLinked)
	}
	if report.RunID == "" || report.FinishedAt.IsZero() {
		t.Fatalf("report missing run metadata: %+v", report)
	}
	for rel, want := range files {
		assertLinked(t, filepath.Join(f.src, filepath.FromSlash(rel)), filepath.Join(f.dest, filepath.FromSlash(want)))
	}
	if _, err := os.Stat(filepath.Join(f.dest, ".staging")); !os.IsNotExist(err) {
		t.Fatalf("hidden directory should not be mirrored: %v", err)
	}

	idx, err := f.store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if idx.Len() != 4 {
		t.Fatalf("index holds %d paths, want 4", idx.Len())
	}

	again, err := organizer.New(f.store).Run(context.Background(), f.request(organizer.ModeLink))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.NewFiles != 0 || again.Linked != 0 || len(again.Files) != 0 {
		t.Fatalf("second run should be a no-op: %+v", again)
	}
}

func TestRunDryRunLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteFile(t, filepath.Join(f.src, "Show", "[G][03].mkv"), 10)
	j := testsupport.MustOpenJournal(t, f.cfg)

	report, err := organizer.New(f.store, organizer.WithJournal(j)).Run(context.Background(), f.request(organizer.ModeDryRun))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Planned != 1 || len(report.Files) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	got := report.Files[0]
	if got.Status != organizer.StatusDryRun || got.Destination != filepath.Join(f.dest, "Show", "Show 3.mkv") || !got.Renamed {
		t.Fatalf("unexpected file result: %+v", got)
	}
	if _, err := os.Stat(f.dest); !os.IsNotExist(err) {
		t.Fatalf("dry run created destination: %v", err)
	}
	if _, err := os.Stat(f.store.Path()); !os.IsNotExist(err) {
		t.Fatalf("dry run saved the index: %v", err)
	}
	runs, err := j.RecentRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("dry run wrote the journal: %+v", runs)
	}
}

func TestRunIndexOnlyRebuildsIndex(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Save(fileindex.New("/gone/file.mkv")); err != nil {
		t.Fatal(err)
	}
	a := filepath.Join(f.src, "a", "[G][01].mkv")
	b := filepath.Join(f.src, "b.mkv")
	testsupport.WriteFile(t, a, 1)
	testsupport.WriteFile(t, b, 1)

	req := f.request(organizer.ModeIndexOnly)
	req.Destination = ""
	report, err := organizer.New(f.store).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Indexed != 2 || report.Linked != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	idx, err := f.store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got, want := idx.Paths(), []string{a, b}; !reflect.DeepEqual(got, want) {
		t.Fatalf("index = %v, want %v", got, want)
	}
	if _, err := os.Stat(f.dest); !os.IsNotExist(err) {
		t.Fatalf("index-only run touched destination: %v", err)
	}

	after, err := organizer.New(f.store).Run(context.Background(), f.request(organizer.ModeLink))
	if err != nil {
		t.Fatalf("link Run: %v", err)
	}
	if after.NewFiles != 0 {
		t.Fatalf("indexed files should not be linked later: %+v", after)
	}
}

func TestRunCollisionIsRetried(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.src, "[G][01].mkv")
	testsupport.WriteFile(t, src, 5)
	testsupport.WriteFile(t, filepath.Join(f.dest, "S01E01.mkv"), 9)

	report, err := organizer.New(f.store).Run(context.Background(), f.request(organizer.ModeLink))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 || report.Files[0].Error == "" {
		t.Fatalf("expected a reported collision: %+v", report)
	}
	if f.store.Load().Contains(src) {
		t.Fatal("failed file must not stay in the index")
	}

	req := f.request(organizer.ModeLink)
	req.Overwrite = true
	retry, err := organizer.New(f.store).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("retry Run: %v", err)
	}
	if retry.Linked != 1 {
		t.Fatalf("expected overwrite to link: %+v", retry)
	}
	assertLinked(t, src, filepath.Join(f.dest, "S01E01.mkv"))
}

func TestRunAlreadyLinkedIsSkipped(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.src, "[G][02].mkv")
	testsupport.WriteFile(t, src, 5)
	if err := os.MkdirAll(f.dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Link(src, filepath.Join(f.dest, "S01E02.mkv")); err != nil {
		t.Fatal(err)
	}

	report, err := organizer.New(f.store).Run(context.Background(), f.request(organizer.ModeLink))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Skipped != 1 || report.Files[0].Status != organizer.StatusSkipped {
		t.Fatalf("expected skipped: %+v", report)
	}
	if !f.store.Load().Contains(src) {
		t.Fatal("skipped file should be indexed")
	}
}

func TestRunRecordsJournal(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteFile(t, filepath.Join(f.src, "Show", "[G][04].mkv"), 7)
	j := testsupport.MustOpenJournal(t, f.cfg)

	report, err := organizer.New(f.store, organizer.WithJournal(j)).Run(context.Background(), f.request(organizer.ModeLink))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	runs, err := j.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != report.RunID {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].Status != journal.RunCompleted || runs[0].Linked != 1 || runs[0].BytesLinked != 7 {
		t.Fatalf("unexpected run row: %+v", runs[0])
	}
	entries, err := j.RunEntries(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("RunEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != journal.EntryLinked || !entries[0].Renamed {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestRunMissingSourceFails(t *testing.T) {
	f := newFixture(t)
	req := f.request(organizer.ModeLink)
	req.Source = filepath.Join(f.src, "missing")
	_, err := organizer.New(f.store).Run(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestRunRequiresDestination(t *testing.T) {
	f := newFixture(t)
	req := f.request(organizer.ModeLink)
	req.Destination = ""
	if _, err := organizer.New(f.store).Run(context.Background(), req); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestRunRefusesLockedIndex(t *testing.T) {
	f := newFixture(t)
	other, err := fileindex.Open(f.store.Path(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	t.Cleanup(func() { _ = other.Unlock() })

	_, err = organizer.New(f.store).Run(context.Background(), f.request(organizer.ModeLink))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if services.ExitCode(err) != services.ExitConflict {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
}

func TestRunFollowsSymlinkedSourceRoot(t *testing.T) {
	f := newFixture(t)
	library := filepath.Join(testsupport.BaseDir(f.cfg), "library")
	src := filepath.Join(library, "Show", "[G][01].mkv")
	testsupport.WriteFile(t, src, 3)
	link := filepath.Join(testsupport.BaseDir(f.cfg), "library-link")
	if err := os.Symlink(library, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	req := f.request(organizer.ModeLink)
	req.Source = link
	report, err := organizer.New(f.store).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.NewFiles != 1 || report.Linked != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	assertLinked(t, src, filepath.Join(f.dest, "Show", "Show 1.mkv"))
}

func TestRunCancelledIsTransient(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteFile(t, filepath.Join(f.src, "[G][01].mkv"), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := organizer.New(f.store).Run(ctx, f.request(organizer.ModeLink))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, services.ErrValidation) {
		t.Fatalf("cancellation reported as validation error: %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitFailure {
		t.Fatalf("exit code = %d, want %d", code, services.ExitFailure)
	}
}

func TestRunDuplicateDestinationReportedOnce(t *testing.T) {
	f := newFixture(t)
	first := filepath.Join(f.src, "Show", "[A][01].mkv")
	second := filepath.Join(f.src, "Show", "[B][01].mkv")
	testsupport.WriteFile(t, first, 2)
	testsupport.WriteFile(t, second, 2)

	report, err := organizer.New(f.store).Run(context.Background(), f.request(organizer.ModeLink))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Linked != 1 || report.Failed != 1 || len(report.Files) != 2 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	loser := report.Files[1]
	if loser.Source != second || loser.Status != organizer.StatusFailed {
		t.Fatalf("unexpected result for second file: %+v", loser)
	}
	if !strings.Contains(loser.Error, first) {
		t.Fatalf("error %q should name %s", loser.Error, first)
	}
	assertLinked(t, first, filepath.Join(f.dest, "Show", "Show 1.mkv"))
	if !f.store.Load().Contains(second) {
		t.Fatal("duplicate should stay indexed")
	}

	again, err := organizer.New(f.store).Run(context.Background(), f.request(organizer.ModeLink))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.NewFiles != 0 || again.Failed != 0 {
		t.Fatalf("duplicate should not be reported again: %+v", again)
	}
}
