package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"strikeout/internal/fileindex"
	"strikeout/internal/journal"
	"strikeout/internal/linker"
	"strikeout/internal/logging"
	"strikeout/internal/pathmap"
	"strikeout/internal/preflight"
	"strikeout/internal/scanner"
	"strikeout/internal/services"
)

// ErrDuplicateDestination reports a file whose destination was already taken
// by an earlier file in the same run.
var ErrDuplicateDestination = errors.New("destination already claimed in this run")

// Journal records run history. *journal.Journal satisfies it.
type Journal interface {
	BeginRun(ctx context.Context, run journal.Run) (journal.Run, error)
	RecordLink(ctx context.Context, runID string, entry journal.Entry) error
	FinishRun(ctx context.Context, runID string, summary journal.Summary) error
}

// Request describes one run.
type Request struct {
	Source      string
	Destination string
	Mode        Mode
	// Overwrite replaces existing destination files instead of reporting
	// them as collisions.
	Overwrite           bool
	CheckSameFilesystem bool
	FollowSymlinks      bool
	IncludeExtensions   []string
}

// Organizer runs requests against one file index.
type Organizer struct {
	store    *fileindex.Store
	journal  Journal
	mapper   *pathmap.Mapper
	base     *slog.Logger
	logger   *slog.Logger
	newRunID func() string
	now      func() time.Time
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithJournal records runs in j. A nil journal disables recording.
func WithJournal(j Journal) Option {
	return func(o *Organizer) {
		o.journal = j
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Organizer) {
		if logger != nil {
			o.base = logger
		}
	}
}

// WithMapper replaces the path mapper.
func WithMapper(m *pathmap.Mapper) Option {
	return func(o *Organizer) {
		if m != nil {
			o.mapper = m
		}
	}
}

// New returns an organizer persisting its index through store.
func New(store *fileindex.Store, opts ...Option) *Organizer {
	o := &Organizer{
		store:    store,
		mapper:   pathmap.New(nil),
		base:     logging.NewNop(),
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.base, "organizer")
	return o
}

// Run executes req and returns its report. The report is populated as far as
// the run got even when an error is returned.
func (o *Organizer) Run(ctx context.Context, req Request) (Report, error) {
	if req.Mode == "" {
		req.Mode = ModeLink
	}
	report := Report{
		RunID:     o.newRunID(),
		Mode:      req.Mode,
		IndexPath: o.store.Path(),
		StartedAt: o.now().UTC(),
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, o.logger)

	if err := o.prepare(&req, &report); err != nil {
		return report, err
	}

	logger.Info("starting run",
		logging.String("mode", string(req.Mode)),
		logging.String(logging.FieldSource, report.Source),
		logging.String(logging.FieldDestination, report.Destination),
		logging.String("index_path", report.IndexPath))

	if req.Mode != ModeDryRun {
		if err := o.store.Lock(); err != nil {
			if errors.Is(err, fileindex.ErrIndexLocked) {
				return report, services.Wrap(services.ErrConflict, "organizer", "lock index", "another run is using this index", err)
			}
			return report, services.Wrap(services.ErrTransient, "organizer", "lock index", "", err)
		}
		defer func() {
			if err := o.store.Unlock(); err != nil {
				logger.Warn("failed to release index lock", logging.Error(err))
			}
		}()
	}

	idx := fileindex.New()
	if req.Mode != ModeIndexOnly {
		idx = o.store.Load()
	}

	rec := o.beginJournal(ctx, logger, req, report)

	files, err := scanner.Scan(ctx, report.Source, idx, scanner.Options{
		FollowSymlinks:    req.FollowSymlinks,
		IncludeExtensions: req.IncludeExtensions,
		Logger:            logging.WithContext(ctx, o.base),
	})
	if err != nil {
		runErr := services.Wrap(services.ErrValidation, "organizer", "scan", "source root unreadable", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			runErr = services.Wrap(services.ErrTransient, "organizer", "scan", "run interrupted", err)
		}
		o.finish(ctx, logger, rec, &report, journal.RunFailed, runErr)
		return report, runErr
	}
	report.NewFiles = len(files)

	claimed := make(map[string]string, len(files))
	for _, file := range files {
		result := o.process(logger, req, report.Source, report.Destination, file, idx, claimed)
		report.add(result)
		if rec != nil {
			o.record(ctx, logger, rec, report.RunID, result)
		}
	}

	if req.Mode != ModeDryRun {
		if err := o.store.Save(idx); err != nil {
			runErr := services.Wrap(services.ErrTransient, "organizer", "save index", "", err)
			o.finish(ctx, logger, rec, &report, journal.RunFailed, runErr)
			return report, runErr
		}
	}

	o.finish(ctx, logger, rec, &report, journal.RunCompleted, nil)
	return report, nil
}

func (o *Organizer) prepare(req *Request, report *Report) error {
	if strings.TrimSpace(req.Source) == "" {
		return services.Wrap(services.ErrValidation, "organizer", "validate request", "source directory is required", nil)
	}
	switch req.Mode {
	case ModeLink, ModeDryRun:
		if strings.TrimSpace(req.Destination) == "" {
			return services.Wrap(services.ErrValidation, "organizer", "validate request", "destination directory is required", nil)
		}
	case ModeIndexOnly:
	default:
		return services.Wrap(services.ErrValidation, "organizer", "validate request", "unknown mode "+string(req.Mode), nil)
	}

	src, err := filepath.Abs(req.Source)
	if err != nil {
		return services.Wrap(services.ErrValidation, "organizer", "resolve source", "", err)
	}
	// Scanned paths are under the resolved root, so the mapper must see the
	// same prefix. A missing root is left for the preflight check to report.
	if resolved, err := filepath.EvalSymlinks(src); err == nil {
		src = resolved
	}
	report.Source = src

	checks := []preflight.Result{preflight.CheckSource(src)}
	if req.Destination != "" {
		dest, err := filepath.Abs(req.Destination)
		if err != nil {
			return services.Wrap(services.ErrValidation, "organizer", "resolve destination", "", err)
		}
		report.Destination = dest
		if req.Mode == ModeLink {
			checks = append(checks, preflight.CheckDestination(dest))
			if req.CheckSameFilesystem {
				checks = append(checks, preflight.CheckSameFilesystem(src, dest))
			}
		}
	}
	if err := preflight.FirstFailure(checks); err != nil {
		return services.Wrap(services.ErrValidation, "organizer", "preflight", "", err)
	}
	return nil
}

// process maps and links one file. claimed holds the destinations taken so
// far in this run, keyed to the source that took them.
func (o *Organizer) process(logger *slog.Logger, req Request, src, dest string, file scanner.File, idx *fileindex.Index, claimed map[string]string) FileResult {
	result := FileResult{Source: file.Path, Size: file.Size}

	if req.Mode == ModeIndexOnly {
		result.Status = StatusIndexed
		return result
	}

	mapping, err := o.mapper.Map(file.Path, src, dest)
	if err != nil {
		idx.Remove(file.Path)
		result.Status = StatusFailed
		result.Error = err.Error()
		logging.WarnWithContext(logger, "failed to map file", "map_failed",
			logging.String(logging.FieldSource, file.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file will be retried next run"))
		return result
	}
	result.Destination = mapping.Destination
	result.Renamed = mapping.Renamed

	// The loser stays indexed so the clash is reported once, not every run.
	if owner, ok := claimed[mapping.Destination]; ok {
		err := fmt.Errorf("%w: %s", ErrDuplicateDestination, owner)
		result.Status = StatusFailed
		result.Error = err.Error()
		logging.WarnWithContext(logger, "two files map to the same destination", "duplicate_destination",
			logging.String(logging.FieldSource, file.Path),
			logging.String(logging.FieldDestination, mapping.Destination),
			logging.String("claimed_by", owner),
			logging.String(logging.FieldErrorHint, "rename one of the source files"),
			logging.String(logging.FieldImpact, "file will not be linked"))
		return result
	}
	claimed[mapping.Destination] = file.Path

	logger.Debug("mapped file",
		logging.String(logging.FieldSource, file.Path),
		logging.String(logging.FieldDestination, mapping.Destination),
		logging.Bool("renamed", mapping.Renamed),
		logging.String("title", mapping.Title))

	if req.Mode == ModeDryRun {
		result.Status = StatusDryRun
		return result
	}

	outcome, err := linker.Place(file.Path, mapping.Destination, linker.Options{Overwrite: req.Overwrite})
	if err != nil {
		idx.Remove(file.Path)
		result.Status = StatusFailed
		result.Error = err.Error()
		logging.WarnWithContext(logger, "failed to link file", "link_failed",
			logging.String(logging.FieldSource, file.Path),
			logging.String(logging.FieldDestination, mapping.Destination),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, linkHint(err)),
			logging.String(logging.FieldImpact, "file will be retried next run"))
		return result
	}

	if outcome == linker.AlreadyLinked {
		result.Status = StatusSkipped
		logger.Debug("destination already linked",
			logging.String(logging.FieldSource, file.Path),
			logging.String(logging.FieldDestination, mapping.Destination))
		return result
	}
	result.Status = StatusLinked
	logger.Info("linked file",
		logging.String(logging.FieldSource, file.Path),
		logging.String(logging.FieldDestination, mapping.Destination),
		logging.Bool("replaced", outcome == linker.Replaced))
	return result
}

func linkHint(err error) string {
	switch {
	case linker.IsCrossDevice(err):
		return "place source and destination on the same filesystem"
	case errors.Is(err, linker.ErrDestinationExists):
		return "remove the existing destination or rerun with --overwrite"
	default:
		return "check permissions on the destination directory"
	}
}
