package organizer

import (
	"context"
	"log/slog"

	"strikeout/internal/journal"
	"strikeout/internal/logging"
)

// recorder is the journal handle for one run; nil when journaling is off or
// the run could not be registered.
type recorder struct {
	j Journal
}

func (o *Organizer) beginJournal(ctx context.Context, logger *slog.Logger, req Request, report Report) *recorder {
	if o.journal == nil || req.Mode == ModeDryRun {
		return nil
	}
	_, err := o.journal.BeginRun(ctx, journal.Run{
		ID:         report.RunID,
		Mode:       string(req.Mode),
		SourceRoot: report.Source,
		DestRoot:   report.Destination,
		IndexPath:  report.IndexPath,
		StartedAt:  report.StartedAt,
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record run start", "journal_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the journal path in config"),
			logging.String(logging.FieldImpact, "this run will be missing from history"))
		return nil
	}
	return &recorder{j: o.journal}
}

func (o *Organizer) record(ctx context.Context, logger *slog.Logger, rec *recorder, runID string, result FileResult) {
	err := rec.j.RecordLink(ctx, runID, journal.Entry{
		Source:      result.Source,
		Destination: result.Destination,
		Renamed:     result.Renamed,
		Status:      entryStatus(result.Status),
		Size:        result.Size,
		Error:       result.Error,
	})
	if err != nil {
		logger.Warn("failed to record file outcome",
			logging.String(logging.FieldSource, result.Source),
			logging.Error(err))
	}
}

func (o *Organizer) finish(ctx context.Context, logger *slog.Logger, rec *recorder, report *Report, status journal.RunStatus, runErr error) {
	report.FinishedAt = o.now().UTC()
	if rec != nil {
		if err := rec.j.FinishRun(ctx, report.RunID, report.summary(status, runErr)); err != nil {
			logger.Warn("failed to record run result", logging.Error(err))
		}
	}
	attrs := []logging.Attr{
		logging.String("mode", string(report.Mode)),
		logging.Int("new_files", report.NewFiles),
		logging.Int("linked", report.Linked),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Int64("bytes_linked", report.BytesLinked),
		logging.Duration("duration", report.Duration()),
	}
	if runErr != nil {
		attrs = append(attrs, logging.Error(runErr))
		logging.ErrorWithContext(logger, "run failed", "run_failed", attrs...)
		return
	}
	logger.Info("run complete", logging.Args(attrs...)...)
}
