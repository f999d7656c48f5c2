package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"strikeout/internal/organizer"
)

func renderReport(report organizer.Report, colorize bool) string {
	var b strings.Builder
	for _, line := range renderSectionHeader(fmt.Sprintf("Run %s (%s)", shortID(report.RunID), modeLabel(report.Mode)), colorize) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if len(report.Files) > 0 {
		rows := make([][]string, 0, len(report.Files))
		for _, f := range report.Files {
			target := displayPath(report.Destination, f.Destination)
			if f.Error != "" {
				target = f.Error
			}
			rows = append(rows, []string{
				paint(string(f.Status), fileStatusKind(f.Status), colorize),
				displayPath(report.Source, f.Source),
				target,
				humanize.Bytes(uint64(max(f.Size, 0))),
			})
		}
		b.WriteString(renderTable(
			[]string{"Status", "Source", "Destination", "Size"},
			rows,
			[]columnAlignment{alignLeft, alignPath, alignPath, alignRight},
		))
		b.WriteByte('\n')
	}

	kind, summary := reportSummary(report)
	b.WriteString(renderStatusLine("Summary", kind, summary, colorize))
	b.WriteByte('\n')
	b.WriteString(renderStatusLine("Index", statusInfo, report.IndexPath, colorize))
	return b.String()
}

func reportSummary(report organizer.Report) (statusKind, string) {
	elapsed := report.Duration().Round(time.Millisecond)
	switch {
	case report.NewFiles == 0:
		return statusInfo, fmt.Sprintf("No new files (%s)", elapsed)
	case report.Mode == organizer.ModeDryRun:
		return statusInfo, fmt.Sprintf("%d would be linked; nothing was changed", report.Planned)
	case report.Mode == organizer.ModeIndexOnly:
		return statusOK, fmt.Sprintf("%d indexed, nothing linked (%s)", report.Indexed, elapsed)
	}
	msg := fmt.Sprintf("%d linked (%s), %d skipped, %d failed in %s",
		report.Linked, humanize.Bytes(uint64(max(report.BytesLinked, 0))), report.Skipped, report.Failed, elapsed)
	if report.Failed > 0 {
		return statusError, msg
	}
	return statusOK, msg
}

func modeLabel(mode organizer.Mode) string {
	switch mode {
	case organizer.ModeDryRun:
		return "dry run"
	case organizer.ModeIndexOnly:
		return "index only"
	default:
		return "link"
	}
}

// displayPath shows path relative to root when it lies beneath it.
func displayPath(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
