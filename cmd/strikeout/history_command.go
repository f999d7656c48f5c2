package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"strikeout/internal/journal"
	"strikeout/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(j *journal.Journal) error {
				runs, err := j.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOut {
					if runs == nil {
						runs = []journal.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(runs, time.Now()))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&jsonOut, "json", false, "Output runs as JSON")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-file outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(j *journal.Journal) error {
				run, err := j.FindRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, journal.ErrRunNotFound) {
						return services.Wrap(services.ErrNotFound, "history", "show", "", err)
					}
					return err
				}
				entries, err := j.RunEntries(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if jsonOut {
					if entries == nil {
						entries = []journal.Entry{}
					}
					return writeJSON(cmd, struct {
						Run     journal.Run     `json:"run"`
						Entries []journal.Entry `json:"entries"`
					}{run, entries})
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(fmt.Sprintf("Run %s (%s)", run.ID, run.Mode), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize))
				fmt.Fprintln(out, renderStatusLine("Source", statusInfo, run.SourceRoot, colorize))
				if run.DestRoot != "" {
					fmt.Fprintln(out, renderStatusLine("Destination", statusInfo, run.DestRoot, colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run), string(run.Status), colorize))
				if len(entries) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					target := displayPath(run.DestRoot, e.Destination)
					if e.Error != "" {
						target = e.Error
					}
					rows = append(rows, []string{
						string(e.Status),
						displayPath(run.SourceRoot, e.Source),
						target,
						yesNo(e.Renamed),
						humanize.Bytes(uint64(max(e.Size, 0))),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Source", "Destination", "Renamed", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignPath, alignPath, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the run and its entries as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return services.Wrap(services.ErrValidation, "history", "prune", "--older-than must be positive", nil)
			}
			return withJournal(ctx, func(j *journal.Journal) error {
				removed, err := j.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", pluralize(int(removed), "run"))
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age beyond which runs are deleted")
	return cmd
}

func withJournal(ctx *commandContext, fn func(*journal.Journal) error) error {
	j, err := ctx.openJournal()
	if err != nil {
		return err
	}
	if j == nil {
		return services.Wrap(services.ErrConfiguration, "history", "open journal", "journal is disabled in config", nil)
	}
	defer j.Close()
	return fn(j)
}

func renderRunsTable(runs []journal.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			r.Mode,
			string(r.Status),
			strconv.Itoa(r.NewFiles),
			strconv.Itoa(r.Linked),
			strconv.Itoa(r.Failed),
			humanize.Bytes(uint64(max(r.BytesLinked, 0))),
			r.SourceRoot,
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Mode", "Status", "New", "Linked", "Failed", "Bytes", "Source"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignPath},
	)
}

func runStatusKind(run journal.Run) statusKind {
	switch {
	case run.Status == journal.RunFailed:
		return statusError
	case run.Status == journal.RunRunning:
		return statusWarn
	case run.Failed > 0:
		return statusWarn
	default:
		return statusOK
	}
}
