package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"strikeout/internal/logging"
	"strikeout/internal/organizer"
	"strikeout/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun    bool
		indexOnly bool
		overwrite bool
		indexPath string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "run <source> [destination]",
		Short: "Link files not seen before from source into destination",
		Long: `Scan the source tree for files that earlier runs have not processed and
hard-link each into the destination tree, mirroring its directory. Files whose
names carry an episode number are renamed to "<parent dir> <episode>.<ext>", or
"S01E<episode>.<ext>" when they sit directly under the source root.

--dry-run prints every mapping without linking or updating the index.
--index rebuilds the index from the current source tree without linking.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			mode := organizer.ModeLink
			switch {
			case dryRun:
				mode = organizer.ModeDryRun
			case indexOnly:
				mode = organizer.ModeIndexOnly
			}

			dest := ""
			if len(args) > 1 {
				dest = args[1]
			}
			if dest == "" && mode != organizer.ModeIndexOnly {
				return services.Wrap(services.ErrValidation, "cli", "run", "destination directory is required unless --index is set", nil)
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openIndex(indexPath)
			if err != nil {
				return err
			}

			opts := []organizer.Option{organizer.WithLogger(logger)}
			if mode != organizer.ModeDryRun {
				j, err := ctx.openJournal()
				if err != nil {
					logging.WarnWithContext(logger, "run history unavailable", "journal_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check journal.path in config or set journal.enabled = false"),
						logging.String(logging.FieldImpact, "this run will be missing from history"))
				} else if j != nil {
					defer j.Close()
					opts = append(opts, organizer.WithJournal(j))
				}
			}

			req := organizer.Request{
				Source:              args[0],
				Destination:         dest,
				Mode:                mode,
				Overwrite:           cfg.Link.Overwrite,
				CheckSameFilesystem: cfg.Link.CheckSameFilesystem,
				FollowSymlinks:      cfg.Scan.FollowSymlinks,
				IncludeExtensions:   cfg.Scan.IncludeExtensions,
			}
			if cmd.Flags().Changed("overwrite") {
				req.Overwrite = overwrite
			}

			report, err := organizer.New(store, opts...).Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderReport(report, shouldColorize(out)))
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d new files failed to link", report.Failed, report.NewFiles)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be linked without linking or saving the index")
	cmd.Flags().BoolVar(&indexOnly, "index", false, "Rebuild the index from the source tree without linking")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing destination files (overrides link.overwrite)")
	cmd.Flags().StringVar(&indexPath, "index-path", "", "Index file to use instead of the configured or derived one")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the run report as JSON")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "index")
	return cmd
}
