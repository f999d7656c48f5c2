package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"strikeout/internal/fileindex"
	"strikeout/internal/services"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var indexPath string

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect or edit the file index for the working directory",
	}
	indexCmd.PersistentFlags().StringVar(&indexPath, "index-path", "", "Index file to use instead of the configured or derived one")

	indexCmd.AddCommand(newIndexPathCommand(ctx, &indexPath))
	indexCmd.AddCommand(newIndexShowCommand(ctx, &indexPath))
	indexCmd.AddCommand(newIndexClearCommand(ctx, &indexPath))
	indexCmd.AddCommand(newIndexRemoveCommand(ctx, &indexPath))
	return indexCmd
}

func newIndexPathCommand(ctx *commandContext, indexPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the index file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.indexPath(*indexPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newIndexShowCommand(ctx *commandContext, indexPath *string) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the files recorded in the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openIndex(*indexPath)
			if err != nil {
				return err
			}
			idx, err := store.Read()
			if err != nil {
				var corrupt *fileindex.CorruptError
				if errors.As(err, &corrupt) {
					return fmt.Errorf("%w (the next run will start from an empty index; run \"strikeout index clear\" to reset it now)", err)
				}
				return err
			}

			paths := idx.Paths()
			if jsonOut {
				return writeJSON(cmd, paths)
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintf(out, "Index %s is empty\n", store.Path())
				return nil
			}
			rows := make([][]string, 0, len(paths))
			for _, p := range paths {
				rows = append(rows, []string{p, presentSize(p)})
			}
			fmt.Fprintln(out, renderTable([]string{"Path", "Size"}, rows, []columnAlignment{alignPath, alignRight}))
			fmt.Fprintf(out, "%s in %s\n", pluralize(len(paths), "file"), store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output paths as a JSON array")
	return cmd
}

func newIndexClearCommand(ctx *commandContext, indexPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every indexed file so the next run processes all files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openIndex(*indexPath)
			if err != nil {
				return err
			}
			if err := withIndexLock(store, func() error { return store.Clear() }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared index %s\n", store.Path())
			return nil
		},
	}
}

func newIndexRemoveCommand(ctx *commandContext, indexPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>...",
		Short: "Forget specific files so the next run links them again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openIndex(*indexPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var missing []string
			err = withIndexLock(store, func() error {
				idx := store.Load()
				removed := 0
				for _, arg := range args {
					abs, err := filepath.Abs(arg)
					if err != nil {
						return fmt.Errorf("resolve %s: %w", arg, err)
					}
					if idx.Remove(abs) {
						removed++
						fmt.Fprintf(out, "Removed %s\n", abs)
					} else {
						missing = append(missing, abs)
					}
				}
				if removed == 0 {
					return nil
				}
				return store.Save(idx)
			})
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return services.Wrap(services.ErrNotFound, "index", "remove", "not in index: "+strings.Join(missing, ", "), nil)
			}
			return nil
		},
	}
}

func withIndexLock(store *fileindex.Store, fn func() error) error {
	if err := store.Lock(); err != nil {
		if errors.Is(err, fileindex.ErrIndexLocked) {
			return services.Wrap(services.ErrConflict, "index", "lock", "a run is using this index", err)
		}
		return err
	}
	defer store.Unlock()
	return fn()
}

func presentSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	return humanize.Bytes(uint64(info.Size()))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), noun)
}
