// Package scanner walks a source tree and reports files not yet in the index.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"strikeout/internal/fileindex"
	"strikeout/internal/logging"
)

// File is a newly seen source file.
type File struct {
	Path string      `json:"path"`
	Size int64       `json:"size"`
	Mode fs.FileMode `json:"mode"`
}

// Regular reports whether the file is a regular file.
func (f File) Regular() bool {
	return f.Mode.IsRegular()
}

// Options controls traversal.
type Options struct {
	// FollowSymlinks treats symlinks to regular files as the files they point
	// to. Symlinked directories are never descended into.
	FollowSymlinks bool
	// IncludeExtensions restricts results to these extensions (lowercase, no
	// dot). Empty admits every file.
	IncludeExtensions []string
	Logger            *slog.Logger
}

// Scan walks root, skipping hidden entries and everything beneath hidden
// directories. Every regular file is inserted into idx; files that were not
// already present are returned in walk order. Errors on individual entries are
// logged and the entry is skipped. Only an unreadable root is returned as an
// error.
func Scan(ctx context.Context, root string, idx *fileindex.Index, opts Options) ([]File, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "scanner")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	// WalkDir does not descend into a root that is itself a symlink.
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("read source root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("read source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("read source root: %s is not a directory", absRoot)
	}

	allowed := extensionSet(opts.IncludeExtensions)
	var found []File
	skipped := 0

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == absRoot {
				return fmt.Errorf("read source root: %w", err)
			}
			skipped++
			logging.WarnWithContext(logger, "skipping unreadable entry", "scan_entry_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the entry"),
				logging.String(logging.FieldImpact, "entry will not be linked this run"))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		file, ok := resolveEntry(path, d, opts.FollowSymlinks, logger)
		if !ok {
			return nil
		}
		if !allowed.admits(path) {
			return nil
		}
		if idx.Insert(path) {
			found = append(found, file)
		}
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return found, walkErr
		}
		return nil, walkErr
	}

	logger.Info("scan complete",
		logging.String("root", absRoot),
		logging.Int("new_files", len(found)),
		logging.Int("indexed", idx.Len()),
		logging.Int("skipped_entries", skipped))
	return found, nil
}

func resolveEntry(path string, d fs.DirEntry, follow bool, logger *slog.Logger) (File, bool) {
	if d.Type()&fs.ModeSymlink != 0 {
		if !follow {
			return File{}, false
		}
		target, err := os.Stat(path)
		if err != nil {
			logging.WarnWithContext(logger, "skipping broken symlink", "scan_symlink_broken",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "entry will not be linked this run"))
			return File{}, false
		}
		if !target.Mode().IsRegular() {
			return File{}, false
		}
		return File{Path: path, Size: target.Size(), Mode: target.Mode()}, true
	}
	if !d.Type().IsRegular() {
		return File{}, false
	}
	info, err := d.Info()
	if err != nil {
		logger.Debug("entry vanished during scan", logging.String("path", path), logging.Error(err))
		return File{}, false
	}
	return File{Path: path, Size: info.Size(), Mode: info.Mode()}, true
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

type extensionFilter map[string]struct{}

func extensionSet(exts []string) extensionFilter {
	if len(exts) == 0 {
		return nil
	}
	set := make(extensionFilter, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

func (f extensionFilter) admits(path string) bool {
	if len(f) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	_, ok := f[ext]
	return ok
}
