package fileindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"strikeout/internal/logging"
	"strikeout/internal/textutil"
)

// ErrIndexLocked reports that another process holds the index lock.
var ErrIndexLocked = errors.New("index is locked by another process")

// CorruptError reports an index file whose content could not be parsed.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("index %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Location returns the default index path for runs started in cwd.
func Location(dataDir, cwd string) string {
	return filepath.Join(dataDir, textutil.PathKey(filepath.Clean(cwd))+".json")
}

// Store reads and writes one index file.
type Store struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock
}

// Open returns a store for the index file at path. The file itself is not
// touched until Load or Save.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("index path is empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "fileindex"),
		lock:   flock.New(path + ".lock"),
	}, nil
}

// Path returns the index file location.
func (s *Store) Path() string {
	return s.path
}

// Lock takes the index lock without blocking. It returns ErrIndexLocked when
// another process already holds it.
func (s *Store) Lock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire index lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrIndexLocked, s.lock.Path())
	}
	return nil
}

// Unlock releases the index lock.
func (s *Store) Unlock() error {
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release index lock: %w", err)
	}
	return nil
}

// Load returns the persisted index. A missing file yields an empty index; an
// unreadable or corrupt file is logged and also yields an empty index.
func (s *Store) Load() *Index {
	idx, err := s.Read()
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to load file index", "fileindex_load_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "index will start empty"),
			logging.String(logging.FieldImpact, "previously processed files will be linked again"))
		return New()
	}
	s.logger.Debug("loaded file index",
		logging.Int("entry_count", idx.Len()),
		logging.String("path", s.path))
	return idx
}

// Read returns the persisted index, reporting unreadable files and
// *CorruptError instead of recovering from them.
func (s *Store) Read() (*Index, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("read index file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}

	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	return New(paths...), nil
}

// Save overwrites the index file with idx.
func (s *Store) Save(idx *Index) error {
	if idx == nil {
		idx = New()
	}
	data, err := json.MarshalIndent(idx.Paths(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("saved file index",
		logging.Int("entry_count", idx.Len()),
		logging.String("path", s.path))
	return nil
}

// Clear replaces the persisted index with an empty one.
func (s *Store) Clear() error {
	return s.Save(New())
}
