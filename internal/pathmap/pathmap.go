package pathmap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"strikeout/internal/episode"
	"strikeout/internal/naming"
	"strikeout/internal/textutil"
)

// ErrInvalidPath reports a file that does not lie under the source root.
var ErrInvalidPath = errors.New("path is not under source root")

// EpisodeExtractor identifies the episode in a file stem.
type EpisodeExtractor interface {
	Extract(stem string) (episode.Descriptor, error)
}

// Mapping is the outcome of mapping one file.
type Mapping struct {
	Source      string
	Destination string
	// Title is the contextual title taken from the parent directory, empty
	// for files directly under the source root.
	Title string
	// Renamed is false when the original file name was kept.
	Renamed bool
	// Episode is set when Renamed is true.
	Episode episode.Descriptor
	// Reason explains why the original name was kept.
	Reason error
}

// Mapper maps source files to destination paths.
type Mapper struct {
	extractor EpisodeExtractor
}

// New returns a Mapper using extractor; nil selects the built-in rule chain.
func New(extractor EpisodeExtractor) *Mapper {
	if extractor == nil {
		extractor = episode.NewExtractor(episode.DefaultRules()...)
	}
	return &Mapper{extractor: extractor}
}

var defaultMapper = New(nil)

// Map returns the destination path for file using the built-in rule chain.
func Map(file, src, dest string) (string, error) {
	m, err := defaultMapper.Map(file, src, dest)
	if err != nil {
		return "", err
	}
	return m.Destination, nil
}

// Map computes the destination for file, which must lie under src.
func (m *Mapper) Map(file, src, dest string) (Mapping, error) {
	rel, err := relativeTo(src, file)
	if err != nil {
		return Mapping{}, err
	}

	dir, name := filepath.Split(rel)
	dir = filepath.Clean(dir)
	result := Mapping{Source: file}

	if dir != "." {
		result.Title = textutil.SanitizeFileName(textutil.NormalizeTitle(filepath.Base(dir)))
	}

	finalName, reason := m.canonicalName(name, result.Title, &result)
	if reason != nil {
		finalName = name
		result.Reason = reason
	} else {
		result.Renamed = finalName != name
	}
	result.Destination = filepath.Join(dest, dir, finalName)
	return result, nil
}

func (m *Mapper) canonicalName(name, title string, result *Mapping) (string, error) {
	if !utf8.ValidString(name) || !utf8.ValidString(title) {
		return "", episode.ErrInvalidUnicodeFilename
	}
	stem, ext, err := naming.SplitExtension(name)
	if err != nil && !errors.Is(err, naming.ErrExtensionNotFound) {
		return "", err
	}
	d, err := m.extractor.Extract(stem)
	if err != nil {
		return "", err
	}
	result.Episode = d
	return naming.Format(d, title, ext), nil
}

func relativeTo(src, file string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(src), filepath.Clean(file))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, file, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, file)
	}
	return rel, nil
}
