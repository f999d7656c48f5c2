// Package naming renders canonical destination file names for episodes.
package naming

import (
	"errors"
	"fmt"
	"strings"

	"strikeout/internal/episode"
)

// ErrExtensionNotFound reports a file name without an extension. Callers treat
// it as informational; the extension is optional.
var ErrExtensionNotFound = errors.New("extension not found")

// BaseName returns the canonical name without extension. With a title the
// result is "{title} {episode}"; without one it is "S{season}E{episode}" with
// both numbers padded to two digits.
func BaseName(d episode.Descriptor, title string) string {
	title = strings.TrimSpace(title)
	if title != "" {
		return fmt.Sprintf("%s %d", title, d.Episode)
	}
	return fmt.Sprintf("S%02dE%02d", d.Season, d.Episode)
}

// Format returns the canonical file name for d, appending ext verbatim after a
// dot when ext is non-empty. ext is given without its leading dot.
func Format(d episode.Descriptor, title, ext string) string {
	base := BaseName(d, title)
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// SplitExtension splits name into stem and extension (without the dot). A
// leading dot does not start an extension, so ".profile" has none. When no
// extension exists the stem is name itself and ErrExtensionNotFound is
// returned alongside it.
func SplitExtension(name string) (string, string, error) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return name, "", ErrExtensionNotFound
	}
	return name[:idx], name[idx+1:], nil
}
