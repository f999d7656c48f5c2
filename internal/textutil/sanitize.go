package textutil

import (
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// NormalizeTitle returns title in Unicode NFC form with surrounding
// whitespace removed. Directory names written by macOS tools arrive
// decomposed; composing them keeps destination names stable.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(norm.NFC.String(title))
}

// PathKey flattens a directory path into one file name by replacing every
// path separator with an underscore. "/home/a/media" becomes "_home_a_media".
func PathKey(dir string) string {
	if dir == "" {
		return "_"
	}
	key := strings.Map(func(r rune) rune {
		if r == os.PathSeparator || r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, dir)
	return key
}
