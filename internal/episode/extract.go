package episode

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

var episodeTokenPattern = regexp.MustCompile(`^(\d+)([vV]\d+)?$`)

// Extractor runs an ordered rule chain with the default token scan as the
// final fallback.
type Extractor struct {
	rules []Rule
}

// NewExtractor builds an extractor trying rules in the given order.
func NewExtractor(rules ...Rule) *Extractor {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Extractor{rules: cp}
}

var defaultExtractor = NewExtractor(DefaultRules()...)

// Extract identifies the episode in stem using the built-in rule chain.
func Extract(stem string) (Descriptor, error) {
	return defaultExtractor.Extract(stem)
}

// Extract identifies the episode in stem (a filename without directory or
// extension). Full-width digits and brackets are folded to ASCII first.
func (e *Extractor) Extract(stem string) (Descriptor, error) {
	if !utf8.ValidString(stem) {
		return Descriptor{}, ErrInvalidUnicodeFilename
	}
	folded := width.Fold.String(stem)

	if rule, ok := e.match(folded); ok {
		if n, ok := rule.extract(folded); ok {
			return NewDescriptor(n), nil
		}
	}
	return ExtractDefault(folded)
}

// Match returns the name of the first rule whose signature matches stem.
func (e *Extractor) Match(stem string) (string, bool) {
	rule, ok := e.match(width.Fold.String(stem))
	if !ok {
		return "", false
	}
	return rule.Name, true
}

func (e *Extractor) match(stem string) (Rule, bool) {
	for _, rule := range e.rules {
		if rule.Signature != nil && rule.Signature.MatchString(stem) {
			return rule, true
		}
	}
	return Rule{}, false
}

// ExtractDefault scans bracket and whitespace separated tokens of stem and
// returns the first token consisting of digits with an optional version
// suffix. Digit runs too large for an episode number are skipped.
func ExtractDefault(stem string) (Descriptor, error) {
	for _, token := range Tokens(stem) {
		m := episodeTokenPattern.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[1], 10, 16)
		if err != nil {
			continue
		}
		return NewDescriptor(uint16(n)), nil
	}
	return Descriptor{}, ErrEpisodeNotFound
}

// Tokens splits stem on brackets (ASCII, full-width, and lenticular) and
// whitespace, dropping empty tokens.
func Tokens(stem string) []string {
	return strings.FieldsFunc(stem, isDelimiter)
}

func isDelimiter(r rune) bool {
	switch r {
	case '[', ']', '【', '】', '［', '］':
		return true
	}
	return unicode.IsSpace(r)
}
