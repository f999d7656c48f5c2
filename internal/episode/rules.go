package episode

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

// Rule couples a release-group signature with the pattern that captures the
// episode number in that group's filenames. Pattern must have the episode
// digits as its first capture group; a trailing version marker may be
// captured as the second group and is ignored.
//
// A rule only confirms the token scan, it never overrides it: a capture is
// accepted only when it is a whole token and no episode-like token precedes
// it. Titles that carry their own number ("86 - 03") therefore resolve the
// same way with or without rules.
type Rule struct {
	Name      string
	Signature *regexp.Regexp
	Pattern   *regexp.Regexp
}

// NewRule compiles a rule from its signature and episode pattern.
func NewRule(name, signature, pattern string) Rule {
	return Rule{
		Name:      name,
		Signature: regexp.MustCompile(signature),
		Pattern:   regexp.MustCompile(pattern),
	}
}

func (r Rule) extract(stem string) (uint16, bool) {
	if r.Pattern == nil {
		return 0, false
	}
	loc := r.Pattern.FindStringSubmatchIndex(stem)
	if len(loc) < 4 || loc[2] < 0 {
		return 0, false
	}
	start, end := loc[2], loc[3]
	if len(loc) >= 6 && loc[5] > end {
		end = loc[5]
	}
	if !tokenBounded(stem, start, end) {
		return 0, false
	}
	if _, err := ExtractDefault(stem[:start]); err == nil {
		return 0, false
	}
	n, err := strconv.ParseUint(stem[loc[2]:loc[3]], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

// tokenBounded reports whether stem[start:end] is delimited on both sides.
func tokenBounded(stem string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(stem[:start]); !isDelimiter(r) {
			return false
		}
	}
	if end < len(stem) {
		if r, _ := utf8.DecodeRuneInString(stem[end:]); !isDelimiter(r) {
			return false
		}
	}
	return true
}

// DefaultRules returns the built-in rule chain in priority order.
func DefaultRules() []Rule {
	return []Rule{
		// [SweetSub&LoliHouse] Akudama Drive - 05v2 [WebRip 1080p HEVC-10bit AAC ASSx2]
		NewRule("lolihouse", `(?i)^\[[^\]]*LoliHouse[^\]]*\]`, `\s-\s(\d+)([vV]\d+)?(?:\s*[\[(]|\s*$)`),
		// [SubsPlease] Frieren - 12 (1080p) [A1B2C3D4]
		// [Erai-raws] Frieren - 12 [1080p][Multiple Subtitle]
		// [ANi] Frieren - 12 [1080P][Baha][WEB-DL][AAC AVC][CHT]
		NewRule("dash-numbered", `(?i)^\[(?:SubsPlease|Erai-raws|ANi|HorribleSubs)\]`, `\s-\s(\d+)([vV]\d+)?(?:\s*[\[(]|\s*$)`),
		// [Nekomoe kissaten][Frieren][12][1080p][JPSC]
		// 【喵萌奶茶屋】★10月新番★[葬送的芙莉莲][12][1080p][简日双语]
		NewRule("bracket-numbered", `(?i)^(?:\[Nekomoe kissaten\]|\[Sakurato\]|\[BeanSub\]|【喵萌奶茶屋】)`, `\]\[(\d+)([vV]\d+)?\]`),
	}
}
