package episode

import "errors"

// DefaultSeason is the season assigned to every extracted episode.
const DefaultSeason uint16 = 1

var (
	// ErrEpisodeNotFound reports that no rule and no filename token yielded an episode.
	ErrEpisodeNotFound = errors.New("episode not found")
	// ErrInvalidUnicodeFilename reports a filename that is not valid UTF-8 text.
	ErrInvalidUnicodeFilename = errors.New("filename is not valid unicode")
)

// Descriptor identifies an episode within a season.
type Descriptor struct {
	Episode uint16 `json:"episode"`
	Season  uint16 `json:"season"`
}

// NewDescriptor returns a descriptor for episode in the default season.
func NewDescriptor(episode uint16) Descriptor {
	return Descriptor{Episode: episode, Season: DefaultSeason}
}
