package naming

import (
	"errors"
	"testing"

	"strikeout/internal/episode"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		d     episode.Descriptor
		title string
		ext   string
		want  string
	}{
		{"untitled pads both", episode.NewDescriptor(6), "", "mp4", "S01E06.mp4"},
		{"untitled two digit", episode.Descriptor{Episode: 12, Season: 10}, "", "mkv", "S10E12.mkv"},
		{"untitled three digit", episode.NewDescriptor(123), "", "mkv", "S01E123.mkv"},
		{"titled unpadded", episode.NewDescriptor(5), "Akudama Drive", "mkv", "Akudama Drive 5.mkv"},
		{"no extension", episode.NewDescriptor(1), "", "", "S01E01"},
		{"blank title", episode.NewDescriptor(2), "   ", "ass", "S01E02.ass"},
		{"extension verbatim", episode.NewDescriptor(3), "Show", "MKV", "Show 3.MKV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.d, tt.title, tt.ext); got != tt.want {
				t.Fatalf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDeterministic(t *testing.T) {
	d := episode.NewDescriptor(9)
	if Format(d, "Show", "mkv") != Format(d, "Show", "mkv") {
		t.Fatal("Format is not deterministic")
	}
}

func TestSplitExtension(t *testing.T) {
	tests := []struct {
		in       string
		stem     string
		ext      string
		wantMiss bool
	}{
		{"1.text", "1", "text", false},
		{"[Show][01].sc.ass", "[Show][01].sc", "ass", false},
		{"README", "README", "", true},
		{".hidden", ".hidden", "", true},
		{"trailing.", "trailing.", "", true},
	}
	for _, tt := range tests {
		stem, ext, err := SplitExtension(tt.in)
		if stem != tt.stem || ext != tt.ext {
			t.Fatalf("SplitExtension(%q) = %q,%q want %q,%q", tt.in, stem, ext, tt.stem, tt.ext)
		}
		if tt.wantMiss != errors.Is(err, ErrExtensionNotFound) {
			t.Fatalf("SplitExtension(%q) err = %v", tt.in, err)
		}
	}
}
