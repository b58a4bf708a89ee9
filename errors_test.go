package mediameta

import (
	"strings"
	"testing"
)

func TestOutOfBoundsError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OutOfBoundsError
		contains []string
	}{
		{
			name: "offset beyond file size",
			err: &OutOfBoundsError{
				Path:   "test.mov",
				Offset: 1000,
				Length: 4,
				Size:   500,
				What:   "ftyp atom",
			},
			contains: []string{"test.mov", "offset 1000 out of bounds", "file size: 500", "ftyp atom"},
		},
		{
			name: "read would exceed file size",
			err: &OutOfBoundsError{
				Path:   "clip.mp4",
				Offset: 100,
				Length: 50,
				Size:   120,
				What:   "atom header",
			},
			contains: []string{"clip.mp4", "read of 50 bytes", "offset 100", "exceed file size 120", "atom header"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(msg, substr) {
					t.Errorf("error message %q should contain %q", msg, substr)
				}
			}
		})
	}
}

func TestUnsupportedFormatError_Error(t *testing.T) {
	err := &UnsupportedFormatError{
		Path:   "test.mp3",
		Reason: "unable to determine file format",
	}

	msg := err.Error()
	if !strings.Contains(msg, "test.mp3") {
		t.Errorf("error should contain path, got: %s", msg)
	}
	if !strings.Contains(msg, "unable to determine file format") {
		t.Errorf("error should contain reason, got: %s", msg)
	}
	if !strings.Contains(msg, "unsupported format") {
		t.Errorf("error should contain 'unsupported format', got: %s", msg)
	}
}

func TestCorruptedFileError_Error(t *testing.T) {
	err := &CorruptedFileError{
		Path:   "broken.mov",
		Offset: 256,
		Reason: "invalid atom size",
	}

	msg := err.Error()
	if !strings.Contains(msg, "broken.mov") {
		t.Errorf("error should contain path, got: %s", msg)
	}
	if !strings.Contains(msg, "offset 256") {
		t.Errorf("error should contain offset, got: %s", msg)
	}
	if !strings.Contains(msg, "invalid atom size") {
		t.Errorf("error should contain reason, got: %s", msg)
	}
	if !strings.Contains(msg, "corrupted file") {
		t.Errorf("error should contain 'corrupted file', got: %s", msg)
	}
}

func TestRemoteFileError_Error(t *testing.T) {
	err := &RemoteFileError{URL: "http://example.com/a.flv"}
	if msg := err.Error(); !strings.Contains(msg, "http://example.com/a.flv") || !strings.Contains(msg, "remote") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"http://example.com/a.mp3", true},
		{"ftp://host/b.mov", true},
		{"file:///tmp/c.flv", true},
		{"/tmp/song.mp3", false},
		{"relative/clip.mp4", false},
		{"weird:name.mp3", false},
	}
	for _, tt := range tests {
		if got := isRemote(tt.path); got != tt.want {
			t.Errorf("isRemote(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
