package types

import (
	"io"

	"github.com/simonhull/mediameta/internal/binary"
)

// Format identifies the container family of a file.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatMP3 represents MPEG audio, optionally wrapped in ID3 tags.
	FormatMP3
	// FormatQuickTime represents Apple QuickTime movies.
	FormatQuickTime
	// FormatMP4 represents ISO base media files (MP4, M4A, M4V, 3GP).
	FormatMP4
	// FormatFLV represents Flash Video.
	FormatFLV
)

// String returns the fileformat name used in analysis results.
func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "mp3"
	case FormatQuickTime:
		return "quicktime"
	case FormatMP4:
		return "mp4"
	case FormatFLV:
		return "flv"
	default:
		return "unknown"
	}
}

// MIMEType returns the default MIME type for the format. Walkers may
// refine it (audio-only MP4 is audio/mp4).
func (f Format) MIMEType() string {
	switch f {
	case FormatMP3:
		return "audio/mpeg"
	case FormatQuickTime:
		return "video/quicktime"
	case FormatMP4:
		return "video/mp4"
	case FormatFLV:
		return "video/x-flv"
	default:
		return ""
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatMP3:
		return []string{".mp3", ".mp2", ".mpga"}
	case FormatQuickTime:
		return []string{".mov", ".qt"}
	case FormatMP4:
		return []string{".mp4", ".m4a", ".m4v", ".m4b", ".3gp"}
	case FormatFLV:
		return []string{".flv"}
	default:
		return nil
	}
}

// quickTimeLeaders are atoms that may open a QuickTime file that has no
// ftyp atom.
var quickTimeLeaders = map[string]bool{
	"moov": true,
	"mdat": true,
	"wide": true,
	"free": true,
	"skip": true,
	"pnot": true,
	"PICT": true,
}

// DetectFormat determines the container format by examining magic bytes.
//
// Detection is based on file signatures at the beginning of the file and
// does not validate the rest of the structure.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	sr := binary.NewSafeReader(r, size, path)

	n := sr.Available(0, 12)
	magic, err := sr.Bytes(0, int(n), "file magic bytes")
	if err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	// ID3v2 tag in front of MPEG audio
	if string(magic[:3]) == "ID3" {
		return FormatMP3, nil
	}

	if string(magic[:3]) == "FLV" {
		return FormatFLV, nil
	}

	if len(magic) >= 8 {
		switch atom := string(magic[4:8]); {
		case atom == "ftyp":
			if len(magic) >= 12 && string(magic[8:12]) == "qt  " {
				return FormatQuickTime, nil
			}
			return FormatMP4, nil
		case quickTimeLeaders[atom]:
			return FormatQuickTime, nil
		}
	}

	// MPEG audio frame sync without a leading tag
	if magic[0] == 0xFF && magic[1]&0xE0 == 0xE0 {
		return FormatMP3, nil
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unable to determine file format",
	}
}
