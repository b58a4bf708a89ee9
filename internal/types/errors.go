package types

import (
	"fmt"

	"github.com/simonhull/mediameta/internal/binary"
)

// OutOfBoundsError is returned when a read would leave the file.
type OutOfBoundsError = binary.OutOfBoundsError

// UnsupportedFormatError is returned when no container walker recognizes
// the file.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when a mandatory structure is invalid,
// such as a movie header with a zero time scale.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// RemoteFileError is returned for paths that name a URL rather than a
// local file.
type RemoteFileError struct {
	URL string
}

func (e *RemoteFileError) Error() string {
	return fmt.Sprintf("remote files are not supported: %s", e.URL)
}

// Warning represents a non-fatal issue encountered during parsing.
//
// Warnings indicate problems that don't prevent metadata extraction but
// may indicate corrupted or unusual data. Examples include:
//   - An atom whose size runs past its parent
//   - Non-zero bytes in ID3v2 padding
//   - A truncated FLV tag
//
// Warnings are collected in Info.Warnings during parsing.
type Warning struct {
	// Stage where the warning occurred
	Stage string `json:"stage"` // "id3v2", "id3v1", "mpeg", "quicktime", "flv", "aggregate"

	// Warning message
	Message string `json:"message"`

	// File offset where the issue occurred (0 if not applicable)
	Offset int64 `json:"offset,omitempty"`
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
