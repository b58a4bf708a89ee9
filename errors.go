package mediameta

import (
	"errors"

	"github.com/simonhull/mediameta/internal/types"
)

// OutOfBoundsError is returned when a read would leave the file.
type OutOfBoundsError = types.OutOfBoundsError

// UnsupportedFormatError is returned when no container walker recognizes
// the file.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is returned when a mandatory structure is invalid.
type CorruptedFileError = types.CorruptedFileError

// RemoteFileError is returned for URLs; only local files are analyzed.
type RemoteFileError = types.RemoteFileError

// Warning is a non-fatal issue recorded during analysis.
type Warning = types.Warning

// ErrStrictParsing is wrapped by the error returned when WithStrictParsing
// is set and the analysis produced a warning.
var ErrStrictParsing = errors.New("strict parsing failed")
