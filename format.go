package mediameta

import (
	"io"

	"github.com/simonhull/mediameta/internal/types"
)

// Format identifies the container family of a file.
type Format = types.Format

const (
	FormatUnknown   = types.FormatUnknown
	FormatMP3       = types.FormatMP3
	FormatQuickTime = types.FormatQuickTime
	FormatMP4       = types.FormatMP4
	FormatFLV       = types.FormatFLV
)

// DetectFormat determines the container format from the leading bytes.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}
