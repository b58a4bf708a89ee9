// Package registry maps detected container formats to their walkers.
package registry

import (
	"context"
	"io"
	"log/slog"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/types"
)

// Options carries the per-call settings every walker can consult.
type Options struct {
	Logger *slog.Logger

	// ParseID3v1 and ParseID3v2 toggle the tag walkers.
	ParseID3v1 bool
	ParseID3v2 bool

	// ID3v1Encoding names the code page of ID3v1 text (WHATWG label).
	ID3v1Encoding string

	// PictureData requests embedded image bytes; pictures larger than
	// MaxPictureBytes (when > 0) keep their metadata only.
	PictureData     bool
	MaxPictureBytes int
}

// DefaultOptions returns the settings used when the caller sets none.
func DefaultOptions() Options {
	return Options{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		ParseID3v1:    true,
		ParseID3v2:    true,
		ID3v1Encoding: "iso-8859-1",
	}
}

// Log returns a usable logger.
func (o Options) Log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// WantPicture reports whether an image of n bytes should be loaded.
func (o Options) WantPicture(n int) bool {
	return o.PictureData && (o.MaxPictureBytes <= 0 || n <= o.MaxPictureBytes)
}

// FormatParser is the interface all container walkers implement.
//
// Parse fills info in place. A returned error is fatal and is recorded on
// info by the caller; non-fatal issues go through info.Warn.
type FormatParser interface {
	Parse(ctx context.Context, sr *binary.SafeReader, info *types.Info, opts Options) error
}

// parsers maps formats to their parsers.
var parsers = make(map[types.Format]FormatParser)

// Register registers a parser for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, parser FormatParser) {
	parsers[format] = parser
}

// Get returns the parser for a given format.
// Returns nil if no parser is registered for the format.
func Get(format types.Format) FormatParser {
	return parsers[format]
}
