// Package mp3 analyzes MPEG audio files: an optional ID3v2 tag at the
// start, the MPEG frame stream and an optional ID3v1 tag at the end.
package mp3

import (
	"context"
	"errors"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/id3v1"
	"github.com/simonhull/mediameta/internal/id3v2"
	"github.com/simonhull/mediameta/internal/mpeg"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

// parser implements registry.FormatParser
type parser struct{}

// Parse walks the tags and the first frame. Only a missing frame sync and
// cancellation are fatal.
func (p *parser) Parse(ctx context.Context, sr *binary.SafeReader, info *types.Info, opts registry.Options) error {
	log := opts.Log()
	info.FileFormat = types.FormatMP3.String()
	info.MIMEType = types.FormatMP3.MIMEType()

	// The audio starts after the ID3v2 tag whether or not it is walked.
	start := int64(0)
	if opts.ParseID3v2 {
		end, err := id3v2.Parse(ctx, sr, 0, info, opts)
		if err != nil {
			return err
		}
		start = end
	} else if h, ok := id3v2.ReadHeader(sr, 0); ok {
		start = h.Length()
		log.Debug("id3v2 tag skipped", "length", start)
	}
	if start > sr.Size() {
		info.Warn("mp3", start, "ID3v2 tag extends past the end of the file")
		start = sr.Size()
	}
	info.AVDataOffset = start

	if opts.ParseID3v1 {
		id3v1.Parse(sr, info, opts)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err := mpeg.Analyze(ctx, sr, info, opts)
	switch {
	case err == nil:
	case errors.Is(err, mpeg.ErrNoSync):
		return &types.CorruptedFileError{
			Path:   sr.Path(),
			Reason: err.Error(),
			Offset: start,
		}
	case ctx.Err() != nil:
		return err
	default:
		info.Warn("mpeg", start, "failed to read MPEG audio: %v", err)
	}
	return nil
}

func init() {
	registry.Register(types.FormatMP3, &parser{})
}
