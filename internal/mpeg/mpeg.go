package mpeg

import (
	"context"
	"errors"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

const stage = "mpeg"

// ErrNoSync is returned when no valid frame is found in the audio range.
var ErrNoSync = errors.New("cannot find MPEG audio frame")

// scanChunk is how much of the file is searched per read.
const scanChunk = 64 << 10

// maxFrame bounds the bytes read for the first frame (layer I at 448 kbps
// and 32 kHz is the largest).
const maxFrame = 2048

// Analyze finds the first confirmed frame at or after info.AVDataOffset,
// records it in info.MPEG and fills the audio section, play time and
// bitrate.
func Analyze(ctx context.Context, sr *binary.SafeReader, info *types.Info, opts registry.Options) error {
	h, offset, err := findFrame(ctx, sr, info.AVDataOffset, info.AVDataEnd)
	if err != nil {
		return err
	}
	if offset > info.AVDataOffset {
		info.Warn(stage, info.AVDataOffset, "%d bytes of junk before the first frame", offset-info.AVDataOffset)
	}
	info.AVDataOffset = offset

	n := sr.Available(offset, maxFrame)
	frame, err := sr.Bytes(offset, int(n), "first MPEG frame")
	if err != nil {
		return err
	}
	vbr, lame := readVBR(h, frame, offset)

	raw := &types.MPEGAudio{
		Version:       h.Version,
		Layer:         h.Layer,
		Bitrate:       h.Bitrate,
		SampleRate:    h.SampleRate,
		ChannelMode:   h.ChannelMode,
		ModeExtension: h.ModeExtension,
		Channels:      h.Channels(),
		Padding:       h.Padding,
		Protection:    h.Protection,
		Private:       h.Private,
		Copyright:     h.Copyright,
		Original:      h.Original,
		Emphasis:      h.Emphasis,
		FrameLength:   h.FrameLength,
		FrameOffset:   offset,
		BitrateMode:   bitrateMode(vbr, lame),
		VBR:           vbr,
		LAME:          lame,
	}
	info.MPEG = raw

	audio := info.EnsureAudio()
	audio.DataFormat = h.DataFormat()
	audio.Codec = "MPEG-" + h.Version + " Layer " + [4]string{"", "I", "II", "III"}[h.Layer]
	audio.SampleRate = h.SampleRate
	audio.Channels = h.Channels()
	audio.ChannelMode = h.ChannelMode
	audio.BitrateMode = raw.BitrateMode
	audio.Lossless = false
	if lame != nil {
		audio.Encoder = lame.Encoder
	}

	length := info.AVDataLength()
	switch {
	case vbr != nil && vbr.Frames > 0:
		seconds := float64(vbr.Frames) * float64(h.SamplesPerFrame) / float64(h.SampleRate)
		info.PlaytimeSeconds = seconds
		size := float64(vbr.Bytes)
		if size == 0 {
			size = float64(length)
		}
		if seconds > 0 {
			audio.Bitrate = size * 8 / seconds
		}
	default:
		audio.Bitrate = float64(h.Bitrate)
		if h.Bitrate > 0 {
			info.PlaytimeSeconds = float64(length) * 8 / float64(h.Bitrate)
		}
	}
	info.Bitrate = audio.Bitrate

	opts.Log().Debug("mpeg audio frame found",
		"offset", offset,
		"version", h.Version,
		"layer", h.Layer,
		"bitrate_mode", raw.BitrateMode)
	return nil
}

// findFrame scans [start, end) for a frame header that is confirmed by a
// second header exactly one frame length later.
func findFrame(ctx context.Context, sr *binary.SafeReader, start, end int64) (Header, int64, error) {
	for chunk := start; chunk < end-3; chunk += scanChunk {
		if err := ctx.Err(); err != nil {
			return Header{}, 0, err
		}
		// Overlap by three bytes so a header split across chunks is seen.
		n := sr.Available(chunk, min(scanChunk+3, end-chunk))
		buf, err := sr.Bytes(chunk, int(n), "MPEG sync search")
		if err != nil {
			return Header{}, 0, err
		}
		for i := 0; i+4 <= len(buf); i++ {
			if buf[i] != 0xFF || buf[i+1]&0xE0 != 0xE0 {
				continue
			}
			h, ok := ParseHeader(buf[i : i+4])
			if !ok {
				continue
			}
			off := chunk + int64(i)
			if confirm(sr, h, off, end) {
				return h, off, nil
			}
		}
	}
	return Header{}, 0, ErrNoSync
}

// confirm checks for a matching header right after the candidate frame. A
// frame that ends exactly at the end of the audio data is accepted alone.
func confirm(sr *binary.SafeReader, h Header, off, end int64) bool {
	next := off + int64(h.FrameLength)
	if next == end {
		return true
	}
	if next+4 > end {
		return false
	}
	b, err := sr.Bytes(next, 4, "MPEG confirmation header")
	if err != nil {
		return false
	}
	h2, ok := ParseHeader(b)
	return ok && sameStream(h, h2)
}
