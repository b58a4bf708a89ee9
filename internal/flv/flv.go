// Package flv walks Flash Video files: the file header, then audio, video
// and script data tags.
package flv

import (
	"context"

	"github.com/simonhull/mediameta/internal/aac"
	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

const stage = "flv"

// Tag types.
const (
	tagAudio  = 8
	tagVideo  = 9
	tagScript = 18
)

const (
	headerSize    = 9
	tagHeaderSize = 11
	// maxScript bounds the bytes decoded from one script tag.
	maxScript = 1 << 20
	// videoProbe is how much of a video tag is read for its dimensions.
	videoProbe = 1024
)

const soundFormatAAC = 10

var soundFormats = map[int]string{
	0:  "Linear PCM, platform endian",
	1:  "ADPCM",
	2:  "mp3",
	3:  "Linear PCM, little endian",
	4:  "Nellymoser 16kHz mono",
	5:  "Nellymoser 8kHz mono",
	6:  "Nellymoser",
	7:  "G.711A-law logarithmic PCM",
	8:  "G.711 mu-law logarithmic PCM",
	10: "AAC",
	11: "Speex",
	14: "mp3 8kHz",
	15: "Device-specific sound",
}

var soundRates = [4]int{5512, 11025, 22050, 44100}

// parser implements registry.FormatParser
type parser struct{}

// Parse reads the header and every tag until the end of the file or the
// first truncated tag.
func (p *parser) Parse(ctx context.Context, sr *binary.SafeReader, info *types.Info, opts registry.Options) error {
	hdr, err := sr.Bytes(0, headerSize, "FLV header")
	if err != nil {
		return &types.CorruptedFileError{Path: sr.Path(), Reason: "FLV header is truncated"}
	}
	raw := &types.FLV{
		Header: types.FLVHeader{
			Signature:    string(hdr[0:3]),
			Version:      int(hdr[3]),
			HasAudio:     hdr[4]&0x04 != 0,
			HasVideo:     hdr[4]&0x01 != 0,
			HeaderLength: uint32(binary.BigEndianUint(hdr[5:9])),
		},
	}
	info.FLV = raw
	info.FileFormat = types.FormatFLV.String()
	info.MIMEType = types.FormatFLV.MIMEType()

	start := int64(raw.Header.HeaderLength)
	if start < headerSize {
		info.Warn(stage, 5, "header length %d is shorter than the header", start)
		start = headerSize
	}
	info.AVDataOffset = start

	w := &tagWalker{sr: sr, info: info, opts: opts, raw: raw}
	// Each tag is preceded by the size of the previous one.
	if err := w.walk(ctx, start+4); err != nil {
		return err
	}
	w.finish()

	opts.Log().Debug("flv tags walked",
		"audio", raw.TagCounts.Audio,
		"video", raw.TagCounts.Video,
		"script", raw.TagCounts.Script,
		"last_timestamp", raw.LastTimestamp)
	return nil
}

type tagWalker struct {
	sr   *binary.SafeReader
	info *types.Info
	opts registry.Options
	raw  *types.FLV

	// videoSized is set once a video tag yielded dimensions.
	videoSized bool
}

func (w *tagWalker) warn(off int64, format string, args ...any) {
	w.info.Warn(stage, off, format, args...)
}

func (w *tagWalker) walk(ctx context.Context, off int64) error {
	end := w.sr.Size()
	for n := 0; off+tagHeaderSize <= end; n++ {
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		h, err := w.sr.Bytes(off, tagHeaderSize, "FLV tag header")
		if err != nil {
			w.warn(off, "cannot read tag header: %v", err)
			return nil
		}
		kind := h[0] & 0x1F
		size := int64(binary.BigEndianUint(h[1:4]))
		ts := uint32(binary.BigEndianUint(h[4:7])) | uint32(h[7])<<24
		dataOff := off + tagHeaderSize

		if dataOff+size > end {
			w.warn(off, "tag at %d claims %d bytes but only %d remain", off, size, end-dataOff)
			return nil
		}

		switch kind {
		case tagAudio:
			w.raw.TagCounts.Audio++
			w.audio(dataOff, size)
		case tagVideo:
			w.raw.TagCounts.Video++
			w.video(dataOff, size)
		case tagScript:
			w.raw.TagCounts.Script++
			w.script(dataOff, size)
		default:
			w.warn(off, "unknown tag type %d", kind)
		}
		if kind == tagAudio || kind == tagVideo {
			w.raw.LastTimestamp = max(w.raw.LastTimestamp, ts)
		}

		off = dataOff + size + 4
	}
	return nil
}

// audio decodes the first audio tag, and an AAC sequence header when one
// follows.
func (w *tagWalker) audio(off, size int64) {
	if size < 1 {
		return
	}
	a := w.raw.Audio
	if a != nil && (a.SoundFormat != soundFormatAAC || a.AACObjectType != 0) {
		return
	}
	b, err := w.sr.Bytes(off, int(min(size, 64)), "FLV audio tag")
	if err != nil {
		return
	}

	if a == nil {
		flags := b[0]
		a = &types.FLVAudio{
			SoundFormat: int(flags >> 4),
			SampleRate:  soundRates[flags>>2&0x03],
			SampleSize:  8 << (flags >> 1 & 0x01),
			Channels:    1 + int(flags&0x01),
		}
		a.Codec = soundFormats[a.SoundFormat]
		switch a.SoundFormat {
		case 4:
			a.SampleRate = 16000
		case 5, 14:
			a.SampleRate = 8000
		case 11:
			a.SampleRate = 16000
		}
		w.raw.Audio = a
	}

	// AAC packet type 0 is the AudioSpecificConfig.
	if a.SoundFormat == soundFormatAAC && len(b) > 2 && b[1] == 0 {
		if cfg, ok := aac.ParseConfig(b[2:]); ok {
			a.AACObjectType = cfg.ObjectType
			a.Codec = aac.ObjectTypeName(cfg.ObjectType)
			if cfg.SampleRate > 0 {
				a.SampleRate = cfg.SampleRate
			}
			if cfg.Channels > 0 {
				a.Channels = cfg.Channels
			}
		}
	}
}

// video records the codec of the first video tag and the dimensions of
// the first tag that carries them.
func (w *tagWalker) video(off, size int64) {
	if size < 1 || w.videoSized {
		return
	}
	b, err := w.sr.Bytes(off, int(min(size, videoProbe)), "FLV video tag")
	if err != nil {
		return
	}
	codec := int(b[0] & 0x0F)
	if w.raw.Video == nil {
		w.raw.Video = &types.FLVVideo{CodecID: codec, Codec: videoCodecs[codec]}
	}
	v := w.raw.Video
	if codec != v.CodecID {
		return
	}

	var (
		width, height int
		ok            bool
	)
	body := b[1:]
	switch codec {
	case codecH263:
		width, height, ok = h263Size(body)
	case codecScreen, codecScreenV2:
		width, height, ok = screenSize(body)
	case codecVP6:
		if len(body) > 1 {
			width, height, ok = vp6Size(body[0], body[1:])
		}
	case codecVP6Alpha:
		if len(body) > 4 {
			width, height, ok = vp6Size(body[0], body[4:])
		}
	case codecAVC:
		// Packet type 0 is the decoder configuration record.
		if len(body) > 4 && body[0] == 0 {
			var p, l int
			if p, l, width, height, ok = avcConfig(body[4:]); ok {
				v.AVCProfile, v.AVCLevel = p, l
				ok = width > 0 && height > 0
			}
		}
	}
	if ok {
		v.Width, v.Height = width, height
		w.videoSized = true
	}
}

// script decodes onMetaData. Other script tags, such as cue points, are
// counted only.
func (w *tagWalker) script(off, size int64) {
	if w.raw.Meta != nil {
		return
	}
	b, err := w.sr.Bytes(off, int(min(size, maxScript)), "FLV script tag")
	if err != nil {
		return
	}
	r := newAMFReader(b)
	name, err := r.value(0)
	if err != nil {
		w.warn(off, "cannot decode script tag name: %v", err)
		return
	}
	if s, _ := name.(string); s != "onMetaData" {
		return
	}
	v, err := r.value(0)
	if err != nil {
		w.warn(off, "onMetaData: %v", err)
	}
	if m, ok := v.(map[string]any); ok {
		w.raw.Meta = m
	}
}

// finish fills the audio and video sections from the decoded tags.
func (w *tagWalker) finish() {
	raw, info := w.raw, w.info
	info.PlaytimeSeconds = float64(raw.LastTimestamp) / 1000

	if a := raw.Audio; a != nil {
		audio := info.EnsureAudio()
		audio.DataFormat = "flv"
		audio.Codec = a.Codec
		audio.SampleRate = a.SampleRate
		audio.Channels = a.Channels
		audio.BitsPerSample = a.SampleSize
		audio.Lossless = a.SoundFormat == 0 || a.SoundFormat == 3
	}
	if v := raw.Video; v != nil {
		video := info.EnsureVideo()
		video.DataFormat = "flv"
		video.Codec = v.Codec
		video.ResolutionX = v.Width
		video.ResolutionY = v.Height
		if info.PlaytimeSeconds > 0 {
			video.FrameRate = float64(raw.TagCounts.Video) / info.PlaytimeSeconds
		}
	}
}

func init() {
	registry.Register(types.FormatFLV, &parser{})
}
