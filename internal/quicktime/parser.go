package quicktime

import (
	"context"
	"strings"
	"time"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

// parser implements registry.FormatParser for QuickTime and MP4.
type parser struct{}

// Parse walks the atom tree from the start of the file. A zero time scale
// in mvhd or mdhd and cancellation are fatal; everything else is a
// warning.
func (p *parser) Parse(ctx context.Context, sr *binary.SafeReader, info *types.Info, opts registry.Options) error {
	raw := &types.QuickTime{Comments: types.Comments{}}
	info.QuickTime = raw

	w := &walker{
		ctx:  ctx,
		sr:   sr,
		info: info,
		opts: opts,
		log:  opts.Log(),
		raw:  raw,
	}
	atoms, err := w.walk(0, sr.Size(), "", 0)
	raw.Atoms = atoms
	w.fileFormat()
	if err != nil {
		return err
	}

	w.streams()
	w.chapters()

	w.log.Debug("quicktime atoms walked",
		"format", info.FileFormat,
		"atoms", len(atoms),
		"tracks", len(raw.Tracks))
	return nil
}

// fileFormat tells QuickTime from ISO media by the ftyp major brand.
func (w *walker) fileFormat() {
	ft := w.raw.FileType
	if ft != nil && ft.MajorBrand != "qt  " {
		w.info.Format = types.FormatMP4
	} else {
		w.info.Format = types.FormatQuickTime
	}
	w.info.FileFormat = w.info.Format.String()
	w.info.MIMEType = w.info.Format.MIMEType()
}

// streams fills the audio and video sections from the first sound and
// video tracks, and the play time from the longest track.
func (w *walker) streams() {
	hasVideo := false
	for _, t := range w.raw.Tracks {
		if t.TimeScale > 0 {
			if secs := float64(t.MediaDuration) / float64(t.TimeScale); secs > w.info.PlaytimeSeconds {
				w.info.PlaytimeSeconds = secs
			}
		}
		if len(t.SampleEntries) == 0 {
			continue
		}
		e := t.SampleEntries[0]
		switch t.Handler {
		case "soun":
			if w.info.Audio == nil {
				w.audio(e)
			}
		case "vide":
			hasVideo = true
			if w.info.Video == nil {
				w.video(t, e)
			}
		}
	}
	if w.info.Format == types.FormatMP4 && !hasVideo {
		w.info.MIMEType = "audio/mp4"
	}
}

func (w *walker) audio(e types.SampleEntry) {
	a := w.info.EnsureAudio()
	switch e.Format {
	case "mp4a":
		a.DataFormat = "aac"
	default:
		a.DataFormat = strings.ToLower(strings.TrimSpace(e.Format))
	}
	a.Codec = audioCodecName(e)
	a.SampleRate = int(e.SampleRate)
	a.Channels = e.Channels
	a.BitsPerSample = e.BitsPerSample
	a.Lossless = losslessAudio[e.Format]
	if e.AvgBitrate > 0 {
		a.Bitrate = float64(e.AvgBitrate)
		a.BitrateMode = "cbr"
		if e.MaxBitrate > e.AvgBitrate {
			a.BitrateMode = "vbr"
		}
	}
}

func (w *walker) video(t *types.Track, e types.SampleEntry) {
	v := w.info.EnsureVideo()
	v.DataFormat = strings.TrimSpace(e.Format)
	v.Codec = videoCodecName(e.Format)
	v.ResolutionX = e.Width
	v.ResolutionY = e.Height
	v.BitsPerSample = e.Depth
	v.Rotate = t.Rotation
	v.Lossless = losslessVideo[e.Format]
	if t.TimeScale > 0 && t.MediaDuration > 0 && t.SampleCount > 0 {
		v.FrameRate = float64(t.SampleCount) * float64(t.TimeScale) / float64(t.MediaDuration)
	}
}

// chapters prefers a QuickTime chapter text track over Nero chpl.
func (w *walker) chapters() {
	chapters := w.textChapters()
	if len(chapters) == 0 {
		chapters = w.chpl
	}
	if len(chapters) == 0 {
		return
	}

	total := time.Duration(w.info.PlaytimeSeconds * float64(time.Second))
	if mh := w.raw.MovieHeader; mh != nil {
		total = scaled(mh.Duration, mh.TimeScale)
	}
	closeChapters(chapters, total)
	w.info.Chapters = append(w.info.Chapters, chapters...)
}

func init() {
	p := &parser{}
	registry.Register(types.FormatQuickTime, p)
	registry.Register(types.FormatMP4, p)
}
