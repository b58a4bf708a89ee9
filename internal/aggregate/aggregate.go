// Package aggregate turns the raw per-format trees left by the container
// walkers into the unified top-level record.
//
// Walkers fill the audio and video sections from stream headers. Apply then
// lets container metadata override them, merges the tag comments and
// derives the values no single walker can compute on its own.
package aggregate

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/simonhull/mediameta/internal/types"
)

const stage = "aggregate"

// id3v1FieldLength is the width of the ID3v1 text fields. A value of this
// length that prefixes a longer tag value was cut off by the format.
const id3v1FieldLength = 30

// Apply runs every aggregation step on info.
func Apply(info *types.Info) {
	mergeComments(info)
	quickTime(info)
	flvMeta(info)
	derive(info)
}

// source is one tag tree in merge priority order.
type source struct {
	name     string
	comments types.Comments
}

func sources(info *types.Info) []source {
	var out []source
	if qt := info.QuickTime; qt != nil && len(qt.Comments) > 0 {
		out = append(out, source{"quicktime", qt.Comments})
	}
	if tag := info.ID3v2; tag != nil {
		out = append(out, source{"id3v2", tag.Comments})
	}
	if tag := info.ID3v1; tag != nil {
		out = append(out, source{"id3v1", tag.Comments})
	}
	return out
}

// mergeComments folds every tag's comments into info.Comments, higher
// priority tags first.
func mergeComments(info *types.Info) {
	srcs := sources(info)
	if len(srcs) == 0 {
		return
	}
	if info.Comments == nil {
		info.Comments = types.Comments{}
	}
	for _, src := range srcs {
		info.Tags = append(info.Tags, src.name)
		for key, values := range src.comments {
			for _, v := range values {
				if src.name == "id3v1" && truncated(info.Comments[key], v) {
					continue
				}
				info.Comments.Add(key, v)
			}
		}
	}
}

// truncated reports whether v looks like a fixed-width cut of one of the
// existing values.
func truncated(existing []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || utf8.RuneCountInString(v) > id3v1FieldLength {
		return false
	}
	for _, e := range existing {
		if len(e) > len(v) && strings.HasPrefix(strings.ToLower(e), strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// quickTime applies the movie and track headers over the sample
// description values.
func quickTime(info *types.Info) {
	qt := info.QuickTime
	if qt == nil {
		return
	}
	if mh := qt.MovieHeader; mh != nil && mh.TimeScale > 0 && mh.Duration > 0 {
		info.PlaytimeSeconds = float64(mh.Duration) / float64(mh.TimeScale)
	}
	if info.Video == nil {
		return
	}
	for _, t := range qt.Tracks {
		if t.Handler != "vide" {
			continue
		}
		if t.Width > 0 && t.Height > 0 {
			info.Video.ResolutionX = int(math.Round(t.Width))
			info.Video.ResolutionY = int(math.Round(t.Height))
		}
		break
	}
}

// flvMeta applies onMetaData values over the tag header values.
func flvMeta(info *types.Info) {
	if info.FLV == nil || len(info.FLV.Meta) == 0 {
		return
	}
	meta := info.FLV.Meta

	if d, ok := number(meta, "duration"); ok && d > 0 {
		info.PlaytimeSeconds = d
	}
	if info.Video != nil {
		if w, ok := number(meta, "width"); ok && w > 0 {
			info.Video.ResolutionX = int(w)
		}
		if h, ok := number(meta, "height"); ok && h > 0 {
			info.Video.ResolutionY = int(h)
		}
		if fr, ok := number(meta, "framerate"); ok && fr > 0 {
			info.Video.FrameRate = fr
		}
		if kbps, ok := number(meta, "videodatarate"); ok && kbps > 0 {
			info.Video.Bitrate = kbps * 1000
		}
	}
	if info.Audio != nil {
		if kbps, ok := number(meta, "audiodatarate"); ok && kbps > 0 {
			info.Audio.Bitrate = kbps * 1000
		}
		if sr, ok := number(meta, "audiosamplerate"); ok && sr > 0 {
			info.Audio.SampleRate = int(sr)
		}
	}
}

// number reads a numeric onMetaData value. Some muxers write numbers as
// booleans or strings; those are ignored.
func number(meta map[string]any, key string) (float64, bool) {
	f, ok := meta[key].(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// derive fills bitrate, play time and the ratios from whatever the walkers
// and the precedence steps left behind.
func derive(info *types.Info) {
	var streamBitrate float64
	if info.Audio != nil {
		streamBitrate += info.Audio.Bitrate
	}
	if info.Video != nil {
		streamBitrate += info.Video.Bitrate
	}
	if info.Bitrate == 0 && streamBitrate > 0 {
		info.Bitrate = streamBitrate
	}

	length := info.AVDataLength()
	switch {
	case info.PlaytimeSeconds == 0 && info.Bitrate > 0 && length > 0:
		info.PlaytimeSeconds = float64(length) * 8 / info.Bitrate
	case info.Bitrate == 0 && info.PlaytimeSeconds > 0 && length > 0:
		info.Bitrate = float64(length) * 8 / info.PlaytimeSeconds
	}
	if info.PlaytimeSeconds < 0 || math.IsNaN(info.PlaytimeSeconds) {
		info.Warn(stage, 0, "discarding invalid play time %v", info.PlaytimeSeconds)
		info.PlaytimeSeconds = 0
	}
	if info.PlaytimeSeconds > 0 {
		info.PlaytimeString = PlaytimeString(info.PlaytimeSeconds)
	}

	if a := info.Audio; a != nil {
		if a.ChannelMode == "" {
			switch a.Channels {
			case 1:
				a.ChannelMode = "mono"
			case 2:
				a.ChannelMode = "stereo"
			}
		}
		if a.Bitrate == 0 && info.Video == nil && info.Bitrate > 0 {
			a.Bitrate = info.Bitrate
		}
		a.CompressionRatio = audioRatio(a)
	}
	if v := info.Video; v != nil {
		if v.Bitrate == 0 && info.Audio != nil && info.Audio.Bitrate > 0 && info.Bitrate > info.Audio.Bitrate {
			v.Bitrate = info.Bitrate - info.Audio.Bitrate
		}
		v.CompressionRatio = videoRatio(v)
	}
}

// audioRatio is the stream bitrate over the PCM bitrate of the same
// layout, assuming 16-bit samples when the depth is unknown.
func audioRatio(a *types.AudioInfo) float64 {
	bits := a.BitsPerSample
	if bits == 0 {
		bits = 16
	}
	pcm := float64(a.SampleRate) * float64(a.Channels) * float64(bits)
	if pcm == 0 || a.Bitrate == 0 {
		return 0
	}
	return a.Bitrate / pcm
}

// videoRatio is the stream bitrate over 24-bit RGB at the same size and
// rate.
func videoRatio(v *types.VideoInfo) float64 {
	bits := v.BitsPerSample
	if bits == 0 {
		bits = 24
	}
	raw := float64(v.ResolutionX) * float64(v.ResolutionY) * float64(bits) * v.FrameRate
	if raw == 0 || v.Bitrate == 0 {
		return 0
	}
	return v.Bitrate / raw
}

// PlaytimeString formats seconds as m:ss, or h:mm:ss from one hour up.
func PlaytimeString(seconds float64) string {
	total := int64(math.Round(seconds))
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
