// Package types provides the analysis record produced for every file.
//
// Info mirrors the nested result of a media analysis: the file-level
// fields, the audio and video stream sections, merged comments and one raw
// tree per container or tag format that was walked. Errors and warnings
// travel on the record so a partial result is always available.
package types

import (
	"fmt"
	"strings"
)

// Info is the analysis record for one file.
type Info struct {
	FilenamePath    string  `json:"filenamepath"`
	Filename        string  `json:"filename"`
	FileSize        int64   `json:"filesize"`
	FileFormat      string  `json:"fileformat,omitempty"`
	MIMEType        string  `json:"mime_type,omitempty"`
	AVDataOffset    int64   `json:"avdataoffset"`
	AVDataEnd       int64   `json:"avdataend"`
	PlaytimeSeconds float64 `json:"playtime_seconds,omitempty"`
	PlaytimeString  string  `json:"playtime_string,omitempty"`
	Bitrate         float64 `json:"bitrate,omitempty"`

	Audio *AudioInfo `json:"audio,omitempty"`
	Video *VideoInfo `json:"video,omitempty"`

	// Tags lists the tag formats found, in merge priority order.
	Tags     []string  `json:"tags,omitempty"`
	Comments Comments  `json:"comments,omitempty"`
	Pictures []Picture `json:"pictures,omitempty"`
	Chapters []Chapter `json:"chapters,omitempty"`

	ID3v2     *ID3v2     `json:"id3v2,omitempty"`
	ID3v1     *ID3v1     `json:"id3v1,omitempty"`
	MPEG      *MPEGAudio `json:"mpeg,omitempty"`
	QuickTime *QuickTime `json:"quicktime,omitempty"`
	FLV       *FLV       `json:"flv,omitempty"`

	Errors   []string  `json:"error,omitempty"`
	Warnings []Warning `json:"warning,omitempty"`

	Format Format `json:"-"`
}

// NewInfo returns an empty record for the named file.
func NewInfo(path, name string, size int64) *Info {
	return &Info{
		FilenamePath: path,
		Filename:     name,
		FileSize:     size,
		AVDataEnd:    size,
	}
}

// Warn records a non-fatal issue.
func (i *Info) Warn(stage string, offset int64, format string, args ...any) {
	i.Warnings = append(i.Warnings, Warning{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	})
}

// Fail records a fatal condition.
func (i *Info) Fail(err error) {
	if err == nil {
		return
	}
	i.Errors = append(i.Errors, err.Error())
}

// Failed reports whether a fatal condition was recorded.
func (i *Info) Failed() bool {
	return len(i.Errors) > 0
}

// EnsureAudio returns the audio section, creating it if needed.
func (i *Info) EnsureAudio() *AudioInfo {
	if i.Audio == nil {
		i.Audio = &AudioInfo{}
	}
	return i.Audio
}

// EnsureVideo returns the video section, creating it if needed.
func (i *Info) EnsureVideo() *VideoInfo {
	if i.Video == nil {
		i.Video = &VideoInfo{}
	}
	return i.Video
}

// AVDataLength returns the size of the audio/video payload.
func (i *Info) AVDataLength() int64 {
	if i.AVDataEnd <= i.AVDataOffset {
		return 0
	}
	return i.AVDataEnd - i.AVDataOffset
}

// Comments maps lowercase tag keys to their values.
type Comments map[string][]string

// Add appends value under key unless an equal value (ignoring case) is
// already present. Empty values are ignored.
func (c Comments) Add(key, value string) {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	for _, v := range c[key] {
		if strings.EqualFold(v, value) {
			return
		}
	}
	c[key] = append(c[key], value)
}

// First returns the first value for key, or "".
func (c Comments) First(key string) string {
	if v := c[strings.ToLower(key)]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Has reports whether key holds at least one value.
func (c Comments) Has(key string) bool {
	return len(c[strings.ToLower(key)]) > 0
}
