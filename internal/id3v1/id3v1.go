// Package id3v1 reads the fixed 128-byte ID3v1/ID3v1.1 tag at the end of
// MPEG audio files.
package id3v1

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

// TagSize is the size of an ID3v1 tag.
const TagSize = 128

const stage = "id3v1"

// Parse reads the ID3v1 tag, if any, into info and shrinks the audio data
// range to exclude it. It reports whether a tag was found.
func Parse(sr *binary.SafeReader, info *types.Info, opts registry.Options) bool {
	size := sr.Size()
	if size < TagSize {
		return false
	}
	offset := size - TagSize

	buf, err := sr.Bytes(offset, TagSize, "ID3v1 tag")
	if err != nil || string(buf[0:3]) != "TAG" {
		return false
	}

	dec := decoder(opts.ID3v1Encoding, info)
	tag := &types.ID3v1{
		Title:    field(dec, buf[3:33]),
		Artist:   field(dec, buf[33:63]),
		Album:    field(dec, buf[63:93]),
		Year:     field(dec, buf[93:97]),
		GenreID:  int(buf[127]),
		Version:  "1.0",
		Offset:   offset,
		Comments: types.Comments{},
	}

	comment := buf[97:127]
	// ID3v1.1 stores the track number in the last comment byte behind a NUL.
	if comment[28] == 0 && comment[29] != 0 {
		tag.Track = int(comment[29])
		tag.Version = "1.1"
		comment = comment[:28]
	}
	tag.Comment = field(dec, comment)
	tag.Genre = GenreName(tag.GenreID)

	c := tag.Comments
	c.Add("title", tag.Title)
	c.Add("artist", tag.Artist)
	c.Add("album", tag.Album)
	c.Add("year", tag.Year)
	c.Add("comment", tag.Comment)
	if tag.Track > 0 {
		c.Add("track_number", strconv.Itoa(tag.Track))
	}
	c.Add("genre", tag.Genre)

	info.ID3v1 = tag
	if info.AVDataEnd > offset {
		info.AVDataEnd = offset
	}
	opts.Log().Debug("id3v1 tag found", "version", tag.Version, "offset", offset)
	return true
}

func decoder(name string, info *types.Info) *encoding.Decoder {
	if name == "" {
		return charmap.ISO8859_1.NewDecoder()
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		info.Warn(stage, 0, "unknown ID3v1 encoding %q, using ISO-8859-1", name)
		return charmap.ISO8859_1.NewDecoder()
	}
	return enc.NewDecoder()
}

// field decodes a fixed-width, NUL or space padded text field.
func field(dec *encoding.Decoder, b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	out, err := dec.Bytes(b)
	if err != nil {
		out = b
	}
	return strings.TrimSpace(string(out))
}
