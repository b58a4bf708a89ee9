// Package id3v2 walks ID3v2.2, ID3v2.3 and ID3v2.4 tags: the tag header,
// the extended header, every frame and the padding that follows them.
// Decoded values land in the tag's comment map under the same keys for
// every version.
package id3v2

import (
	"bytes"
	"cmp"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

const stage = "id3v2"

// HeaderSize is the size of the tag header and of the optional footer.
const HeaderSize = 10

// Tag header flags.
const (
	flagUnsync       = 0x80
	flagExtended     = 0x40 // compression in v2.2
	flagExperimental = 0x20
	flagFooter       = 0x10
)

// maxDecompressed caps the inflated size of a single compressed frame.
const maxDecompressed = 64 << 20

// Header is the fixed 10-byte tag header.
type Header struct {
	Major byte
	Minor byte
	Flags byte
	// Size excludes the header and footer.
	Size uint32
	// Synchsafe is false when a size byte had its high bit set.
	Synchsafe bool
}

// Length returns the total tag length including header and footer.
func (h Header) Length() int64 {
	n := int64(h.Size) + HeaderSize
	if h.Major == 4 && h.Flags&flagFooter != 0 {
		n += HeaderSize
	}
	return n
}

// ReadHeader decodes the tag header at off. ok is false when there is no
// "ID3" signature.
func ReadHeader(sr *binary.SafeReader, off int64) (h Header, ok bool) {
	buf, err := sr.Bytes(off, HeaderSize, "ID3v2 header")
	if err != nil || string(buf[0:3]) != "ID3" {
		return Header{}, false
	}
	return Header{
		Major:     buf[3],
		Minor:     buf[4],
		Flags:     buf[5],
		Size:      binary.Synchsafe(buf[6:10]),
		Synchsafe: binary.IsSynchsafe(buf[6:10]),
	}, true
}

// walker carries state for one tag.
type walker struct {
	info     *types.Info
	opts     registry.Options
	tag      *types.ID3v2
	major    byte
	chapters []types.Chapter
}

// frame is a frame after flag processing.
type frame struct {
	id     string // as stored
	norm   string // v2.3/v2.4 id
	offset int64  // file offset of the frame data
	size   int
	flags  uint16
	data   []byte
}

// Parse walks the tag at start and returns the offset just past it, or
// start when there is no tag. Only context cancellation is returned as an
// error; every other problem becomes a warning on info.
func Parse(ctx context.Context, sr *binary.SafeReader, start int64, info *types.Info, opts registry.Options) (int64, error) {
	h, ok := ReadHeader(sr, start)
	if !ok {
		return start, nil
	}
	end := start + h.Length()

	tag := &types.ID3v2{
		MajorVersion: int(h.Major),
		MinorVersion: int(h.Minor),
		Flags: types.ID3v2Flags{
			Unsynchronisation: h.Flags&flagUnsync != 0,
			ExtendedHeader:    h.Major >= 3 && h.Flags&flagExtended != 0,
			Experimental:      h.Major >= 3 && h.Flags&flagExperimental != 0,
			Footer:            h.Major == 4 && h.Flags&flagFooter != 0,
			Compression:       h.Major == 2 && h.Flags&flagExtended != 0,
		},
		HeaderLength:   h.Length(),
		TagOffsetStart: start,
		TagOffsetEnd:   end,
		Comments:       types.Comments{},
	}
	info.ID3v2 = tag

	w := &walker{info: info, opts: opts, tag: tag, major: h.Major}
	log := opts.Log()

	if !h.Synchsafe {
		w.warn(start+6, "tag size is not synch-safe")
	}
	if h.Major < 2 || h.Major > 4 {
		w.warn(start, "ID3v2.%d.%d is not supported, tag skipped", h.Major, h.Minor)
		return end, nil
	}
	if tag.Flags.Compression {
		w.warn(start, "ID3v2.2 tag compression is not supported, tag skipped")
		return end, nil
	}

	bodyOff := start + HeaderSize
	avail := sr.Available(bodyOff, int64(h.Size))
	if avail < int64(h.Size) {
		w.warn(bodyOff, "tag claims %d bytes but only %d remain in the file", h.Size, avail)
	}
	body, err := sr.Bytes(bodyOff, int(avail), "ID3v2 tag body")
	if err != nil {
		w.warn(bodyOff, "cannot read tag body: %v", err)
		return end, nil
	}
	if tag.Flags.Unsynchronisation && h.Major <= 3 {
		body = removeUnsync(body)
	}

	pos := 0
	if tag.Flags.ExtendedHeader {
		pos = w.extendedHeader(body, bodyOff)
		if pos < 0 {
			return end, nil
		}
	}

	frames, err := w.splitFrames(ctx, body[pos:], bodyOff+int64(pos), true)
	for _, f := range frames {
		tag.Frames = append(tag.Frames, w.decode(ctx, f))
	}
	if err != nil {
		return end, err
	}

	if len(w.chapters) > 0 {
		slices.SortStableFunc(w.chapters, func(a, b types.Chapter) int {
			return cmp.Compare(a.StartTime, b.StartTime)
		})
		for i := range w.chapters {
			w.chapters[i].Index = i + 1
		}
		info.Chapters = append(info.Chapters, w.chapters...)
	}

	log.Debug("id3v2 tag parsed",
		"version", fmt.Sprintf("2.%d.%d", h.Major, h.Minor),
		"length", tag.HeaderLength,
		"frames", len(tag.Frames))
	return end, nil
}

func (w *walker) warn(off int64, format string, args ...any) {
	w.info.Warn(stage, off, format, args...)
}

// extendedHeader records the extended header and returns the number of
// bytes it occupies, or -1 when it is unusable.
func (w *walker) extendedHeader(body []byte, off int64) int {
	if len(body) < 6 {
		w.warn(off, "extended header truncated")
		return -1
	}
	ext := &types.ID3v2ExtendedHeader{}
	var skip int

	if w.major == 3 {
		// Size excludes its own four bytes.
		size := int(binary.BigEndianUint(body[0:4]))
		skip = 4 + size
		if (size != 6 && size != 10) || skip > len(body) {
			w.warn(off, "invalid extended header size %d", size)
			return -1
		}
		flags := binary.BigEndianUint(body[4:6])
		ext.PaddingSize = uint32(binary.BigEndianUint(body[6:10]))
		ext.CRCPresent = flags&0x8000 != 0
		if ext.CRCPresent && size == 10 {
			ext.CRC = uint32(binary.BigEndianUint(body[10:14]))
		}
	} else {
		skip = int(binary.Synchsafe(body[0:4]))
		if skip < 6 || skip > len(body) {
			w.warn(off, "invalid extended header size %d", skip)
			return -1
		}
		c := binary.NewCursor(body[5:skip])
		flags := c.Uint8()
		if flags&0x40 != 0 {
			ext.Update = true
			c.Skip(1)
		}
		if flags&0x20 != 0 {
			ext.CRCPresent = true
			c.Skip(1)
			ext.CRC = binary.Synchsafe(c.Bytes(5))
		}
		if flags&0x10 != 0 {
			c.Skip(1)
			ext.Restrictions = c.Uint8()
		}
		if c.Short() {
			w.warn(off, "extended header flag data truncated")
		}
	}

	ext.Length = skip
	w.tag.ExtendedHeader = ext
	return skip
}

// splitFrames cuts body into frames. At the top level the bytes after the
// last frame are recorded as padding.
func (w *walker) splitFrames(ctx context.Context, body []byte, base int64, top bool) ([]frame, error) {
	hdr, idLen := 10, 4
	if w.major == 2 {
		hdr, idLen = 6, 3
	}

	var frames []frame
	pos := 0
	for pos < len(body) {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		if body[pos] == 0 || pos+hdr > len(body) || !validFrameID(body[pos:pos+idLen]) {
			if top {
				w.padding(body[pos:], base+int64(pos))
			}
			break
		}

		id := string(body[pos : pos+idLen])
		var size int
		var flags uint16
		switch w.major {
		case 2:
			size = int(binary.BigEndianUint(body[pos+3 : pos+6]))
		case 3:
			size = int(binary.BigEndianUint(body[pos+4 : pos+8]))
			flags = uint16(binary.BigEndianUint(body[pos+8 : pos+10]))
		default:
			size = v24FrameSize(body, pos)
			flags = uint16(binary.BigEndianUint(body[pos+8 : pos+10]))
		}

		dataStart := pos + hdr
		if size == 0 {
			w.warn(base+int64(pos), "frame %s has zero length", id)
			pos = dataStart
			continue
		}
		if dataStart+size > len(body) {
			w.warn(base+int64(pos), "frame %s (%d bytes) runs past the end of the tag", id, size)
			break
		}

		f := frame{
			id:     id,
			norm:   normalizeID(id),
			offset: base + int64(dataStart),
			size:   size,
			flags:  flags,
		}
		pos = dataStart + size

		data, ok := w.unpack(f, body[dataStart:pos])
		if !ok {
			continue
		}
		f.data = data
		frames = append(frames, f)
	}
	return frames, nil
}

// v24FrameSize reads a v2.4 frame size. Some writers store plain big-endian
// sizes in v2.4 tags; when the synch-safe reading does not land on another
// frame or padding and the big-endian one does, the latter wins.
func v24FrameSize(body []byte, pos int) int {
	raw := body[pos+4 : pos+8]
	be := int(binary.BigEndianUint(raw))
	if !binary.IsSynchsafe(raw) {
		return be
	}
	ss := int(binary.Synchsafe(raw))
	if ss == be || frameBoundary(body, pos+10+ss) {
		return ss
	}
	if frameBoundary(body, pos+10+be) {
		return be
	}
	return ss
}

func frameBoundary(body []byte, p int) bool {
	switch {
	case p == len(body):
		return true
	case p > len(body):
		return false
	case body[p] == 0:
		return true
	default:
		return p+4 <= len(body) && validFrameID(body[p:p+4])
	}
}

func (w *walker) padding(pad []byte, off int64) {
	w.tag.PaddingStart = off
	w.tag.PaddingLength = int64(len(pad))
	w.tag.PaddingValid = true
	for i, b := range pad {
		if b != 0 {
			w.tag.PaddingValid = false
			w.warn(off+int64(i), "padding contains non-zero byte 0x%02X", b)
			return
		}
	}
}

// unpack strips the per-frame flag data and undoes unsynchronisation and
// compression.
func (w *walker) unpack(f frame, data []byte) ([]byte, bool) {
	var compressed bool
	need := func(n int, what string) bool {
		if len(data) < n {
			w.warn(f.offset, "frame %s: %s truncated", f.id, what)
			return false
		}
		return true
	}

	switch w.major {
	case 3:
		if f.flags&0x0080 != 0 {
			if !need(4, "decompressed size") {
				return nil, false
			}
			data = data[4:]
			compressed = true
		}
		if f.flags&0x0040 != 0 {
			w.warn(f.offset, "frame %s is encrypted, skipped", f.id)
			return nil, false
		}
		if f.flags&0x0020 != 0 {
			if !need(1, "group id") {
				return nil, false
			}
			data = data[1:]
		}
	case 4:
		if f.flags&0x0040 != 0 {
			if !need(1, "group id") {
				return nil, false
			}
			data = data[1:]
		}
		if f.flags&0x0004 != 0 {
			w.warn(f.offset, "frame %s is encrypted, skipped", f.id)
			return nil, false
		}
		if f.flags&0x0001 != 0 {
			if !need(4, "data length indicator") {
				return nil, false
			}
			data = data[4:]
		}
		if f.flags&0x0002 != 0 {
			data = removeUnsync(data)
		}
		compressed = f.flags&0x0008 != 0
	}

	if compressed {
		out, err := inflate(data)
		if err != nil {
			w.warn(f.offset, "frame %s: cannot decompress: %v", f.id, err)
			return nil, false
		}
		data = out
	}
	return data, true
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(io.LimitReader(zr, maxDecompressed))
}

// removeUnsync reverses unsynchronisation: every 0xFF 0x00 pair becomes 0xFF.
func removeUnsync(b []byte) []byte {
	if bytes.Index(b, []byte{0xFF, 0x00}) < 0 {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}
