package quicktime

import (
	"strings"

	"github.com/simonhull/mediameta/internal/aac"
	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/types"
)

// sampleTable keeps the tables needed to read samples of a text track.
type sampleTable struct {
	stts        []sttsEntry
	sizes       []uint32
	uniformSize uint32
	chunks      []int64
	stsc        []stscEntry
}

type sttsEntry struct {
	count, delta uint32
}

type stscEntry struct {
	firstChunk, samplesPerChunk uint32
}

// maxEntries bounds table lengths kept in memory.
const maxEntries = 1 << 20

func (w *walker) table() *sampleTable {
	if w.track == nil {
		return nil
	}
	if w.tables == nil {
		w.tables = map[*types.Track]*sampleTable{}
	}
	t := w.tables[w.track]
	if t == nil {
		t = &sampleTable{}
		w.tables[w.track] = t
	}
	return t
}

// sampleDescription decodes stsd entries according to the track handler.
func (w *walker) sampleDescription(h atomHeader, data []byte) error {
	if w.track == nil {
		return nil
	}
	c := binary.NewCursor(data)
	c.Skip(4)
	count := c.Uint32()
	base := h.dataOffset()

	for i := uint32(0); i < count; i++ {
		pos := c.Pos()
		size := int(c.Uint32())
		format := c.String(4)
		if c.Short() || size < 16 || pos+size > len(data) {
			w.warn(base+int64(pos), "stsd entry %d is truncated", i+1)
			break
		}
		entry := data[pos : pos+size]
		c.Seek(pos + size)

		e := types.SampleEntry{Format: format}
		switch w.track.Handler {
		case "soun":
			w.soundEntry(&e, entry, base+int64(pos))
		case "vide":
			w.videoEntry(&e, entry, base+int64(pos))
		}
		w.track.SampleEntries = append(w.track.SampleEntries, e)
	}
	return nil
}

// soundEntry decodes a sound sample description in the version 0, 1 or 2
// layout and its esds/alac extensions.
func (w *walker) soundEntry(e *types.SampleEntry, b []byte, off int64) {
	c := binary.NewCursor(b)
	c.Seek(16)
	version := c.Uint16()
	c.Skip(6) // revision, vendor
	e.Channels = int(c.Uint16())
	e.BitsPerSample = int(c.Uint16())
	c.Skip(4) // compression id, packet size
	e.SampleRate = c.Fixed16_16()

	ext := 36
	switch version {
	case 1:
		ext += 16
	case 2:
		ext += 36
		c.Skip(4)
		e.SampleRate = c.Float64()
		e.Channels = int(c.Uint32())
		c.Skip(4)
		e.BitsPerSample = int(c.Uint32())
	}
	if c.Short() {
		w.warn(off, "sound sample description %q is truncated", printable(e.Format))
		return
	}
	if ext < len(b) {
		w.soundExtensions(e, b[ext:])
	}
}

func (w *walker) soundExtensions(e *types.SampleEntry, b []byte) {
	for _, child := range children(b) {
		switch child.name {
		case "esds":
			d, ok := aac.ParseESDS(child.data)
			if !ok {
				continue
			}
			e.MaxBitrate = d.MaxBitrate
			e.AvgBitrate = d.AvgBitrate
			if d.HasConfig {
				e.AudioObjectType = d.Config.ObjectType
				if e.SampleRate == 0 {
					e.SampleRate = float64(d.Config.SampleRate)
				}
				if e.Channels == 0 {
					e.Channels = d.Config.Channels
				}
			}
		case "wave":
			w.soundExtensions(e, child.data)
		case "alac":
			// version/flags, frame length, compatible version, bit depth,
			// three tuning bytes, channels, max run, max frame bytes,
			// average bitrate, sample rate
			if len(child.data) >= 28 {
				e.BitsPerSample = int(child.data[9])
				e.Channels = int(child.data[13])
				e.AvgBitrate = uint32(binary.BigEndianUint(child.data[20:24]))
				e.SampleRate = float64(binary.BigEndianUint(child.data[24:28]))
			}
		}
	}
}

// videoEntry decodes a video sample description and its avcC extension.
func (w *walker) videoEntry(e *types.SampleEntry, b []byte, off int64) {
	c := binary.NewCursor(b)
	c.Seek(32)
	e.Width = int(c.Uint16())
	e.Height = int(c.Uint16())
	c.Skip(14) // resolutions, data size, frame count
	name := c.Bytes(32)
	e.Depth = int(c.Uint16())
	c.Skip(2) // color table id
	if c.Short() {
		w.warn(off, "video sample description %q is truncated", printable(e.Format))
		return
	}
	if n := int(name[0]); n > 0 && n < len(name) {
		e.CompressorName = strings.TrimRight(string(name[1:1+n]), "\x00 ")
	}

	for _, child := range children(b[c.Pos():]) {
		if child.name == "avcC" && len(child.data) >= 4 {
			e.AVCProfile = int(child.data[1])
			e.AVCLevel = int(child.data[3])
		}
	}
}

type childAtom struct {
	name string
	data []byte
}

// children splits an in-memory buffer into atoms, stopping at the first
// malformed one.
func children(b []byte) []childAtom {
	var out []childAtom
	for len(b) >= 8 {
		size := int(binary.BigEndianUint(b[:4]))
		if size == 0 {
			size = len(b)
		}
		if size < 8 || size > len(b) {
			break
		}
		out = append(out, childAtom{name: string(b[4:8]), data: b[8:size]})
		b = b[size:]
	}
	return out
}

// timeToSample sums stts into the track's sample count and keeps the
// entries for text tracks.
func (w *walker) timeToSample(h atomHeader, data []byte) error {
	if w.track == nil {
		return nil
	}
	c := binary.NewCursor(data)
	c.Skip(4)
	count := c.Uint32()
	keep := w.track.Handler == "text" || w.track.Handler == "sbtl"
	var entries []sttsEntry
	for i := uint32(0); i < count; i++ {
		e := sttsEntry{count: c.Uint32(), delta: c.Uint32()}
		if c.Short() {
			w.warn(h.offset, "stts declares %d entries but holds %d", count, i)
			break
		}
		w.track.SampleCount += uint64(e.count)
		if keep && len(entries) < maxEntries {
			entries = append(entries, e)
		}
	}
	if keep {
		w.table().stts = entries
	}
	return nil
}

// sampleTable returns the decoder for the sample size, chunk offset and
// sample-to-chunk tables. They are only kept for text tracks, which carry
// chapter titles.
func (w *walker) sampleTable(name string) func(atomHeader, []byte) error {
	return func(h atomHeader, data []byte) error {
		if w.track == nil || (w.track.Handler != "text" && w.track.Handler != "sbtl") {
			return nil
		}
		t := w.table()
		c := binary.NewCursor(data)
		c.Skip(4)

		switch name {
		case "stsz":
			t.uniformSize = c.Uint32()
			count := c.Uint32()
			if t.uniformSize == 0 {
				for i := uint32(0); i < count && i < maxEntries && !c.Short(); i++ {
					t.sizes = append(t.sizes, c.Uint32())
				}
			}
		case "stco", "co64":
			count := c.Uint32()
			for i := uint32(0); i < count && i < maxEntries && !c.Short(); i++ {
				if name == "co64" {
					t.chunks = append(t.chunks, int64(c.Uint64()))
				} else {
					t.chunks = append(t.chunks, int64(c.Uint32()))
				}
			}
		case "stsc":
			count := c.Uint32()
			for i := uint32(0); i < count && i < maxEntries && !c.Short(); i++ {
				e := stscEntry{firstChunk: c.Uint32(), samplesPerChunk: c.Uint32()}
				c.Skip(4) // sample description index
				t.stsc = append(t.stsc, e)
			}
		}
		if c.Short() {
			w.warn(h.offset, "%s table is truncated", name)
		}
		return nil
	}
}

// sampleOffsets resolves the file offset of every sample.
func (t *sampleTable) sampleOffsets() []int64 {
	var offsets []int64
	sample := 0
	for i, chunkOff := range t.chunks {
		chunk := uint32(i + 1)
		perChunk := uint32(0)
		for _, e := range t.stsc {
			if e.firstChunk > chunk {
				break
			}
			perChunk = e.samplesPerChunk
		}
		off := chunkOff
		for j := uint32(0); j < perChunk; j++ {
			offsets = append(offsets, off)
			off += int64(t.size(sample))
			sample++
			if len(offsets) >= maxEntries {
				return offsets
			}
		}
	}
	return offsets
}

func (t *sampleTable) size(i int) uint32 {
	if t.uniformSize != 0 {
		return t.uniformSize
	}
	if i < len(t.sizes) {
		return t.sizes[i]
	}
	return 0
}

// sampleTimes returns the start time of every sample in track units.
func (t *sampleTable) sampleTimes() []uint64 {
	var out []uint64
	var at uint64
	for _, e := range t.stts {
		for j := uint32(0); j < e.count && len(out) < maxEntries; j++ {
			out = append(out, at)
			at += uint64(e.delta)
		}
	}
	return out
}
