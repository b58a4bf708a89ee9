package quicktime

import (
	"math"
	"strings"
	"time"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/types"
)

// macEpoch is 1904-01-01, the QuickTime time origin, as a Unix time.
const macEpoch = -2082844800

func macTime(secs uint64) time.Time {
	if secs == 0 || secs > math.MaxInt64/2 {
		return time.Time{}
	}
	return time.Unix(int64(secs)+macEpoch, 0).UTC()
}

func (w *walker) fileType(h atomHeader, data []byte) error {
	c := binary.NewCursor(data)
	ft := &types.FileType{
		MajorBrand:   c.String(4),
		MinorVersion: c.Uint32(),
	}
	for c.Len() >= 4 {
		if brand := c.String(4); strings.Trim(brand, "\x00") != "" {
			ft.CompatibleBrands = append(ft.CompatibleBrands, brand)
		}
	}
	if c.Short() {
		w.warn(h.offset, "ftyp atom is too short")
		return nil
	}
	w.raw.FileType = ft
	return nil
}

// readMatrix decodes the 3x3 transformation matrix. The third column is
// 2.30 fixed point.
func readMatrix(c *binary.Cursor) [9]float64 {
	var m [9]float64
	for i := range m {
		if i%3 == 2 {
			m[i] = c.Fixed2_30()
		} else {
			m[i] = c.SignedFixed16_16()
		}
	}
	return m
}

// times reads the creation and modification times in the version 0 or
// version 1 layout.
func times(c *binary.Cursor, version byte) (created, modified uint64) {
	if version == 1 {
		return c.Uint64(), c.Uint64()
	}
	return uint64(c.Uint32()), uint64(c.Uint32())
}

func duration(c *binary.Cursor, version byte) uint64 {
	if version == 1 {
		return c.Uint64()
	}
	return uint64(c.Uint32())
}

func (w *walker) movieHeader(h atomHeader, data []byte) error {
	c := binary.NewCursor(data)
	version := c.Uint8()
	c.Skip(3)
	created, modified := times(c, version)
	mh := &types.MovieHeader{
		Version:          int(version),
		CreationTime:     macTime(created),
		ModificationTime: macTime(modified),
		TimeScale:        c.Uint32(),
	}
	mh.Duration = duration(c, version)
	if c.Short() {
		w.warn(h.offset, "mvhd atom is too short")
		return nil
	}
	if mh.TimeScale == 0 {
		return w.corrupt(h, "mvhd time scale is zero")
	}

	mh.PreferredRate = c.Fixed16_16()
	mh.PreferredVolume = c.SignedFixed8_8()
	c.Skip(10)
	mh.Matrix = readMatrix(c)
	c.Skip(24) // preview, poster, selection and current times
	mh.NextTrackID = c.Uint32()
	if c.Short() {
		w.warn(h.offset, "mvhd atom is truncated")
	}
	w.raw.MovieHeader = mh
	return nil
}

func (w *walker) trackHeader(h atomHeader, data []byte) error {
	if w.track == nil {
		w.warn(h.offset, "tkhd outside a trak")
		return nil
	}
	t := w.track
	c := binary.NewCursor(data)
	version := c.Uint8()
	flags := c.Uint24()
	times(c, version)
	t.ID = c.Uint32()
	c.Skip(4)
	t.Duration = duration(c, version)
	c.Skip(8) // reserved
	c.Skip(4) // layer, alternate group
	t.Volume = c.SignedFixed8_8()
	c.Skip(2)
	t.Matrix = readMatrix(c)
	t.Width = c.Fixed16_16()
	t.Height = c.Fixed16_16()
	if c.Short() {
		w.warn(h.offset, "tkhd atom is too short")
	}
	t.Enabled = flags&0x1 != 0
	t.Rotation = rotation(t.Matrix)
	return nil
}

// rotation returns the clockwise rotation in degrees encoded by a display
// matrix, in [0, 360).
func rotation(m [9]float64) float64 {
	if m[0] == 0 && m[1] == 0 {
		return 0
	}
	deg := math.Round(math.Atan2(m[1], m[0]) * 180 / math.Pi)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func (w *walker) mediaHeader(h atomHeader, data []byte) error {
	c := binary.NewCursor(data)
	version := c.Uint8()
	c.Skip(3)
	times(c, version)
	timeScale := c.Uint32()
	dur := duration(c, version)
	lang := c.Uint16()
	if c.Short() {
		w.warn(h.offset, "mdhd atom is too short")
		return nil
	}
	if timeScale == 0 {
		return w.corrupt(h, "mdhd time scale is zero")
	}
	if w.track != nil {
		w.track.TimeScale = timeScale
		w.track.MediaDuration = dur
		w.track.Language = languageCode(lang)
	}
	return nil
}

// handler returns the hdlr decoder. Only the handler of mdia identifies a
// track; the one in meta identifies the metadata layout.
func (w *walker) handler(parent string) func(atomHeader, []byte) error {
	return func(h atomHeader, data []byte) error {
		if len(data) < 24 {
			w.warn(h.offset, "hdlr atom is too short")
			return nil
		}
		subtype := string(data[8:12])
		name := handlerName(data[24:])
		switch {
		case parent == "mdia" && w.track != nil:
			w.track.Handler = subtype
			w.track.HandlerName = name
		case parent == "meta":
			w.metaHandler = subtype
		}
		return nil
	}
}

// handlerName reads either a Pascal string (QuickTime) or a NUL terminated
// string (ISO).
func handlerName(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if int(b[0]) == len(b)-1 && b[0] > 0 {
		b = b[1:]
	}
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}

func (w *walker) editList(h atomHeader, data []byte) error {
	if w.track == nil {
		return nil
	}
	c := binary.NewCursor(data)
	version := c.Uint8()
	c.Skip(3)
	count := c.Uint32()
	for i := uint32(0); i < count && !c.Short(); i++ {
		var e types.EditEntry
		if version == 1 {
			e.Duration = c.Uint64()
			e.MediaTime = c.Int(8)
		} else {
			e.Duration = uint64(c.Uint32())
			e.MediaTime = c.Int(4)
		}
		e.Rate = c.SignedFixed16_16()
		if c.Short() {
			break
		}
		w.track.EditList = append(w.track.EditList, e)
	}
	if c.Short() {
		w.warn(h.offset, "elst declares %d entries but holds %d", count, len(w.track.EditList))
	}
	return nil
}

func (w *walker) corrupt(h atomHeader, reason string) error {
	return &types.CorruptedFileError{
		Path:   w.sr.Path(),
		Reason: reason,
		Offset: h.offset,
	}
}

// languageCode decodes an mdhd language: packed ISO 639-2/T letters, or a
// Macintosh language code below 0x400.
func languageCode(v uint16) string {
	if v < 0x400 {
		if name, ok := macLanguages[v]; ok {
			return name
		}
		return ""
	}
	if v == 0x7FFF {
		return ""
	}
	b := []byte{
		byte(v>>10&0x1F) + 0x60,
		byte(v>>5&0x1F) + 0x60,
		byte(v&0x1F) + 0x60,
	}
	for _, c := range b {
		if c < 'a' || c > 'z' {
			return ""
		}
	}
	return string(b)
}

// macLanguages maps the common Macintosh language codes to ISO 639-2.
var macLanguages = map[uint16]string{
	0: "eng", 1: "fra", 2: "deu", 3: "ita", 4: "nld", 5: "swe", 6: "spa",
	7: "dan", 8: "por", 9: "nor", 10: "heb", 11: "jpn", 12: "ara", 13: "fin",
	14: "ell", 15: "isl", 16: "mlt", 17: "tur", 18: "hrv", 19: "zho",
	20: "urd", 21: "hin", 22: "tha", 23: "kor", 24: "lit", 25: "pol",
	26: "hun", 27: "est", 28: "lav", 32: "rus", 33: "zho",
}
