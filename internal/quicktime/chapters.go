package quicktime

import (
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/types"
)

// maxChapters bounds the chapters read from one source.
const maxChapters = 10000

// chapterList decodes a Nero chpl atom: start times in 100 ns units and
// length-prefixed UTF-8 titles.
func (w *walker) chapterList(h atomHeader, data []byte) error {
	c := binary.NewCursor(data)
	c.Skip(8) // version, flags, reserved
	count := int(c.Uint8())
	for i := 0; i < count; i++ {
		start := c.Uint64()
		title := c.Bytes(int(c.Uint8()))
		if c.Short() {
			w.warn(h.offset, "chpl declares %d chapters but holds %d", count, i)
			break
		}
		w.chpl = append(w.chpl, types.Chapter{
			Source:    "chpl",
			Index:     i + 1,
			Title:     string(title),
			StartTime: time.Duration(start) * 100,
		})
	}
	return nil
}

// textChapters reads the samples of the text track a tref chap atom
// points at. Each sample is a 16-bit length followed by the title.
func (w *walker) textChapters() []types.Chapter {
	for _, t := range w.raw.Tracks {
		for _, id := range t.ChapterTracks {
			text := w.trackByID(id)
			if text == nil || text.TimeScale == 0 || w.tables[text] == nil {
				continue
			}
			if chapters := w.readTextSamples(text, w.tables[text]); len(chapters) > 0 {
				return chapters
			}
		}
	}
	return nil
}

func (w *walker) trackByID(id uint32) *types.Track {
	for _, t := range w.raw.Tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (w *walker) readTextSamples(t *types.Track, table *sampleTable) []types.Chapter {
	offsets := table.sampleOffsets()
	starts := table.sampleTimes()
	var chapters []types.Chapter
	for i, off := range offsets {
		if i >= len(starts) || i >= maxChapters {
			break
		}
		n, err := binary.ReadBE[uint16](w.sr, off, "chapter title length")
		if err != nil {
			w.warn(off, "chapter sample %d is unreadable", i+1)
			break
		}
		raw, err := w.sr.Bytes(off+2, int(n), "chapter title")
		if err != nil {
			w.warn(off, "chapter sample %d is truncated", i+1)
			break
		}
		title := string(raw)
		if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
			title = decode(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), raw)
		}
		chapters = append(chapters, types.Chapter{
			Source:    "quicktime",
			Index:     i + 1,
			Title:     title,
			StartTime: scaled(starts[i], t.TimeScale),
		})
	}
	return chapters
}

// scaled converts v units of 1/scale seconds to a duration.
func scaled(v uint64, scale uint32) time.Duration {
	if scale == 0 {
		return 0
	}
	secs := v / uint64(scale)
	rem := v % uint64(scale)
	return time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(scale)
}

// closeChapters sets each end time to the next start, and the last one to
// the total duration.
func closeChapters(chapters []types.Chapter, total time.Duration) {
	for i := range chapters {
		if i+1 < len(chapters) {
			chapters[i].EndTime = chapters[i+1].StartTime
		} else if total > chapters[i].StartTime {
			chapters[i].EndTime = total
		}
	}
}
