package id3v2

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/types"
)

// decode records one frame in the comment map, picture list or chapter
// list and returns its raw tree entry.
func (w *walker) decode(ctx context.Context, f frame) types.ID3v2Frame {
	raw := types.ID3v2Frame{
		ID:     f.id,
		Offset: f.offset,
		Size:   f.size,
		Flags:  f.flags,
	}
	c := w.tag.Comments
	data := f.data

	switch id := f.norm; {
	case id == "TXXX" || id == "WXXX":
		if len(data) < 2 {
			w.short(f)
			break
		}
		enc := data[0]
		desc, rest, _ := splitTerminated(data[1:], enc)
		raw.Encoding = encodingName(enc)
		raw.Description = decodeText(desc, enc)
		if id == "WXXX" {
			raw.Text = decodeText(rest, encISO88591)
			c.Add(commentKey(id), raw.Text)
			break
		}
		values := splitValues(rest, enc)
		raw.Text = strings.Join(values, "; ")
		key := strings.ToLower(raw.Description)
		if key == "" {
			key = "text"
		}
		for _, v := range values {
			c.Add(key, v)
		}

	case id[0] == 'T':
		if len(data) < 1 {
			w.short(f)
			break
		}
		enc := data[0]
		values := splitValues(data[1:], enc)
		raw.Encoding = encodingName(enc)
		raw.Text = strings.Join(values, "; ")
		w.addText(id, values)

	case id[0] == 'W':
		raw.Text = decodeText(data, encISO88591)
		c.Add(commentKey(id), raw.Text)

	case id == "COMM" || id == "USLT":
		if len(data) < 4 {
			w.short(f)
			break
		}
		enc := data[0]
		raw.Encoding = encodingName(enc)
		raw.Language = strings.TrimRight(string(data[1:4]), "\x00 ")
		desc, rest, found := splitTerminated(data[4:], enc)
		if !found {
			// Missing description terminator: the whole payload is the text.
			desc, rest = nil, data[4:]
		}
		raw.Description = decodeText(desc, enc)
		raw.Text = decodeText(rest, enc)
		// iTunes stores gapless and normalisation data in COMM frames.
		if strings.HasPrefix(raw.Description, "iTun") {
			break
		}
		c.Add(commentKey(id), raw.Text)

	case id == "APIC":
		w.picture(f, &raw)

	case id == "UFID" || id == "PRIV":
		owner, _, _ := splitTerminated(data, encISO88591)
		raw.Description = decodeText(owner, encISO88591)

	case id == "PCNT":
		raw.Text = strconv.FormatUint(counter(data), 10)

	case id == "POPM":
		email, rest, _ := splitTerminated(data, encISO88591)
		raw.Description = decodeText(email, encISO88591)
		if len(rest) > 0 {
			raw.Text = strconv.Itoa(int(rest[0]))
		}

	case id == "CHAP":
		w.chapter(ctx, f, &raw)
	}

	return raw
}

func (w *walker) short(f frame) {
	w.warn(f.offset, "frame %s is too short (%d bytes)", f.id, len(f.data))
}

func (w *walker) addText(id string, values []string) {
	c := w.tag.Comments
	key := commentKey(id)
	for _, v := range values {
		switch id {
		case "TCON":
			for _, g := range resolveGenres(v) {
				c.Add(key, g)
			}
		case "TDRC":
			c.Add(key, v)
			if len(v) >= 4 && isDigits(v[:4]) {
				c.Add("year", v[:4])
			}
		default:
			c.Add(key, v)
		}
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// counter decodes a PCNT play counter, which may be wider than 32 bits.
func counter(b []byte) uint64 {
	if len(b) > 8 {
		b = b[len(b)-8:]
	}
	return binary.BigEndianUint(b)
}

// picture decodes APIC (v2.3/v2.4) and PIC (v2.2) frames.
func (w *walker) picture(f frame, raw *types.ID3v2Frame) {
	data := f.data
	if len(data) < 2 {
		w.short(f)
		return
	}
	enc := data[0]
	raw.Encoding = encodingName(enc)

	var mime string
	rest := data[1:]
	if f.id == "PIC" {
		if len(rest) < 4 {
			w.short(f)
			return
		}
		mime = imageFormatMIME(string(rest[:3]))
		rest = rest[3:]
	} else {
		m, r, found := splitTerminated(rest, encISO88591)
		if !found || len(r) < 1 {
			w.short(f)
			return
		}
		mime, rest = strings.ToLower(string(m)), r
	}

	picType := types.PictureType(rest[0])
	desc, img, _ := splitTerminated(rest[1:], enc)
	raw.Description = decodeText(desc, enc)

	if len(img) == 0 {
		w.warn(f.offset, "frame %s has no image data", f.id)
		return
	}
	switch {
	case mime == "" || mime == "-->":
		mime = types.SniffImageMIME(img)
	case !strings.Contains(mime, "/"):
		mime = "image/" + mime
	}

	p := types.Picture{
		Source:      stage,
		MIMEType:    mime,
		Type:        picType,
		Description: raw.Description,
		Offset:      f.offset + int64(len(data)-len(img)),
		Length:      len(img),
	}
	if w.opts.WantPicture(len(img)) {
		p.Data = append([]byte(nil), img...)
	} else if w.opts.PictureData {
		w.warn(f.offset, "picture of %d bytes exceeds the %d byte limit", len(img), w.opts.MaxPictureBytes)
	}
	raw.Text = mime
	w.info.Pictures = append(w.info.Pictures, p)
}

func imageFormatMIME(format string) string {
	switch strings.ToUpper(strings.TrimRight(format, "\x00 ")) {
	case "JPG", "JPEG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	case "GIF":
		return "image/gif"
	case "BMP":
		return "image/bmp"
	case "-->":
		return "-->"
	case "":
		return ""
	default:
		return "image/" + strings.ToLower(format)
	}
}

// chapter decodes a CHAP frame: element id, start/end times in
// milliseconds, byte offsets and embedded sub-frames (TIT2 holds the title).
func (w *walker) chapter(ctx context.Context, f frame, raw *types.ID3v2Frame) {
	elementID, rest, found := splitTerminated(f.data, encISO88591)
	if !found || len(rest) < 16 {
		w.short(f)
		return
	}
	c := binary.NewCursor(rest)
	start := c.Uint32()
	end := c.Uint32()
	c.Skip(8) // byte offsets, usually 0xFFFFFFFF

	raw.Description = string(elementID)
	title := ""
	base := f.offset + int64(len(f.data)-c.Len())
	subs, _ := w.splitFrames(ctx, c.Rest(), base, false)
	for _, sub := range subs {
		if sub.norm == "TIT2" && len(sub.data) > 0 {
			title = decodeText(sub.data[1:], sub.data[0])
			break
		}
	}
	if title == "" {
		title = string(elementID)
	}
	raw.Text = title

	w.chapters = append(w.chapters, types.Chapter{
		Source:    stage,
		Title:     title,
		StartTime: time.Duration(start) * time.Millisecond,
		EndTime:   time.Duration(end) * time.Millisecond,
	})
}
