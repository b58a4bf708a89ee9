package quicktime

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/id3v1"
	"github.com/simonhull/mediameta/internal/types"
)

// itemKeys maps iTunes ilst item names and QuickTime ©xxx user data names
// to comment keys.
var itemKeys = map[string]string{
	"\xA9nam": "title",
	"\xA9ART": "artist",
	"aART":    "album_artist",
	"\xA9alb": "album",
	"\xA9day": "creation_date",
	"\xA9gen": "genre",
	"gnre":    "genre",
	"\xA9wrt": "composer",
	"\xA9com": "composer",
	"\xA9cmt": "comment",
	"\xA9too": "encoding_tool",
	"\xA9enc": "encoded_by",
	"\xA9grp": "grouping",
	"\xA9lyr": "lyrics",
	"\xA9cpy": "copyright",
	"cprt":    "copyright",
	"\xA9des": "description",
	"desc":    "description",
	"ldes":    "long_description",
	"\xA9inf": "information",
	"\xA9dir": "director",
	"\xA9prd": "producer",
	"\xA9prf": "performers",
	"\xA9req": "system_requirements",
	"\xA9src": "source_credit",
	"\xA9fmt": "format",
	"\xA9dis": "disclaimer",
	"\xA9hst": "host_computer",
	"\xA9mak": "make",
	"\xA9mod": "model",
	"\xA9PRD": "product",
	"\xA9swr": "software",
	"\xA9wrn": "warning",
	"\xA9xyz": "location",
	"\xA9st3": "subtitle",
	"\xA9url": "url",
	"\xA9ed1": "edit1",
	"\xA9aut": "author",
	"\xA9nrt": "narrator",
	"\xA9pub": "publisher",
	"\xA9mvn": "movement_name",
	"\xA9wrk": "work",
	"trkn":    "track_number",
	"disk":    "disc_number",
	"tmpo":    "bpm",
	"cpil":    "compilation",
	"pgap":    "gapless_playback",
	"pcst":    "podcast",
	"stik":    "stik",
	"rtng":    "rating",
	"tvsh":    "tv_show_name",
	"tven":    "tv_episode_id",
	"tvsn":    "tv_season",
	"tves":    "tv_episode",
	"tvnn":    "tv_network_name",
	"purd":    "purchase_date",
	"soal":    "sort_album",
	"soar":    "sort_artist",
	"soaa":    "sort_album_artist",
	"sonm":    "sort_title",
	"soco":    "sort_composer",
	"sosn":    "sort_show",
	"apID":    "purchase_account",
	"catg":    "category",
	"keyw":    "keyword",
	"purl":    "podcast_url",
	"egid":    "episode_guid",
	"hdvd":    "hd_video",
	"akID":    "account_type",
	"cnID":    "catalog_id",
	"sfID":    "store_front_id",
}

// assetKeys maps 3GPP asset information atoms in udta to comment keys.
var assetKeys = map[string]string{
	"titl": "title",
	"dscp": "description",
	"perf": "artist",
	"auth": "author",
	"albm": "album",
	"gnre": "genre",
	"cprt": "copyright",
	"yrrc": "year",
}

// well-known data atom types
const (
	dataBinary   = 0
	dataUTF8     = 1
	dataUTF16    = 2
	dataJPEG     = 13
	dataPNG      = 14
	dataSigned   = 21
	dataUnsigned = 22
	dataBMP      = 27
)

// itemValue is one data atom of an ilst item.
type itemValue struct {
	kind   uint32
	data   []byte
	offset int64
}

// itemList decodes one ilst item: its data and name children.
func (w *walker) itemList(h atomHeader) ([]*types.Atom, error) {
	body, err := w.leaf(h)
	if err != nil {
		w.warn(h.offset, "cannot read ilst item: %v", err)
		return nil, nil
	}

	var (
		nodes  []*types.Atom
		values []itemValue
		name   string
	)
	pos := 0
	for _, child := range children(body) {
		off := h.dataOffset() + int64(pos)
		pos += len(child.data) + 8
		nodes = append(nodes, &types.Atom{
			Name:       printable(child.name),
			Offset:     off,
			Size:       int64(len(child.data) + 8),
			HeaderSize: 8,
		})
		if len(child.data) < 4 {
			continue
		}
		switch child.name {
		case "name":
			name = string(child.data[4:])
		case "data":
			if len(child.data) < 8 {
				continue
			}
			values = append(values, itemValue{
				kind:   uint32(binary.BigEndianUint(child.data[1:4])),
				data:   child.data[8:],
				offset: off + 16,
			})
		}
	}

	key := w.itemKey(h.name, name)
	for _, v := range values {
		w.itemData(h, key, v)
	}
	return nodes, nil
}

// itemKey names an item. mdta items are indexes into the keys atom and
// freeform ---- items carry their own name.
func (w *walker) itemKey(atom, name string) string {
	if w.metaHandler == "mdta" && len(w.keys) > 0 {
		idx := int(binary.BigEndianUint([]byte(atom)))
		if idx >= 1 && idx <= len(w.keys) {
			return mdtaKey(w.keys[idx-1])
		}
	}
	if atom == "----" && name != "" {
		return strings.ToLower(name)
	}
	if k, ok := itemKeys[atom]; ok {
		return k
	}
	return strings.ToLower(strings.TrimPrefix(printable(atom), "©"))
}

// mdtaKey shortens a reverse-DNS key such as com.apple.quicktime.title.
func mdtaKey(k string) string {
	if i := strings.LastIndexByte(k, '.'); i >= 0 && i < len(k)-1 {
		k = k[i+1:]
	}
	return strings.ToLower(k)
}

func (w *walker) itemData(h atomHeader, key string, v itemValue) {
	c := w.raw.Comments
	switch {
	case h.name == "covr":
		w.cover(v)
	case h.name == "trkn" || h.name == "disk":
		if len(v.data) < 6 {
			return
		}
		n := binary.BigEndianUint(v.data[2:4])
		total := binary.BigEndianUint(v.data[4:6])
		if n > 0 {
			c.Add(key, strconv.FormatUint(n, 10))
		}
		if total > 0 {
			if h.name == "trkn" {
				c.Add("totaltracks", strconv.FormatUint(total, 10))
			} else {
				c.Add("totaldiscs", strconv.FormatUint(total, 10))
			}
		}
	case h.name == "gnre" && v.kind != dataUTF8:
		// ID3v1 genre number plus one
		if id := int(binary.BigEndianUint(v.data)); id > 0 {
			c.Add(key, id3v1.GenreName(id-1))
		}
	case v.kind == dataUTF8:
		c.Add(key, strings.TrimRight(string(v.data), "\x00"))
	case v.kind == dataUTF16:
		c.Add(key, decode(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), v.data))
	case v.kind == dataSigned:
		c.Add(key, strconv.FormatInt(binary.BigEndianInt(v.data), 10))
	case v.kind == dataUnsigned || (v.kind == dataBinary && len(v.data) <= 8):
		c.Add(key, strconv.FormatUint(binary.BigEndianUint(v.data), 10))
	}
}

// cover records a covr data atom as a front cover picture.
func (w *walker) cover(v itemValue) {
	if len(v.data) == 0 {
		return
	}
	var mime string
	switch v.kind {
	case dataJPEG:
		mime = "image/jpeg"
	case dataPNG:
		mime = "image/png"
	case dataBMP:
		mime = "image/bmp"
	default:
		mime = types.SniffImageMIME(v.data)
	}
	p := types.Picture{
		Source:   stage,
		MIMEType: mime,
		Type:     types.PictureFrontCover,
		Offset:   v.offset,
		Length:   len(v.data),
	}
	if w.opts.WantPicture(len(v.data)) {
		p.Data = append([]byte(nil), v.data...)
	} else if w.opts.PictureData {
		w.warn(v.offset, "picture of %d bytes exceeds the %d byte limit", len(v.data), w.opts.MaxPictureBytes)
	}
	w.info.Pictures = append(w.info.Pictures, p)
}

// metadataKeys decodes the keys atom of an mdta meta.
func (w *walker) metadataKeys(h atomHeader, data []byte) error {
	c := binary.NewCursor(data)
	c.Skip(4)
	count := c.Uint32()
	var keys []string
	for i := uint32(0); i < count; i++ {
		size := int(c.Uint32())
		c.Skip(4) // namespace
		if size < 8 {
			break
		}
		key := c.String(size - 8)
		if c.Short() {
			break
		}
		keys = append(keys, key)
	}
	if uint32(len(keys)) != count {
		w.warn(h.offset, "keys declares %d entries but holds %d", count, len(keys))
	}
	w.keys = keys
	return nil
}

// userText decodes a QuickTime ©xxx user data atom: a list of
// size/language/text records. Some writers store iTunes style data atoms
// here instead.
func (w *walker) userText(h atomHeader) {
	data, err := w.leaf(h)
	if err != nil {
		w.warn(h.offset, "cannot read atom %q: %v", printable(h.name), err)
		return
	}
	key := w.itemKey(h.name, "")
	if len(data) >= 8 && string(data[4:8]) == "data" {
		for _, child := range children(data) {
			if child.name == "data" && len(child.data) >= 8 {
				w.itemData(h, key, itemValue{
					kind: uint32(binary.BigEndianUint(child.data[1:4])),
					data: child.data[8:],
				})
			}
		}
		return
	}

	for c := binary.NewCursor(data); c.Len() >= 4; {
		size := int(c.Uint16())
		lang := c.Uint16()
		text := c.Bytes(size)
		if c.Short() {
			w.warn(h.offset, "user data %q is truncated", printable(h.name))
			return
		}
		if lang < 0x400 {
			w.raw.Comments.Add(key, decode(charmap.Macintosh, text))
		} else {
			w.raw.Comments.Add(key, string(text))
		}
	}
}

// assetText decodes a 3GPP asset atom: version/flags, packed language
// and a UTF-8 or UTF-16 string. yrrc holds a 16-bit year.
func (w *walker) assetText(h atomHeader) {
	data, err := w.leaf(h)
	if err != nil || len(data) < 6 {
		w.warn(h.offset, "asset atom %q is too short", printable(h.name))
		return
	}
	key := assetKeys[h.name]
	if h.name == "yrrc" {
		w.raw.Comments.Add(key, strconv.FormatUint(binary.BigEndianUint(data[4:6]), 10))
		return
	}
	text := data[6:]
	if len(text) >= 2 && text[0] == 0xFE && text[1] == 0xFF {
		w.raw.Comments.Add(key, decode(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), text))
		return
	}
	w.raw.Comments.Add(key, string(text))
}

// decode converts text with enc, dropping NULs.
func decode(enc encoding.Encoding, b []byte) string {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return strings.TrimRight(strings.ToValidUTF8(string(out), ""), "\x00")
}

// chapterReference records the track ids of a tref chap atom.
func (w *walker) chapterReference(h atomHeader) {
	if w.track == nil {
		return
	}
	data, err := w.leaf(h)
	if err != nil {
		return
	}
	for c := binary.NewCursor(data); c.Len() >= 4; {
		w.track.ChapterTracks = append(w.track.ChapterTracks, c.Uint32())
	}
}
