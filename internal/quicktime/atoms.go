// Package quicktime walks QuickTime and ISO base media (MP4, M4A, M4B)
// atom trees.
package quicktime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

const stage = "quicktime"

const (
	// maxLeaf bounds the bytes read for one decoded atom.
	maxLeaf = 16 << 20
	// maxDepth bounds container nesting.
	maxDepth = 32
)

// containers are walked for child atoms. meta is handled separately.
var containers = map[string]bool{
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"stbl": true,
	"udta": true,
	"edts": true,
	"dinf": true,
	"tref": true,
	"ilst": true,
	"gmhd": true,
	"mvex": true,
}

// ignored atoms are known and carry nothing this package reports.
var ignored = map[string]bool{
	"free": true, "skip": true, "wide": true, "pnot": true, "PICT": true,
	"uuid": true, "iods": true, "vmhd": true, "smhd": true, "nmhd": true,
	"hmhd": true, "sthd": true, "gmin": true, "text": true, "tmcd": true,
	"dref": true, "stss": true, "ctts": true, "cslg": true, "sdtp": true,
	"sgpd": true, "sbgp": true, "stps": true, "subs": true, "saiz": true,
	"saio": true, "load": true, "clip": true, "matt": true, "mehd": true,
	"trex": true, "prfl": true, "ctab": true, "name": true, "hnti": true,
	"hinf": true, "XMP_": true, "Xtra": true, "tags": true, "pdin": true,
	"bxml": true, "xml ": true, "iloc": true, "iinf": true, "pitm": true,
	"sidx": true, "moof": true, "mfra": true, "styp": true, "beam": true,
	"frma": true, "enda": true, "chan": true, "alac": true, "dOps": true,
	"dfLa": true, "dac3": true, "dec3": true, "btrt": true, "pasp": true,
	"colr": true, "fiel": true, "gama": true, "clap": true, "hvcC": true,
	"esds": true, "avcC": true, "SDLN": true, "smrd": true, "smta": true,
	"AllF": true, "SelO": true, "WLOC": true, "LOOP": true, "ptv ": true,
}

// atomHeader is one parsed atom header.
type atomHeader struct {
	name       string
	offset     int64
	size       int64
	headerSize int
}

func (h atomHeader) dataOffset() int64 { return h.offset + int64(h.headerSize) }
func (h atomHeader) dataSize() int64   { return h.size - int64(h.headerSize) }
func (h atomHeader) end() int64        { return h.offset + h.size }

// readAtomHeader reads the header at off. A zero size means the atom runs
// to parentEnd; a size of one means a 64-bit size follows the name.
func readAtomHeader(sr *binary.SafeReader, off, parentEnd int64) (atomHeader, error) {
	buf, err := sr.Bytes(off, 8, "atom header")
	if err != nil {
		return atomHeader{}, err
	}
	h := atomHeader{name: string(buf[4:8]), offset: off, headerSize: 8}

	switch size := binary.BigEndianUint(buf[:4]); size {
	case 0:
		h.size = parentEnd - off
	case 1:
		ext, err := binary.ReadBE[uint64](sr, off+8, "extended atom size")
		if err != nil {
			return atomHeader{}, err
		}
		h.headerSize = 16
		h.size = int64(ext)
		if h.size < 0 {
			return atomHeader{}, fmt.Errorf("atom %q size %d overflows", h.name, ext)
		}
	default:
		h.size = int64(size)
	}
	return h, nil
}

// walker carries state for one file.
type walker struct {
	ctx  context.Context
	sr   *binary.SafeReader
	info *types.Info
	opts registry.Options
	log  *slog.Logger
	raw  *types.QuickTime

	// track is the trak being walked, nil outside one.
	track  *types.Track
	tables map[*types.Track]*sampleTable

	// metaHandler is the hdlr type of the innermost meta atom.
	metaHandler string
	keys        []string

	chpl []types.Chapter
	mdat int64
}

func (w *walker) warn(off int64, format string, args ...any) {
	w.info.Warn(stage, off, format, args...)
}

// walk decodes the atoms in [start, end) and returns their tree nodes.
func (w *walker) walk(start, end int64, parent string, depth int) ([]*types.Atom, error) {
	var nodes []*types.Atom
	for off := start; off < end; {
		if err := w.ctx.Err(); err != nil {
			return nodes, err
		}
		if end-off < 8 {
			w.trailing(off, end, parent)
			break
		}

		h, err := readAtomHeader(w.sr, off, end)
		if err != nil {
			w.warn(off, "cannot read atom header: %v", err)
			break
		}
		if h.size < int64(h.headerSize) {
			w.warn(off, "atom %q has invalid size %d", printable(h.name), h.size)
			break
		}
		if h.end() > end {
			w.warn(off, "atom %q (%d bytes) runs past the end of %s", printable(h.name), h.size, where(parent))
			if h.name != "mdat" {
				break
			}
			h.size = end - off
		}

		node := &types.Atom{
			Name:       printable(h.name),
			Offset:     h.offset,
			Size:       h.size,
			HeaderSize: h.headerSize,
		}
		nodes = append(nodes, node)

		children, err := w.atom(h, parent, depth)
		node.Children = children
		if err != nil {
			return nodes, err
		}
		off = h.end()
	}
	return nodes, nil
}

// trailing handles fewer than 8 bytes left in a container. QuickTime udta
// lists end with a 32-bit zero terminator.
func (w *walker) trailing(off, end int64, parent string) {
	b, err := w.sr.Bytes(off, int(end-off), "atom terminator")
	if err != nil {
		return
	}
	for _, c := range b {
		if c != 0 {
			w.warn(off, "%d stray bytes at the end of %s", len(b), where(parent))
			return
		}
	}
}

// atom dispatches one atom by name and position.
func (w *walker) atom(h atomHeader, parent string, depth int) ([]*types.Atom, error) {
	if depth >= maxDepth {
		w.warn(h.offset, "atoms nested deeper than %d levels, %q not walked", maxDepth, printable(h.name))
		return nil, nil
	}

	switch {
	case parent == "ilst":
		return w.itemList(h)
	case parent == "tref":
		if h.name == "chap" {
			w.chapterReference(h)
		}
		return nil, nil
	case parent == "udta" && h.name[0] == 0xA9:
		w.userText(h)
		return nil, nil
	case parent == "udta" && assetKeys[h.name] != "":
		w.assetText(h)
		return nil, nil
	case h.name == "meta":
		return w.meta(h, depth)
	case h.name == "trak":
		prev := w.track
		w.track = &types.Track{}
		w.raw.Tracks = append(w.raw.Tracks, w.track)
		defer func() { w.track = prev }()
		return w.walk(h.dataOffset(), h.end(), h.name, depth+1)
	case containers[h.name]:
		return w.walk(h.dataOffset(), h.end(), h.name, depth+1)
	case h.name == "mdat":
		w.mediaData(h)
		return nil, nil
	}

	decode := w.decoder(h.name, parent)
	if decode == nil {
		if !ignored[h.name] {
			w.warn(h.offset, "unknown atom %q in %s", printable(h.name), where(parent))
		}
		return nil, nil
	}

	data, err := w.leaf(h)
	if err != nil {
		w.warn(h.offset, "cannot read atom %q: %v", printable(h.name), err)
		return nil, nil
	}
	return nil, decode(h, data)
}

// decoder returns the decoder for a leaf atom, nil when there is none.
func (w *walker) decoder(name, parent string) func(atomHeader, []byte) error {
	switch name {
	case "ftyp":
		return w.fileType
	case "mvhd":
		return w.movieHeader
	case "tkhd":
		return w.trackHeader
	case "mdhd":
		return w.mediaHeader
	case "hdlr":
		return w.handler(parent)
	case "elst":
		return w.editList
	case "stsd":
		return w.sampleDescription
	case "stts":
		return w.timeToSample
	case "stsz", "stz2", "stco", "co64", "stsc":
		return w.sampleTable(name)
	case "chpl":
		return w.chapterList
	case "keys":
		return w.metadataKeys
	}
	return nil
}

// leaf reads the data of a leaf atom, truncated to maxLeaf.
func (w *walker) leaf(h atomHeader) ([]byte, error) {
	n := min(h.dataSize(), maxLeaf)
	if n < h.dataSize() {
		w.warn(h.offset, "atom %q truncated to %d bytes", printable(h.name), n)
	}
	return w.sr.Bytes(h.dataOffset(), int(n), "atom "+printable(h.name))
}

// meta is a full box in ISO files and a plain container in QuickTime.
// The two are told apart by whether a child atom name follows the first
// four bytes.
func (w *walker) meta(h atomHeader, depth int) ([]*types.Atom, error) {
	start := h.dataOffset()
	if h.dataSize() >= 8 {
		b, err := w.sr.Bytes(start, 8, "meta header")
		if err != nil {
			return nil, nil
		}
		if !isAtomName(b[4:8]) {
			start += 4
		}
	}

	prevHandler, prevKeys := w.metaHandler, w.keys
	w.metaHandler, w.keys = "", nil
	defer func() { w.metaHandler, w.keys = prevHandler, prevKeys }()
	return w.walk(start, h.end(), "meta", depth+1)
}

// mediaData records the largest mdat as the audio/video payload.
func (w *walker) mediaData(h atomHeader) {
	if h.dataSize() <= w.mdat {
		return
	}
	w.mdat = h.dataSize()
	w.info.AVDataOffset = h.dataOffset()
	w.info.AVDataEnd = h.end()
}

func isAtomName(b []byte) bool {
	if len(b) != 4 {
		return false
	}
	for _, c := range b {
		if (c < 0x20 || c > 0x7E) && c != 0xA9 {
			return false
		}
	}
	return true
}

// printable renders an atom name for output, spelling 0xA9 as ©.
func printable(name string) string {
	out := make([]rune, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == 0xA9:
			out = append(out, '©')
		case c < 0x20 || c > 0x7E:
			return fmt.Sprintf("0x%X", []byte(name))
		default:
			out = append(out, rune(c))
		}
	}
	return string(out)
}

func where(parent string) string {
	if parent == "" {
		return "the file"
	}
	return printable(parent)
}
