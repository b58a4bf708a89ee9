package quicktime

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	binutil "github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

func u16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func u64(v uint64) []byte { return binary.BigEndian.AppendUint64(nil, v) }

func cat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// box builds an atom from its payload parts.
func box(name string, payload ...[]byte) []byte {
	body := cat(payload...)
	return cat(u32(uint32(len(body)+8)), []byte(name), body)
}

// fullBox prepends version and flags.
func fullBox(name string, version byte, flags uint32, payload ...[]byte) []byte {
	vf := u32(uint32(version)<<24 | flags)
	return box(name, append([][]byte{vf}, payload...)...)
}

var identity = cat(
	u32(0x00010000), u32(0), u32(0),
	u32(0), u32(0x00010000), u32(0),
	u32(0), u32(0), u32(0x40000000),
)

func ftyp(major string, compatible ...string) []byte {
	parts := [][]byte{[]byte(major), u32(0x200)}
	for _, c := range compatible {
		parts = append(parts, []byte(c))
	}
	return box("ftyp", parts...)
}

func mvhd(timeScale, duration uint32) []byte {
	return fullBox("mvhd", 0, 0,
		u32(3600), u32(3600), u32(timeScale), u32(duration),
		u32(0x00010000), u16(0x0100), make([]byte, 10),
		identity, make([]byte, 24), u32(3))
}

func tkhd(id uint32, width, height uint16, matrix []byte) []byte {
	return fullBox("tkhd", 0, 0x3,
		u32(0), u32(0), u32(id), u32(0), u32(1000),
		make([]byte, 8), u16(0), u16(0), u16(0x0100), u16(0),
		matrix, u32(uint32(width)<<16), u32(uint32(height)<<16))
}

func mdhd(timeScale, duration uint32, lang uint16) []byte {
	return fullBox("mdhd", 0, 0,
		u32(0), u32(0), u32(timeScale), u32(duration), u16(lang), u16(0))
}

func hdlr(subtype, name string) []byte {
	return fullBox("hdlr", 0, 0,
		[]byte("mhlr"), []byte(subtype), make([]byte, 12), []byte(name), []byte{0})
}

func stts(count, delta uint32) []byte {
	return fullBox("stts", 0, 0, u32(1), u32(count), u32(delta))
}

// mp4aEntry is a version 0 sound sample entry with an AAC-LC esds.
func mp4aEntry() []byte {
	esds := fullBox("esds", 0, 0,
		[]byte{0x03, 0x19, 0x00, 0x01, 0x00},
		[]byte{0x04, 0x11, 0x40, 0x15, 0x00, 0x06, 0x00},
		u32(192000), u32(128000),
		[]byte{0x05, 0x02, 0x12, 0x10},
		[]byte{0x06, 0x01, 0x02})
	return box("mp4a",
		make([]byte, 6), u16(1), // reserved, data reference index
		u16(0), u16(0), u32(0), // version, revision, vendor
		u16(2), u16(16), u16(0), u16(0), // channels, bits, compression id, packet size
		u32(44100<<16),
		esds)
}

// avc1Entry is a video sample entry with an avcC of High profile, level 4.0.
func avc1Entry(width, height uint16) []byte {
	name := make([]byte, 32)
	name[0] = 4
	copy(name[1:], "x264")
	return box("avc1",
		make([]byte, 6), u16(1),
		u16(0), u16(0), u32(0), u32(0), u32(0),
		u16(width), u16(height),
		u32(0x00480000), u32(0x00480000), u32(0), u16(1),
		name, u16(24), u16(0xFFFF),
		box("avcC", []byte{1, 100, 0, 40, 0xFF}))
}

func stsd(entries ...[]byte) []byte {
	return fullBox("stsd", 0, 0, u32(uint32(len(entries))), cat(entries...))
}

// item builds an ilst item holding one data atom.
func item(name string, kind uint32, value []byte) []byte {
	return box(name, box("data", u32(kind), u32(0), value))
}

func parseFile(t *testing.T, data []byte) (*types.Info, error) {
	t.Helper()
	return parseWith(t, data, registry.DefaultOptions())
}

func parseWith(t *testing.T, data []byte, opts registry.Options) (*types.Info, error) {
	t.Helper()
	info := types.NewInfo("test.mp4", "test.mp4", int64(len(data)))
	sr := binutil.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.mp4")
	return info, (&parser{}).Parse(context.Background(), sr, info, opts)
}

func noWarnings(t *testing.T, info *types.Info) {
	t.Helper()
	for _, w := range info.Warnings {
		t.Errorf("unexpected warning: %s", w)
	}
}
