package mpeg

import (
	"strings"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/types"
)

// Xing header flags.
const (
	xingFrames  = 0x1
	xingBytes   = 0x2
	xingTOC     = 0x4
	xingQuality = 0x8
)

// vbrOffset is where a VBRI header starts within its frame.
const vbrOffset = 4 + 32

// readVBR looks for a Xing/Info or VBRI header in the first frame.
// frame holds the frame bytes starting at its header.
func readVBR(h Header, frame []byte, frameOffset int64) (*types.MPEGVBR, *types.LAMEHeader) {
	candidates := []int{h.SideInfoOffset()}
	if h.Protection {
		candidates = append(candidates, h.SideInfoOffset()+2)
	}
	for _, off := range candidates {
		if off+8 > len(frame) {
			continue
		}
		if tag := string(frame[off : off+4]); tag == "Xing" || tag == "Info" {
			return readXing(frame[off:], frameOffset+int64(off))
		}
	}

	if vbrOffset+18 <= len(frame) && string(frame[vbrOffset:vbrOffset+4]) == "VBRI" {
		c := binary.NewCursor(frame[vbrOffset+4:])
		c.Skip(2) // version
		c.Skip(2) // delay
		quality := c.Uint16()
		size := c.Uint32()
		frames := c.Uint32()
		return &types.MPEGVBR{
			Method:  "vbri",
			Frames:  frames,
			Bytes:   size,
			Quality: uint32(quality),
			Offset:  frameOffset + vbrOffset,
		}, nil
	}
	return nil, nil
}

func readXing(b []byte, offset int64) (*types.MPEGVBR, *types.LAMEHeader) {
	c := binary.NewCursor(b)
	vbr := &types.MPEGVBR{
		Method: strings.ToLower(c.String(4)),
		Offset: offset,
	}
	flags := c.Uint32()
	if flags&xingFrames != 0 {
		vbr.Frames = c.Uint32()
	}
	if flags&xingBytes != 0 {
		vbr.Bytes = c.Uint32()
	}
	if flags&xingTOC != 0 {
		c.Skip(100)
	}
	if flags&xingQuality != 0 {
		vbr.Quality = c.Uint32()
	}
	if c.Short() {
		return vbr, nil
	}
	return vbr, readLAME(c.Rest())
}

// readLAME decodes the LAME extension that follows the Xing fields.
func readLAME(b []byte) *types.LAMEHeader {
	if len(b) < 24 {
		return nil
	}
	version := string(b[0:9])
	if !strings.HasPrefix(version, "LAME") && !strings.HasPrefix(version, "Lavf") && !strings.HasPrefix(version, "Lavc") {
		return nil
	}
	delayPadding := binary.BigEndianUint(b[21:24])
	return &types.LAMEHeader{
		Encoder:      strings.TrimRight(version, "\x00 "),
		TagRevision:  int(b[9] >> 4),
		VBRMethod:    int(b[9] & 0x0F),
		LowpassHz:    int(b[10]) * 100,
		EncoderDelay: int(delayPadding >> 12),
		EndPadding:   int(delayPadding & 0xFFF),
	}
}

// bitrateMode derives cbr/abr/vbr from the VBR headers.
func bitrateMode(vbr *types.MPEGVBR, lame *types.LAMEHeader) string {
	if vbr == nil || vbr.Method == "info" {
		return "cbr"
	}
	if lame != nil {
		switch lame.VBRMethod {
		case 1, 8:
			return "cbr"
		case 2, 9:
			return "abr"
		}
	}
	return "vbr"
}
