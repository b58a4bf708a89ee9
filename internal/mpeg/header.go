// Package mpeg decodes MPEG-1/2/2.5 audio frame headers and the Xing,
// Info, VBRI and LAME headers carried in the first frame.
package mpeg

import "github.com/simonhull/mediameta/internal/binary"

// Bitrates in kbps, indexed by [version 1 or 2][layer-1][index].
var bitrates = [2][3][16]int{
	{ // MPEG-1
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	},
	{ // MPEG-2 and 2.5
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	},
}

var sampleRates = map[string][3]int{
	"1":   {44100, 48000, 32000},
	"2":   {22050, 24000, 16000},
	"2.5": {11025, 12000, 8000},
}

var channelModes = [4]string{"stereo", "joint stereo", "dual channel", "mono"}

var emphases = [4]string{"none", "50/15 ms", "", "CCIT J.17"}

// Header is one decoded 4-byte frame header.
type Header struct {
	Version         string
	Layer           int
	Protection      bool
	BitrateIndex    int
	Bitrate         int // bps, 0 for free format
	SampleRate      int
	Padding         bool
	Private         bool
	ChannelMode     string
	ModeExtension   int
	Copyright       bool
	Original        bool
	Emphasis        string
	FrameLength     int
	SamplesPerFrame int
}

// Channels returns 1 for mono and 2 otherwise.
func (h Header) Channels() int {
	if h.ChannelMode == "mono" {
		return 1
	}
	return 2
}

// SideInfoOffset returns where the Xing/Info header starts, counted from
// the frame start.
func (h Header) SideInfoOffset() int {
	mono := h.ChannelMode == "mono"
	switch {
	case h.Version == "1" && mono:
		return 4 + 17
	case h.Version == "1":
		return 4 + 32
	case mono:
		return 4 + 9
	default:
		return 4 + 17
	}
}

// ParseHeader decodes a frame header. ok is false for anything that is not
// a usable frame: bad sync, reserved version, layer or sample rate, and
// the free-format or invalid bitrate indexes.
func ParseHeader(b []byte) (Header, bool) {
	if len(b) < 4 {
		return Header{}, false
	}
	v := binary.BigEndianUint(b[:4])
	if binary.Bits(v, 21, 11) != 0x7FF {
		return Header{}, false
	}

	var h Header
	switch binary.Bits(v, 19, 2) {
	case 0:
		h.Version = "2.5"
	case 2:
		h.Version = "2"
	case 3:
		h.Version = "1"
	default:
		return Header{}, false
	}

	layerBits := binary.Bits(v, 17, 2)
	if layerBits == 0 {
		return Header{}, false
	}
	h.Layer = 4 - int(layerBits)

	h.BitrateIndex = int(binary.Bits(v, 12, 4))
	if h.BitrateIndex == 0 || h.BitrateIndex == 15 {
		return Header{}, false
	}
	row := 0
	if h.Version != "1" {
		row = 1
	}
	h.Bitrate = bitrates[row][h.Layer-1][h.BitrateIndex] * 1000

	srIndex := binary.Bits(v, 10, 2)
	if srIndex == 3 {
		return Header{}, false
	}
	h.SampleRate = sampleRates[h.Version][srIndex]

	h.Protection = !binary.Flag(v, 1<<16)
	h.Padding = binary.Flag(v, 1<<9)
	h.Private = binary.Flag(v, 1<<8)
	h.ChannelMode = channelModes[binary.Bits(v, 6, 2)]
	h.ModeExtension = int(binary.Bits(v, 4, 2))
	h.Copyright = binary.Flag(v, 1<<3)
	h.Original = binary.Flag(v, 1<<2)
	h.Emphasis = emphases[binary.Bits(v, 0, 2)]

	pad := 0
	if h.Padding {
		pad = 1
	}
	switch {
	case h.Layer == 1:
		h.SamplesPerFrame = 384
		h.FrameLength = (12*h.Bitrate/h.SampleRate + pad) * 4
	case h.Layer == 2 || h.Version == "1":
		h.SamplesPerFrame = 1152
		h.FrameLength = 144*h.Bitrate/h.SampleRate + pad
	default:
		h.SamplesPerFrame = 576
		h.FrameLength = 72*h.Bitrate/h.SampleRate + pad
	}
	return h, true
}

// DataFormat returns "mp1", "mp2" or "mp3".
func (h Header) DataFormat() string {
	return [4]string{"", "mp1", "mp2", "mp3"}[h.Layer]
}

// sameStream reports whether two headers can belong to the same stream.
func sameStream(a, b Header) bool {
	return a.Version == b.Version && a.Layer == b.Layer && a.SampleRate == b.SampleRate
}
