package mpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	binutil "github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

// mpeg1L3 is MPEG-1 Layer III, 128 kbps, 44.1 kHz, stereo, no CRC.
var mpeg1L3 = []byte{0xFF, 0xFB, 0x90, 0x00}

// frames builds n consecutive frames of the given header.
func frames(header []byte, n int) []byte {
	h, ok := ParseHeader(header)
	if !ok {
		panic("bad test header")
	}
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		f := make([]byte, h.FrameLength)
		copy(f, header)
		buf.Write(f)
	}
	return buf.Bytes()
}

func analyze(t *testing.T, data []byte, start int64) (*types.Info, error) {
	t.Helper()
	info := types.NewInfo("test.mp3", "test.mp3", int64(len(data)))
	info.AVDataOffset = start
	sr := binutil.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.mp3")
	return info, Analyze(context.Background(), sr, info, registry.DefaultOptions())
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name       string
		header     []byte
		version    string
		layer      int
		bitrate    int
		sampleRate int
		mode       string
		length     int
	}{
		{"mpeg1 layer3 128k", mpeg1L3, "1", 3, 128000, 44100, "stereo", 417},
		{"mpeg1 layer3 padded mono", []byte{0xFF, 0xFB, 0x92, 0xC0}, "1", 3, 128000, 44100, "mono", 418},
		{"mpeg2 layer3 64k", []byte{0xFF, 0xF3, 0x80, 0x40}, "2", 3, 64000, 22050, "joint stereo", 208},
		{"mpeg2.5 layer3 32k", []byte{0xFF, 0xE3, 0x40, 0x00}, "2.5", 3, 32000, 11025, "stereo", 208},
		{"mpeg1 layer2 192k", []byte{0xFF, 0xFD, 0xA4, 0x00}, "1", 2, 192000, 48000, "stereo", 576},
		{"mpeg1 layer1 384k", []byte{0xFF, 0xFF, 0xC4, 0x00}, "1", 1, 384000, 48000, "stereo", 384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := ParseHeader(tt.header)
			if !ok {
				t.Fatal("header rejected")
			}
			if h.Version != tt.version || h.Layer != tt.layer {
				t.Errorf("version/layer = %s/%d", h.Version, h.Layer)
			}
			if h.Bitrate != tt.bitrate || h.SampleRate != tt.sampleRate {
				t.Errorf("bitrate/rate = %d/%d", h.Bitrate, h.SampleRate)
			}
			if h.ChannelMode != tt.mode {
				t.Errorf("mode = %q", h.ChannelMode)
			}
			if h.FrameLength != tt.length {
				t.Errorf("frame length = %d, want %d", h.FrameLength, tt.length)
			}
		})
	}
}

func TestParseHeader_Rejects(t *testing.T) {
	tests := [][]byte{
		{0xFF, 0xFB, 0x90},       // short
		{0xFE, 0xFB, 0x90, 0x00}, // no sync
		{0xFF, 0xEB, 0x90, 0x00}, // reserved version
		{0xFF, 0xF9, 0x90, 0x00}, // reserved layer
		{0xFF, 0xFB, 0xF0, 0x00}, // bad bitrate
		{0xFF, 0xFB, 0x00, 0x00}, // free format
		{0xFF, 0xFB, 0x9C, 0x00}, // reserved sample rate
	}
	for _, b := range tests {
		if _, ok := ParseHeader(b); ok {
			t.Errorf("ParseHeader(% x) accepted", b)
		}
	}
}

func TestAnalyze_CBR(t *testing.T) {
	junk := []byte{0, 0, 0xFF, 0x00, 0xFF, 0xFB} // false sync at 4
	data := append(junk, frames(mpeg1L3, 10)...)

	info, err := analyze(t, data, 0)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if info.AVDataOffset != int64(len(junk)) {
		t.Errorf("avdataoffset = %d, want %d", info.AVDataOffset, len(junk))
	}
	if len(info.Warnings) != 1 {
		t.Errorf("warnings = %v", info.Warnings)
	}
	if info.MPEG.BitrateMode != "cbr" || info.Audio.BitrateMode != "cbr" {
		t.Errorf("bitrate mode = %q", info.MPEG.BitrateMode)
	}
	if info.Audio.DataFormat != "mp3" || info.Audio.Channels != 2 || info.Audio.SampleRate != 44100 {
		t.Errorf("audio = %+v", info.Audio)
	}
	want := float64(4170*8) / 128000
	if math.Abs(info.PlaytimeSeconds-want) > 1e-9 {
		t.Errorf("playtime = %v, want %v", info.PlaytimeSeconds, want)
	}
}

func TestAnalyze_XingLAME(t *testing.T) {
	data := frames(mpeg1L3, 5)

	x := data[36:]
	copy(x, "Xing")
	binary.BigEndian.PutUint32(x[4:], xingFrames|xingBytes)
	binary.BigEndian.PutUint32(x[8:], 1000)
	binary.BigEndian.PutUint32(x[12:], 200000)
	lame := x[16:]
	copy(lame, "LAME3.99r")
	lame[9] = 0x04 // revision 0, VBR method 4
	lame[10] = 195 // 19.5 kHz lowpass
	lame[21], lame[22], lame[23] = 0x24, 0x00, 0x10

	info, err := analyze(t, data, 0)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	m := info.MPEG
	if m.VBR == nil || m.VBR.Method != "xing" || m.VBR.Frames != 1000 || m.VBR.Bytes != 200000 {
		t.Fatalf("vbr = %+v", m.VBR)
	}
	if m.LAME == nil || m.LAME.Encoder != "LAME3.99r" || m.LAME.LowpassHz != 19500 {
		t.Fatalf("lame = %+v", m.LAME)
	}
	if m.LAME.EncoderDelay != 576 || m.LAME.EndPadding != 16 {
		t.Errorf("delay/padding = %d/%d", m.LAME.EncoderDelay, m.LAME.EndPadding)
	}
	if m.BitrateMode != "vbr" {
		t.Errorf("bitrate mode = %q", m.BitrateMode)
	}

	seconds := 1000 * 1152 / 44100.0
	if math.Abs(info.PlaytimeSeconds-seconds) > 1e-9 {
		t.Errorf("playtime = %v, want %v", info.PlaytimeSeconds, seconds)
	}
	if math.Abs(info.Audio.Bitrate-200000*8/seconds) > 1e-6 {
		t.Errorf("bitrate = %v", info.Audio.Bitrate)
	}
	if info.Audio.Encoder != "LAME3.99r" {
		t.Errorf("encoder = %q", info.Audio.Encoder)
	}
}

func TestAnalyze_InfoIsCBR(t *testing.T) {
	data := frames(mpeg1L3, 3)
	copy(data[36:], "Info")

	info, err := analyze(t, data, 0)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if info.MPEG.VBR == nil || info.MPEG.BitrateMode != "cbr" {
		t.Errorf("vbr = %+v mode = %q", info.MPEG.VBR, info.MPEG.BitrateMode)
	}
}

func TestAnalyze_VBRI(t *testing.T) {
	data := frames(mpeg1L3, 3)
	v := data[36:]
	copy(v, "VBRI")
	binary.BigEndian.PutUint16(v[8:], 75)
	binary.BigEndian.PutUint32(v[10:], 50000)
	binary.BigEndian.PutUint32(v[14:], 300)

	info, err := analyze(t, data, 0)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if info.MPEG.VBR == nil || info.MPEG.VBR.Method != "vbri" || info.MPEG.VBR.Frames != 300 {
		t.Fatalf("vbr = %+v", info.MPEG.VBR)
	}
}

func TestAnalyze_NoSync(t *testing.T) {
	_, err := analyze(t, bytes.Repeat([]byte{0x12}, 5000), 0)
	if !errors.Is(err, ErrNoSync) {
		t.Errorf("err = %v, want ErrNoSync", err)
	}

	// A lone header whose successor does not match is not a frame.
	data := append(frames(mpeg1L3, 1), 0x00, 0x01, 0x02, 0x03, 0x04)
	if _, err := analyze(t, data, 0); !errors.Is(err, ErrNoSync) {
		t.Errorf("unconfirmed header: err = %v", err)
	}
}

func TestAnalyze_Cancelled(t *testing.T) {
	data := frames(mpeg1L3, 2)
	info := types.NewInfo("x", "x", int64(len(data)))
	sr := binutil.NewSafeReader(bytes.NewReader(data), int64(len(data)), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Analyze(ctx, sr, info, registry.DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
