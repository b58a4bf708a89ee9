package mp3

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

// frameHeader is MPEG-1 Layer III, 128 kbps, 44.1 kHz, stereo.
var frameHeader = []byte{0xFF, 0xFB, 0x90, 0x00}

const frameLength = 417

func audioFrames(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		f := make([]byte, frameLength)
		copy(f, frameHeader)
		buf.Write(f)
	}
	return buf.Bytes()
}

// id3v23 builds a v2.3 tag holding a single TIT2 frame.
func id3v23(title string) []byte {
	frame := []byte("TIT2")
	size := len(title) + 1
	frame = append(frame, byte(size>>24), byte(size>>16), byte(size>>8), byte(size))
	frame = append(frame, 0, 0, 0) // flags, ISO-8859-1
	frame = append(frame, title...)

	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.Write([]byte{3, 0, 0})
	s := binary.EncodeSynchsafe(uint32(len(frame)))
	buf.Write(s[:])
	buf.Write(frame)
	return buf.Bytes()
}

func id3v1Tag(title string) []byte {
	tag := make([]byte, 128)
	copy(tag, "TAG")
	copy(tag[3:], title)
	tag[127] = 17 // Rock
	return tag
}

func parse(t *testing.T, data []byte, opts registry.Options) (*types.Info, error) {
	t.Helper()
	info := types.NewInfo("test.mp3", "test.mp3", int64(len(data)))
	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.mp3")
	return info, (&parser{}).Parse(context.Background(), sr, info, opts)
}

func TestParse_TagsAndFrames(t *testing.T) {
	head := id3v23("Song")
	tail := id3v1Tag("Song")
	var data []byte
	data = append(data, head...)
	data = append(data, audioFrames(20)...)
	data = append(data, tail...)

	info, err := parse(t, data, registry.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if info.FileFormat != "mp3" || info.MIMEType != "audio/mpeg" {
		t.Errorf("format = %q %q", info.FileFormat, info.MIMEType)
	}
	if info.AVDataOffset != int64(len(head)) {
		t.Errorf("avdataoffset = %d, want %d", info.AVDataOffset, len(head))
	}
	if want := int64(len(data) - 128); info.AVDataEnd != want {
		t.Errorf("avdataend = %d, want %d", info.AVDataEnd, want)
	}
	if info.ID3v2 == nil || info.ID3v2.Comments.First("title") != "Song" {
		t.Errorf("id3v2 = %+v", info.ID3v2)
	}
	if info.ID3v1 == nil || info.ID3v1.Genre != "Rock" {
		t.Errorf("id3v1 = %+v", info.ID3v1)
	}
	if info.MPEG == nil || info.Audio == nil || info.Audio.DataFormat != "mp3" {
		t.Fatalf("audio = %+v", info.Audio)
	}
	if len(info.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", info.Warnings)
	}
}

func TestParse_TagsDisabled(t *testing.T) {
	head := id3v23("Song")
	data := append(append([]byte{}, head...), audioFrames(4)...)
	data = append(data, id3v1Tag("Song")...)

	opts := registry.DefaultOptions()
	opts.ParseID3v2 = false
	opts.ParseID3v1 = false

	info, err := parse(t, data, opts)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if info.ID3v2 != nil || info.ID3v1 != nil {
		t.Error("tags should not be walked")
	}
	if info.AVDataOffset != int64(len(head)) {
		t.Errorf("avdataoffset = %d, want %d", info.AVDataOffset, len(head))
	}
}

func TestParse_NoSync(t *testing.T) {
	data := append(id3v23("Song"), bytes.Repeat([]byte{0x55}, 1000)...)

	info, err := parse(t, data, registry.DefaultOptions())
	var corrupt *types.CorruptedFileError
	if !errors.As(err, &corrupt) {
		t.Fatalf("err = %v, want CorruptedFileError", err)
	}
	if !strings.Contains(err.Error(), "cannot find MPEG audio frame") {
		t.Errorf("err = %v", err)
	}
	// The tag and the format are still reported.
	if info.ID3v2 == nil {
		t.Error("id3v2 missing from partial result")
	}
	if info.FileFormat != "mp3" || info.MIMEType != "audio/mpeg" {
		t.Errorf("format = %q %q", info.FileFormat, info.MIMEType)
	}
}

func TestParse_NoSyncWithoutTags(t *testing.T) {
	// A v2.4 tag with a footer flag and no frames, followed by nothing.
	tag := []byte{'I', 'D', '3', 4, 0, 0x10, 0, 0, 0, 0}
	tag = append(tag, '3', 'D', 'I', 4, 0, 0x10, 0, 0, 0, 0)
	data := append(tag, bytes.Repeat([]byte{0x00}, 64)...)

	info, err := parse(t, data, registry.DefaultOptions())
	if err == nil {
		t.Fatal("expected an error without MPEG frames")
	}
	if info.FileFormat != "mp3" || info.MIMEType != "audio/mpeg" {
		t.Errorf("format = %q %q", info.FileFormat, info.MIMEType)
	}
}

func TestParse_Registered(t *testing.T) {
	if registry.Get(types.FormatMP3) == nil {
		t.Error("mp3 parser not registered")
	}
}
