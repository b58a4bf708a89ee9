package id3v2

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"testing"
	"time"

	binutil "github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"
)

// buildTag wraps body in a tag header of the given version.
func buildTag(major, flags byte, body []byte) []byte {
	size := binutil.EncodeSynchsafe(uint32(len(body)))
	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.Write([]byte{major, 0, flags})
	buf.Write(size[:])
	buf.Write(body)
	return buf.Bytes()
}

// frameV3 builds an ID3v2.3 frame.
func frameV3(id string, flags uint16, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	binary.Write(&buf, binary.BigEndian, flags)
	buf.Write(data)
	return buf.Bytes()
}

// frameV4 builds an ID3v2.4 frame with a synch-safe size.
func frameV4(id string, flags uint16, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	size := binutil.EncodeSynchsafe(uint32(len(data)))
	buf.Write(size[:])
	binary.Write(&buf, binary.BigEndian, flags)
	buf.Write(data)
	return buf.Bytes()
}

// frameV2 builds an ID3v2.2 frame.
func frameV2(id string, data []byte) []byte {
	n := len(data)
	return append([]byte{id[0], id[1], id[2], byte(n >> 16), byte(n >> 8), byte(n)}, data...)
}

func text(enc byte, s string) []byte {
	return append([]byte{enc}, s...)
}

func parse(t *testing.T, data []byte, opts registry.Options) (*types.Info, int64) {
	t.Helper()
	info := types.NewInfo("test.mp3", "test.mp3", int64(len(data)))
	sr := binutil.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.mp3")
	end, err := Parse(context.Background(), sr, 0, info, opts)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return info, end
}

func TestParse_MinimalV23Header(t *testing.T) {
	body := make([]byte, 257) // all padding
	data := buildTag(3, 0, body)

	info, end := parse(t, data, registry.DefaultOptions())
	tag := info.ID3v2
	if tag == nil {
		t.Fatal("no ID3v2 tag recorded")
	}
	if tag.MajorVersion != 3 || tag.MinorVersion != 0 {
		t.Errorf("version = %d.%d, want 3.0", tag.MajorVersion, tag.MinorVersion)
	}
	if tag.HeaderLength != 257+10 {
		t.Errorf("headerlength = %d, want %d", tag.HeaderLength, 267)
	}
	if end != 267 {
		t.Errorf("end = %d, want 267", end)
	}
	if !tag.PaddingValid || tag.PaddingLength != 257 {
		t.Errorf("padding = %d valid=%v", tag.PaddingLength, tag.PaddingValid)
	}
	if len(info.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", info.Warnings)
	}
}

func TestParse_V23TextFrames(t *testing.T) {
	var body []byte
	body = append(body, frameV3("TIT2", 0, text(0, "Caf\xe9"))...)
	body = append(body, frameV3("TPE1", 0, append([]byte{1, 0xFF, 0xFE}, 'A', 0, 'b', 0))...)
	body = append(body, frameV3("TRCK", 0, text(0, "3/12"))...)
	body = append(body, frameV3("TCON", 0, text(0, "(17)(RX)Rock"))...)
	body = append(body, frameV3("TXXX", 0, text(0, "MOOD\x00Calm"))...)
	body = append(body, frameV3("COMM", 0, text(0, "eng\x00Hello"))...)
	body = append(body, frameV3("COMM", 0, text(0, "engiTunNORM\x00 0000"))...)
	body = append(body, frameV3("WOAR", 0, []byte("http://example.com"))...)
	body = append(body, make([]byte, 20)...)

	info, _ := parse(t, buildTag(3, 0, body), registry.DefaultOptions())
	c := info.ID3v2.Comments

	tests := []struct {
		key  string
		want []string
	}{
		{"title", []string{"Café"}},
		{"artist", []string{"Ab"}},
		{"track_number", []string{"3/12"}},
		{"genre", []string{"Rock", "Remix"}},
		{"mood", []string{"Calm"}},
		{"comment", []string{"Hello"}},
		{"url_artist", []string{"http://example.com"}},
	}
	for _, tt := range tests {
		got := c[tt.key]
		if len(got) != len(tt.want) {
			t.Errorf("%s = %v, want %v", tt.key, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s[%d] = %q, want %q", tt.key, i, got[i], tt.want[i])
			}
		}
	}
	if len(info.ID3v2.Frames) != 8 {
		t.Errorf("frames = %d, want 8", len(info.ID3v2.Frames))
	}
}

func TestParse_V24MultiValueAndUTF8(t *testing.T) {
	var body []byte
	body = append(body, frameV4("TPE1", 0, text(3, "Björk\x00Thom"))...)
	body = append(body, frameV4("TDRC", 0, text(3, "2001-08-27"))...)
	body = append(body, make([]byte, 10)...)

	info, _ := parse(t, buildTag(4, 0, body), registry.DefaultOptions())
	c := info.ID3v2.Comments
	if got := c["artist"]; len(got) != 2 || got[0] != "Björk" || got[1] != "Thom" {
		t.Errorf("artist = %v", got)
	}
	if c.First("year") != "2001" || c.First("recording_time") != "2001-08-27" {
		t.Errorf("year = %q recording_time = %q", c.First("year"), c.First("recording_time"))
	}
}

func TestParse_V24NonSynchsafeFrameSize(t *testing.T) {
	// A 200-byte value written with a plain big-endian size (0x000000C8)
	// has its high bit set and must be read as big-endian.
	value := bytes.Repeat([]byte("x"), 199)
	f := []byte("TIT2")
	f = binary.BigEndian.AppendUint32(f, 200)
	f = append(f, 0, 0, 0)
	f = append(f, value...)
	body := append(f, frameV4("TALB", 0, text(0, "Album"))...)

	info, _ := parse(t, buildTag(4, 0, body), registry.DefaultOptions())
	if got := info.ID3v2.Comments.First("album"); got != "Album" {
		t.Errorf("album = %q; frame after a big-endian size was lost", got)
	}
}

func TestParse_V22(t *testing.T) {
	var body []byte
	body = append(body, frameV2("TT2", text(0, "Old"))...)
	body = append(body, frameV2("TCO", text(0, "(13)"))...)
	body = append(body, frameV2("PIC", append(text(0, "PNG"), append([]byte{3, 'c', 0}, "\x89PNG\r\n\x1a\n"...)...))...)

	info, _ := parse(t, buildTag(2, 0, body), registry.DefaultOptions())
	c := info.ID3v2.Comments
	if c.First("title") != "Old" {
		t.Errorf("title = %q", c.First("title"))
	}
	if c.First("genre") != "Pop" {
		t.Errorf("genre = %q", c.First("genre"))
	}
	if len(info.Pictures) != 1 {
		t.Fatalf("pictures = %d, want 1", len(info.Pictures))
	}
	p := info.Pictures[0]
	if p.MIMEType != "image/png" || p.Type != types.PictureFrontCover || p.Description != "c" {
		t.Errorf("picture = %+v", p)
	}
	if p.Data != nil {
		t.Error("picture data loaded without being requested")
	}
}

func TestParse_APICData(t *testing.T) {
	img := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3, 4}
	apic := append(text(0, "\x00"), 4)
	apic = append(apic, 0)
	apic = append(apic, img...)
	body := frameV3("APIC", 0, apic)

	opts := registry.DefaultOptions()
	opts.PictureData = true
	info, _ := parse(t, buildTag(3, 0, body), opts)

	if len(info.Pictures) != 1 {
		t.Fatalf("pictures = %d", len(info.Pictures))
	}
	p := info.Pictures[0]
	if p.MIMEType != "image/jpeg" {
		t.Errorf("sniffed MIME = %q", p.MIMEType)
	}
	if p.Type != types.PictureBackCover {
		t.Errorf("type = %v", p.Type)
	}
	if !bytes.Equal(p.Data, img) {
		t.Errorf("data = % x", p.Data)
	}
	// Header (10) + frame header (10) + encoding, MIME NUL, type, desc NUL.
	if p.Offset != 24 {
		t.Errorf("offset = %d, want 24", p.Offset)
	}

	opts.MaxPictureBytes = 4
	info, _ = parse(t, buildTag(3, 0, body), opts)
	if info.Pictures[0].Data != nil || len(info.Warnings) != 1 {
		t.Errorf("oversized picture: data=%v warnings=%v", info.Pictures[0].Data, info.Warnings)
	}
}

func TestParse_Chapters(t *testing.T) {
	chap := func(id string, start, end uint32, title string) []byte {
		d := append([]byte(id), 0)
		d = binary.BigEndian.AppendUint32(d, start)
		d = binary.BigEndian.AppendUint32(d, end)
		d = append(d, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		if title != "" {
			d = append(d, frameV3("TIT2", 0, text(0, title))...)
		}
		return frameV3("CHAP", 0, d)
	}
	body := append(chap("ch2", 60000, 120000, "Second"), chap("ch1", 0, 60000, "")...)

	info, _ := parse(t, buildTag(3, 0, body), registry.DefaultOptions())
	if len(info.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(info.Chapters))
	}
	first, second := info.Chapters[0], info.Chapters[1]
	if first.Index != 1 || first.Title != "ch1" || first.EndTime != time.Minute {
		t.Errorf("first = %+v", first)
	}
	if second.Index != 2 || second.Title != "Second" || second.StartTime != time.Minute {
		t.Errorf("second = %+v", second)
	}
}

func TestParse_Unsynchronisation(t *testing.T) {
	// Frame sizes count the bytes after the 0x00 stuffing is removed.
	frame := frameV3("TIT2", 0, []byte{0, 'a', 0xFF, 'b'})
	stuffed := bytes.ReplaceAll(frame, []byte{0xFF}, []byte{0xFF, 0x00})

	info, _ := parse(t, buildTag(3, flagUnsync, stuffed), registry.DefaultOptions())
	if got := info.ID3v2.Comments.First("title"); got != "a\u00ffb" {
		t.Errorf("title = %q", got)
	}
	if !info.ID3v2.Flags.Unsynchronisation {
		t.Error("unsync flag not recorded")
	}
}

func TestParse_CompressedFrameV24(t *testing.T) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	zw.Write(text(0, "Squeezed"))
	zw.Close()

	payload := binutil.EncodeSynchsafe(uint32(len(text(0, "Squeezed"))))
	data := append(payload[:], z.Bytes()...)
	body := frameV4("TIT2", 0x0008|0x0001, data)

	info, _ := parse(t, buildTag(4, 0, body), registry.DefaultOptions())
	if got := info.ID3v2.Comments.First("title"); got != "Squeezed" {
		t.Errorf("title = %q, warnings = %v", got, info.Warnings)
	}
}

func TestParse_ExtendedHeaderV23(t *testing.T) {
	ext := []byte{0, 0, 0, 6, 0, 0, 0, 0, 0, 16}
	body := append(ext, frameV3("TIT2", 0, text(0, "X"))...)
	body = append(body, make([]byte, 16)...)

	info, _ := parse(t, buildTag(3, flagExtended, body), registry.DefaultOptions())
	if info.ID3v2.ExtendedHeader == nil || info.ID3v2.ExtendedHeader.PaddingSize != 16 {
		t.Fatalf("extended header = %+v", info.ID3v2.ExtendedHeader)
	}
	if info.ID3v2.Comments.First("title") != "X" {
		t.Error("frame after extended header not read")
	}
}

func TestParse_Warnings(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"non-zero padding", buildTag(3, 0, append(frameV3("TIT2", 0, text(0, "X")), 0, 0, 'j', 'u', 'n', 'k'))},
		{"frame past end", buildTag(3, 0, []byte("TIT2\x00\x00\x01\x00\x00\x00abc"))},
		{"encrypted frame", buildTag(3, 0, frameV3("TIT2", 0x0040, []byte{1, 0, 'x'}))},
		{"unsupported version", buildTag(5, 0, make([]byte, 10))},
		{"truncated tag", []byte("ID3\x03\x00\x00\x00\x00\x10\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, _ := parse(t, tt.data, registry.DefaultOptions())
			if len(info.Warnings) == 0 {
				t.Error("expected a warning")
			}
			for _, w := range info.Warnings {
				if w.Stage != "id3v2" {
					t.Errorf("stage = %q", w.Stage)
				}
			}
		})
	}
}

func TestParse_NoTag(t *testing.T) {
	info, end := parse(t, []byte{0xFF, 0xFB, 0x90, 0x00, 0, 0, 0, 0, 0, 0, 0}, registry.DefaultOptions())
	if end != 0 || info.ID3v2 != nil {
		t.Errorf("end = %d tag = %v", end, info.ID3v2)
	}
}

func TestParse_Cancelled(t *testing.T) {
	data := buildTag(3, 0, frameV3("TIT2", 0, text(0, "X")))
	sr := binutil.NewSafeReader(bytes.NewReader(data), int64(len(data)), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, sr, 0, types.NewInfo("x", "x", int64(len(data))), registry.DefaultOptions())
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestResolveGenres(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"(13)", []string{"Pop"}},
		{"13", []string{"Pop"}},
		{"(RX)(CR)", []string{"Remix", "Cover"}},
		{"(4)Eurodisco", []string{"Disco", "Eurodisco"}},
		{"((Parenthesised)", []string{"(Parenthesised)"}},
		{"Shoegaze", []string{"Shoegaze"}},
		{"(999)", nil},
	}
	for _, tt := range tests {
		got := resolveGenres(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("resolveGenres(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("resolveGenres(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
