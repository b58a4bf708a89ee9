package quicktime

import (
	"bytes"
	"testing"

	binutil "github.com/simonhull/mediameta/internal/binary"
)

func TestReadAtomHeader(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		parentEnd  int64
		wantName   string
		wantSize   int64
		wantHeader int
	}{
		{"plain", cat(u32(16), []byte("moov"), make([]byte, 8)), 16, "moov", 16, 8},
		{"to end of parent", cat(u32(0), []byte("mdat"), make([]byte, 24)), 32, "mdat", 32, 8},
		{"64-bit size", cat(u32(1), []byte("mdat"), u64(20), make([]byte, 4)), 20, "mdat", 20, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := binutil.NewSafeReader(bytes.NewReader(tt.data), int64(len(tt.data)), "test")
			h, err := readAtomHeader(sr, 0, tt.parentEnd)
			if err != nil {
				t.Fatalf("readAtomHeader() error = %v", err)
			}
			if h.name != tt.wantName || h.size != tt.wantSize || h.headerSize != tt.wantHeader {
				t.Errorf("header = %+v", h)
			}
			if h.dataOffset() != int64(tt.wantHeader) || h.end() != tt.wantSize {
				t.Errorf("data offset %d, end %d", h.dataOffset(), h.end())
			}
		})
	}
}

func TestReadAtomHeader_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 0, 8, 'm'}},
		{"short extended size", cat(u32(1), []byte("mdat"), u32(0))},
		{"extended size overflow", cat(u32(1), []byte("mdat"), u64(1<<63))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := binutil.NewSafeReader(bytes.NewReader(tt.data), int64(len(tt.data)), "test")
			if _, err := readAtomHeader(sr, 0, int64(len(tt.data))); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		code uint16
		want string
	}{
		{0x15C7, "eng"},
		{0x55C4, "und"},
		{0, "eng"},
		{2, "deu"},
		{500, ""},
		{0x7FFF, ""},
	}
	for _, tt := range tests {
		if got := languageCode(tt.code); got != tt.want {
			t.Errorf("languageCode(%#x) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestRotation(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{1, 0, 0},
		{0, 1, 90},
		{-1, 0, 180},
		{0, -1, 270},
		{0, 0, 0},
	}
	for _, tt := range tests {
		m := [9]float64{tt.a, tt.b, 0, -tt.b, tt.a, 0, 0, 0, 1}
		if got := rotation(m); got != tt.want {
			t.Errorf("rotation(a=%v, b=%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestHandlerName(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("SoundHandler\x00"), "SoundHandler"},
		{append([]byte{12}, "Apple Sound "...), "Apple Sound"},
		{[]byte{0}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := handlerName(tt.in); got != tt.want {
			t.Errorf("handlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintable(t *testing.T) {
	if got := printable("\xA9nam"); got != "©nam" {
		t.Errorf("printable = %q", got)
	}
	if got := printable("moov"); got != "moov" {
		t.Errorf("printable = %q", got)
	}
	if got := printable("\x00\x00\x00\x01"); got != "0x00000001" {
		t.Errorf("printable = %q", got)
	}
}

func TestChildren(t *testing.T) {
	b := cat(box("esds", u32(0)), box("avcC", []byte{1, 2}), []byte{0, 0, 0, 99, 'x'})
	got := children(b)
	if len(got) != 2 {
		t.Fatalf("children = %d, want 2", len(got))
	}
	if got[0].name != "esds" || len(got[0].data) != 4 || got[1].name != "avcC" {
		t.Errorf("children = %+v", got)
	}
}
