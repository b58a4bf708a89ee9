package binary

import (
	"bytes"
	"testing"
)

func TestBitReader_ReadBits(t *testing.T) {
	br := NewBitReader([]byte{0b1010_1100, 0b0101_0011})

	if v := br.ReadBits(3); v != 0b101 {
		t.Errorf("ReadBits(3) = %b", v)
	}
	if v := br.ReadBits(9); v != 0b0_1100_0101 {
		t.Errorf("ReadBits(9) = %b", v)
	}
	if br.ReadFlag() {
		t.Error("bit 13 should be clear")
	}
	if br.BitsLeft() != 3 {
		t.Errorf("BitsLeft = %d, want 3", br.BitsLeft())
	}
	if v := br.ReadBits(8); v != 0 || !br.Short() {
		t.Errorf("over-read = %d short=%v", v, br.Short())
	}
}

func TestBitReader_ExpGolomb(t *testing.T) {
	// ue: 1 -> 0, 010 -> 1, 011 -> 2, 00100 -> 3, 00111 -> 6
	// bits: 1 010 011 00100 00111 -> 1010 0110 0100 0011 1(000...)
	br := NewBitReader([]byte{0b1010_0110, 0b0100_0011, 0b1000_0000})

	want := []uint64{0, 1, 2, 3, 6}
	for i, w := range want {
		if got := br.ReadUE(); got != w {
			t.Errorf("ReadUE #%d = %d, want %d", i, got, w)
		}
	}
	if br.Short() {
		t.Error("unexpected short")
	}
}

func TestBitReader_SignedExpGolomb(t *testing.T) {
	// se: 010 -> +1, 011 -> -1, 00100 -> +2
	br := NewBitReader([]byte{0b0100_1100, 0b1000_0000})
	want := []int64{1, -1, 2}
	for i, w := range want {
		if got := br.ReadSE(); got != w {
			t.Errorf("ReadSE #%d = %d, want %d", i, got, w)
		}
	}
}

func TestBitReader_ExhaustedUE(t *testing.T) {
	br := NewBitReader([]byte{0x00})
	if v := br.ReadUE(); v != 0 || !br.Short() {
		t.Errorf("ReadUE on zeros = %d short=%v", v, br.Short())
	}
}

func TestRemoveEmulationPrevention(t *testing.T) {
	in := []byte{0x67, 0x00, 0x00, 0x03, 0x01, 0x00, 0x00, 0x03, 0x00, 0xFF}
	want := []byte{0x67, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0xFF}
	if got := RemoveEmulationPrevention(in); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}
