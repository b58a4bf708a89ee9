package binary

// BitReader reads MSB-first bit fields from a byte slice. Reads past the end
// return zero and set Short.
type BitReader struct {
	buf   []byte
	pos   uint // bit position
	short bool
}

// NewBitReader returns a reader positioned at the first bit of b.
func NewBitReader(b []byte) *BitReader {
	return &BitReader{buf: b}
}

// Short reports whether a read ran past the end.
func (br *BitReader) Short() bool { return br.short }

// BitsLeft returns the number of unread bits.
func (br *BitReader) BitsLeft() int {
	total := uint(len(br.buf)) * 8
	if br.pos >= total {
		return 0
	}
	return int(total - br.pos)
}

// ReadBits reads n (at most 64) bits.
func (br *BitReader) ReadBits(n uint) uint64 {
	if n == 0 {
		return 0
	}
	if n > 64 || int(n) > br.BitsLeft() {
		br.short = true
		br.pos = uint(len(br.buf)) * 8
		return 0
	}
	var v uint64
	for i := uint(0); i < n; i++ {
		b := br.buf[br.pos>>3]
		bit := (b >> (7 - br.pos&7)) & 1
		v = v<<1 | uint64(bit)
		br.pos++
	}
	return v
}

// ReadFlag reads a single bit.
func (br *BitReader) ReadFlag() bool {
	return br.ReadBits(1) == 1
}

// Skip discards n bits.
func (br *BitReader) Skip(n uint) {
	for n > 64 {
		br.ReadBits(64)
		n -= 64
	}
	br.ReadBits(n)
}

// ReadUE reads an unsigned exp-Golomb code.
func (br *BitReader) ReadUE() uint64 {
	zeros := uint(0)
	for !br.short && br.ReadBits(1) == 0 {
		zeros++
		if zeros > 32 {
			br.short = true
			return 0
		}
	}
	if br.short {
		return 0
	}
	return (1<<zeros - 1) + br.ReadBits(zeros)
}

// ReadSE reads a signed exp-Golomb code.
func (br *BitReader) ReadSE() int64 {
	k := br.ReadUE()
	if k&1 == 1 {
		return int64((k + 1) / 2)
	}
	return -int64(k / 2)
}

// RemoveEmulationPrevention strips the 0x03 byte from every 00 00 03
// sequence of an H.264 NAL unit payload.
func RemoveEmulationPrevention(nal []byte) []byte {
	out := make([]byte, 0, len(nal))
	zeros := 0
	for _, b := range nal {
		if zeros >= 2 && b == 0x03 {
			zeros = 0
			continue
		}
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
		out = append(out, b)
	}
	return out
}
