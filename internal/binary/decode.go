package binary

import "math"

// BigEndianUint interprets b as an unsigned big-endian integer.
// Inputs of 0 or more than 8 bytes decode to 0.
func BigEndianUint(b []byte) uint64 {
	if len(b) == 0 || len(b) > 8 {
		return 0
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// BigEndianInt interprets b as a two's-complement big-endian integer of
// len(b) bytes.
func BigEndianInt(b []byte) int64 {
	return signExtend(BigEndianUint(b), len(b))
}

// LittleEndianUint interprets b as an unsigned little-endian integer.
func LittleEndianUint(b []byte) uint64 {
	if len(b) == 0 || len(b) > 8 {
		return 0
	}
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// LittleEndianInt interprets b as a two's-complement little-endian integer.
func LittleEndianInt(b []byte) int64 {
	return signExtend(LittleEndianUint(b), len(b))
}

func signExtend(v uint64, width int) int64 {
	if width <= 0 || width > 8 {
		return 0
	}
	if width == 8 {
		return int64(v)
	}
	shift := uint(64 - 8*width)
	return int64(v<<shift) >> shift
}

// Synchsafe decodes an ID3v2 synch-safe integer: every byte contributes its
// low 7 bits. Accepts 1 to 5 bytes; a 5-byte input (the v2.4 extended
// header CRC) keeps only its low 32 bits.
func Synchsafe(b []byte) uint32 {
	if len(b) == 0 || len(b) > 5 {
		return 0
	}
	var v uint32
	for _, c := range b {
		v = v<<7 | uint32(c&0x7F)
	}
	return v
}

// IsSynchsafe reports whether no byte of b has its high bit set.
func IsSynchsafe(b []byte) bool {
	for _, c := range b {
		if c&0x80 != 0 {
			return false
		}
	}
	return true
}

// EncodeSynchsafe is the inverse of Synchsafe for values below 1<<28.
// Higher bits are discarded.
func EncodeSynchsafe(v uint32) [4]byte {
	return [4]byte{
		byte(v>>21) & 0x7F,
		byte(v>>14) & 0x7F,
		byte(v>>7) & 0x7F,
		byte(v) & 0x7F,
	}
}

// Fixed16_16 decodes an unsigned 16.16 fixed-point number.
func Fixed16_16(b []byte) float64 {
	if len(b) != 4 {
		return 0
	}
	return float64(BigEndianUint(b)) / 65536
}

// SignedFixed16_16 decodes a signed 16.16 fixed-point number (QuickTime
// matrix entries a, b, c, d, x, y).
func SignedFixed16_16(b []byte) float64 {
	if len(b) != 4 {
		return 0
	}
	return float64(BigEndianInt(b)) / 65536
}

// Fixed8_8 decodes an unsigned 8.8 fixed-point number.
func Fixed8_8(b []byte) float64 {
	if len(b) != 2 {
		return 0
	}
	return float64(BigEndianUint(b)) / 256
}

// SignedFixed8_8 decodes a signed 8.8 fixed-point number (track volume).
func SignedFixed8_8(b []byte) float64 {
	if len(b) != 2 {
		return 0
	}
	return float64(BigEndianInt(b)) / 256
}

// Fixed2_30 decodes a signed 2.30 fixed-point number (QuickTime matrix
// entries u, v, w).
func Fixed2_30(b []byte) float64 {
	if len(b) != 4 {
		return 0
	}
	return float64(BigEndianInt(b)) / (1 << 30)
}

// Float32BE decodes a big-endian IEEE-754 single.
func Float32BE(b []byte) float64 {
	if len(b) != 4 {
		return 0
	}
	return float64(math.Float32frombits(uint32(BigEndianUint(b))))
}

// Float64BE decodes a big-endian IEEE-754 double.
func Float64BE(b []byte) float64 {
	if len(b) != 8 {
		return 0
	}
	return math.Float64frombits(BigEndianUint(b))
}

// Float80BE decodes a big-endian IEEE-754 80-bit extended float: 1 sign
// bit, 15 exponent bits and a 64-bit mantissa with an explicit integer bit.
func Float80BE(b []byte) float64 {
	if len(b) != 10 {
		return 0
	}
	sign := b[0]&0x80 != 0
	exponent := int(BigEndianUint(b[0:2]) & 0x7FFF)
	mantissa := BigEndianUint(b[2:10])

	var v float64
	switch {
	case exponent == 0 && mantissa == 0:
		v = 0
	case exponent == 0x7FFF:
		if mantissa<<1 == 0 {
			v = math.Inf(1)
		} else {
			return math.NaN()
		}
	default:
		v = math.Ldexp(float64(mantissa), exponent-16383-63)
	}
	if sign {
		v = -v
	}
	return v
}

// Bits extracts width bits of v starting offset bits above the least
// significant bit.
func Bits(v uint64, offset, width uint) uint64 {
	if width == 0 || offset >= 64 {
		return 0
	}
	if width >= 64 {
		return v >> offset
	}
	return (v >> offset) & (1<<width - 1)
}

// Flag reports whether bit mask is set in v.
func Flag(v uint64, mask uint64) bool {
	return v&mask != 0
}
