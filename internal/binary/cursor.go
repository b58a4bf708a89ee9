package binary

// Cursor walks a decoded buffer front to back. Once a read runs past the end
// every further read yields the zero value and Short reports true, so a
// decoder can pull a whole structure and check for truncation once.
type Cursor struct {
	buf   []byte
	pos   int
	short bool
}

// NewCursor returns a cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Pos returns the current position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	if c.pos >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.pos
}

// Short reports whether any read ran past the end of the buffer.
func (c *Cursor) Short() bool { return c.short }

// Seek moves to an absolute position.
func (c *Cursor) Seek(pos int) {
	if pos < 0 || pos > len(c.buf) {
		c.short = true
		c.pos = len(c.buf)
		return
	}
	c.pos = pos
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) {
	c.Bytes(n)
}

// Bytes returns the next n bytes without copying.
func (c *Cursor) Bytes(n int) []byte {
	if c.short || n < 0 || c.Len() < n {
		c.short = true
		c.pos = len(c.buf)
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

// Rest returns all unread bytes.
func (c *Cursor) Rest() []byte {
	if c.pos >= len(c.buf) {
		return nil
	}
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}

// Uint reads an n-byte big-endian unsigned integer.
func (c *Cursor) Uint(n int) uint64 { return BigEndianUint(c.Bytes(n)) }

// Int reads an n-byte big-endian signed integer.
func (c *Cursor) Int(n int) int64 { return BigEndianInt(c.Bytes(n)) }

func (c *Cursor) Uint8() uint8   { return uint8(c.Uint(1)) }
func (c *Cursor) Uint16() uint16 { return uint16(c.Uint(2)) }
func (c *Cursor) Uint24() uint32 { return uint32(c.Uint(3)) }
func (c *Cursor) Uint32() uint32 { return uint32(c.Uint(4)) }
func (c *Cursor) Uint64() uint64 { return c.Uint(8) }

// String reads n bytes as a string.
func (c *Cursor) String(n int) string { return string(c.Bytes(n)) }

func (c *Cursor) Fixed16_16() float64       { return Fixed16_16(c.Bytes(4)) }
func (c *Cursor) SignedFixed16_16() float64 { return SignedFixed16_16(c.Bytes(4)) }
func (c *Cursor) Fixed8_8() float64         { return Fixed8_8(c.Bytes(2)) }
func (c *Cursor) SignedFixed8_8() float64   { return SignedFixed8_8(c.Bytes(2)) }
func (c *Cursor) Fixed2_30() float64        { return Fixed2_30(c.Bytes(4)) }
func (c *Cursor) Float64() float64          { return Float64BE(c.Bytes(8)) }
