package flv

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/simonhull/mediameta/internal/binary"
)

// AMF0 type markers.
const (
	amfNumber      = 0x00
	amfBoolean     = 0x01
	amfString      = 0x02
	amfObject      = 0x03
	amfMovieClip   = 0x04
	amfNull        = 0x05
	amfUndefined   = 0x06
	amfReference   = 0x07
	amfECMAArray   = 0x08
	amfObjectEnd   = 0x09
	amfStrictArray = 0x0A
	amfDate        = 0x0B
	amfLongString  = 0x0C
)

// maxAMFDepth bounds nested objects and arrays.
const maxAMFDepth = 16

var errAMFTruncated = errors.New("AMF data is truncated")

// amfReader decodes AMF0 values from a script tag body.
type amfReader struct {
	c *binary.Cursor
}

func newAMFReader(b []byte) *amfReader {
	return &amfReader{c: binary.NewCursor(b)}
}

// value reads one typed value.
func (r *amfReader) value(depth int) (any, error) {
	if depth > maxAMFDepth {
		return nil, fmt.Errorf("AMF values nested deeper than %d levels", maxAMFDepth)
	}
	marker := r.c.Uint8()
	if r.c.Short() {
		return nil, errAMFTruncated
	}

	var v any
	switch marker {
	case amfNumber:
		v = r.c.Float64()
	case amfBoolean:
		v = r.c.Uint8() != 0
	case amfString:
		v = r.c.String(int(r.c.Uint16()))
	case amfLongString:
		v = r.c.String(int(r.c.Uint32()))
	case amfObject:
		return r.object(depth)
	case amfECMAArray:
		r.c.Skip(4) // approximate count, the end marker is authoritative
		return r.object(depth)
	case amfStrictArray:
		n := r.c.Uint32()
		arr := make([]any, 0, min(n, 1024))
		for i := uint32(0); i < n; i++ {
			item, err := r.value(depth + 1)
			if err != nil {
				return arr, err
			}
			arr = append(arr, item)
		}
		return arr, nil
	case amfDate:
		ms := r.c.Float64()
		r.c.Skip(2) // time zone, unused
		if !math.IsNaN(ms) && !math.IsInf(ms, 0) {
			v = time.UnixMilli(int64(ms)).UTC()
		}
	case amfReference:
		v = float64(r.c.Uint16())
	case amfNull, amfUndefined:
		v = nil
	default:
		return nil, fmt.Errorf("unsupported AMF type 0x%02X", marker)
	}
	if r.c.Short() {
		return nil, errAMFTruncated
	}
	return v, nil
}

// object reads name/value pairs up to the 00 00 09 end marker.
func (r *amfReader) object(depth int) (map[string]any, error) {
	obj := map[string]any{}
	for {
		name := r.c.String(int(r.c.Uint16()))
		if r.c.Short() {
			return obj, errAMFTruncated
		}
		if name == "" {
			if b := r.c.Uint8(); b == amfObjectEnd || r.c.Short() {
				return obj, nil
			}
			return obj, errors.New("AMF object end marker missing")
		}
		v, err := r.value(depth + 1)
		if err != nil {
			return obj, err
		}
		obj[name] = v
	}
}
