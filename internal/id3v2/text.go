package id3v2

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Text encoding bytes.
const (
	encISO88591 = 0
	encUTF16    = 1
	encUTF16BE  = 2
	encUTF8     = 3
)

func encodingName(enc byte) string {
	switch enc {
	case encISO88591:
		return "ISO-8859-1"
	case encUTF16:
		return "UTF-16"
	case encUTF16BE:
		return "UTF-16BE"
	case encUTF8:
		return "UTF-8"
	default:
		return ""
	}
}

func decoderFor(enc byte) encoding.Encoding {
	switch enc {
	case encUTF16:
		// Missing BOMs are read as big-endian.
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case encUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case encUTF8:
		return unicode.UTF8
	default:
		return charmap.ISO8859_1
	}
}

// decodeText converts a frame string to UTF-8 and strips trailing NULs.
// Unknown encodings are read as ISO-8859-1.
func decodeText(data []byte, enc byte) string {
	if len(data) == 0 {
		return ""
	}
	if (enc == encUTF16 || enc == encUTF16BE) && len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	out, err := decoderFor(enc).NewDecoder().Bytes(data)
	if err != nil {
		out = data
	}
	return strings.TrimRight(strings.ToValidUTF8(string(out), "�"), "\x00")
}

// terminatorSize returns the size of the string terminator for enc.
func terminatorSize(enc byte) int {
	if enc == encUTF16 || enc == encUTF16BE {
		return 2
	}
	return 1
}

// splitTerminated splits data at the first string terminator for enc.
// When there is none, the whole input is returned as head.
func splitTerminated(data []byte, enc byte) (head, rest []byte, found bool) {
	if terminatorSize(enc) == 1 {
		i := bytes.IndexByte(data, 0)
		if i < 0 {
			return data, nil, false
		}
		return data[:i], data[i+1:], true
	}
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return data[:i], data[i+2:], true
		}
	}
	return data, nil, false
}

// splitValues decodes a NUL separated list of strings.
func splitValues(data []byte, enc byte) []string {
	var values []string
	bom := []byte(nil)
	for len(data) > 0 {
		head, rest, found := splitTerminated(data, enc)
		// Each UTF-16 value after the first may omit its BOM.
		if enc == encUTF16 {
			if hasBOM(head) {
				bom = head[:2]
			} else if bom != nil && len(head) > 0 {
				head = append(append([]byte{}, bom...), head...)
			}
		}
		if s := decodeText(head, enc); s != "" {
			values = append(values, s)
		}
		if !found {
			break
		}
		data = rest
	}
	return values
}

func hasBOM(b []byte) bool {
	return len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF))
}
