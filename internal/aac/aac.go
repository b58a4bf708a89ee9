// Package aac decodes the MPEG-4 audio configuration carried by MP4 esds
// atoms and FLV AAC sequence headers.
package aac

import "github.com/simonhull/mediameta/internal/binary"

var sampleRates = [13]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000,
	22050, 16000, 12000, 11025, 8000, 7350,
}

// objectTypes maps MPEG-4 Audio Object Types to profile names.
var objectTypes = map[int]string{
	1:  "AAC Main",
	2:  "AAC-LC",
	3:  "AAC-SSR",
	4:  "AAC-LTP",
	5:  "HE-AAC",
	6:  "AAC Scalable",
	17: "ER AAC-LC",
	23: "ER AAC-LD",
	29: "HE-AAC v2",
	39: "ER AAC-ELD",
	42: "xHE-AAC",
}

// ObjectTypeName returns the profile name, or "AAC" for unlisted types.
func ObjectTypeName(aot int) string {
	if name, ok := objectTypes[aot]; ok {
		return name
	}
	return "AAC"
}

// Config is a decoded AudioSpecificConfig.
type Config struct {
	ObjectType int
	SampleRate int
	Channels   int
}

// ParseConfig decodes an AudioSpecificConfig. Channels is 0 when the
// channel configuration is carried elsewhere.
func ParseConfig(b []byte) (Config, bool) {
	br := binary.NewBitReader(b)
	var c Config

	c.ObjectType = int(br.ReadBits(5))
	if c.ObjectType == 31 {
		c.ObjectType = 32 + int(br.ReadBits(6))
	}

	idx := br.ReadBits(4)
	switch {
	case idx == 0xF:
		c.SampleRate = int(br.ReadBits(24))
	case idx < uint64(len(sampleRates)):
		c.SampleRate = sampleRates[idx]
	}

	switch ch := int(br.ReadBits(4)); {
	case ch >= 1 && ch <= 6:
		c.Channels = ch
	case ch == 7:
		c.Channels = 8
	}

	if br.Short() || c.ObjectType == 0 {
		return Config{}, false
	}
	return c, true
}

// Descriptor is the audio part of an MPEG-4 ES descriptor.
type Descriptor struct {
	ObjectTypeIndication int
	MaxBitrate           uint32
	AvgBitrate           uint32
	Config               Config
	HasConfig            bool
}

// Descriptor tags.
const (
	tagES            = 0x03
	tagDecoderConfig = 0x04
	tagDecoderInfo   = 0x05
)

// ParseESDS decodes the body of an esds atom, version and flags included.
func ParseESDS(b []byte) (Descriptor, bool) {
	if len(b) < 4 {
		return Descriptor{}, false
	}
	var d Descriptor
	found := walkDescriptors(b[4:], &d)
	return d, found
}

func walkDescriptors(b []byte, d *Descriptor) bool {
	found := false
	for len(b) >= 2 {
		tag := b[0]
		size, n := descriptorSize(b[1:])
		if n == 0 {
			return found
		}
		body := b[1+n:]
		if size < len(body) {
			body = body[:size]
		}
		b = b[min(1+n+size, len(b)):]

		switch tag {
		case tagES:
			if len(body) < 3 {
				return found
			}
			flags := body[2]
			pos := 3
			if flags&0x80 != 0 {
				pos += 2
			}
			if flags&0x40 != 0 && pos < len(body) {
				pos += 1 + int(body[pos])
			}
			if flags&0x20 != 0 {
				pos += 2
			}
			if pos < len(body) && walkDescriptors(body[pos:], d) {
				found = true
			}
		case tagDecoderConfig:
			if len(body) < 13 {
				return found
			}
			found = true
			d.ObjectTypeIndication = int(body[0])
			d.MaxBitrate = uint32(binary.BigEndianUint(body[5:9]))
			d.AvgBitrate = uint32(binary.BigEndianUint(body[9:13]))
			walkDescriptors(body[13:], d)
		case tagDecoderInfo:
			if c, ok := ParseConfig(body); ok {
				d.Config = c
				d.HasConfig = true
			}
		}
	}
	return found
}

// descriptorSize reads the 1 to 4 byte expandable size. n is 0 when the
// size is truncated.
func descriptorSize(b []byte) (size, n int) {
	for n < 4 && n < len(b) {
		v := b[n]
		n++
		size = size<<7 | int(v&0x7F)
		if v&0x80 == 0 {
			return size, n
		}
	}
	if n == 4 {
		return size, n
	}
	return 0, 0
}
