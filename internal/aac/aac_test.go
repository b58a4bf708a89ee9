package aac

import "testing"

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		objectType int
		sampleRate int
		channels   int
	}{
		{"lc 44.1k stereo", []byte{0x12, 0x10}, 2, 44100, 2},
		{"lc 48k mono", []byte{0x11, 0x88}, 2, 48000, 1},
		{"he-aac 24k stereo", []byte{0x2B, 0x10}, 5, 24000, 2},
		{"escape object type", []byte{0xF8, 0x08, 0x40}, 32, 44100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ParseConfig(tt.data)
			if !ok {
				t.Fatal("config rejected")
			}
			if c.ObjectType != tt.objectType || c.SampleRate != tt.sampleRate || c.Channels != tt.channels {
				t.Errorf("config = %+v", c)
			}
		})
	}
}

func TestParseConfig_Short(t *testing.T) {
	if _, ok := ParseConfig([]byte{0x12}); ok {
		t.Error("one byte should not decode")
	}
	if _, ok := ParseConfig(nil); ok {
		t.Error("empty input should not decode")
	}
}

func TestParseESDS(t *testing.T) {
	esds := []byte{
		0, 0, 0, 0, // version, flags
		0x03, 0x19, // ES descriptor
		0x00, 0x01, 0x00, // ES id, flags
		0x04, 0x11, // decoder config
		0x40, 0x15, 0x00, 0x06, 0x00, // object type, stream type, buffer size
		0x00, 0x01, 0xF4, 0x00, // max bitrate 128000
		0x00, 0x01, 0xF4, 0x00, // avg bitrate 128000
		0x05, 0x02, 0x12, 0x10, // AudioSpecificConfig
		0x06, 0x01, 0x02, // SL config
	}

	d, ok := ParseESDS(esds)
	if !ok {
		t.Fatal("esds rejected")
	}
	if d.ObjectTypeIndication != 0x40 {
		t.Errorf("object type indication = %#x", d.ObjectTypeIndication)
	}
	if d.MaxBitrate != 128000 || d.AvgBitrate != 128000 {
		t.Errorf("bitrates = %d/%d", d.MaxBitrate, d.AvgBitrate)
	}
	if !d.HasConfig || d.Config.ObjectType != 2 || d.Config.SampleRate != 44100 {
		t.Errorf("config = %+v", d.Config)
	}
}

func TestParseESDS_ExtendedSizes(t *testing.T) {
	// Sizes written in the four byte 0x80 0x80 0x80 nn form.
	esds := []byte{
		0, 0, 0, 0,
		0x03, 0x80, 0x80, 0x80, 0x22,
		0x00, 0x02, 0x00,
		0x04, 0x80, 0x80, 0x80, 0x14,
		0x40, 0x15, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0xFA, 0x00,
		0x05, 0x80, 0x80, 0x80, 0x02, 0x11, 0x88,
		0x06, 0x80, 0x80, 0x80, 0x01, 0x02,
	}

	d, ok := ParseESDS(esds)
	if !ok {
		t.Fatal("esds rejected")
	}
	if d.AvgBitrate != 64000 {
		t.Errorf("avg bitrate = %d", d.AvgBitrate)
	}
	if d.Config.SampleRate != 48000 || d.Config.Channels != 1 {
		t.Errorf("config = %+v", d.Config)
	}
}

func TestObjectTypeName(t *testing.T) {
	if got := ObjectTypeName(2); got != "AAC-LC" {
		t.Errorf("ObjectTypeName(2) = %q", got)
	}
	if got := ObjectTypeName(99); got != "AAC" {
		t.Errorf("ObjectTypeName(99) = %q", got)
	}
}
