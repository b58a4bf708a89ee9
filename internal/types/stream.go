package types

import "fmt"

// AudioInfo describes the primary audio stream.
type AudioInfo struct {
	DataFormat       string  `json:"dataformat,omitempty"`
	Codec            string  `json:"codec,omitempty"`
	SampleRate       int     `json:"sample_rate,omitempty"`
	Channels         int     `json:"channels,omitempty"`
	ChannelMode      string  `json:"channelmode,omitempty"`
	BitsPerSample    int     `json:"bits_per_sample,omitempty"`
	Bitrate          float64 `json:"bitrate,omitempty"`
	BitrateMode      string  `json:"bitrate_mode,omitempty"`
	Lossless         bool    `json:"lossless"`
	Encoder          string  `json:"encoder,omitempty"`
	CompressionRatio float64 `json:"compression_ratio,omitempty"`
}

// String returns a short description such as "mp3 44.1kHz stereo 128kbps".
func (a AudioInfo) String() string {
	parts := []string{a.DataFormat}
	if a.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("%.1fkHz", float64(a.SampleRate)/1000))
	}
	if a.BitsPerSample > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", a.BitsPerSample))
	}
	parts = append(parts, ChannelDescription(a.Channels))
	switch {
	case a.Lossless:
		parts = append(parts, "lossless")
	case a.Bitrate > 0:
		q := fmt.Sprintf("%.0fkbps", a.Bitrate/1000)
		if a.BitrateMode == "vbr" {
			q += " VBR"
		}
		parts = append(parts, q)
	}
	return join(parts, " ")
}

// VideoInfo describes the primary video stream.
type VideoInfo struct {
	DataFormat       string  `json:"dataformat,omitempty"`
	Codec            string  `json:"codec,omitempty"`
	ResolutionX      int     `json:"resolution_x,omitempty"`
	ResolutionY      int     `json:"resolution_y,omitempty"`
	FrameRate        float64 `json:"frame_rate,omitempty"`
	Rotate           float64 `json:"rotate,omitempty"`
	PixelAspectRatio float64 `json:"pixel_aspect_ratio,omitempty"`
	BitsPerSample    int     `json:"bits_per_sample,omitempty"`
	Bitrate          float64 `json:"bitrate,omitempty"`
	Lossless         bool    `json:"lossless"`
	CompressionRatio float64 `json:"compression_ratio,omitempty"`
}

// String returns a short description such as "h264 1920x1080 25fps".
func (v VideoInfo) String() string {
	parts := []string{v.DataFormat}
	if v.Codec != "" && v.Codec != v.DataFormat {
		parts = append(parts, v.Codec)
	}
	if v.ResolutionX > 0 && v.ResolutionY > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", v.ResolutionX, v.ResolutionY))
	}
	if v.FrameRate > 0 {
		parts = append(parts, fmt.Sprintf("%sfps", trimFloat(v.FrameRate)))
	}
	return join(parts, " ")
}

// ChannelDescription returns a human-readable channel layout.
func ChannelDescription(channels int) string {
	switch channels {
	case 0:
		return ""
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 4:
		return "quad"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// join concatenates strings with a separator, skipping empty strings.
func join(parts []string, sep string) string {
	var result string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if result != "" {
			result += sep
		}
		result += part
	}
	return result
}
