package types

import "fmt"

// Picture is an embedded image. Data is only filled in when picture data
// extraction is enabled and the image fits the configured limit.
type Picture struct {
	Source      string      `json:"source"`
	MIMEType    string      `json:"image_mime,omitempty"`
	Type        PictureType `json:"picturetype"`
	Description string      `json:"description,omitempty"`
	Offset      int64       `json:"dataoffset"`
	Length      int         `json:"datalength"`
	Data        []byte      `json:"-"`
}

// String returns a description such as "Front cover (JPEG, 245KB)".
func (p Picture) String() string {
	return fmt.Sprintf("%s (%s, %s)", p.Type, mimeToFormat(p.MIMEType), formatSize(p.Length))
}

// PictureType is the ID3v2 APIC picture type.
type PictureType int

const (
	PictureOther PictureType = iota
	PictureIcon
	PictureOtherIcon
	PictureFrontCover
	PictureBackCover
	PictureLeaflet
	PictureMedia
	PictureLeadArtist
	PictureArtist
	PictureConductor
	PictureBand
	PictureComposer
	PictureLyricist
	PictureRecordingLocation
	PictureDuringRecording
	PictureDuringPerformance
	PictureVideoCapture
	PictureBrightFish
	PictureIllustration
	PictureBandLogotype
	PicturePublisherLogotype
)

var pictureTypeNames = [...]string{
	"Other",
	"File icon",
	"Other file icon",
	"Front cover",
	"Back cover",
	"Leaflet page",
	"Media",
	"Lead artist",
	"Artist",
	"Conductor",
	"Band",
	"Composer",
	"Lyricist",
	"Recording location",
	"During recording",
	"During performance",
	"Video capture",
	"A bright coloured fish",
	"Illustration",
	"Band logotype",
	"Publisher logotype",
}

func (t PictureType) String() string {
	if t < 0 || int(t) >= len(pictureTypeNames) {
		return fmt.Sprintf("PictureType(%d)", int(t))
	}
	return pictureTypeNames[t]
}

// SniffImageMIME guesses an image MIME type from its first bytes.
func SniffImageMIME(b []byte) string {
	switch {
	case len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return "image/jpeg"
	case len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(b) >= 6 && (string(b[:6]) == "GIF87a" || string(b[:6]) == "GIF89a"):
		return "image/gif"
	case len(b) >= 2 && string(b[:2]) == "BM":
		return "image/bmp"
	case len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "image/webp"
	default:
		return ""
	}
}

// formatSize formats byte size in human-readable form.
func formatSize(bytes int) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%dKB", bytes/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// mimeToFormat converts MIME type to short format name.
func mimeToFormat(mime string) string {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "JPEG"
	case "image/png":
		return "PNG"
	case "image/gif":
		return "GIF"
	case "image/bmp":
		return "BMP"
	case "image/tiff":
		return "TIFF"
	case "image/webp":
		return "WebP"
	default:
		return "Image"
	}
}
