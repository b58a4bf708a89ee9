package quicktime

import (
	"github.com/simonhull/mediameta/internal/aac"
	"github.com/simonhull/mediameta/internal/types"
)

// audioCodecs maps sample entry formats to codec names.
var audioCodecs = map[string]string{
	"mp4a": "AAC",
	"mhm1": "xHE-AAC",
	"mhm2": "xHE-AAC v2",
	"ac-3": "AC-3",
	"ec-3": "E-AC-3",
	"ac-4": "AC-4",
	"alac": "Apple Lossless",
	"fLaC": "FLAC",
	"Opus": "Opus",
	"opus": "Opus",
	".mp3": "MP3",
	"mp3 ": "MP3",
	"ulaw": "mu-law 2:1",
	"alaw": "A-law 2:1",
	"ima4": "IMA 4:1",
	"samr": "AMR",
	"sawb": "AMR-WB",
	"lpcm": "Linear PCM",
	"twos": "PCM (big-endian)",
	"sowt": "PCM (little-endian)",
	"in24": "PCM 24-bit",
	"in32": "PCM 32-bit",
	"fl32": "PCM 32-bit float",
	"fl64": "PCM 64-bit float",
	"raw ": "PCM (unsigned)",
	"MAC3": "MACE 3:1",
	"MAC6": "MACE 6:1",
	"QDM2": "QDesign Music 2",
	"Qclp": "Qualcomm PureVoice",
}

// losslessAudio lists formats that do not discard information.
var losslessAudio = map[string]bool{
	"alac": true, "fLaC": true, "lpcm": true, "twos": true, "sowt": true,
	"in24": true, "in32": true, "fl32": true, "fl64": true, "raw ": true,
}

// videoCodecs maps sample entry formats to codec names.
var videoCodecs = map[string]string{
	"avc1": "H.264/AVC",
	"avc3": "H.264/AVC",
	"hvc1": "H.265/HEVC",
	"hev1": "H.265/HEVC",
	"av01": "AV1",
	"vp09": "VP9",
	"mp4v": "MPEG-4 Visual",
	"s263": "H.263",
	"h263": "H.263",
	"jpeg": "Photo - JPEG",
	"mjpa": "Motion JPEG A",
	"mjpb": "Motion JPEG B",
	"SVQ1": "Sorenson Video",
	"SVQ3": "Sorenson Video 3",
	"cvid": "Cinepak",
	"rle ": "Animation",
	"rpza": "Apple Video",
	"smc ": "Graphics",
	"png ": "PNG",
	"apcn": "Apple ProRes 422",
	"apch": "Apple ProRes 422 HQ",
	"apcs": "Apple ProRes 422 LT",
	"apco": "Apple ProRes 422 Proxy",
	"ap4h": "Apple ProRes 4444",
	"dvc ": "DV NTSC",
	"dvcp": "DV PAL",
}

// losslessVideo lists uncompressed or lossless video formats.
var losslessVideo = map[string]bool{
	"raw ": true, "png ": true, "rle ": true, "2vuy": true, "v210": true,
}

// audioCodecName refines the format name with the AAC profile when known.
func audioCodecName(e types.SampleEntry) string {
	if e.Format == "mp4a" && e.AudioObjectType > 0 {
		return aac.ObjectTypeName(e.AudioObjectType)
	}
	if name, ok := audioCodecs[e.Format]; ok {
		return name
	}
	return e.Format
}

func videoCodecName(format string) string {
	if name, ok := videoCodecs[format]; ok {
		return name
	}
	return format
}
