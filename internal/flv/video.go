package flv

import "github.com/simonhull/mediameta/internal/binary"

// Video codec ids.
const (
	codecH263     = 2
	codecScreen   = 3
	codecVP6      = 4
	codecVP6Alpha = 5
	codecScreenV2 = 6
	codecAVC      = 7
)

var videoCodecs = map[int]string{
	codecH263:     "Sorenson H.263",
	codecScreen:   "Screen video",
	codecVP6:      "On2 VP6",
	codecVP6Alpha: "On2 VP6 with alpha channel",
	codecScreenV2: "Screen video v2",
	codecAVC:      "H.264/AVC",
}

// h263Sizes are the fixed picture sizes of the Sorenson H.263 header.
var h263Sizes = [7][2]int{
	{}, {}, {352, 288}, {176, 144}, {128, 96}, {320, 240}, {160, 120},
}

// h263Size reads the dimensions from a Sorenson H.263 picture header.
func h263Size(b []byte) (w, h int, ok bool) {
	br := binary.NewBitReader(b)
	if br.ReadBits(17) != 1 {
		return 0, 0, false
	}
	br.Skip(5 + 8) // version, temporal reference
	switch size := br.ReadBits(3); size {
	case 0:
		w, h = int(br.ReadBits(8)), int(br.ReadBits(8))
	case 1:
		w, h = int(br.ReadBits(16)), int(br.ReadBits(16))
	case 7:
		return 0, 0, false
	default:
		w, h = h263Sizes[size][0], h263Sizes[size][1]
	}
	return w, h, !br.Short()
}

// screenSize reads the 12-bit dimensions of a screen video frame.
func screenSize(b []byte) (w, h int, ok bool) {
	if len(b) < 4 {
		return 0, 0, false
	}
	w = int(binary.BigEndianUint(b[0:2]) & 0x0FFF)
	h = int(binary.BigEndianUint(b[2:4]) & 0x0FFF)
	return w, h, true
}

// vp6Size reads the macroblock dimensions of a VP6 key frame. adjust holds
// the horizontal and vertical crop in its high and low nibbles.
func vp6Size(adjust byte, b []byte) (w, h int, ok bool) {
	if len(b) < 2 || b[0]&0x80 != 0 {
		return 0, 0, false
	}
	pos := 2
	marker := b[0] & 0x01
	profile := b[1] >> 1 & 0x03
	if marker == 1 || profile == 0 {
		pos += 2
	}
	if len(b) < pos+4 {
		return 0, 0, false
	}
	rows, cols := int(b[pos]), int(b[pos+1])
	w = cols*16 - int(adjust>>4)
	h = rows*16 - int(adjust&0x0F)
	return w, h, w > 0 && h > 0
}

// avcConfig reads profile, level and dimensions from an
// AVCDecoderConfigurationRecord.
func avcConfig(b []byte) (profile, level, w, h int, ok bool) {
	if len(b) < 8 || b[0] != 1 {
		return 0, 0, 0, 0, false
	}
	profile, level = int(b[1]), int(b[3])
	if b[5]&0x1F == 0 {
		return profile, level, 0, 0, true
	}
	n := int(binary.BigEndianUint(b[6:8]))
	if len(b) < 8+n || n < 2 {
		return profile, level, 0, 0, true
	}
	w, h, _ = spsSize(b[8 : 8+n])
	return profile, level, w, h, true
}

// highProfiles carry chroma format and bit depth fields in the SPS.
var highProfiles = map[uint64]bool{
	100: true, 110: true, 122: true, 244: true, 44: true, 83: true,
	86: true, 118: true, 128: true, 138: true, 139: true, 134: true, 135: true,
}

// spsSize decodes the coded size of an H.264 sequence parameter set NAL
// unit, applying the frame cropping rectangle.
func spsSize(nal []byte) (w, h int, ok bool) {
	br := binary.NewBitReader(binary.RemoveEmulationPrevention(nal[1:]))
	profile := br.ReadBits(8)
	br.Skip(16) // constraint flags, level
	br.ReadUE() // seq_parameter_set_id

	chroma := uint64(1)
	if highProfiles[profile] {
		chroma = br.ReadUE()
		if chroma == 3 {
			br.Skip(1)
		}
		br.ReadUE() // bit_depth_luma_minus8
		br.ReadUE() // bit_depth_chroma_minus8
		br.Skip(1)
		if br.ReadFlag() {
			lists := 8
			if chroma == 3 {
				lists = 12
			}
			for i := 0; i < lists; i++ {
				if !br.ReadFlag() {
					continue
				}
				if i < 6 {
					skipScalingList(br, 16)
				} else {
					skipScalingList(br, 64)
				}
			}
		}
	}

	br.ReadUE() // log2_max_frame_num_minus4
	switch br.ReadUE() {
	case 0:
		br.ReadUE()
	case 1:
		br.Skip(1)
		br.ReadSE()
		br.ReadSE()
		for n := br.ReadUE(); n > 0 && !br.Short(); n-- {
			br.ReadSE()
		}
	}
	br.ReadUE() // max_num_ref_frames
	br.Skip(1)
	widthMBs := br.ReadUE() + 1
	heightMapUnits := br.ReadUE() + 1
	frameMBsOnly := uint64(0)
	if br.ReadFlag() {
		frameMBsOnly = 1
	} else {
		br.Skip(1)
	}
	br.Skip(1) // direct_8x8_inference_flag

	var left, right, top, bottom uint64
	if br.ReadFlag() {
		left, right, top, bottom = br.ReadUE(), br.ReadUE(), br.ReadUE(), br.ReadUE()
	}
	if br.Short() {
		return 0, 0, false
	}

	cropX, cropY := uint64(1), 2-frameMBsOnly
	switch chroma {
	case 1:
		cropX, cropY = 2, 2*(2-frameMBsOnly)
	case 2:
		cropX = 2
	}
	codedW := widthMBs * 16
	codedH := (2 - frameMBsOnly) * heightMapUnits * 16
	if (left+right)*cropX >= codedW || (top+bottom)*cropY >= codedH {
		return 0, 0, false
	}
	w = int(codedW - (left+right)*cropX)
	h = int(codedH - (top+bottom)*cropY)
	return w, h, true
}

func skipScalingList(br *binary.BitReader, size int) {
	last, next := int64(8), int64(8)
	for j := 0; j < size; j++ {
		if next != 0 {
			next = (last + br.ReadSE() + 256) % 256
		}
		if next != 0 {
			last = next
		}
	}
}
