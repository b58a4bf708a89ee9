package types

import "time"

// ID3v2 is the raw ID3v2 tag tree.
type ID3v2 struct {
	MajorVersion   int                  `json:"majorversion"`
	MinorVersion   int                  `json:"minorversion"`
	Flags          ID3v2Flags           `json:"flags"`
	HeaderLength   int64                `json:"headerlength"`
	TagOffsetStart int64                `json:"tag_offset_start"`
	TagOffsetEnd   int64                `json:"tag_offset_end"`
	ExtendedHeader *ID3v2ExtendedHeader `json:"exthead,omitempty"`
	PaddingStart   int64                `json:"padding_start,omitempty"`
	PaddingLength  int64                `json:"padding_length,omitempty"`
	PaddingValid   bool                 `json:"padding_valid"`
	Frames         []ID3v2Frame         `json:"frames,omitempty"`
	Comments       Comments             `json:"comments,omitempty"`
}

// ID3v2Flags are the tag header flags.
type ID3v2Flags struct {
	Unsynchronisation bool `json:"unsynch"`
	ExtendedHeader    bool `json:"exthead"`
	Experimental      bool `json:"experim"`
	Footer            bool `json:"isfooter"`
	Compression       bool `json:"compression"`
}

// ID3v2ExtendedHeader is the decoded extended header.
type ID3v2ExtendedHeader struct {
	Length       int    `json:"length"`
	PaddingSize  uint32 `json:"padding_size,omitempty"`
	CRCPresent   bool   `json:"crc_present"`
	CRC          uint32 `json:"crc,omitempty"`
	Update       bool   `json:"update"`
	Restrictions byte   `json:"restrictions,omitempty"`
}

// ID3v2Frame is one frame as found in the tag.
type ID3v2Frame struct {
	ID          string `json:"frame_name"`
	Offset      int64  `json:"dataoffset"`
	Size        int    `json:"datalength"`
	Flags       uint16 `json:"frame_flags_raw"`
	Encoding    string `json:"encoding,omitempty"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	Text        string `json:"data,omitempty"`
}

// ID3v1 is the raw ID3v1 tail tag.
type ID3v1 struct {
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Album    string   `json:"album"`
	Year     string   `json:"year"`
	Comment  string   `json:"comment"`
	Track    int      `json:"track_number,omitempty"`
	GenreID  int      `json:"genreid"`
	Genre    string   `json:"genre,omitempty"`
	Version  string   `json:"version"`
	Offset   int64    `json:"tag_offset_start"`
	Comments Comments `json:"comments,omitempty"`
}

// MPEGAudio is the decoded first MPEG audio frame plus any VBR header.
type MPEGAudio struct {
	Version       string      `json:"version"`
	Layer         int         `json:"layer"`
	Bitrate       int         `json:"bitrate"`
	SampleRate    int         `json:"sample_rate"`
	ChannelMode   string      `json:"channelmode"`
	ModeExtension int         `json:"modeextension"`
	Channels      int         `json:"channels"`
	Padding       bool        `json:"padding"`
	Protection    bool        `json:"protection"`
	Private       bool        `json:"private"`
	Copyright     bool        `json:"copyright"`
	Original      bool        `json:"original"`
	Emphasis      string      `json:"emphasis"`
	FrameLength   int         `json:"framelength"`
	FrameOffset   int64       `json:"frame_offset"`
	BitrateMode   string      `json:"bitrate_mode"`
	VBR           *MPEGVBR    `json:"vbr,omitempty"`
	LAME          *LAMEHeader `json:"lame,omitempty"`
}

// MPEGVBR holds a Xing/Info or VBRI header.
type MPEGVBR struct {
	Method  string `json:"method"`
	Frames  uint32 `json:"frames"`
	Bytes   uint32 `json:"bytes"`
	Quality uint32 `json:"quality,omitempty"`
	Offset  int64  `json:"offset"`
}

// LAMEHeader is the LAME extension that follows a Xing/Info header.
type LAMEHeader struct {
	Encoder      string `json:"short_version"`
	TagRevision  int    `json:"tag_revision"`
	VBRMethod    int    `json:"vbr_method"`
	LowpassHz    int    `json:"lowpass_frequency"`
	EncoderDelay int    `json:"encoder_delay"`
	EndPadding   int    `json:"end_padding"`
}

// QuickTime is the raw QuickTime/MP4 atom tree.
type QuickTime struct {
	Atoms       []*Atom      `json:"atoms,omitempty"`
	FileType    *FileType    `json:"ftyp,omitempty"`
	MovieHeader *MovieHeader `json:"mvhd,omitempty"`
	Tracks      []*Track     `json:"tracks,omitempty"`
	Comments    Comments     `json:"comments,omitempty"`
}

// Atom is one node of the atom tree.
type Atom struct {
	Name       string  `json:"name"`
	Offset     int64   `json:"offset"`
	Size       int64   `json:"size"`
	HeaderSize int     `json:"header_size"`
	Children   []*Atom `json:"subatoms,omitempty"`
}

// FileType is the decoded ftyp atom.
type FileType struct {
	MajorBrand       string   `json:"signature"`
	MinorVersion     uint32   `json:"unknown_1"`
	CompatibleBrands []string `json:"compatible_brands,omitempty"`
}

// MovieHeader is the decoded mvhd atom.
type MovieHeader struct {
	Version          int        `json:"version"`
	CreationTime     time.Time  `json:"creation_time"`
	ModificationTime time.Time  `json:"modify_time"`
	TimeScale        uint32     `json:"time_scale"`
	Duration         uint64     `json:"duration"`
	PreferredRate    float64    `json:"preferred_rate"`
	PreferredVolume  float64    `json:"preferred_volume"`
	Matrix           [9]float64 `json:"matrix"`
	NextTrackID      uint32     `json:"next_track_id"`
}

// Track gathers the tkhd, mdhd, hdlr and stbl data of one trak.
type Track struct {
	ID            uint32        `json:"track_id"`
	Enabled       bool          `json:"enabled"`
	Duration      uint64        `json:"duration"`
	Width         float64       `json:"width,omitempty"`
	Height        float64       `json:"height,omitempty"`
	Volume        float64       `json:"volume,omitempty"`
	Matrix        [9]float64    `json:"matrix"`
	Rotation      float64       `json:"rotate,omitempty"`
	Handler       string        `json:"handler,omitempty"`
	HandlerName   string        `json:"handler_name,omitempty"`
	TimeScale     uint32        `json:"time_scale,omitempty"`
	MediaDuration uint64        `json:"media_duration,omitempty"`
	Language      string        `json:"language,omitempty"`
	SampleEntries []SampleEntry `json:"sample_description,omitempty"`
	SampleCount   uint64        `json:"sample_count,omitempty"`
	EditList      []EditEntry   `json:"edit_list,omitempty"`
	ChapterTracks []uint32      `json:"chapter_track_ids,omitempty"`
}

// SampleEntry is one stsd sample description.
type SampleEntry struct {
	Format          string  `json:"data_format"`
	Channels        int     `json:"audio_channels,omitempty"`
	BitsPerSample   int     `json:"audio_bit_depth,omitempty"`
	SampleRate      float64 `json:"audio_sample_rate,omitempty"`
	Width           int     `json:"video_frame_width,omitempty"`
	Height          int     `json:"video_frame_height,omitempty"`
	Depth           int     `json:"video_pixel_color_depth,omitempty"`
	CompressorName  string  `json:"video_encoder_name,omitempty"`
	AudioObjectType int     `json:"audio_object_type,omitempty"`
	AVCProfile      int     `json:"avc_profile,omitempty"`
	AVCLevel        int     `json:"avc_level,omitempty"`
	MaxBitrate      uint32  `json:"max_bitrate,omitempty"`
	AvgBitrate      uint32  `json:"avg_bitrate,omitempty"`
}

// EditEntry is one elst entry.
type EditEntry struct {
	Duration  uint64  `json:"duration"`
	MediaTime int64   `json:"media_time"`
	Rate      float64 `json:"media_rate"`
}

// FLV is the raw FLV walk result.
type FLV struct {
	Header        FLVHeader      `json:"header"`
	TagCounts     FLVTagCounts   `json:"count"`
	Audio         *FLVAudio      `json:"audio,omitempty"`
	Video         *FLVVideo      `json:"video,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
	LastTimestamp uint32         `json:"last_timestamp"`
}

// FLVHeader is the 9-byte file header.
type FLVHeader struct {
	Signature    string `json:"signature"`
	Version      int    `json:"version"`
	HasAudio     bool   `json:"hasAudio"`
	HasVideo     bool   `json:"hasVideo"`
	HeaderLength uint32 `json:"hdr_length"`
}

// FLVTagCounts counts tags by type.
type FLVTagCounts struct {
	Audio  int `json:"audio"`
	Video  int `json:"video"`
	Script int `json:"meta"`
}

// FLVAudio is decoded from the first audio tag.
type FLVAudio struct {
	SoundFormat   int    `json:"audio_format"`
	Codec         string `json:"codec"`
	SampleRate    int    `json:"audio_rate"`
	SampleSize    int    `json:"audio_sample_size"`
	Channels      int    `json:"audio_channels"`
	AACObjectType int    `json:"aac_object_type,omitempty"`
}

// FLVVideo is decoded from the first video tag that carries dimensions.
type FLVVideo struct {
	CodecID    int    `json:"video_codec"`
	Codec      string `json:"codec"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	AVCProfile int    `json:"avc_profile,omitempty"`
	AVCLevel   int    `json:"avc_level,omitempty"`
}
