package id3v2

import (
	"strconv"
	"strings"

	"github.com/simonhull/mediameta/internal/id3v1"
)

// v22IDs maps three-character ID3v2.2 frame ids to their v2.3 equivalents.
var v22IDs = map[string]string{
	"BUF": "RBUF", "CNT": "PCNT", "COM": "COMM", "CRA": "AENC", "ETC": "ETCO",
	"GEO": "GEOB", "IPL": "IPLS", "LNK": "LINK", "MCI": "MCDI", "MLL": "MLLT",
	"PIC": "APIC", "POP": "POPM", "REV": "RVRB", "RVA": "RVAD", "SLT": "SYLT",
	"STC": "SYTC", "TAL": "TALB", "TBP": "TBPM", "TCM": "TCOM", "TCO": "TCON",
	"TCP": "TCMP", "TCR": "TCOP", "TDA": "TDAT", "TDY": "TDLY", "TEN": "TENC",
	"TFT": "TFLT", "TIM": "TIME", "TKE": "TKEY", "TLA": "TLAN", "TLE": "TLEN",
	"TMT": "TMED", "TOA": "TOPE", "TOF": "TOFN", "TOL": "TOLY", "TOR": "TORY",
	"TOT": "TOAL", "TP1": "TPE1", "TP2": "TPE2", "TP3": "TPE3", "TP4": "TPE4",
	"TPA": "TPOS", "TPB": "TPUB", "TRC": "TSRC", "TRD": "TRDA", "TRK": "TRCK",
	"TSI": "TSIZ", "TSS": "TSSE", "TT1": "TIT1", "TT2": "TIT2", "TT3": "TIT3",
	"TXT": "TEXT", "TXX": "TXXX", "TYE": "TYER", "UFI": "UFID", "ULT": "USLT",
	"WAF": "WOAF", "WAR": "WOAR", "WAS": "WOAS", "WCM": "WCOM", "WCP": "WCOP",
	"WPB": "WPUB", "WXX": "WXXX",
}

// commentKeys maps frame ids to comment keys.
var commentKeys = map[string]string{
	"TALB": "album",
	"TBPM": "bpm",
	"TCMP": "compilation",
	"TCOM": "composer",
	"TCON": "genre",
	"TCOP": "copyright_message",
	"TDAT": "date",
	"TDEN": "encoding_time",
	"TDLY": "playlist_delay",
	"TDOR": "original_release_time",
	"TDRC": "recording_time",
	"TDRL": "release_time",
	"TENC": "encoded_by",
	"TEXT": "lyricist",
	"TFLT": "file_type",
	"TIME": "time",
	"TIT1": "content_group_description",
	"TIT2": "title",
	"TIT3": "subtitle",
	"TKEY": "initial_key",
	"TLAN": "language",
	"TLEN": "length",
	"TMED": "media_type",
	"TMOO": "mood",
	"TOAL": "original_album",
	"TOFN": "original_filename",
	"TOLY": "original_lyricist",
	"TOPE": "original_artist",
	"TORY": "original_year",
	"TOWN": "file_owner",
	"TPE1": "artist",
	"TPE2": "band",
	"TPE3": "conductor",
	"TPE4": "remixer",
	"TPOS": "part_of_a_set",
	"TPRO": "produced_notice",
	"TPUB": "publisher",
	"TRCK": "track_number",
	"TRDA": "recording_dates",
	"TRSN": "internet_radio_station_name",
	"TRSO": "internet_radio_station_owner",
	"TSIZ": "size",
	"TSO2": "album_artist_sort_order",
	"TSOA": "album_sort_order",
	"TSOC": "composer_sort_order",
	"TSOP": "performer_sort_order",
	"TSOT": "title_sort_order",
	"TSRC": "isrc",
	"TSSE": "encoder_settings",
	"TSST": "set_subtitle",
	"TYER": "year",
	"WCOM": "commercial_information",
	"WCOP": "copyright",
	"WOAF": "url_file",
	"WOAR": "url_artist",
	"WOAS": "url_source",
	"WORS": "url_station",
	"WPAY": "url_payment",
	"WPUB": "url_publisher",
	"WXXX": "url_user",
	"COMM": "comment",
	"USLT": "unsynchronised_lyric",
}

// normalizeID returns the v2.3/v2.4 form of a frame id.
func normalizeID(id string) string {
	if len(id) == 3 {
		if full, ok := v22IDs[id]; ok {
			return full
		}
	}
	return id
}

func commentKey(id string) string {
	if k, ok := commentKeys[id]; ok {
		return k
	}
	return strings.ToLower(id)
}

// resolveGenres expands a TCON value: "(13)", "(13)Pop", "(RX)", "(CR)",
// bare numeric ids and free text. "((" escapes a literal parenthesis.
func resolveGenres(s string) []string {
	var out []string
	s = strings.TrimSpace(s)
	for s != "" {
		if strings.HasPrefix(s, "((") {
			out = append(out, s[1:])
			break
		}
		if s[0] == '(' {
			end := strings.IndexByte(s, ')')
			if end > 0 {
				out = appendGenreCode(out, s[1:end])
				s = strings.TrimSpace(s[end+1:])
				continue
			}
		}
		if n, err := strconv.Atoi(s); err == nil {
			if name := id3v1.GenreName(n); name != "" {
				out = append(out, name)
			}
			break
		}
		out = append(out, s)
		break
	}
	return out
}

func appendGenreCode(out []string, code string) []string {
	switch code {
	case "RX":
		return append(out, "Remix")
	case "CR":
		return append(out, "Cover")
	}
	if n, err := strconv.Atoi(code); err == nil {
		if name := id3v1.GenreName(n); name != "" {
			return append(out, name)
		}
		return out
	}
	return append(out, code)
}

// validFrameID reports whether b is a plausible frame id: upper-case
// letters and digits only.
func validFrameID(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
