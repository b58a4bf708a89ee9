// Package mediameta extracts technical and tag metadata from binary media
// files: MPEG audio with ID3v1/ID3v2 tags, QuickTime and ISO MP4 movies, and
// Flash Video.
//
// # Quick Start
//
//	info, err := mediameta.Analyze("clip.mp4")
//	if err != nil {
//		log.Printf("analysis failed: %v", err)
//	}
//	fmt.Println(info.FileFormat, info.PlaytimeString)
//	if info.Video != nil {
//		fmt.Println(info.Video)
//	}
//
// Analyze always returns a record, even when it also returns an error. A
// fatal condition (the file cannot be opened, its format is unknown, or a
// mandatory header such as a movie time scale is invalid) stops the walk,
// but whatever was decoded before it stays on the record and the error is
// also listed in Info.Errors.
//
// # Pipeline
//
// A file moves through four layers:
//
//	field decoders     fixed-width integers, synch-safe sizes, fixed point,
//	                   bit fields and text encodings (internal/binary)
//	chunk dispatcher   magic-byte detection and the format registry
//	container walkers  ID3v2 frames, QuickTime atoms, FLV tags
//	result aggregator  tag merge, precedence, derived values
//
// Each walker keeps its raw tree on the record (Info.ID3v2, Info.QuickTime,
// Info.FLV and so on) next to the merged Audio, Video and Comments sections.
//
// # Warnings
//
// Malformed but survivable data (a truncated frame, an atom that overruns
// its parent, junk before the first MPEG frame) is reported in
// Info.Warnings and the walk carries on. WithStrictParsing turns the first
// warning into an error; WithIgnoreWarnings drops them.
//
// # Concurrency
//
// Analyze is safe for concurrent use. AnalyzeMany walks a batch on a
// bounded worker pool and keeps results in input order.
package mediameta
