package mediameta

import (
	"log/slog"
	"runtime"

	"github.com/simonhull/mediameta/internal/registry"
)

// Option configures an analysis.
//
// Example:
//
//	info, err := mediameta.Analyze("song.mp3",
//	    mediameta.WithStrictParsing(),
//	    mediameta.WithID3v1Encoding("windows-1251"),
//	)
type Option func(*options)

type options struct {
	walk           registry.Options
	fileSize       int64
	strictParsing  bool
	ignoreWarnings bool
	workers        int
}

func defaultOptions() *options {
	return &options{
		walk:    registry.DefaultOptions(),
		workers: runtime.NumCPU(),
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFileSize supplies a known file size instead of asking the file
// system. Use it when the reader cannot report a reliable size.
func WithFileSize(size int64) Option {
	return func(o *options) {
		o.fileSize = size
	}
}

// WithLogger routes debug output about format dispatch and walker
// decisions to logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.walk.Logger = logger
		}
	}
}

// WithStrictParsing treats any warning as a fatal error.
//
// By default analysis continues past malformed data and reports it in
// Info.Warnings. With strict parsing the first warning is returned as an
// error wrapping ErrStrictParsing; the record is still returned.
func WithStrictParsing() Option {
	return func(o *options) {
		o.strictParsing = true
	}
}

// WithIgnoreWarnings drops all warnings from the record.
func WithIgnoreWarnings() Option {
	return func(o *options) {
		o.ignoreWarnings = true
	}
}

// WithID3v1 toggles the ID3v1 tail tag walker. Enabled by default.
func WithID3v1(enabled bool) Option {
	return func(o *options) {
		o.walk.ParseID3v1 = enabled
	}
}

// WithID3v2 toggles the ID3v2 head tag walker. Enabled by default. When
// disabled the tag is still skipped so the audio data offset is right.
func WithID3v2(enabled bool) Option {
	return func(o *options) {
		o.walk.ParseID3v2 = enabled
	}
}

// WithID3v1Encoding sets the code page of ID3v1 text as a WHATWG encoding
// label, such as "windows-1251". The default is ISO-8859-1.
func WithID3v1Encoding(label string) Option {
	return func(o *options) {
		o.walk.ID3v1Encoding = label
	}
}

// WithPictureData loads embedded image bytes into Info.Pictures. Images
// larger than maxBytes keep their metadata only; zero means no limit.
func WithPictureData(maxBytes int) Option {
	return func(o *options) {
		o.walk.PictureData = true
		o.walk.MaxPictureBytes = maxBytes
	}
}

// WithWorkers bounds the number of files AnalyzeMany walks at once.
// The default is runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}
