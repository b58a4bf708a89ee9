package mediameta

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/mediameta/internal/aggregate"
	"github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/registry"
	"github.com/simonhull/mediameta/internal/types"

	// Container walkers register themselves with the dispatcher.
	_ "github.com/simonhull/mediameta/internal/flv"
	_ "github.com/simonhull/mediameta/internal/mp3"
	_ "github.com/simonhull/mediameta/internal/quicktime"
)

// Analyze opens a local file and returns its analysis record.
//
// The record is never nil. When err is non-nil it describes the fatal
// condition that stopped the walk and is also listed in Info.Errors; the
// fields decoded before it remain set.
//
// Example:
//
//	info, err := mediameta.Analyze("song.mp3")
//	if err != nil {
//		return err
//	}
//	fmt.Printf("%s - %s\n", info.Comments.First("artist"), info.Comments.First("title"))
func Analyze(path string, opts ...Option) (*Info, error) {
	return AnalyzeContext(context.Background(), path, opts...)
}

// AnalyzeContext is Analyze with cancellation. The context is checked
// between container steps and inside the tag and atom loops.
func AnalyzeContext(ctx context.Context, path string, opts ...Option) (*Info, error) {
	o := buildOptions(opts)
	info := types.NewInfo(path, filepath.Base(path), 0)

	if isRemote(path) {
		return fail(info, &RemoteFileError{URL: path})
	}

	f, err := os.Open(path)
	if err != nil {
		return fail(info, fmt.Errorf("open file: %w", err))
	}
	defer f.Close()

	size := o.fileSize
	if size <= 0 {
		stat, err := f.Stat()
		if err != nil {
			return fail(info, fmt.Errorf("stat file: %w", err))
		}
		if stat.IsDir() {
			return fail(info, fmt.Errorf("open file: %s is a directory", path))
		}
		size = stat.Size()
	}

	return analyze(ctx, f, size, path, o)
}

// AnalyzeReader analyzes media held by r. name is used for the record's
// file name fields and in error messages.
func AnalyzeReader(ctx context.Context, r io.ReaderAt, size int64, name string, opts ...Option) (*Info, error) {
	o := buildOptions(opts)
	if o.fileSize > 0 {
		size = o.fileSize
	}
	return analyze(ctx, r, size, name, o)
}

// AnalyzeMany analyzes files concurrently on at most WithWorkers
// goroutines. Results come back in input order and every entry is
// non-nil; a file that fails carries its error in Info.Errors without
// stopping the others. The returned error is only set when ctx is
// cancelled.
//
// Example:
//
//	infos, err := mediameta.AnalyzeMany(ctx, paths, mediameta.WithWorkers(4))
//	if err != nil {
//		return err
//	}
//	for _, info := range infos {
//		fmt.Println(info.Filename, info.FileFormat, info.PlaytimeString)
//	}
func AnalyzeMany(ctx context.Context, paths []string, opts ...Option) ([]*Info, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	o := buildOptions(opts)

	var g errgroup.Group
	g.SetLimit(o.workers)

	results := make([]*Info, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			results[i], _ = AnalyzeContext(ctx, path, opts...)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func analyze(ctx context.Context, r io.ReaderAt, size int64, path string, o *options) (*Info, error) {
	info := types.NewInfo(path, filepath.Base(path), size)
	log := o.walk.Log().With("file", path)

	if err := ctx.Err(); err != nil {
		return fail(info, err)
	}

	format, err := types.DetectFormat(r, size, path)
	if err != nil {
		return fail(info, err)
	}
	info.Format = format

	parser := registry.Get(format)
	if parser == nil {
		return fail(info, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no walker available for format %s", format),
		})
	}
	log.Debug("dispatching", "format", format.String(), "size", size)

	sr := binary.NewSafeReader(r, size, path)
	err = parser.Parse(ctx, sr, info, o.walk)
	aggregate.Apply(info)
	if err != nil {
		if o.ignoreWarnings {
			info.Warnings = nil
		}
		return fail(info, fmt.Errorf("parse %s: %w", format, err))
	}

	if o.strictParsing && len(info.Warnings) > 0 {
		return fail(info, fmt.Errorf("%w: %s", ErrStrictParsing, info.Warnings[0]))
	}
	if o.ignoreWarnings {
		info.Warnings = nil
	}

	log.Debug("analysis complete",
		"format", info.FileFormat,
		"playtime", info.PlaytimeSeconds,
		"warnings", len(info.Warnings),
	)
	return info, nil
}

// fail records err on info and returns both.
func fail(info *Info, err error) (*Info, error) {
	info.Fail(err)
	return info, err
}

// isRemote reports whether path names a URL such as http://host/file.mp3.
func isRemote(path string) bool {
	if !strings.Contains(path, "://") {
		return false
	}
	u, err := url.Parse(path)
	return err == nil && u.Scheme != ""
}
