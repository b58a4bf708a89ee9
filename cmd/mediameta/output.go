package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/simonhull/mediameta"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(colorize bool, color, s string) string {
	if !colorize || s == "" {
		return s
	}
	return color + s + ansiReset
}

func formatSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(size))
}

func formatBitrate(bps float64) string {
	if bps <= 0 {
		return ""
	}
	return fmt.Sprintf("%.0f kbps", bps/1000)
}

func formatPlaytime(info *mediameta.Info) string {
	if info.PlaytimeString != "" {
		return info.PlaytimeString
	}
	return "-"
}

func formatStream(s fmt.Stringer, present bool) string {
	if !present {
		return "-"
	}
	return s.String()
}

// issues summarises the error and warning state of one record.
func issues(info *mediameta.Info, colorize bool) string {
	switch {
	case len(info.Errors) > 0:
		return paint(colorize, ansiRed, "error: "+info.Errors[0])
	case len(info.Warnings) == 1:
		return paint(colorize, ansiYellow, "1 warning")
	case len(info.Warnings) > 1:
		return paint(colorize, ansiYellow, fmt.Sprintf("%d warnings", len(info.Warnings)))
	default:
		return "ok"
	}
}
