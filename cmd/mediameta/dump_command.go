package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/mediameta"
	"github.com/simonhull/mediameta/internal/types"
)

// dumpTrees is the raw part of the record printed by dump --json.
type dumpTrees struct {
	ID3v2     *types.ID3v2     `json:"id3v2,omitempty"`
	ID3v1     *types.ID3v1     `json:"id3v1,omitempty"`
	MPEG      *types.MPEGAudio `json:"mpeg,omitempty"`
	QuickTime *types.QuickTime `json:"quicktime,omitempty"`
	FLV       *types.FLV       `json:"flv,omitempty"`
	Warnings  []types.Warning  `json:"warning,omitempty"`
}

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the raw container and tag structure of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.analysisOptions(cmd)
			if err != nil {
				return err
			}
			info, analyzeErr := mediameta.AnalyzeContext(cmd.Context(), args[0], opts...)
			if info.Format == mediameta.FormatUnknown {
				return analyzeErr
			}

			if jsonOutput {
				if err := writeJSON(cmd, dumpTrees{
					ID3v2:     info.ID3v2,
					ID3v1:     info.ID3v1,
					MPEG:      info.MPEG,
					QuickTime: info.QuickTime,
					FLV:       info.FLV,
					Warnings:  info.Warnings,
				}); err != nil {
					return err
				}
				return analyzeErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s, %d bytes\n", info.FilenamePath, info.FileFormat, info.FileSize)
			if tag := info.ID3v2; tag != nil {
				dumpID3v2(out, tag)
			}
			if m := info.MPEG; m != nil {
				fmt.Fprintf(out, "\nMPEG-%s layer %d at %d: %d kbps, %d Hz, %s, %s\n",
					m.Version, m.Layer, m.FrameOffset, m.Bitrate/1000, m.SampleRate, m.ChannelMode, m.BitrateMode)
				if m.VBR != nil {
					fmt.Fprintf(out, "  %s header at %d: %d frames, %d bytes\n", m.VBR.Method, m.VBR.Offset, m.VBR.Frames, m.VBR.Bytes)
				}
			}
			if tag := info.ID3v1; tag != nil {
				fmt.Fprintf(out, "\nID3%s at %d: %q / %q / %q\n", tag.Version, tag.Offset, tag.Title, tag.Artist, tag.Album)
			}
			if qt := info.QuickTime; qt != nil {
				fmt.Fprintln(out)
				dumpAtoms(out, qt.Atoms, 0)
			}
			if flv := info.FLV; flv != nil {
				dumpFLV(out, flv)
			}
			for _, w := range info.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return analyzeErr
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw trees as JSON")
	return cmd
}

func dumpAtoms(w io.Writer, atoms []*types.Atom, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, a := range atoms {
		fmt.Fprintf(w, "%s%s (size: %d, offset: %d)\n", indent, printableName(a.Name), a.Size, a.Offset)
		dumpAtoms(w, a.Children, depth+1)
	}
}

// printableName escapes atom names such as ©nam that are not plain ASCII.
func printableName(name string) string {
	for _, r := range name {
		if r < 0x20 || r > 0x7E {
			return fmt.Sprintf("%q", name)
		}
	}
	return name
}

func dumpID3v2(w io.Writer, tag *types.ID3v2) {
	fmt.Fprintf(w, "\nID3v2.%d.%d at %d-%d", tag.MajorVersion, tag.MinorVersion, tag.TagOffsetStart, tag.TagOffsetEnd)
	if tag.PaddingLength > 0 {
		fmt.Fprintf(w, ", %d bytes padding", tag.PaddingLength)
	}
	fmt.Fprintln(w)
	for _, f := range tag.Frames {
		text := f.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(w, "  %-4s (size: %d, offset: %d) %q\n", f.ID, f.Size, f.Offset, text)
	}
}

func dumpFLV(w io.Writer, flv *types.FLV) {
	h := flv.Header
	fmt.Fprintf(w, "\nFLV version %d, audio: %s, video: %s\n", h.Version, yesNo(h.HasAudio), yesNo(h.HasVideo))
	fmt.Fprintf(w, "  tags: %d audio, %d video, %d script, last timestamp %d ms\n",
		flv.TagCounts.Audio, flv.TagCounts.Video, flv.TagCounts.Script, flv.LastTimestamp)
	if len(flv.Meta) == 0 {
		return
	}
	keys := make([]string, 0, len(flv.Meta))
	for k := range flv.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(w, "  onMetaData:")
	for _, k := range keys {
		fmt.Fprintf(w, "    %s = %v\n", k, flv.Meta[k])
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
