package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonhull/mediameta"
	"github.com/simonhull/mediameta/internal/store"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		save       bool
		strict     bool
		noID3v1    bool
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "analyze <file...>",
		Short: "Analyze media files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := ctx.analysisOptions(cmd)
			if err != nil {
				return err
			}
			if strict {
				opts = append(opts, mediameta.WithStrictParsing())
			}
			if noID3v1 {
				opts = append(opts, mediameta.WithID3v1(false))
			}
			if workers > 0 {
				opts = append(opts, mediameta.WithWorkers(workers))
			}

			infos, err := mediameta.AnalyzeMany(cmd.Context(), args, opts...)
			if err != nil {
				return err
			}

			if save || cfg.Store.AutoSave {
				if err := saveResults(cmd, ctx, infos, !jsonOutput); err != nil {
					return err
				}
			}

			if jsonOutput {
				if err := writeJSON(cmd, infos); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderResults(infos, shouldColorize(cmd.OutOrStdout())))
			}

			failed := 0
			for _, info := range infos {
				if info.Failed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(infos))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full analysis records as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Save results to the store")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().BoolVar(&noID3v1, "no-id3v1", false, "Skip ID3v1 tags")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent analyses (default from config)")
	return cmd
}

func renderResults(infos []*mediameta.Info, colorize bool) string {
	headers := []string{"File", "Format", "Duration", "Bitrate", "Audio", "Video", "Size", "Status"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		format := info.FileFormat
		if format == "" {
			format = "-"
		}
		rows = append(rows, []string{
			info.Filename,
			format,
			formatPlaytime(info),
			formatBitrate(info.Bitrate),
			formatStream(info.Audio, info.Audio != nil),
			formatStream(info.Video, info.Video != nil),
			formatSize(info.FileSize),
			issues(info, colorize),
		})
	}
	return renderTable(headers, rows, aligns)
}

// saveResults stores every record that got as far as format detection.
func saveResults(cmd *cobra.Command, ctx *commandContext, infos []*mediameta.Info, announce bool) error {
	return ctx.withStore(cmd.Context(), func(st *store.Store) error {
		for _, info := range infos {
			if info.FileFormat == "" {
				continue
			}
			var modTime time.Time
			if stat, err := os.Stat(info.FilenamePath); err == nil {
				modTime = stat.ModTime()
			}
			rec, err := st.Save(cmd.Context(), info, modTime)
			if err != nil {
				return fmt.Errorf("save %s: %w", info.FilenamePath, err)
			}
			if announce {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as %s\n", info.Filename, rec.ID)
			}
		}
		return nil
	})
}
