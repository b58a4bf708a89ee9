package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/simonhull/mediameta/internal/store"
)

func newHistoryCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newHistoryCommand(ctx),
		newShowCommand(ctx),
		newForgetCommand(ctx),
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analyses, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Store.HistoryLimit
			}
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				records, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No saved analyses")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.ID,
						rec.Path,
						rec.FileFormat,
						formatBitrate(rec.Bitrate),
						formatSize(rec.Size),
						strconv.Itoa(rec.Warnings),
						strconv.Itoa(rec.Errors),
						humanize.Time(rec.CreatedAt),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Path", "Format", "Bitrate", "Size", "Warnings", "Errors", "Saved"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to list (0 lists all; default from config)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				rec, err := st.Get(cmd.Context(), id)
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no saved analysis with id %s", id)
				}
				if err != nil {
					return err
				}
				info, err := rec.Info()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, info)
				}

				fields := [][2]string{
					{"ID", rec.ID},
					{"Path", rec.Path},
					{"Saved", rec.CreatedAt.Local().Format("2006-01-02 15:04:05")},
					{"Format", info.FileFormat},
					{"MIME type", info.MIMEType},
					{"Size", formatSize(info.FileSize)},
					{"Duration", info.PlaytimeString},
					{"Bitrate", formatBitrate(info.Bitrate)},
				}
				if info.Audio != nil {
					fields = append(fields, [2]string{"Audio", info.Audio.String()})
				}
				if info.Video != nil {
					fields = append(fields, [2]string{"Video", info.Video.String()})
				}
				for _, key := range []string{"title", "artist", "album", "year", "genre"} {
					fields = append(fields, [2]string{key, info.Comments.First(key)})
				}
				if len(info.Chapters) > 0 {
					fields = append(fields, [2]string{"Chapters", strconv.Itoa(len(info.Chapters))})
				}
				fields = append(fields, [2]string{"Status", issues(info, shouldColorize(cmd.OutOrStdout()))})
				fmt.Fprintln(cmd.OutOrStdout(), renderFields(fields))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the saved record as JSON")
	return cmd
}

func newForgetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <id>",
		Short: "Delete a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				err := st.Delete(cmd.Context(), id)
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no saved analysis with id %s", id)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
				return nil
			})
		},
	}
}
