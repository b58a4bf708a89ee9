package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/mediameta"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := mediameta.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mediameta %s\n", v.Version)
			fmt.Fprintf(out, "  commit: %s\n", v.GitCommit)
			fmt.Fprintf(out, "  built:  %s\n", v.BuildTime)
			fmt.Fprintf(out, "  go:     %s\n", v.GoVersion)
			return nil
		},
	}
}
