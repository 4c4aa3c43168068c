package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smazurov/soundnode/internal/version"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "soundnode %s\n", info.Version)
			fmt.Fprintf(w, "  commit:   %s\n", info.GitCommit)
			fmt.Fprintf(w, "  built:    %s\n", info.BuildDate)
			fmt.Fprintf(w, "  go:       %s %s\n", info.GoVersion, info.Compiler)
			fmt.Fprintf(w, "  platform: %s\n", info.Platform)
			if len(info.Tags) > 0 {
				fmt.Fprintf(w, "  tags:     %s\n", strings.Join(info.Tags, ","))
			}
		},
	}
}
