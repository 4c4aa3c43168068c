package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/soundnode/internal/selector"
)

// CreateProbeCmd creates the probe command.
func CreateProbeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe [backend]",
		Short: "Initialize backends and list their devices",
		Long: `Initializes every enabled backend in selection order, or only the named one, ` +
			`and prints its capabilities with the playback and capture devices it reports.`,
		Args: cobra.MaximumNArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			sel := selector.New(selector.DefaultRegistry(), opts.Order())

			var statuses []selector.Status
			if len(args) == 1 {
				st, err := sel.Status(args[0])
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				statuses = []selector.Status{st}
			} else {
				statuses = sel.Report()
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(statuses); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				return
			}
			printStatuses(cmd.OutOrStdout(), statuses)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printStatuses(w io.Writer, statuses []selector.Status) {
	for i, st := range statuses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s\n", st.Name, st.State)
		if !st.Ready {
			continue
		}
		fmt.Fprintf(w, "  playback: %s\n", yesNo(st.Playback))
		fmt.Fprintf(w, "  capture:  %s\n", yesNo(st.Capture))
		printDevices(w, "outputs", st.Outputs)
		printDevices(w, "captures", st.Captures)
	}
}

func printDevices(w io.Writer, label string, devices []string) {
	if len(devices) == 0 {
		fmt.Fprintf(w, "  %s: none\n", label)
		return
	}
	fmt.Fprintf(w, "  %s:\n    %s\n", label, strings.Join(devices, "\n    "))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
