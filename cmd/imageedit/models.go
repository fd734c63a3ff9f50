package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models := a.catalog()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d model(s)", len(models))))
			fmt.Fprintln(out)

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tAPI MODEL\tMAX IMAGES\tTHINKING\tRPM\t")
			for _, info := range models {
				name := info.Name
				if name == a.cfg.Model {
					name += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t\n",
					name,
					info.APIModelName,
					info.Capabilities.MaxInputImages,
					strconv.FormatBool(info.Capabilities.SupportsThinking),
					strconv.Itoa(info.RateLimits.RequestsPerMinute),
				)
			}
			return w.Flush()
		},
	}
}
