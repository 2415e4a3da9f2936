// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// listCmd enumerates the live boxes on the configured engine
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "ps"},
	Short:   "List running boxes",
	Long: `List the running boxes on the configured container engine.

Only boxes created by boxlite are shown; other containers on the same
engine are ignored.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := engineRuntime()
	if err != nil {
		return err
	}
	handles, err := rt.List(ctx)
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		fmt.Println(SubtitleStyle.Render("No boxes are running"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tIMAGE\tSTATUS\tCREATED")
	for _, handle := range handles {
		info, err := handle.Info(ctx)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s failed to inspect %s: %v\n",
				WarningStyle.Render("!"), shortID(handle.ID()), err)
			continue
		}
		created := ""
		if !info.CreatedAt.IsZero() {
			created = info.CreatedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			info.Name, shortID(info.ID), info.Image, info.Status, created)
	}
	return w.Flush()
}
