// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// infoCmd shows metadata for a running box
var infoCmd = &cobra.Command{
	Use:   "info NAME",
	Short: "Show metadata for a running box",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	handle, err := lookupBox(ctx, args[0])
	if err != nil {
		return err
	}
	info, err := handle.Info(ctx)
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Box " + info.Name))
	fmt.Println()
	fmt.Printf("%s: %s\n", keyStyle.Render("id"), valueStyle.Render(shortID(info.ID)))
	fmt.Printf("%s: %s\n", keyStyle.Render("image"), valueStyle.Render(info.Image))
	fmt.Printf("%s: %s\n", keyStyle.Render("status"), valueStyle.Render(info.Status))
	if !info.CreatedAt.IsZero() {
		fmt.Printf("%s: %s\n", keyStyle.Render("created"), valueStyle.Render(info.CreatedAt.Format(time.RFC3339)))
	}
	return nil
}
