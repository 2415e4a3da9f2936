// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"boxlite-go/internal/config"
	"boxlite-go/internal/issue"

	"github.com/spf13/cobra"
)

// configCmd is the `boxlite config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage boxlite configuration",
	Long: `Manage boxlite configuration.

Configuration is stored in:
  - Linux: ~/.config/boxlite/config.toml
  - macOS: ~/Library/Application Support/boxlite/config.toml
  - Windows: %APPDATA%\boxlite\config.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfig(); err != nil {
				return err
			}
			path, err := configFilePath()
			if err != nil {
				return err
			}
			fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	})
}

func configFilePath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt), nil
}

func showConfig(ctx context.Context) error {
	loaded, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		printIssue(issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if path, pathErr := configFilePath(); pathErr == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), path)
		} else {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
		fmt.Println()
	}

	fmt.Printf("%s: %s\n", keyStyle.Render("container_engine"), valueStyle.Render(string(loaded.ContainerEngine)))
	fmt.Printf("%s: %s\n", keyStyle.Render("default_image"), valueStyle.Render(loaded.DefaultImage))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.color_scheme"), valueStyle.Render(string(loaded.UI.ColorScheme)))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(strconv.FormatBool(loaded.UI.Verbose)))
	fmt.Printf("%s: %s\n", keyStyle.Render("box.auto_remove"), valueStyle.Render(strconv.FormatBool(loaded.Box.AutoRemove)))
	fmt.Printf("%s: %s\n", keyStyle.Render("box.ready_timeout_secs"), valueStyle.Render(strconv.Itoa(loaded.Box.ReadyTimeoutSecs)))
	fmt.Printf("%s: %s\n", keyStyle.Render("box.stop_grace_secs"), valueStyle.Render(strconv.Itoa(loaded.Box.StopGraceSecs)))
	return nil
}
