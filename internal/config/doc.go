// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with TOML
// as the file format.
//
// Configuration is loaded from ~/.config/boxlite/config.toml (or XDG
// equivalent on Linux, ~/Library/Application Support/boxlite/config.toml
// on macOS, %APPDATA%\boxlite\config.toml on Windows). Values can be
// overridden through BOXLITE_* environment variables, e.g.
// BOXLITE_CONTAINER_ENGINE=podman.
package config
