// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ContainerEngine != ContainerEngineAuto {
		t.Errorf("ContainerEngine = %q, want auto", cfg.ContainerEngine)
	}
	if cfg.DefaultImage != "alpine:latest" {
		t.Errorf("DefaultImage = %q", cfg.DefaultImage)
	}
	if !cfg.Box.AutoRemove {
		t.Error("expected AutoRemove default on")
	}
	if cfg.Box.ReadyTimeoutSecs != 30 {
		t.Errorf("ReadyTimeoutSecs = %d, want 30", cfg.Box.ReadyTimeoutSecs)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
container_engine = "podman"
default_image = "debian:stable-slim"

[ui]
color_scheme = "dark"
verbose = true

[box]
auto_remove = false
ready_timeout_secs = 60
stop_grace_secs = 5
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ContainerEngine != ContainerEnginePodman {
		t.Errorf("ContainerEngine = %q, want podman", cfg.ContainerEngine)
	}
	if cfg.DefaultImage != "debian:stable-slim" {
		t.Errorf("DefaultImage = %q", cfg.DefaultImage)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || !cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.Box.AutoRemove || cfg.Box.ReadyTimeoutSecs != 60 || cfg.Box.StopGraceSecs != 5 {
		t.Errorf("Box = %+v", cfg.Box)
	}
}

func TestLoad_ExplicitFilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte(`default_image = "busybox:latest"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DefaultImage != "busybox:latest" {
		t.Errorf("DefaultImage = %q", cfg.DefaultImage)
	}
}

func TestLoad_MissingExplicitFileIsError(t *testing.T) {
	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.toml"),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("container_engine = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir}); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoad_InvalidEnumValue(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`container_engine = "lxc"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if !errors.Is(err, ErrInvalidContainerEngine) {
		t.Errorf("expected ErrInvalidContainerEngine, got: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BOXLITE_DEFAULT_IMAGE", "ubuntu:24.04")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DefaultImage != "ubuntu:24.04" {
		t.Errorf("DefaultImage = %q, want env override", cfg.DefaultImage)
	}
}

func TestSaveAndReload(t *testing.T) {
	SetConfigDirOverride(t.TempDir())
	t.Cleanup(Reset)

	cfg := DefaultConfig()
	cfg.ContainerEngine = ContainerEngineDocker
	cfg.Box.StopGraceSecs = 7

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.ContainerEngine != ContainerEngineDocker {
		t.Errorf("ContainerEngine = %q after round trip", loaded.ContainerEngine)
	}
	if loaded.Box.StopGraceSecs != 7 {
		t.Errorf("StopGraceSecs = %d after round trip", loaded.Box.StopGraceSecs)
	}
}

func TestCreateDefaultConfig_DoesNotClobber(t *testing.T) {
	SetConfigDirOverride(t.TempDir())
	t.Cleanup(Reset)

	cfg := DefaultConfig()
	cfg.DefaultImage = "custom:1"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.DefaultImage != "custom:1" {
		t.Errorf("existing config was clobbered: DefaultImage = %q", loaded.DefaultImage)
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	t.Run("defaults valid", func(t *testing.T) {
		t.Parallel()
		if valid, errs := DefaultConfig().IsValid(); !valid {
			t.Errorf("default config invalid: %v", errs)
		}
	})

	t.Run("bad color scheme", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.UI.ColorScheme = "sepia"
		valid, errs := cfg.IsValid()
		if valid {
			t.Fatal("expected invalid config")
		}
		if !errors.Is(errs[0], ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig wrapper, got: %v", errs[0])
		}
	})

	t.Run("negative grace", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.Box.StopGraceSecs = -1
		if valid, _ := cfg.IsValid(); valid {
			t.Fatal("expected invalid config for negative grace period")
		}
	})
}
