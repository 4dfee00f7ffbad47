package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndApply(t *testing.T) {
	path := writeConfig(t, `
color = false
labels = true
switch_label = "{name}\n{free}"
formats = ["svg", "pdf"]
layout = "neato"
adapter_markers = ["HCA", "mlx5"]
high_speed = 100
output = "fabric"

[cache]
redis_url = "redis://localhost:6379/1"

[server]
addr = ":9090"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/1" || cfg.Server.Addr != ":9090" {
		t.Errorf("sections = %+v %+v", cfg.Cache, cfg.Server)
	}

	opts := pipeline.Options{LowSpeed: 10, Dialect: "section"}
	cfg.Apply(&opts)

	if !opts.NoColor || !opts.Labels {
		t.Errorf("NoColor=%v Labels=%v, want true true", opts.NoColor, opts.Labels)
	}
	if opts.SwitchTemplate != "{name}\n{free}" {
		t.Errorf("SwitchTemplate = %q", opts.SwitchTemplate)
	}
	if len(opts.Formats) != 2 || opts.Layout != "neato" || opts.Basename != "fabric" {
		t.Errorf("output options = %v %q %q", opts.Formats, opts.Layout, opts.Basename)
	}
	if opts.HighSpeed != 100 {
		t.Errorf("HighSpeed = %v", opts.HighSpeed)
	}
	if opts.LowSpeed != 10 || opts.Dialect != "section" {
		t.Error("keys absent from the file must not touch options")
	}
	if len(opts.AdapterMarkers) != 2 {
		t.Errorf("AdapterMarkers = %v", opts.AdapterMarkers)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, "colour = false\n")
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "labels = \n")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoad_MissingDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}

	opts := pipeline.Options{Labels: true}
	cfg.Apply(&opts)
	if !opts.Labels {
		t.Error("empty config must not change options")
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "ibtopo", FileName); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
