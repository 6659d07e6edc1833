package host

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigParsesValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ona")
	doc := "DisplayTitle = \"Test Game\"\nDisplaySize = [800, 600]\nExtensions = [\"foo\", \"bar\"]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if title, ok := cfg.String("DisplayTitle"); !ok || title != "Test Game" {
		t.Fatalf("DisplayTitle = %q, %v", title, ok)
	}
	size, ok := cfg.Vector2("DisplaySize")
	if !ok || size[0] != 800 || size[1] != 600 {
		t.Fatalf("DisplaySize = %v, %v", size, ok)
	}
	ext, ok := cfg.StringSlice("Extensions")
	if !ok || len(ext) != 2 || ext[0] != "foo" || ext[1] != "bar" {
		t.Fatalf("Extensions = %v, %v", ext, ok)
	}
}

func TestLoadConfigMissingFileYieldsEmptyDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.ona"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if _, ok := cfg.String("DisplayTitle"); ok {
		t.Fatal("expected absent key on a missing config file")
	}
}

func TestOptionsFromConfigUsesProvidedValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ona")
	doc := "DisplayTitle = \"Custom\"\nDisplaySize = [1024, 768]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	opts := OptionsFromConfig(cfg)
	if opts.Width != 1024 || opts.Height != 768 || opts.Title != "Custom" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
