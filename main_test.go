package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	canvasrenderer "github.com/ByLCY/placard/renderer/canvas"
)

func TestRunExample(t *testing.T) {
	dir := t.TempDir()
	cfg := config{
		input:        filepath.Join("examples", "launch.placard"),
		output:       filepath.Join(dir, "out", "launch.png"),
		debugPath:    filepath.Join(dir, "debug.json"),
		previewPath:  filepath.Join(dir, "preview.html"),
		previewWidth: 600,
		data:         map[string]any{"product": "Placard"},
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: "examples", Format: canvasrenderer.FormatPNG})
	if err := run(context.Background(), cfg, r); err != nil {
		t.Fatalf("run: %v", err)
	}
	out, err := os.ReadFile(cfg.output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
	preview, err := os.ReadFile(cfg.previewPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(preview), "Placard") {
		t.Fatalf("preview should contain the interpolated text")
	}
	if _, err := os.Stat(cfg.debugPath); err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := config{input: "does-not-exist.placard", output: filepath.Join(t.TempDir(), "x.png")}
	if err := run(context.Background(), cfg, canvasrenderer.NewRenderer("")); err == nil {
		t.Fatalf("expected error for missing input")
	}
	if err := run(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}
