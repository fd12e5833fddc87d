package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteDebugJSON(t *testing.T) {
	b := &Banner{Width: 100, Height: 50, Blocks: []TextBlock{sampleBlock()}}
	b.Blocks[0].CommittedRanges = []ColorRange{{0, 2, "red"}}
	path := filepath.Join(t.TempDir(), "debug.json")
	if err := WriteDebugJSON(b, 1, path); err != nil {
		t.Fatalf("WriteDebugJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var dump struct {
		Compositions []struct {
			Lines []struct {
				Segments []struct {
					Text  string  `json:"text"`
					Color *string `json:"color"`
				} `json:"segments"`
			} `json:"lines"`
		} `json:"compositions"`
	}
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	segs := dump.Compositions[0].Lines[0].Segments
	if segs[0].Text != "He" || segs[0].Color == nil || *segs[0].Color != "red" {
		t.Fatalf("first segment = %+v", segs[0])
	}
	// 继承色输出为 null
	if segs[1].Color != nil {
		t.Fatalf("inherited paint should be null, got %q", *segs[1].Color)
	}
}
