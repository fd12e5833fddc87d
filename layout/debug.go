package layout

import (
	"encoding/json"
	"os"
)

// DebugDump 是调试 JSON 的根结构：横幅本身加上导出尺度下的组合结果。
type DebugDump struct {
	Banner       *Banner       `json:"banner"`
	Compositions []Composition `json:"compositions"`
}

// WriteDebugJSON 将横幅与其在 scale 下的组合结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(b *Banner, scale float64, path string) error {
	if b == nil {
		return nil
	}
	dump := DebugDump{Banner: b, Compositions: ComposeBanner(b, scale)}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
