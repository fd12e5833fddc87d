package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source 按 src 读取字体字节，栅格化后端与实时视图的测量器共用，保证两边使用同一份字体。
type Source struct {
	// BaseDir 用于解析相对路径；为空时只允许绝对路径与内置字体。
	BaseDir string
	// Blobs 是注入的字体，通过 built-in:<name> 引用，优先于同名的内置 Go 字体。
	Blobs map[string][]byte
}

// Bytes 返回 src 指向的字体。weight 只对内置字体生效，用于挑选对应字重的变体。
func (s Source) Bytes(src string, weight int) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体缺少 src")
	}
	if IsBuiltin(src) {
		name := trimBuiltin(src)
		if blob, ok := s.Blobs[name]; ok {
			return blob, nil
		}
		return Load(Variant(name, weight))
	}
	path := src
	if s.BaseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// Variant 返回内置字体在指定字重下的变体名；没有对应变体时原样返回。
func Variant(name string, weight int) string {
	key := strings.ToLower(strings.TrimSuffix(trimBuiltin(name), ".ttf"))
	switch {
	case weight >= 600:
		switch key {
		case "go-regular", "go-medium":
			return "go-bold"
		case "go-italic":
			return "go-bold-italic"
		case "go-mono":
			return "go-mono-bold"
		}
	case weight >= 500:
		if key == "go-regular" {
			return "go-medium"
		}
	}
	return key
}

func trimBuiltin(src string) string {
	return strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(src, "embed:"), "builtin:"), "built-in:")
}
