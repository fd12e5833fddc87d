package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFont 是未声明任何字体时使用的内置字体。
const DefaultFont = "go-regular"

var builtin = map[string][]byte{
	"go-regular":     goregular.TTF,
	"go-medium":      gomedium.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,
	"go-mono":        gomono.TTF,
	"go-mono-bold":   gomonobold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:go-bold"、"embed:go-bold" 或直接 "go-bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSuffix(trimBuiltin(name), ".ttf"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体（可用: %s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// IsBuiltin 报告 src 是否指向内置字体。
func IsBuiltin(src string) bool {
	for _, p := range []string{"embed:", "builtin:", "built-in:"} {
		if strings.HasPrefix(src, p) {
			return true
		}
	}
	return false
}

// Names 返回全部内置字体名（有序）。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for k := range builtin {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
