package layout

import (
	"sort"

	"github.com/ByLCY/placard/fonts"
)

// ResolveFont 为文本块挑选字体资源：先按名称，再取 Body，否则取名称排序后的第一个；
// 没有任何字体资源时返回内置默认字体。导出与实时预览都经由这里选字体。
func ResolveFont(name string, res ResourceSet) FontResource {
	if font, ok := res.Fonts[name]; ok {
		return font
	}
	if font, ok := res.Fonts[defaultFontName]; ok {
		return font
	}
	if len(res.Fonts) > 0 {
		names := make([]string, 0, len(res.Fonts))
		for n := range res.Fonts {
			names = append(names, n)
		}
		sort.Strings(names)
		return res.Fonts[names[0]]
	}
	return FontResource{
		Name:      defaultFontName,
		Family:    defaultFontName,
		Src:       "builtin:" + fonts.DefaultFont,
		IsBuiltin: true,
	}
}
