package renderer

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/colornames"

	"github.com/ByLCY/placard/layout"
)

// DefaultTextColor 在颜色缺失或无法解析时使用。
var DefaultTextColor = color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}

// ParseColor 解析 #rgb、#rgba、#rrggbb、#rrggbbaa、rgb()/rgba() 以及 CSS 颜色名。
func ParseColor(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return color.RGBA{}, fmt.Errorf("颜色为空")
	case v == "transparent":
		return color.RGBA{}, nil
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgb"):
		return parseFunc(v)
	}
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("无法识别的颜色 %q", s)
}

// ColorOr 解析颜色，失败时返回 fallback。
func ColorOr(s string, fallback color.RGBA) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// parseHex 只做长度与字符校验，解码交给 canvas.Hex（带 alpha 的写法已预乘）。
func parseHex(h string) (color.RGBA, error) {
	switch len(h) {
	case 3, 4, 6, 8:
	default:
		return color.RGBA{}, fmt.Errorf("十六进制颜色长度无效 #%s", h)
	}
	for _, ch := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", ch) {
			return color.RGBA{}, fmt.Errorf("十六进制颜色无效 #%s", h)
		}
	}
	return canvas.Hex("#" + h), nil
}

func parseFunc(v string) (color.RGBA, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return color.RGBA{}, fmt.Errorf("颜色函数格式错误 %q", v)
	}
	parts := strings.Split(v[open+1:len(v)-1], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("颜色函数参数个数错误 %q", v)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("颜色分量无效 %q: %w", parts[i], err)
		}
		ch[i] = uint8(math.Round(clamp01(f/255) * 255))
	}
	alpha := uint8(0xff)
	if len(parts) == 4 {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("透明度无效 %q: %w", parts[3], err)
		}
		alpha = uint8(math.Round(clamp01(f) * 255))
	}
	return premultiply(color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}), nil
}

// color.RGBA 约定为预乘 alpha。
func premultiply(c color.RGBA) color.RGBA {
	if c.A == 0xff {
		return c
	}
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 0xff),
		G: uint8(uint32(c.G) * a / 0xff),
		B: uint8(uint32(c.B) * a / 0xff),
		A: c.A,
	}
}

// Lerp 在 a、b 之间按 t∈[0,1] 线性插值。
func Lerp(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// GlyphColor 决定单个字形的填充色：片段显式颜色优先；继承色在有渐变时按字形中心
// 在文本框内的水平位置插值，否则使用文本块的基础色。
func GlyphColor(paint layout.Paint, baseColor string, grad *layout.Gradient, box layout.Box, glyphCenter float64) color.RGBA {
	if c, ok := paint.Value(); ok {
		return ColorOr(c, DefaultTextColor)
	}
	if grad != nil {
		t := 0.0
		if box.W > 0 {
			t = (glyphCenter - box.X) / box.W
		}
		return Lerp(ColorOr(grad.From, DefaultTextColor), ColorOr(grad.To, DefaultTextColor), t)
	}
	return ColorOr(baseColor, DefaultTextColor)
}
