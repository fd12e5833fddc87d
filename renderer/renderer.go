package renderer

import (
	"context"

	"github.com/ByLCY/placard/layout"
)

// Renderer 将横幅输出为最终文件，例如 PNG、JPEG 或 PDF。
// Render 在任何测量或绘制之前等待字体就绪屏障，返回编码后的字节。
type Renderer interface {
	Render(ctx context.Context, banner *layout.Banner) ([]byte, error)
}

// Measurer 在目标坐标系中测量单个字形的前进宽度。
type Measurer interface {
	Advance(glyph string) float64
}

// GlyphTarget 是逐字绘制的目标：栅格化后端为每种颜色提供一个实现。
type GlyphTarget interface {
	Measurer
	DrawGlyph(glyph string, x, y float64)
}

// Baseline 返回行框内的基线位置：行高多出字体高度的部分上下平分（与 CSS half-leading 一致）。
func Baseline(lineTop, lineHeight, ascent, descent float64) float64 {
	return lineTop + (lineHeight-(ascent+descent))/2 + ascent
}

// LineTop 返回第 i 行的顶部坐标。
func LineTop(box layout.Box, i int) float64 {
	return box.Y + float64(i)*box.LineHeight
}
