package renderer

import (
	"strings"

	"github.com/ByLCY/placard/layout"
)

// DrawRun 逐字符绘制 text：在当前光标处绘制字符，然后前进该字形宽度加 letterSpacing；
// 最后一个字符之后不再追加间距。返回绘制结束后的光标位置。
// 只用于栅格化后端；实时视图依赖原生文本布局处理字距。
func DrawRun(t GlyphTarget, text string, x, y, letterSpacing float64) float64 {
	cursor := x
	first := true
	for _, r := range text {
		if !first {
			cursor += letterSpacing
		}
		first = false
		g := string(r)
		t.DrawGlyph(g, cursor, y)
		cursor += t.Advance(g)
	}
	return cursor
}

// RunWidth = Σ 字形宽度 + letterSpacing*(字符数-1)。
func RunWidth(m Measurer, text string, letterSpacing float64) float64 {
	width := 0.0
	n := 0
	for _, r := range text {
		width += m.Advance(string(r))
		n++
	}
	if n > 1 {
		width += letterSpacing * float64(n-1)
	}
	return width
}

// LineWidth 计算一整行（跨片段）的总宽度，公式与 RunWidth 相同：片段之间也只有一次间距。
func LineWidth(m Measurer, segs []layout.Segment, letterSpacing float64) float64 {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return RunWidth(m, b.String(), letterSpacing)
}

// AlignStart 返回行首 x。对齐只用上面的总宽度公式计算，不能借用引擎自带的文本测量，
// 后者不包含手动字距。
func AlignStart(align string, boxX, boxW, lineW float64) float64 {
	switch align {
	case "center":
		return boxX + (boxW-lineW)/2
	case "right":
		return boxX + boxW - lineW
	default:
		return boxX
	}
}

// DrawLine 按片段依次绘制一行，光标跨片段延续，使片段交界处的间距与片段内部一致。
func DrawLine(segs []layout.Segment, x, y, letterSpacing float64, targetFor func(layout.Segment) GlyphTarget) float64 {
	cursor := x
	for i, seg := range segs {
		if i > 0 {
			cursor += letterSpacing
		}
		cursor = DrawRun(targetFor(seg), seg.Text, cursor, y, letterSpacing)
	}
	return cursor
}
