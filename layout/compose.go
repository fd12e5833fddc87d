package layout

// Compose 是两个渲染后端共用的唯一管线：区间合成 -> 分段 -> 几何缩放。
// 实时视图与栅格化导出都只调用这里，区别只在 scale 以及最终如何绘制片段。
// block 视为不可变快照；返回值是新的派生数据。
func Compose(block TextBlock, scale float64) Composition {
	text := NormalizeText(block.Text)
	resolved := ResolveText(text, block.CommittedRanges, block.DraftRange)
	segs := SegmentText(text, resolved)
	return Composition{
		BlockID: block.ID,
		Scale:   scale,
		Box:     ScaleBox(block, scale),
		Lines:   GroupLines(text, segs),
	}
}

// ComposeBanner 以同一 scale 组合横幅中的全部文本块。
func ComposeBanner(b *Banner, scale float64) []Composition {
	if b == nil {
		return nil
	}
	out := make([]Composition, 0, len(b.Blocks))
	for _, block := range b.Blocks {
		out = append(out, Compose(block, scale))
	}
	return out
}
