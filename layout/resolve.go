package layout

import (
	"log/slog"
	"sort"
)

// Resolve 将已提交区间与可选的草稿区间合成为互不重叠、有序且已合并的覆盖。
// 草稿最后应用，因此在其覆盖的每个字符上都优先于已提交区间。
// 非法区间（End <= Start）被静默丢弃。相同输入总是得到相同输出。
func Resolve(committed []ColorRange, draft *ColorRange) []ColorRange {
	inputs := make([]ColorRange, 0, len(committed)+1)
	for _, r := range committed {
		if r.Valid() {
			inputs = append(inputs, r)
		}
	}
	sort.SliceStable(inputs, func(i, j int) bool { return lessRange(inputs[i], inputs[j]) })
	if draft != nil && draft.Valid() {
		inputs = append(inputs, *draft)
	}

	var acc []ColorRange
	for _, r := range inputs {
		acc = insertRange(acc, r)
	}
	if acc == nil {
		return []ColorRange{}
	}
	return acc
}

// insertRange 先切开 acc 中与 r 部分重叠的区间（保留左右剩余，丢弃被覆盖的中段），
// 再追加 r，最后排序并合并相邻同色区间。
func insertRange(acc []ColorRange, r ColorRange) []ColorRange {
	next := make([]ColorRange, 0, len(acc)+2)
	for _, a := range acc {
		if a.End <= r.Start || a.Start >= r.End {
			next = append(next, a)
			continue
		}
		if a.Start < r.Start {
			next = append(next, ColorRange{Start: a.Start, End: r.Start, Color: a.Color})
		}
		if a.End > r.End {
			next = append(next, ColorRange{Start: r.End, End: a.End, Color: a.Color})
		}
	}
	next = append(next, r)
	sort.SliceStable(next, func(i, j int) bool { return lessRange(next[i], next[j]) })
	return coalesce(next)
}

// coalesce 合并首尾相接（prev.End == next.Start）且颜色相同的区间。
func coalesce(ranges []ColorRange) []ColorRange {
	out := ranges[:0]
	for _, r := range ranges {
		if n := len(out); n > 0 && out[n-1].End == r.Start && out[n-1].Color == r.Color {
			out[n-1].End = r.End
			continue
		}
		out = append(out, r)
	}
	return out
}

func lessRange(a, b ColorRange) bool {
	if a.Start == b.Start {
		return a.End < b.End
	}
	return a.Start < b.Start
}

// Clamp 将区间裁剪到 [0, textLen]，裁剪后为空的区间被丢弃。
// 裁剪从不报错；实际改变了区间时以 Debug 级别记录，便于排查文本被外部截断后颜色错位的问题。
func Clamp(ranges []ColorRange, textLen int) []ColorRange {
	if textLen < 0 {
		textLen = 0
	}
	out := make([]ColorRange, 0, len(ranges))
	for _, r := range ranges {
		c, ok := clampRange(r, textLen)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

func clampRange(r ColorRange, textLen int) (ColorRange, bool) {
	if !r.Valid() {
		return r, false
	}
	c := r
	if c.Start < 0 {
		c.Start = 0
	}
	if c.End > textLen {
		c.End = textLen
	}
	if c != r {
		Logger().Debug("color range clamped",
			slog.String("range", r.String()),
			slog.String("clamped", c.String()),
			slog.Int("textLen", textLen))
	}
	if !c.Valid() {
		return c, false
	}
	return c, true
}

// ResolveText 是渲染用的完整入口：规范化文本、裁剪区间后再合成。
func ResolveText(text string, committed []ColorRange, draft *ColorRange) []ColorRange {
	n := RuneLen(NormalizeText(text))
	clamped := Clamp(committed, n)
	var d *ColorRange
	if draft != nil {
		if c, ok := clampRange(*draft, n); ok {
			d = &c
		}
	}
	return Resolve(clamped, d)
}
