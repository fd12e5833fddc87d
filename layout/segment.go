package layout

import (
	"strings"
	"unicode/utf8"
)

// NormalizeText 统一换行符（\r\n 与单独的 \r 都变为 \n）。
// 规范化后的文本是选择 UI、区间合成与导出共享的唯一偏移空间。
func NormalizeText(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// RuneLen 返回字符数（按 rune 计）。
func RuneLen(s string) int { return utf8.RuneCountInString(s) }

// SegmentText 把规范化文本与已合成的覆盖切分成按行、按片段排列的渲染单元。
// 每行从左到右输出：首个区间之前的继承色填充、区间本身……直到行尾的继承色填充。
// 不会输出零长度片段；SegIdx 在每行内从 0 开始递增。
// 超出文本长度的区间在对应行上被忽略。
func SegmentText(text string, resolved []ColorRange) []Segment {
	lines := strings.Split(NormalizeText(text), "\n")
	var out []Segment
	offset := 0
	for lineIdx, line := range lines {
		runes := []rune(line)
		out = append(out, segmentLine(lineIdx, offset, runes, resolved)...)
		// +1 对应被消费的换行符，它没有字形但占一个偏移
		offset += len(runes) + 1
	}
	return out
}

func segmentLine(lineIdx, lineStart int, runes []rune, resolved []ColorRange) []Segment {
	lineEnd := lineStart + len(runes)
	var segs []Segment
	cursor := lineStart
	emit := func(start, end int, paint Paint) {
		if end <= start {
			return
		}
		segs = append(segs, Segment{
			LineIdx: lineIdx,
			SegIdx:  len(segs),
			Start:   start,
			End:     end,
			Text:    string(runes[start-lineStart : end-lineStart]),
			Color:   paint,
		})
	}
	for _, r := range resolved {
		if !r.Valid() || r.End <= lineStart || r.Start >= lineEnd {
			continue
		}
		start := max(r.Start, lineStart)
		end := min(r.End, lineEnd)
		// resolved 已有序且互不重叠；防御性跳过已被覆盖的部分
		if start < cursor {
			start = cursor
		}
		if end <= start {
			continue
		}
		emit(cursor, start, Inherit())
		emit(start, end, Solid(r.Color))
		cursor = end
	}
	emit(cursor, lineEnd, Inherit())
	return segs
}

// GroupLines 按行号分组片段，保留没有片段的空行。
func GroupLines(text string, segs []Segment) []Line {
	raw := strings.Split(NormalizeText(text), "\n")
	lines := make([]Line, len(raw))
	offset := 0
	for i, l := range raw {
		n := RuneLen(l)
		lines[i] = Line{Index: i, Start: offset, End: offset + n}
		offset += n + 1
	}
	for _, s := range segs {
		if s.LineIdx < 0 || s.LineIdx >= len(lines) {
			continue
		}
		lines[s.LineIdx].Segments = append(lines[s.LineIdx].Segments, s)
	}
	return lines
}
