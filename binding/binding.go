package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Expansion 是一次插值的结果，并记录了每处替换在模板与结果中的位置（按 rune 计），
// 以便把针对模板书写的颜色区间映射到插值后的文本。
type Expansion struct {
	Text  string
	edits []edit
}

type edit struct {
	start, end       int // 模板中 ${...} 的范围
	outStart, outEnd int // 结果文本中替换值的范围
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	return Expand(text, data).Text
}

// Expand 与 Interpolate 相同，但同时返回偏移映射信息。
func Expand(text string, data any) Expansion {
	if data == nil {
		return Expansion{Text: text}
	}
	matches := exprPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return Expansion{Text: text}
	}

	var (
		out      strings.Builder
		edits    []edit
		lastByte int
		tplRunes int // 已消费的模板 rune 数
		outRunes int // 已写出的结果 rune 数
	)
	for _, m := range matches {
		plain := text[lastByte:m[0]]
		out.WriteString(plain)
		n := utf8.RuneCountInString(plain)
		tplRunes += n
		outRunes += n

		placeholder := text[m[0]:m[1]]
		phRunes := utf8.RuneCountInString(placeholder)
		path := strings.TrimSpace(text[m[2]:m[3]])
		val, ok := lookup(data, path)
		if !ok {
			out.WriteString(placeholder)
			tplRunes += phRunes
			outRunes += phRunes
			lastByte = m[1]
			continue
		}
		// 与分段器一致地规范换行，否则结果中的 \r\n 会让后续偏移多算一位。
		repl := normalizeNewlines(fmt.Sprint(val))
		replRunes := utf8.RuneCountInString(repl)
		out.WriteString(repl)
		edits = append(edits, edit{
			start:    tplRunes,
			end:      tplRunes + phRunes,
			outStart: outRunes,
			outEnd:   outRunes + replRunes,
		})
		tplRunes += phRunes
		outRunes += replRunes
		lastByte = m[1]
	}
	out.WriteString(text[lastByte:])
	return Expansion{Text: out.String(), edits: edits}
}

// Changed 报告是否发生过替换。
func (e Expansion) Changed() bool { return len(e.edits) > 0 }

// MapOffset 把模板偏移映射到结果偏移。落在占位符内部的偏移吸附到替换值的一端：
// atEnd 为 true 时吸附到末端（用于区间终点），否则吸附到起点。
func (e Expansion) MapOffset(off int, atEnd bool) int {
	shift := 0
	for _, ed := range e.edits {
		if off <= ed.start {
			break
		}
		if off >= ed.end {
			shift = ed.outEnd - ed.end
			continue
		}
		if atEnd {
			return ed.outEnd
		}
		return ed.outStart
	}
	return off + shift
}

// MapRange 映射半开区间 [start, end)；与占位符相交的区间会扩展到覆盖整个替换值。
func (e Expansion) MapRange(start, end int) (int, int) {
	return e.MapOffset(start, false), e.MapOffset(end, true)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func lookup(data any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	return resolvePath(data, path)
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
