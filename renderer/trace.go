package renderer

import (
	"fmt"
	"math"

	"github.com/ByLCY/placard/layout"
)

// SegmentTrace 记录一个片段在目标坐标系中的水平位置。
type SegmentTrace struct {
	Key   string       `json:"key"`
	Text  string       `json:"text"`
	Color layout.Paint `json:"color"`
	X     float64      `json:"x"`
	Width float64      `json:"width"`
}

// LineTrace 是一行的布局记录；空行没有片段。
type LineTrace struct {
	Index    int            `json:"index"`
	Top      float64        `json:"top"`
	X        float64        `json:"x"`
	Width    float64        `json:"width"`
	Segments []SegmentTrace `json:"segments"`
}

// BlockTrace 是一个文本块完整的布局记录，两个后端各自产出一份用于一致性比对。
type BlockTrace struct {
	BlockID string      `json:"blockId"`
	Box     layout.Box  `json:"box"`
	Lines   []LineTrace `json:"lines"`
}

// Trace 以栅格化后端的逐字前进规则（DrawLine）布局组合结果，但不绘制任何内容。
func Trace(comp layout.Composition, m Measurer) BlockTrace {
	box := comp.Box
	out := BlockTrace{BlockID: comp.BlockID, Box: box, Lines: make([]LineTrace, 0, len(comp.Lines))}
	for i, ln := range comp.Lines {
		lw := LineWidth(m, ln.Segments, box.LetterSpacing)
		x := AlignStart(box.Align, box.X, box.W, lw)
		lt := LineTrace{Index: ln.Index, Top: LineTop(box, i), X: x, Segments: make([]SegmentTrace, len(ln.Segments))}
		recorders := make(map[layout.SegmentKey]*glyphRecorder, len(ln.Segments))
		for j, seg := range ln.Segments {
			lt.Segments[j] = SegmentTrace{Key: seg.Key().String(), Text: seg.Text, Color: seg.Color}
			recorders[seg.Key()] = &glyphRecorder{m: m, seg: &lt.Segments[j]}
		}
		end := DrawLine(ln.Segments, x, 0, box.LetterSpacing, func(seg layout.Segment) GlyphTarget {
			return recorders[seg.Key()]
		})
		lt.Width = end - x
		out.Lines = append(out.Lines, lt)
	}
	return out
}

type glyphRecorder struct {
	m       Measurer
	seg     *SegmentTrace
	started bool
}

func (g *glyphRecorder) Advance(glyph string) float64 { return g.m.Advance(glyph) }

func (g *glyphRecorder) DrawGlyph(glyph string, x, _ float64) {
	if !g.started {
		g.seg.X = x
		g.started = true
	}
	g.seg.Width = x + g.m.Advance(glyph) - g.seg.X
}

// CompareTraces 比较两份布局记录：片段的键、文本与颜色必须完全一致，坐标允许 tolerance 误差。
// 返回所有差异的描述，没有差异时返回 nil。
func CompareTraces(want, got BlockTrace, tolerance float64) []string {
	var diffs []string
	near := func(a, b float64) bool { return math.Abs(a-b) <= tolerance }
	if len(want.Lines) != len(got.Lines) {
		return []string{fmt.Sprintf("行数不同：want=%d got=%d", len(want.Lines), len(got.Lines))}
	}
	for i := range want.Lines {
		wl, gl := want.Lines[i], got.Lines[i]
		if !near(wl.Top, gl.Top) {
			diffs = append(diffs, fmt.Sprintf("第 %d 行 top：want=%g got=%g", i, wl.Top, gl.Top))
		}
		if !near(wl.X, gl.X) || !near(wl.Width, gl.Width) {
			diffs = append(diffs, fmt.Sprintf("第 %d 行位置：want=(%g,+%g) got=(%g,+%g)", i, wl.X, wl.Width, gl.X, gl.Width))
		}
		if len(wl.Segments) != len(gl.Segments) {
			diffs = append(diffs, fmt.Sprintf("第 %d 行片段数：want=%d got=%d", i, len(wl.Segments), len(gl.Segments)))
			continue
		}
		for j := range wl.Segments {
			ws, gs := wl.Segments[j], gl.Segments[j]
			if ws.Key != gs.Key || ws.Text != gs.Text || ws.Color != gs.Color {
				diffs = append(diffs, fmt.Sprintf("片段 %s：want=%q/%s got=%s %q/%s", ws.Key, ws.Text, ws.Color, gs.Key, gs.Text, gs.Color))
				continue
			}
			if !near(ws.X, gs.X) || !near(ws.Width, gs.Width) {
				diffs = append(diffs, fmt.Sprintf("片段 %s 位置：want=(%g,+%g) got=(%g,+%g)", ws.Key, ws.X, ws.Width, gs.X, gs.Width))
			}
		}
	}
	return diffs
}
