package layout

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSegmentTextAcrossNewline(t *testing.T) {
	// "ab\ncd"，区间 [1,4) 跨越换行：换行符占偏移 2 但不产生字形。
	got := SegmentText("ab\ncd", []ColorRange{{1, 4, "red"}})
	want := []Segment{
		{LineIdx: 0, SegIdx: 0, Start: 0, End: 1, Text: "a", Color: Inherit()},
		{LineIdx: 0, SegIdx: 1, Start: 1, End: 2, Text: "b", Color: Solid("red")},
		{LineIdx: 1, SegIdx: 0, Start: 3, End: 4, Text: "c", Color: Solid("red")},
		{LineIdx: 1, SegIdx: 1, Start: 4, End: 5, Text: "d", Color: Inherit()},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SegmentText mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentTextNoRanges(t *testing.T) {
	got := SegmentText("hello", nil)
	want := []Segment{{LineIdx: 0, SegIdx: 0, Start: 0, End: 5, Text: "hello", Color: Inherit()}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SegmentText mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentTextCoversEveryCharacter(t *testing.T) {
	text := "héllo wörld\n\n多字节文本 ok\nlast"
	resolved := Resolve([]ColorRange{{2, 9, "red"}, {11, 15, "blue"}, {20, 40, "green"}}, &ColorRange{Start: 5, End: 7, Color: "pink"})
	segs := SegmentText(text, resolved)

	var joined []string
	lineIdx, segIdx := 0, 0
	seen := map[SegmentKey]bool{}
	for i, s := range segs {
		if s.Len() <= 0 {
			t.Fatalf("segment %d has zero length: %+v", i, s)
		}
		if s.LineIdx != lineIdx {
			lineIdx, segIdx = s.LineIdx, 0
		}
		if s.SegIdx != segIdx {
			t.Fatalf("segment %d: SegIdx=%d want %d", i, s.SegIdx, segIdx)
		}
		segIdx++
		if RuneLen(s.Text) != s.Len() {
			t.Fatalf("segment %d: text %q does not match [%d,%d)", i, s.Text, s.Start, s.End)
		}
		if seen[s.Key()] {
			t.Fatalf("duplicate key %v", s.Key())
		}
		seen[s.Key()] = true
		if i > 0 && segs[i-1].LineIdx == s.LineIdx && segs[i-1].End != s.Start {
			t.Fatalf("gap inside line between %+v and %+v", segs[i-1], s)
		}
		for len(joined) <= s.LineIdx {
			joined = append(joined, "")
		}
		joined[s.LineIdx] += s.Text
	}
	for len(joined) < strings.Count(text, "\n")+1 {
		joined = append(joined, "")
	}
	if got := strings.Join(joined, "\n"); got != text {
		t.Fatalf("segments do not reproduce the text:\n got %q\nwant %q", got, text)
	}

	// 每个字符的颜色与合成结果一致
	runes := []rune(text)
	for _, s := range segs {
		for off := s.Start; off < s.End; off++ {
			if runes[off] == '\n' {
				t.Fatalf("segment %+v contains a newline", s)
			}
			want := colorAt(resolved, off)
			got, _ := s.Color.Value()
			if got != want {
				t.Fatalf("offset %d: color %q want %q", off, got, want)
			}
		}
	}
}

func TestSegmentTextNormalizesCRLF(t *testing.T) {
	crlf := SegmentText("ab\r\ncd", []ColorRange{{3, 4, "red"}})
	lf := SegmentText("ab\ncd", []ColorRange{{3, 4, "red"}})
	if diff := cmp.Diff(lf, crlf); diff != "" {
		t.Fatalf("CRLF text segmented differently (-lf +crlf):\n%s", diff)
	}
}

func TestSegmentTextIgnoresOutOfRange(t *testing.T) {
	got := SegmentText("abc", []ColorRange{{10, 20, "red"}})
	if len(got) != 1 || !got[0].Color.IsInherit() || got[0].Text != "abc" {
		t.Fatalf("out-of-range ranges should be ignored, got %+v", got)
	}
}

func TestGroupLinesKeepsEmptyLines(t *testing.T) {
	text := "a\n\nb\n"
	lines := GroupLines(text, SegmentText(text, nil))
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if len(lines[1].Segments) != 0 || len(lines[3].Segments) != 0 {
		t.Fatalf("empty lines should have no segments: %+v", lines)
	}
	if lines[2].Start != 3 || lines[2].End != 4 {
		t.Fatalf("line 2 offsets = [%d,%d), want [3,4)", lines[2].Start, lines[2].End)
	}
	if lines[2].Segments[0].Text != "b" {
		t.Fatalf("line 2 text = %q", lines[2].Segments[0].Text)
	}
}

func TestSegmentKeyString(t *testing.T) {
	k := Segment{LineIdx: 1, SegIdx: 2, Start: 5, End: 9}.Key()
	if got := k.String(); got != "l1-s2-5-9" {
		t.Fatalf("key string = %q", got)
	}
}
