package layout

import (
	"encoding/json"
	"fmt"
)

// 该文件定义横幅（banner）的数据模型与排版派生结构，供布局计算、两个渲染后端与调试 JSON 共用。

// Banner 保存一张横幅的画布尺寸、背景、文本块与资源信息。
type Banner struct {
	Width      float64      `json:"width"`  // 逻辑单位（px）
	Height     float64      `json:"height"` // 逻辑单位（px）
	Background Background   `json:"background"`
	Blocks     []TextBlock  `json:"blocks"`
	Resources  ResourceSet  `json:"resources"`
	Meta       DocumentMeta `json:"meta"`
}

// Background 描述背景图片与底色，二者都可省略。
type Background struct {
	Src   string `json:"src,omitempty"`
	Fit   string `json:"fit,omitempty"` // cover(默认)/contain/stretch
	Color string `json:"color,omitempty"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]string       `json:"colors"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name      string `json:"name"`
	Src       string `json:"src"`
	Style     string `json:"style"`
	Family    string `json:"family"`    // 渲染器使用的 Family 名称
	IsBuiltin bool   `json:"isBuiltin"` // 是否为内建字体
	Fallback  string `json:"fallback"`
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存导出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// ColorRange 是规范化文本上的半开区间 [Start, End)，附带一个不透明的颜色值。
// 换行符计为一个字符；颜色值不做校验。
type ColorRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Color string `json:"color"`
}

// Valid 报告区间是否非空。
func (r ColorRange) Valid() bool { return r.End > r.Start }

// Len 返回区间长度（字符数）。
func (r ColorRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r ColorRange) String() string {
	return fmt.Sprintf("[%d,%d)=%s", r.Start, r.End, r.Color)
}

// Paint 是显式的可选颜色：未设置表示继承文本块的 BaseColor/Gradient。
// 不使用魔法字符串，避免把名为 "inherit" 的颜色误认为继承。
type Paint struct {
	color string
	set   bool
}

// Inherit 返回继承色。
func Inherit() Paint { return Paint{} }

// Solid 返回一个显式颜色。
func Solid(color string) Paint { return Paint{color: color, set: true} }

// Value 返回颜色值以及是否显式设置。
func (p Paint) Value() (string, bool) { return p.color, p.set }

// IsInherit 报告是否为继承色。
func (p Paint) IsInherit() bool { return !p.set }

// Equal 报告两个 Paint 是否相同。
func (p Paint) Equal(o Paint) bool { return p == o }

func (p Paint) String() string {
	if !p.set {
		return "<inherit>"
	}
	return p.color
}

// MarshalJSON 将继承色输出为 null。
func (p Paint) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.color)
}

// UnmarshalJSON 与 MarshalJSON 对称。
func (p *Paint) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Inherit()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Solid(s)
	return nil
}

// Geometry 是文本块在逻辑坐标系中的位置与尺寸。
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Typography 描述文本块的字体排印属性，数值均为逻辑单位。
type Typography struct {
	FontFamily    string         `json:"fontFamily"`
	FontSize      float64        `json:"fontSize"`
	FontWeight    int            `json:"fontWeight,omitempty"`
	LetterSpacing float64        `json:"letterSpacing,omitempty"` // 0 表示未设置
	LineHeight    LineHeightSpec `json:"lineHeight"`
	TextAlign     string         `json:"textAlign,omitempty"` // left(默认)/center/right
}

// Gradient 是文字的水平渐变填充。
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TextBlock 是被着色的文本元素。CommittedRanges 归文本块所有，只在确认编辑后变更；
// DraftRange 只在交互式颜色编辑期间存在。
type TextBlock struct {
	ID              string       `json:"id"`
	Text            string       `json:"text"`
	Geometry        Geometry     `json:"geometry"`
	Typography      Typography   `json:"typography"`
	BaseColor       string       `json:"baseColor"`
	Gradient        *Gradient    `json:"gradient,omitempty"`
	CommittedRanges []ColorRange `json:"committedRanges,omitempty"`
	DraftRange      *ColorRange  `json:"draftRange,omitempty"`
}

// Clone 返回深拷贝，调用方可以放心修改。
func (b TextBlock) Clone() TextBlock {
	out := b
	if b.Gradient != nil {
		g := *b.Gradient
		out.Gradient = &g
	}
	if b.CommittedRanges != nil {
		out.CommittedRanges = append([]ColorRange(nil), b.CommittedRanges...)
	}
	if b.DraftRange != nil {
		d := *b.DraftRange
		out.DraftRange = &d
	}
	return out
}

// Segment 是单行内颜色一致的最小连续文本片段。Start/End 为全局偏移。
type Segment struct {
	LineIdx int    `json:"lineIdx"`
	SegIdx  int    `json:"segIdx"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Text    string `json:"text"`
	Color   Paint  `json:"color"`
}

// Len 返回片段字符数。
func (s Segment) Len() int { return s.End - s.Start }

// Key 返回片段身份，在一次分段结果内唯一。
func (s Segment) Key() SegmentKey {
	return SegmentKey{LineIdx: s.LineIdx, SegIdx: s.SegIdx, Start: s.Start, End: s.End}
}

// SegmentKey 供渲染端做 diff 与稳定重绘。
type SegmentKey struct {
	LineIdx int
	SegIdx  int
	Start   int
	End     int
}

func (k SegmentKey) String() string {
	return fmt.Sprintf("l%d-s%d-%d-%d", k.LineIdx, k.SegIdx, k.Start, k.End)
}

// Line 表示分段后的一行；空行没有片段，但仍占据一个行高。
type Line struct {
	Index    int       `json:"index"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
	Segments []Segment `json:"segments"`
}

// Box 是缩放到目标坐标系后的几何与字体排印。
type Box struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	W             float64 `json:"w"`
	H             float64 `json:"h"`
	FontSize      float64 `json:"fontSize"`
	LineHeight    float64 `json:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing"`
	Align         string  `json:"align"` // 不随缩放变化
}

// Composition 是两个渲染后端共同消费的结果：相同的片段与相同的缩放几何。
type Composition struct {
	BlockID string  `json:"blockId"`
	Scale   float64 `json:"scale"`
	Box     Box     `json:"box"`
	Lines   []Line  `json:"lines"`
}

// Segments 返回按 (行, 起点) 排序的全部片段。
func (c Composition) Segments() []Segment {
	var out []Segment
	for _, ln := range c.Lines {
		out = append(out, ln.Segments...)
	}
	return out
}
