package live

import (
	"fmt"
	"sort"

	"github.com/ByLCY/placard/layout"
	"github.com/ByLCY/placard/renderer"
)

// Span 是一个带样式的文本片段，Key 在重建之间保持稳定，可直接用作 DOM key。
type Span struct {
	Key   string       `json:"key"`
	Text  string       `json:"text"`
	Color layout.Paint `json:"color"`
	X     float64      `json:"x"`
	Width float64      `json:"width"`
}

// LineView 是一行内的片段；空行仍然保留以占据行高。
type LineView struct {
	Index int     `json:"index"`
	Top   float64 `json:"top"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
	Spans []Span  `json:"spans"`
}

// BlockView 是一个文本块在预览面上的视图。
type BlockView struct {
	ID         string           `json:"id"`
	Box        layout.Box       `json:"box"`
	Font       string           `json:"font"`
	FontWeight int              `json:"fontWeight,omitempty"`
	BaseColor  string           `json:"baseColor"`
	Gradient   *layout.Gradient `json:"gradient,omitempty"`
	Lines      []LineView       `json:"lines"`
}

// View 是整张横幅的实时预览模型。
type View struct {
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Scale      float64           `json:"scale"`
	Background layout.Background `json:"background"`
	Blocks     []BlockView       `json:"blocks"`
}

// Options 配置实时视图。
type Options struct {
	SurfaceWidth float64
	Faces        Measurers
	Debug        layout.DebugOptions
}

// Builder 在固定的预览缩放下为文本块生成视图，编辑过程中每次输入重建一个块即可。
type Builder struct {
	scale     float64
	faces     Measurers
	resources layout.ResourceSet
	debug     layout.DebugOptions
}

// NewBuilder 根据预览面宽度计算缩放。
func NewBuilder(banner *layout.Banner, opts Options) (*Builder, error) {
	if banner == nil {
		return nil, fmt.Errorf("横幅为空")
	}
	if opts.Faces == nil {
		return nil, fmt.Errorf("缺少字体测量器")
	}
	scale, err := layout.PreviewScale(opts.SurfaceWidth, banner.Width)
	if err != nil {
		return nil, err
	}
	return &Builder{scale: scale, faces: opts.Faces, resources: banner.Resources, debug: opts.Debug}, nil
}

// Scale 返回预览缩放系数。
func (b *Builder) Scale() float64 { return b.scale }

// Build 生成整张横幅的视图。
func Build(banner *layout.Banner, surfaceWidth float64, faces Measurers) (*View, error) {
	return BuildWithOptions(banner, Options{SurfaceWidth: surfaceWidth, Faces: faces})
}

// BuildWithOptions 与 Build 相同，但接受完整配置。
func BuildWithOptions(banner *layout.Banner, opts Options) (*View, error) {
	b, err := NewBuilder(banner, opts)
	if err != nil {
		return nil, err
	}
	view := &View{
		Width:      banner.Width * b.scale,
		Height:     banner.Height * b.scale,
		Scale:      b.scale,
		Background: banner.Background,
		Blocks:     make([]BlockView, 0, len(banner.Blocks)),
	}
	for _, block := range banner.Blocks {
		bv, err := b.Block(block)
		if err != nil {
			return nil, fmt.Errorf("文本块 %s: %w", block.ID, err)
		}
		view.Blocks = append(view.Blocks, bv)
	}
	return view, nil
}

// Block 通过共用管线组合文本块，再按浏览器的 letter-spacing 语义排布片段。
func (b *Builder) Block(block layout.TextBlock) (BlockView, error) {
	comp := layout.Compose(block, b.scale)
	if b.debug.AssertGeometry {
		g, t := block.Geometry, block.Typography
		want := layout.Box{
			X: g.X * b.scale, Y: g.Y * b.scale, W: g.Width * b.scale, H: g.Height * b.scale,
			FontSize:      t.FontSize * b.scale,
			LineHeight:    t.LineHeight.Resolve(t.FontSize) * b.scale,
			LetterSpacing: t.LetterSpacing * b.scale,
		}
		if err := layout.CheckBox(want, comp.Box, 1e-6); err != nil {
			return BlockView{}, fmt.Errorf("预览几何校验失败: %w", err)
		}
	}
	font := layout.ResolveFont(block.Typography.FontFamily, b.resources)
	m, err := b.faces.Measurer(font, block.Typography.FontWeight, comp.Box.FontSize)
	if err != nil {
		return BlockView{}, err
	}
	bv := BlockView{
		ID:         block.ID,
		Box:        comp.Box,
		Font:       font.Family,
		FontWeight: block.Typography.FontWeight,
		BaseColor:  block.BaseColor,
		Gradient:   block.Gradient,
		Lines:      make([]LineView, 0, len(comp.Lines)),
	}
	for i, ln := range comp.Lines {
		bv.Lines = append(bv.Lines, layoutLine(comp.Box, i, ln, m))
	}
	return bv, nil
}

// layoutLine 模拟浏览器排版：letter-spacing 加在每个字符之后，包括末尾字符，
// 因此片段的可见宽度是盒宽减去最后一个间距。
func layoutLine(box layout.Box, i int, ln layout.Line, m renderer.Measurer) LineView {
	ls := box.LetterSpacing
	spans := make([]Span, 0, len(ln.Segments))
	boxWidth := 0.0
	for _, seg := range ln.Segments {
		w := 0.0
		for _, r := range seg.Text {
			w += m.Advance(string(r)) + ls
		}
		spans = append(spans, Span{Key: seg.Key().String(), Text: seg.Text, Color: seg.Color, X: boxWidth, Width: w - ls})
		boxWidth += w
	}
	lineWidth := 0.0
	if len(spans) > 0 {
		lineWidth = boxWidth - ls
	}
	x := renderer.AlignStart(box.Align, box.X, box.W, lineWidth)
	for j := range spans {
		spans[j].X += x
	}
	return LineView{Index: ln.Index, Top: renderer.LineTop(box, i), X: x, Width: lineWidth, Spans: spans}
}

// Trace 返回文本块的布局记录，用于与栅格化后端比对。
func (v *BlockView) Trace() renderer.BlockTrace {
	out := renderer.BlockTrace{BlockID: v.ID, Box: v.Box, Lines: make([]renderer.LineTrace, 0, len(v.Lines))}
	for _, ln := range v.Lines {
		lt := renderer.LineTrace{Index: ln.Index, Top: ln.Top, X: ln.X, Width: ln.Width, Segments: make([]renderer.SegmentTrace, 0, len(ln.Spans))}
		for _, s := range ln.Spans {
			lt.Segments = append(lt.Segments, renderer.SegmentTrace{Key: s.Key, Text: s.Text, Color: s.Color, X: s.X, Width: s.Width})
		}
		out.Lines = append(out.Lines, lt)
	}
	return out
}

// Keys 返回视图中全部片段键（有序）。
func (v *BlockView) Keys() []string {
	var keys []string
	for _, ln := range v.Lines {
		for _, s := range ln.Spans {
			keys = append(keys, s.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// DiffKeys 比较两次重建的片段键，返回需要新建与移除的片段。
func DiffKeys(prev, next BlockView) (added, removed []string) {
	before := map[string]bool{}
	for _, k := range prev.Keys() {
		before[k] = true
	}
	after := map[string]bool{}
	for _, k := range next.Keys() {
		after[k] = true
		if !before[k] {
			added = append(added, k)
		}
	}
	for _, k := range prev.Keys() {
		if !after[k] {
			removed = append(removed, k)
		}
	}
	return added, removed
}

// Block 返回指定 ID 的块视图。
func (v *View) Block(id string) (*BlockView, bool) {
	for i := range v.Blocks {
		if v.Blocks[i].ID == id {
			return &v.Blocks[i], true
		}
	}
	return nil, false
}
