package canvasrenderer

import (
	"fmt"
	"image/color"
	"math"
	"unicode"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/placard/layout"
	"github.com/ByLCY/placard/renderer"
)

// faceSet 持有一个文本块的字体，按颜色缓存字体面。
// 宽度只与字体和字号有关，所以测量统一使用第一个字体面。
type faceSet struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
	sizePt float64
	faces  map[color.RGBA]*canvas.FontFace
	widths map[string]float64
}

func (r *Renderer) faceSet(block layout.TextBlock, resources layout.ResourceSet, box layout.Box) (*faceSet, error) {
	font := layout.ResolveFont(block.Typography.FontFamily, resources)
	family, style, err := r.ensureFontFamily(font, block.Typography.FontWeight)
	if err != nil {
		return nil, err
	}
	return &faceSet{
		family: family,
		style:  style,
		sizePt: toPt(box.FontSize),
		faces:  map[color.RGBA]*canvas.FontFace{},
		widths: map[string]float64{},
	}, nil
}

func (f *faceSet) face(c color.RGBA) *canvas.FontFace {
	if face, ok := f.faces[c]; ok {
		return face
	}
	face := f.family.Face(f.sizePt, c, f.style, canvas.FontNormal)
	f.faces[c] = face
	return face
}

// Advance 返回单个字形的前进宽度（mm，即逻辑像素）。
func (f *faceSet) Advance(glyph string) float64 {
	if w, ok := f.widths[glyph]; ok {
		return w
	}
	w := f.face(renderer.DefaultTextColor).TextWidth(glyph)
	f.widths[glyph] = w
	return w
}

func (f *faceSet) metrics() (ascent, descent float64) {
	m := f.face(renderer.DefaultTextColor).Metrics()
	return m.Ascent, math.Abs(m.Descent)
}

// glyphTarget 把一个片段的字形画到 canvas 上，颜色逐字决定以支持渐变。
type glyphTarget struct {
	ctx   *canvas.Context
	faces *faceSet
	paint layout.Paint
	block *layout.TextBlock
	box   layout.Box
}

func (t *glyphTarget) Advance(glyph string) float64 { return t.faces.Advance(glyph) }

func (t *glyphTarget) DrawGlyph(glyph string, x, y float64) {
	for _, r := range glyph {
		if unicode.IsSpace(r) {
			return
		}
	}
	center := x + t.faces.Advance(glyph)/2
	c := renderer.GlyphColor(t.paint, t.block.BaseColor, t.block.Gradient, t.box, center)
	t.ctx.DrawText(x, y, canvas.NewTextLine(t.faces.face(c), glyph, canvas.Left))
}

func (r *Renderer) drawBlock(ctx *canvas.Context, block layout.TextBlock, resources layout.ResourceSet) error {
	comp := layout.Compose(block, layout.ExportScale)
	box := comp.Box
	if r.debug.AssertGeometry {
		want := layout.Box{
			X: block.Geometry.X, Y: block.Geometry.Y, W: block.Geometry.Width, H: block.Geometry.Height,
			FontSize:      block.Typography.FontSize,
			LineHeight:    block.Typography.LineHeight.Resolve(block.Typography.FontSize),
			LetterSpacing: block.Typography.LetterSpacing,
		}
		if err := layout.CheckBox(want, box, 1e-6); err != nil {
			return fmt.Errorf("导出几何校验失败: %w", err)
		}
	}
	faces, err := r.faceSet(block, resources, box)
	if err != nil {
		return err
	}
	ascent, descent := faces.metrics()
	for i, ln := range comp.Lines {
		if len(ln.Segments) == 0 {
			continue
		}
		lw := renderer.LineWidth(faces, ln.Segments, box.LetterSpacing)
		x := renderer.AlignStart(box.Align, box.X, box.W, lw)
		y := renderer.Baseline(renderer.LineTop(box, i), box.LineHeight, ascent, descent)
		renderer.DrawLine(ln.Segments, x, y, box.LetterSpacing, func(seg layout.Segment) renderer.GlyphTarget {
			return &glyphTarget{ctx: ctx, faces: faces, paint: seg.Color, block: &block, box: box}
		})
	}
	return nil
}
