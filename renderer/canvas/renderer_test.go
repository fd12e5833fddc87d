package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/placard/fonts"
	"github.com/ByLCY/placard/layout"
)

func testBanner() *layout.Banner {
	return &layout.Banner{
		Width:      400,
		Height:     200,
		Background: layout.Background{Color: "#ffffff"},
		Resources: layout.ResourceSet{
			Fonts: map[string]layout.FontResource{
				"Body": {Name: "Body", Family: "Body", Src: "builtin:go-regular", IsBuiltin: true},
			},
		},
		Blocks: []layout.TextBlock{{
			ID:              "hero",
			Text:            "HHHH\nHH",
			Geometry:        layout.Geometry{X: 10, Y: 10, Width: 380, Height: 60},
			Typography:      layout.Typography{FontFamily: "Body", FontSize: 24, LetterSpacing: 2},
			BaseColor:       "#000000",
			CommittedRanges: []layout.ColorRange{{Start: 0, End: 2, Color: "#ff0000"}},
		}},
	}
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func countInk(img image.Image, rect image.Rectangle, match func(r, g, b uint32) bool) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if match(r>>8, g>>8, b>>8) {
				n++
			}
		}
	}
	return n
}

func isRed(r, g, b uint32) bool  { return r > 200 && g < 80 && b < 80 }
func isDark(r, g, b uint32) bool { return r < 80 && g < 80 && b < 80 }

func TestRenderPNG(t *testing.T) {
	r := NewRenderer("")
	out, err := r.Render(context.Background(), testBanner())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decodePNG(t, out)
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 200 {
		t.Fatalf("1 逻辑像素应对应 1 输出像素，实际 %v", img.Bounds())
	}
	if c := color.RGBAModel.Convert(img.At(2, 2)).(color.RGBA); c.R < 250 || c.G < 250 || c.B < 250 {
		t.Fatalf("背景应为白色，实际 %v", c)
	}
	textArea := image.Rect(10, 10, 390, 70)
	if countInk(img, textArea, isRed) == 0 {
		t.Fatalf("区间颜色没有绘制")
	}
	if countInk(img, textArea, isDark) == 0 {
		t.Fatalf("基础色文本没有绘制")
	}
	// 坐标系以左上角为原点：画布下半部分不应有文字
	if n := countInk(img, image.Rect(0, 120, 400, 200), isDark); n != 0 {
		t.Fatalf("文字出现在错误的位置：下半部分有 %d 个深色像素", n)
	}
}

func TestRenderFormats(t *testing.T) {
	jr := NewRendererWithOptions(Options{Format: FormatJPEG, Quality: 80})
	out, err := jr.Render(context.Background(), testBanner())
	if err != nil {
		t.Fatalf("Render jpeg: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}

	pr := NewRendererWithOptions(Options{Format: FormatPDF})
	b := testBanner()
	b.Meta = layout.DocumentMeta{Title: "t", Creator: "Placard"}
	out, err = pr.Render(context.Background(), b)
	if err != nil {
		t.Fatalf("Render pdf: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("PDF 输出缺少文件头")
	}
}

func TestRenderFailsWhenFontsNotReady(t *testing.T) {
	failed := fonts.NewBarrier()
	failed.Resolve(errors.New("web font blocked"))
	r := NewRendererWithOptions(Options{Ready: failed})
	if _, err := r.Render(context.Background(), testBanner()); !errors.Is(err, fonts.ErrNotReady) {
		t.Fatalf("期望 ErrNotReady，实际 %v", err)
	}

	pending := NewRendererWithOptions(Options{Ready: fonts.NewBarrier()})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pending.Render(ctx, testBanner()); !errors.Is(err, fonts.ErrNotReady) {
		t.Fatalf("超时应返回 ErrNotReady，实际 %v", err)
	}
}

func TestRenderFontLoadFailure(t *testing.T) {
	b := testBanner()
	b.Resources.Fonts["Body"] = layout.FontResource{Name: "Body", Src: "builtin:missing"}
	if _, err := NewRenderer("").Render(context.Background(), b); !errors.Is(err, fonts.ErrNotReady) {
		t.Fatalf("字体加载失败应返回 ErrNotReady，实际 %v", err)
	}

	b.Resources.Fonts["Body"] = layout.FontResource{Name: "Body", Src: "builtin:missing", Fallback: "builtin:go-mono"}
	if _, err := NewRenderer("").Render(context.Background(), b); err != nil {
		t.Fatalf("声明了回退字体时应成功: %v", err)
	}
}

func TestRenderRejectsInvalidBanner(t *testing.T) {
	r := NewRenderer("")
	if _, err := r.Render(context.Background(), nil); err == nil {
		t.Fatalf("nil banner should fail")
	}
	if _, err := r.Render(context.Background(), &layout.Banner{Width: 0, Height: 10}); err == nil {
		t.Fatalf("zero width should fail")
	}
}

func TestLayoutBlockUsesLetterAdvance(t *testing.T) {
	r := NewRenderer("")
	b := testBanner()
	block := b.Blocks[0]
	tr, err := r.LayoutBlock(context.Background(), block, b.Resources)
	if err != nil {
		t.Fatalf("LayoutBlock: %v", err)
	}
	faces, err := r.faceSet(block, b.Resources, layout.ScaleBox(block, 1))
	if err != nil {
		t.Fatalf("faceSet: %v", err)
	}
	h := faces.Advance("H")
	if h <= 0 {
		t.Fatalf("glyph advance = %g", h)
	}
	// 4 个 H 与 3 个间距；末尾不追加间距
	if got, want := tr.Lines[0].Width, 4*h+3*2; got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("line width = %g, want %g", got, want)
	}
	if got := tr.Lines[0].Segments[1].X; got < 10+2*h+2*2-1e-9 || got > 10+2*h+2*2+1e-9 {
		t.Fatalf("second segment starts at %g", got)
	}
	if len(tr.Lines[0].Segments) != 2 || tr.Lines[1].Segments[0].Key != "l1-s0-5-7" {
		t.Fatalf("unexpected segments: %+v", tr.Lines)
	}
}

func TestFitImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	contain := fitImage(src, 100, 100, "contain")
	if contain.Bounds() != image.Rect(0, 0, 100, 100) {
		t.Fatalf("contain bounds = %v", contain.Bounds())
	}
	if _, _, _, a := contain.At(50, 5).RGBA(); a != 0 {
		t.Fatalf("contain should letterbox the top band")
	}
	if _, _, b, _ := contain.At(50, 50).RGBA(); b>>8 < 250 {
		t.Fatalf("contain should keep the image centered")
	}
	cover := fitImage(src, 100, 100, "")
	for _, p := range []image.Point{{0, 0}, {99, 99}, {50, 5}} {
		if _, _, _, a := cover.At(p.X, p.Y).RGBA(); a>>8 < 250 {
			t.Fatalf("cover should fill the canvas at %v", p)
		}
	}
	stretch := fitImage(src, 30, 70, "stretch")
	if _, _, _, a := stretch.At(29, 69).RGBA(); a>>8 < 250 {
		t.Fatalf("stretch should fill the canvas")
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		name, path string
		want       Format
	}{
		{"", "out/banner.png", FormatPNG},
		{"", "out/banner.JPG", FormatJPEG},
		{"pdf", "out/banner.png", FormatPDF},
		{"", "out/banner", FormatPNG},
	}
	for _, c := range cases {
		got, err := ParseFormat(c.name, c.path)
		if err != nil || got != c.want {
			t.Fatalf("ParseFormat(%q,%q) = %q, %v", c.name, c.path, got, err)
		}
	}
	if _, err := ParseFormat("gif", ""); err == nil {
		t.Fatalf("gif export should be rejected")
	}
}

func TestParseFontStyle(t *testing.T) {
	cases := []struct {
		style  string
		weight int
		want   canvas.FontStyle
	}{
		{"", 0, canvas.FontRegular},
		{"", 700, canvas.FontBold},
		{"", 500, canvas.FontMedium},
		{"SemiBold", 0, canvas.FontSemiBold},
		{"Bold Italic", 0, canvas.FontBold | canvas.FontItalic},
		{"italic", 700, canvas.FontBold | canvas.FontItalic},
	}
	for _, c := range cases {
		if got := parseFontStyle(c.style, c.weight); got != c.want {
			t.Fatalf("parseFontStyle(%q,%d) = %v, want %v", c.style, c.weight, got, c.want)
		}
	}
}
