package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/placard/layout"
	"github.com/ByLCY/placard/renderer"
)

// drawBackground 先铺底色再绘制背景图。此时坐标系仍是 canvas 默认的左下角原点。
func (r *Renderer) drawBackground(ctx *canvas.Context, banner *layout.Banner) error {
	bg := banner.Background
	if bg.Color != "" {
		c, err := renderer.ParseColor(bg.Color)
		if err != nil {
			return fmt.Errorf("背景色无效: %w", err)
		}
		ctx.SetFillColor(c)
		ctx.SetStrokeColor(color.RGBA{})
		ctx.DrawPath(0, 0, canvas.Rectangle(banner.Width, banner.Height))
	}
	if bg.Src == "" {
		return nil
	}
	img, err := r.loadImage(bg.Src)
	if err != nil {
		return err
	}
	w, h := int(math.Round(banner.Width)), int(math.Round(banner.Height))
	ctx.DrawImage(0, 0, fitImage(img, w, h, bg.Fit), canvas.DPMM(1))
	return nil
}

func (r *Renderer) loadImage(orig string) (image.Image, error) {
	// built-in resources take precedence
	if strings.HasPrefix(orig, "built-in:") || strings.HasPrefix(orig, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(orig, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		img, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 built-in:%s 失败: %w", name, err)
		}
		return img, nil
	}
	if r.baseDir == "" && !filepath.IsAbs(orig) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in:）", orig)
	}
	path := orig
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", orig, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", orig, err)
	}
	return img, nil
}

// fitImage 把 src 缩放到 w×h 的画布上：cover（默认）裁切填满，contain 完整显示并留白，stretch 拉伸。
func fitImage(src image.Image, w, h int, fit string) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	if w <= 0 || h <= 0 || sb.Empty() {
		return dst
	}
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	switch strings.ToLower(fit) {
	case "stretch", "fill":
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	case "contain":
		s := math.Min(float64(w)/sw, float64(h)/sh)
		dw, dh := int(math.Round(sw*s)), int(math.Round(sh*s))
		x0, y0 := (w-dw)/2, (h-dh)/2
		draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+dw, y0+dh), src, sb, draw.Src, nil)
	default:
		s := math.Max(float64(w)/sw, float64(h)/sh)
		cw, ch := int(math.Round(float64(w)/s)), int(math.Round(float64(h)/s))
		x0, y0 := sb.Min.X+(sb.Dx()-cw)/2, sb.Min.Y+(sb.Dy()-ch)/2
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, image.Rect(x0, y0, x0+cw, y0+ch), draw.Src, nil)
	}
	return dst
}
