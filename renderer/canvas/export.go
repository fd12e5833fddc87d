package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/ByLCY/placard/layout"
)

// Format 是导出文件格式。
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

const defaultJPEGQuality = 90

// ParseFormat 解析格式名；为空时按输出文件扩展名推断，仍无法确定时使用 PNG。
func ParseFormat(name, outputPath string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(name))
	if v == "" {
		v = strings.TrimPrefix(strings.ToLower(filepath.Ext(outputPath)), ".")
	}
	switch v {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("不支持的导出格式 %q（可用: png, jpeg, pdf）", v)
	}
}

func (r *Renderer) encode(c *canvas.Canvas, banner *layout.Banner) ([]byte, error) {
	var buf bytes.Buffer
	switch r.format {
	case FormatPDF:
		writer := pdf.New(&buf, banner.Width, banner.Height, nil)
		r.applyMeta(writer, banner.Meta)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	case FormatJPEG:
		img := rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)
		// JPEG 没有透明通道，先合成到白底上。
		flat := image.NewRGBA(img.Bounds())
		draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
		draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: r.quality}); err != nil {
			return nil, fmt.Errorf("编码 JPEG 失败: %w", err)
		}
	case FormatPNG:
		img := rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码 PNG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的导出格式 %q", r.format)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}
