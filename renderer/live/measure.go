package live

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/placard/fonts"
	"github.com/ByLCY/placard/layout"
	"github.com/ByLCY/placard/renderer"
)

// Measurers 为文本块提供指定像素字号下的测量器，模拟浏览器对同一字体的原生排版。
type Measurers interface {
	Measurer(font layout.FontResource, weight int, sizePx float64) (renderer.Measurer, error)
}

// FaceCache 用 golang.org/x/image/font/opentype 解析字体并缓存字体面。
// 不做 hinting，与浏览器在非整数字号下的前进宽度一致。
type FaceCache struct {
	source fonts.Source

	mu    sync.Mutex
	fonts map[string]*sfnt.Font
	faces map[faceKey]*faceMeasurer
}

type faceKey struct {
	font   string
	sizePx float64
}

var _ Measurers = (*FaceCache)(nil)

// NewFaceCache 返回从 source 读取字体的缓存。
func NewFaceCache(source fonts.Source) *FaceCache {
	return &FaceCache{
		source: source,
		fonts:  map[string]*sfnt.Font{},
		faces:  map[faceKey]*faceMeasurer{},
	}
}

// Measurer 实现 Measurers。
func (c *FaceCache) Measurer(res layout.FontResource, weight int, sizePx float64) (renderer.Measurer, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("字号无效：%g", sizePx)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, key, err := c.parse(res.Src, weight)
	if err != nil {
		if res.Fallback == "" {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", res.Name, err)
		}
		layout.Logger().Debug("font fallback", "font", res.Name, "fallback", res.Fallback, "err", err)
		if f, key, err = c.parse(res.Fallback, weight); err != nil {
			return nil, fmt.Errorf("加载字体 %s 及其回退 %s 失败: %w", res.Name, res.Fallback, err)
		}
	}
	fk := faceKey{font: key, sizePx: sizePx}
	if m, ok := c.faces[fk]; ok {
		return m, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72, // 1pt = 1px
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体面失败: %w", err)
	}
	m := &faceMeasurer{face: face, widths: map[string]float64{}}
	c.faces[fk] = m
	return m, nil
}

func (c *FaceCache) parse(src string, weight int) (*sfnt.Font, string, error) {
	if src == "" {
		src = "builtin:" + fonts.DefaultFont
	}
	key := fmt.Sprintf("%s|%d", src, weight)
	if f, ok := c.fonts[key]; ok {
		return f, key, nil
	}
	data, err := c.source.Bytes(src, weight)
	if err != nil {
		return nil, "", err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	c.fonts[key] = f
	return f, key, nil
}

type faceMeasurer struct {
	mu     sync.Mutex
	face   font.Face
	widths map[string]float64
}

func (m *faceMeasurer) Advance(glyph string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.widths[glyph]; ok {
		return w
	}
	w := float64(font.MeasureString(m.face, glyph)) / 64
	m.widths[glyph] = w
	return w
}
