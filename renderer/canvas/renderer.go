package canvasrenderer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/placard/fonts"
	"github.com/ByLCY/placard/layout"
	"github.com/ByLCY/placard/renderer"
)

// Renderer 通过 github.com/tdewolff/canvas 栅格化横幅，是导出路径的后端。
// 文本按字逐个绘制并手动累加字距，保证与实时视图的宽度一致。
type Renderer struct {
	source     fonts.Source
	baseDir    string
	imageBlobs map[string][]byte // by unique name
	ready      *fonts.Barrier
	format     Format
	quality    int
	debug      layout.DebugOptions

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
}

var _ renderer.Renderer = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Images  map[string]Resource // built-in images accessible via built-in:<name>
	// Ready 是外部的字体就绪信号（例如宿主异步注册的字体）。渲染会同时等待它与内部的字体预加载。
	Ready   *fonts.Barrier
	Format  Format
	Quality int // JPEG 质量 1-100，默认 90
	Debug   layout.DebugOptions
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PNG renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		source:       fonts.Source{BaseDir: opts.BaseDir, Blobs: ingest(opts.Fonts)},
		baseDir:      opts.BaseDir,
		imageBlobs:   ingest(opts.Images),
		ready:        opts.Ready,
		format:       opts.Format,
		quality:      opts.Quality,
		debug:        opts.Debug,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.format == "" {
		r.format = FormatPNG
	}
	if r.quality <= 0 || r.quality > 100 {
		r.quality = defaultJPEGQuality
	}
	return r
}

func ingest(resources map[string]Resource) map[string][]byte {
	blobs := map[string][]byte{}
	for name, res := range resources {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			blobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // ignore error here; will be caught when actually used
			if len(data) > 0 {
				blobs[name] = data
			}
		}
	}
	return blobs
}

// Render 等待字体就绪后绘制横幅并按配置的格式编码。
func (r *Renderer) Render(ctx context.Context, banner *layout.Banner) ([]byte, error) {
	if banner == nil {
		return nil, fmt.Errorf("横幅为空")
	}
	if banner.Width <= 0 || banner.Height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效：%gx%g", banner.Width, banner.Height)
	}
	if err := r.waitFonts(ctx, banner.Blocks, banner.Resources); err != nil {
		return nil, err
	}

	// 1 逻辑像素 = 1 canvas 毫米，栅格化时使用 DPMM(1)。
	c := canvas.New(banner.Width, banner.Height)
	cctx := canvas.NewContext(c)
	if err := r.drawBackground(cctx, banner); err != nil {
		return nil, err
	}
	cctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	for _, block := range banner.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.drawBlock(cctx, block, banner.Resources); err != nil {
			return nil, fmt.Errorf("绘制文本块 %s 失败: %w", block.ID, err)
		}
	}
	return r.encode(c, banner)
}

// LayoutBlock 返回文本块在导出尺度下的布局记录，与实绘使用同一套测量与前进规则。
func (r *Renderer) LayoutBlock(ctx context.Context, block layout.TextBlock, resources layout.ResourceSet) (renderer.BlockTrace, error) {
	if err := r.waitFonts(ctx, []layout.TextBlock{block}, resources); err != nil {
		return renderer.BlockTrace{}, err
	}
	comp := layout.Compose(block, layout.ExportScale)
	faces, err := r.faceSet(block, resources, comp.Box)
	if err != nil {
		return renderer.BlockTrace{}, err
	}
	return renderer.Trace(comp, faces), nil
}

// waitFonts 预加载文本块用到的全部字体，并与外部屏障合并等待；失败时不重试。
func (r *Renderer) waitFonts(ctx context.Context, blocks []layout.TextBlock, resources layout.ResourceSet) error {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	preload := fonts.Preload(waitCtx, func(ctx context.Context) error {
		for _, block := range blocks {
			if err := ctx.Err(); err != nil {
				return err
			}
			font := layout.ResolveFont(block.Typography.FontFamily, resources)
			if _, _, err := r.ensureFontFamily(font, block.Typography.FontWeight); err != nil {
				return err
			}
		}
		return nil
	})
	if err := fonts.All(waitCtx, r.ready, preload).Wait(ctx); err != nil {
		layout.Logger().Warn("fonts not ready", "err", err)
		return err
	}
	return nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource, weight int) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font, weight)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style, weight)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font.Src, weight, style); err != nil {
		if font.Fallback == "" {
			return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", font.Name, err)
		}
		layout.Logger().Debug("font fallback", "font", font.Name, "fallback", font.Fallback, "err", err)
		family = canvas.NewFontFamily(familyName + "-fallback")
		if fbErr := r.loadFontIntoFamily(family, font.Fallback, weight, style); fbErr != nil {
			return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 及其回退 %s 失败: %w", font.Name, font.Fallback, fbErr)
		}
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, src string, weight int, style canvas.FontStyle) error {
	if src == "" {
		src = "builtin:" + fonts.DefaultFont
	}
	data, err := r.source.Bytes(src, weight)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func parseFontStyle(style string, weight int) canvas.FontStyle {
	result := weightStyle(weight)
	if style == "" {
		return result
	}
	s := strings.ToLower(style)
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func weightStyle(weight int) canvas.FontStyle {
	switch {
	case weight <= 0:
		return canvas.FontRegular
	case weight < 200:
		return canvas.FontThin
	case weight < 300:
		return canvas.FontExtraLight
	case weight < 400:
		return canvas.FontLight
	case weight < 500:
		return canvas.FontRegular
	case weight < 600:
		return canvas.FontMedium
	case weight < 700:
		return canvas.FontSemiBold
	case weight < 800:
		return canvas.FontBold
	case weight < 900:
		return canvas.FontExtraBold
	default:
		return canvas.FontBlack
	}
}

func fontCacheKey(font layout.FontResource, weight int) string {
	return fmt.Sprintf("%s|%s|%s|%d", font.Name, font.Src, font.Style, weight)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
