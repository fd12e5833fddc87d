package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/placard/dsl"
	"github.com/ByLCY/placard/fonts"
	"github.com/ByLCY/placard/layout"
	"github.com/ByLCY/placard/renderer"
	canvasrenderer "github.com/ByLCY/placard/renderer/canvas"
	"github.com/ByLCY/placard/renderer/live"
)

type config struct {
	input        string
	output       string
	format       string
	quality      int
	debugPath    string
	previewPath  string
	previewWidth float64
	data         any
}

func main() {
	input := flag.String("in", "examples/launch.placard", "DSL 文件路径")
	output := flag.String("out", "output/launch.png", "导出文件路径")
	format := flag.String("format", "", "导出格式 png|jpeg|pdf，默认按 -out 扩展名推断")
	quality := flag.Int("quality", 90, "JPEG 质量 1-100")
	debug := flag.String("debug", "", "组合结果调试 JSON 输出路径")
	preview := flag.String("preview", "", "实时预览 HTML 输出路径")
	previewWidth := flag.Float64("preview-width", 600, "实时预览面宽度（px）")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if *verbose {
		layout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := config{
		input:        *input,
		output:       *output,
		format:       *format,
		quality:      *quality,
		debugPath:    *debug,
		previewPath:  *preview,
		previewWidth: *previewWidth,
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &cfg.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	f, err := canvasrenderer.ParseFormat(cfg.format, cfg.output)
	if err != nil {
		log.Fatalf("%v", err)
	}
	var r renderer.Renderer = canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: filepath.Dir(cfg.input),
		Format:  f,
		Quality: cfg.quality,
	})
	if err := run(context.Background(), cfg, r); err != nil {
		log.Fatalf("生成横幅失败: %v", err)
	}
	fmt.Printf("已生成横幅：%s\n", cfg.output)
}

// run 串联解析、构建、预览与导出。
func run(ctx context.Context, cfg config, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	banner, err := layout.Build(doc, cfg.data, layout.BuildOptions{})
	if err != nil {
		return fmt.Errorf("构建横幅失败: %w", err)
	}

	if cfg.debugPath != "" {
		if err := writeDebug(banner, cfg.debugPath); err != nil {
			return err
		}
	}
	if cfg.previewPath != "" {
		if err := writePreview(banner, cfg); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := r.Render(ctx, banner)
	if err != nil {
		return fmt.Errorf("导出失败: %w", err)
	}
	if err := os.WriteFile(cfg.output, out, 0o644); err != nil {
		return fmt.Errorf("写入导出文件失败: %w", err)
	}
	return nil
}

func writePreview(banner *layout.Banner, cfg config) error {
	faces := live.NewFaceCache(fonts.Source{BaseDir: filepath.Dir(cfg.input)})
	view, err := live.Build(banner, cfg.previewWidth, faces)
	if err != nil {
		return fmt.Errorf("构建实时预览失败: %w", err)
	}
	markup, err := view.HTML(banner.Meta.Title)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.previewPath), 0o755); err != nil {
		return fmt.Errorf("创建预览目录失败: %w", err)
	}
	if err := os.WriteFile(cfg.previewPath, []byte(markup), 0o644); err != nil {
		return fmt.Errorf("写入预览文件失败: %w", err)
	}
	return nil
}

func writeDebug(banner *layout.Banner, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(banner, layout.ExportScale, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
