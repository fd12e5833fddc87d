package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/placard/dsl"
)

const launchDSL = `
banner Launch v1 {
  meta {
    title: "Spring launch"
    keywords: [
      "launch"
      "og"
    ]
  }

  resources {
    font Body {
      src: "builtin:go-regular"
    }
    font Display {
      src: "builtin:go-bold"
    }

    color Accent = #0F62FE
    color Ink = #1E1E1E

    style Headline {
      font: Display
      size: 64px
      spacing: 2px
      line-height: 1.1x
    }
    style Caption extends Headline {
      size: 28px
    }
  }

  canvas OG {
    background "hero.png" fit contain color Accent

    text Headline id title x 80 y 140 width 1040 height 160 color Ink {
      "Build banners"
      "in ${product}"
      range 0 5 Accent
      range 17 27 #DA1E28
    }

    text Caption x 80 y 420 align center gradient-from Accent gradient-to #8A3FFC {
      "caption"
    }
  }
}
`

// buildBanner 是测试辅助：用给定 DSL 文本构建横幅。
func buildBanner(t *testing.T, dslText string, data any) *Banner {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(dslText))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	b, err := Build(doc, data, BuildOptions{})
	if err != nil {
		t.Fatalf("构建横幅失败: %v", err)
	}
	return b
}

func buildError(t *testing.T, dslText string) error {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(dslText))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	_, err = Build(doc, nil, BuildOptions{})
	return err
}

func TestBuildLaunchBanner(t *testing.T) {
	b := buildBanner(t, launchDSL, nil)
	if b.Width != 1200 || b.Height != 630 {
		t.Fatalf("画布尺寸错误: %gx%g", b.Width, b.Height)
	}
	if b.Meta.Title != "Spring launch" || b.Meta.Creator != "Placard" {
		t.Fatalf("元信息错误: %+v", b.Meta)
	}
	if diff := cmp.Diff(Background{Src: "hero.png", Fit: "contain", Color: "#0F62FE"}, b.Background); diff != "" {
		t.Fatalf("背景错误 (-want +got):\n%s", diff)
	}
	if len(b.Blocks) != 2 {
		t.Fatalf("期望 2 个文本块，实际 %d", len(b.Blocks))
	}

	title := b.Blocks[0]
	if title.ID != "title" || title.Text != "Build banners\nin ${product}" {
		t.Fatalf("标题块错误: id=%q text=%q", title.ID, title.Text)
	}
	typo := title.Typography
	if typo.FontFamily != "Display" || typo.FontSize != 64 || typo.LetterSpacing != 2 {
		t.Fatalf("样式未生效: %+v", typo)
	}
	if got := typo.LineHeight.Resolve(typo.FontSize); math.Abs(got-70.4) > 1e-9 {
		t.Fatalf("行高期望 70.4，实际 %g", got)
	}
	if title.BaseColor != "#1E1E1E" {
		t.Fatalf("颜色资源未解析: %q", title.BaseColor)
	}
	want := []ColorRange{{0, 5, "#0F62FE"}, {17, 27, "#DA1E28"}}
	if diff := cmp.Diff(want, title.CommittedRanges); diff != "" {
		t.Fatalf("区间错误 (-want +got):\n%s", diff)
	}

	caption := b.Blocks[1]
	if caption.ID != "text-2" {
		t.Fatalf("缺省 id 期望 text-2，实际 %q", caption.ID)
	}
	if caption.Typography.FontSize != 28 || caption.Typography.FontFamily != "Display" {
		t.Fatalf("继承样式未生效: %+v", caption.Typography)
	}
	if caption.Typography.TextAlign != "center" {
		t.Fatalf("对齐错误: %q", caption.Typography.TextAlign)
	}
	if caption.Gradient == nil || caption.Gradient.From != "#0F62FE" || caption.Gradient.To != "#8A3FFC" {
		t.Fatalf("渐变错误: %+v", caption.Gradient)
	}
}

func TestBuildBindingRemapsRanges(t *testing.T) {
	data := map[string]any{"product": "Placard Studio"}
	b := buildBanner(t, launchDSL, data)
	title := b.Blocks[0]
	if title.Text != "Build banners\nin Placard Studio" {
		t.Fatalf("插值结果错误: %q", title.Text)
	}
	// 占位符 [17,27) 被替换为 14 个字符
	want := []ColorRange{{0, 5, "#0F62FE"}, {17, 31, "#DA1E28"}}
	if diff := cmp.Diff(want, title.CommittedRanges); diff != "" {
		t.Fatalf("区间未随插值平移 (-want +got):\n%s", diff)
	}
	segs := Compose(title, 1).Lines[1].Segments
	if last := segs[len(segs)-1]; last.Text != "Placard Studio" {
		t.Fatalf("插值文本应整体着色，实际 %+v", segs)
	}
}

func TestCanvasSize(t *testing.T) {
	cases := []struct {
		spec string
		w, h float64
	}{
		{"1200 628", 1200, 628},
		{"STORY", 1080, 1920},
		{"STORY landscape", 1920, 1080},
		{"300 600 landscape", 600, 300},
		{"OG portrait", 630, 1200},
	}
	for _, c := range cases {
		src := "banner T v1 {\n  canvas " + c.spec + " {\n    text { \"x\" }\n  }\n}\n"
		b := buildBanner(t, src, nil)
		if b.Width != c.w || b.Height != c.h {
			t.Fatalf("canvas %s: got %gx%g want %gx%g", c.spec, b.Width, b.Height, c.w, c.h)
		}
	}
}

func TestBuildDefaults(t *testing.T) {
	b := buildBanner(t, "banner T v1 {\n  canvas 400 200 {\n    text { \"hi\" }\n  }\n}\n", nil)
	font, ok := b.Resources.Fonts["Body"]
	if !ok || font.Src != "builtin:go-regular" || !font.IsBuiltin {
		t.Fatalf("缺省字体错误: %+v", b.Resources.Fonts)
	}
	tb := b.Blocks[0]
	if tb.Typography.FontSize != 16 || tb.Typography.TextAlign != "left" || tb.BaseColor != "#1e1e1e" {
		t.Fatalf("缺省排印错误: %+v color=%q", tb.Typography, tb.BaseColor)
	}
	if tb.Typography.LineHeight.Kind != LineHeightUnset {
		t.Fatalf("未设置行高时应保持 unset: %+v", tb.Typography.LineHeight)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"missing canvas": "banner T v1 {\n  meta {\n    title: \"x\"\n  }\n}\n",
		"duplicate id":   "banner T v1 {\n  canvas 10 10 {\n    text id a { \"x\" }\n    text id a { \"y\" }\n  }\n}\n",
		"empty text":     "banner T v1 {\n  canvas 10 10 {\n    text id a { }\n  }\n}\n",
		"unknown preset": "banner T v1 {\n  canvas HUGE {\n    text { \"x\" }\n  }\n}\n",
		"style cycle":    "banner T v1 {\n  resources {\n    style A extends B { }\n    style B extends A { }\n  }\n  canvas 10 10 {\n    text { \"x\" }\n  }\n}\n",
	}
	for name, src := range cases {
		if err := buildError(t, src); err == nil {
			t.Fatalf("%s: 期望报错", name)
		}
	}
}

func TestMalformedRangesAreNotErrors(t *testing.T) {
	src := "banner T v1 {\n  canvas 10 10 {\n    text {\n      \"abc\"\n      range 2 1 red\n      range -5 99 blue\n    }\n  }\n}\n"
	b := buildBanner(t, src, nil)
	got := ResolveText(b.Blocks[0].Text, b.Blocks[0].CommittedRanges, nil)
	if diff := cmp.Diff([]ColorRange{{0, 3, "blue"}}, got); diff != "" {
		t.Fatalf("越界区间应被裁剪 (-want +got):\n%s", diff)
	}
}
