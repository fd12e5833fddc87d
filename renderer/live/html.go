package live

import (
	"bytes"
	"fmt"
	"html/template"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"

	"github.com/ByLCY/placard/renderer"
)

var pageTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
.placard { position: relative; overflow: hidden; }
.placard .block { position: absolute; white-space: pre; }
.placard .line { position: absolute; white-space: pre; }
</style>
</head>
<body>
<div class="placard" style="{{.Stage}}">
{{- range .Blocks}}
<div class="block" data-id="{{.ID}}" style="{{.Style}}">
{{- range .Lines}}
<div class="line" data-line="{{.Index}}" style="{{.Style}}">
{{- range .Spans}}<span data-key="{{.Key}}" style="{{.Style}}">{{.Text}}</span>{{end -}}
</div>
{{- end}}
</div>
{{- end}}
</div>
</body>
</html>
`))

type pageData struct {
	Title  string
	Stage  template.CSS
	Blocks []blockData
}

type blockData struct {
	ID    string
	Style template.CSS
	Lines []lineData
}

type lineData struct {
	Index int
	Style template.CSS
	Spans []spanData
}

type spanData struct {
	Key   string
	Text  string
	Style template.CSS
}

// HTML 输出绝对定位的预览标记：行首位置按与导出相同的对齐公式预先算好，
// 片段内部交给浏览器的 letter-spacing 排版。结果经过压缩。
func (v *View) HTML(title string) (string, error) {
	data := pageData{Title: title, Stage: stageStyle(v)}
	for _, b := range v.Blocks {
		bd := blockData{ID: b.ID, Style: blockStyle(b)}
		for _, ln := range b.Lines {
			ld := lineData{
				Index: ln.Index,
				Style: template.CSS(fmt.Sprintf("left:%spx;top:%spx;height:%spx", px(ln.X-b.Box.X), px(ln.Top-b.Box.Y), px(b.Box.LineHeight))),
			}
			for _, s := range ln.Spans {
				ld.Spans = append(ld.Spans, spanData{Key: s.Key, Text: preserveSpaces(s.Text), Style: spanStyle(b, s)})
			}
			bd.Lines = append(bd.Lines, ld)
		}
		data.Blocks = append(data.Blocks, bd)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("生成预览 HTML 失败: %w", err)
	}
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{KeepWhitespace: true, KeepDocumentTags: true, KeepEndTags: true, KeepQuotes: true})
	out, err := m.String("text/html", buf.String())
	if err != nil {
		return "", fmt.Errorf("压缩预览 HTML 失败: %w", err)
	}
	return out, nil
}

func stageStyle(v *View) template.CSS {
	parts := []string{"width:" + px(v.Width) + "px", "height:" + px(v.Height) + "px"}
	bg := v.Background
	if bg.Color != "" {
		if c, err := renderer.ParseColor(bg.Color); err == nil {
			parts = append(parts, "background-color:"+cssColor(c))
		}
	}
	if bg.Src != "" {
		size := "cover"
		switch strings.ToLower(bg.Fit) {
		case "contain":
			size = "contain"
		case "stretch", "fill":
			size = "100% 100%"
		}
		parts = append(parts,
			"background-image:url("+strconv.Quote(bg.Src)+")",
			"background-size:"+size,
			"background-position:center",
			"background-repeat:no-repeat")
	}
	return template.CSS(strings.Join(parts, ";"))
}

func blockStyle(b BlockView) template.CSS {
	box := b.Box
	parts := []string{
		"left:" + px(box.X) + "px",
		"top:" + px(box.Y) + "px",
		"width:" + px(box.W) + "px",
		"height:" + px(box.H) + "px",
		"font-family:" + cssFontFamily(b.Font),
		"font-size:" + px(box.FontSize) + "px",
		"line-height:" + px(box.LineHeight) + "px",
		"letter-spacing:" + px(box.LetterSpacing) + "px",
		"color:" + cssColor(renderer.ColorOr(b.BaseColor, renderer.DefaultTextColor)),
	}
	if b.FontWeight > 0 {
		parts = append(parts, "font-weight:"+strconv.Itoa(b.FontWeight))
	}
	return template.CSS(strings.Join(parts, ";"))
}

// spanStyle 为显式颜色输出 color；继承色在有渐变时把整块宽度的渐变对齐到文本框左缘再裁切到文字。
func spanStyle(b BlockView, s Span) template.CSS {
	if c, ok := s.Color.Value(); ok {
		return template.CSS("color:" + cssColor(renderer.ColorOr(c, renderer.DefaultTextColor)))
	}
	if b.Gradient == nil {
		return ""
	}
	from := cssColor(renderer.ColorOr(b.Gradient.From, renderer.DefaultTextColor))
	to := cssColor(renderer.ColorOr(b.Gradient.To, renderer.DefaultTextColor))
	return template.CSS(strings.Join([]string{
		"background-image:linear-gradient(90deg," + from + "," + to + ")",
		"background-size:" + px(b.Box.W) + "px 100%",
		"background-position:" + px(b.Box.X-s.X) + "px 0",
		"-webkit-background-clip:text",
		"background-clip:text",
		"color:transparent",
	}, ";"))
}

func cssColor(c color.RGBA) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", n.R, n.G, n.B, strconv.FormatFloat(float64(n.A)/255, 'f', 3, 64))
}

func cssFontFamily(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', ';', '{', '}', '<', '>', '\\':
			return -1
		}
		return r
	}, name)
	if clean == "" {
		return "sans-serif"
	}
	return strconv.Quote(clean) + ",sans-serif"
}

// preserveSpaces 把空格换成等宽的不换行空格，压缩 HTML 时连续空格不会被折叠。
func preserveSpaces(text string) string {
	return strings.ReplaceAll(text, " ", "\u00a0")
}

func px(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
