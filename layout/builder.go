package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/placard/binding"
	"github.com/ByLCY/placard/dsl"
	"github.com/ByLCY/placard/fonts"
)

const (
	defaultFontSize = 16.0 // px
	defaultColor    = "#1e1e1e"
	defaultFontName = "Body"
)

// Build 根据 DSL AST 生成横幅：画布尺寸、背景与带颜色区间的文本块。
// data 非空时文本中的 ${path} 会被替换，range 偏移按模板书写并随替换结果平移。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Banner, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}

	res, err := collectResources(doc, opts)
	if err != nil {
		return nil, err
	}
	meta := collectMeta(doc)
	section := firstCanvas(doc)
	if section == nil {
		return nil, fmt.Errorf("文档中缺少 canvas 段落")
	}

	width, height, err := resolveCanvasSize(section.Spec)
	if err != nil {
		return nil, err
	}

	banner := &Banner{
		Width:     width,
		Height:    height,
		Resources: res,
		Meta:      meta,
	}
	ids := map[string]bool{}
	for _, item := range section.Items {
		switch {
		case item.Background != nil:
			banner.Background = parseBackground(item.Background, res)
		case item.Text != nil:
			block, err := buildTextBlock(item.Text, len(banner.Blocks), res, data)
			if err != nil {
				return nil, err
			}
			if ids[block.ID] {
				return nil, fmt.Errorf("文本块 id 重复：%s", block.ID)
			}
			ids[block.ID] = true
			banner.Blocks = append(banner.Blocks, block)
		}
	}
	return banner, nil
}

func buildTextBlock(decl *dsl.TextDecl, index int, res ResourceSet, data any) (TextBlock, error) {
	styleName, attrs := parseArgs(decl.Args)
	attrs = mergeStyleAttributes(styleName, attrs, res.Styles)

	template := NormalizeText(extractText(decl.Body))
	if template == "" {
		return TextBlock{}, fmt.Errorf("第 %d 行：text 语句缺少文本内容", decl.Pos.Line)
	}
	exp := binding.Expand(template, data)

	fontName := attrs["font"]
	if fontName == "" {
		fontName = styleName
	}
	fontRes := ResolveFont(fontName, res)

	fontSize := ParseRawLengthStr(attrs["size"]).ToPX()
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	typo := Typography{
		FontFamily:    fontRes.Name,
		FontSize:      fontSize,
		FontWeight:    parseFontWeight(attrs["weight"]),
		LetterSpacing: ParseRawLengthStr(firstNonEmpty(attrs["spacing"], attrs["letter-spacing"])).ToPX(),
		TextAlign:     normalizeAlign(attrs["align"]),
	}
	if lh, ok := ParseLineHeight(attrs["line-height"]); ok {
		typo.LineHeight = lh
	}

	id := attrs["id"]
	if id == "" {
		id = fmt.Sprintf("text-%d", index+1)
	}
	block := TextBlock{
		ID:   id,
		Text: exp.Text,
		Geometry: Geometry{
			X:      ParseRawLengthStr(attrs["x"]).ToPX(),
			Y:      ParseRawLengthStr(attrs["y"]).ToPX(),
			Width:  ParseRawLengthStr(attrs["width"]).ToPX(),
			Height: ParseRawLengthStr(attrs["height"]).ToPX(),
		},
		Typography: typo,
		BaseColor:  resolveColor(attrs["color"], res),
	}
	if from, to := attrs["gradient-from"], attrs["gradient-to"]; from != "" && to != "" {
		block.Gradient = &Gradient{From: resolveColor(from, res), To: resolveColor(to, res)}
	}
	block.CommittedRanges = parseRanges(decl.Body, res, exp)
	return block, nil
}

// parseRanges 读取 `range <start> <end> <color>`；偏移针对模板文本，映射到插值结果。
// 越界与空区间不在这里拒绝，交给 Clamp/Resolve 静默处理。
func parseRanges(body []*dsl.TextLine, res ResourceSet, exp binding.Expansion) []ColorRange {
	var out []ColorRange
	for _, ln := range body {
		if ln.Range == nil {
			continue
		}
		start, end := exp.MapRange(ln.Range.Start, ln.Range.End)
		out = append(out, ColorRange{Start: start, End: end, Color: resolveColor(ln.Range.Color.Text(), res)})
	}
	return out
}

func parseBackground(decl *dsl.BackgroundDecl, res ResourceSet) Background {
	var bg Background
	if decl.Src != nil {
		bg.Src = string(*decl.Src)
	}
	attrs := map[string]string{}
	for _, a := range decl.Attrs {
		attrs[a.Key] = a.Value.Text()
	}
	if v := attrs["src"]; v != "" {
		bg.Src = v
	}
	if v := attrs["color"]; v != "" {
		bg.Color = resolveColor(v, res)
	}
	switch fit := strings.ToLower(attrs["fit"]); fit {
	case "contain", "stretch":
		bg.Fit = fit
	default:
		bg.Fit = "cover"
	}
	return bg
}

func collectResources(doc *dsl.Document, opts BuildOptions) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]string{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil {
			continue
		}
		for _, decl := range section.Resources.Decls {
			switch {
			case decl.Font != nil:
				font := parseFontResource(decl.Font)
				res.Fonts[font.Name] = font
			case decl.Color != nil:
				if value := decl.Color.Value.Text(); value != "" {
					res.Colors[decl.Color.Name] = value
				}
			case decl.Style != nil:
				style := parseStyleResource(decl.Style)
				rawStyles[style.Name] = style
			}
		}
	}

	if len(res.Fonts) == 0 {
		src := opts.DefaultFont
		if src == "" {
			src = "builtin:" + fonts.DefaultFont
		}
		res.Fonts[defaultFontName] = FontResource{
			Name:      defaultFontName,
			Src:       src,
			Family:    defaultFontName,
			IsBuiltin: fonts.IsBuiltin(src),
		}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles

	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "Placard",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil {
			continue
		}
		for _, f := range section.Meta.Fields {
			switch strings.ToLower(f.Key) {
			case "title":
				meta.Title = f.Value.Text()
			case "author":
				meta.Author = f.Value.Text()
			case "subject":
				meta.Subject = f.Value.Text()
			case "creator":
				meta.Creator = f.Value.Text()
			case "keywords":
				meta.Keywords = valueToStringSlice(f.Value)
			}
		}
	}
	return meta
}

func parseFontResource(decl *dsl.FontDecl) FontResource {
	font := FontResource{
		Name:   decl.Name,
		Family: decl.Name,
	}
	for _, f := range decl.Fields {
		v := f.Value.Text()
		switch f.Key {
		case "src":
			font.Src = v
			font.IsBuiltin = fonts.IsBuiltin(v)
		case "style":
			font.Style = v
		case "fallback":
			font.Fallback = v
		}
	}
	return font
}

func parseStyleResource(decl *dsl.StyleDecl) Style {
	style := Style{
		Name:    decl.Name,
		Extends: decl.Extends,
		Props:   map[string]string{},
	}
	for _, f := range decl.Fields {
		if val := f.Value.Text(); val != "" {
			style.Props[f.Key] = val
		}
	}
	return style
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// canvasPresets 常见投放尺寸（px）。
var canvasPresets = map[string][2]float64{
	"OG":          {1200, 630},
	"SQUARE":      {1080, 1080},
	"STORY":       {1080, 1920},
	"LEADERBOARD": {728, 90},
	"BILLBOARD":   {970, 250},
	"RECTANGLE":   {300, 250},
}

func resolveCanvasSize(spec dsl.CanvasSpec) (float64, float64, error) {
	var width, height float64
	if spec.Preset != "" {
		base, ok := canvasPresets[strings.ToUpper(spec.Preset)]
		if !ok {
			return 0, 0, fmt.Errorf("暂不支持的画布尺寸：%s", spec.Preset)
		}
		width, height = base[0], base[1]
	} else {
		width = ParseRawLengthStr(spec.Width).ToPX()
		height = ParseRawLengthStr(spec.Height).ToPX()
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("canvas 需要宽高，例如 canvas 1200 628")
	}
	switch {
	case spec.Orientation == "portrait" && width > height,
		spec.Orientation == "landscape" && height > width:
		width, height = height, width
	}
	return width, height, nil
}

func firstCanvas(doc *dsl.Document) *dsl.CanvasSection {
	for _, section := range doc.Sections {
		if section.Canvas != nil {
			return section.Canvas
		}
	}
	return nil
}

// parseArgs 把 text 参数拆成可选的样式名与 key value 对：参数个数为奇数且首个是标识符时，它是样式名。
func parseArgs(args []*dsl.Value) (string, map[string]string) {
	result := map[string]string{}
	cursor := 0
	var style string
	if len(args)%2 == 1 && args[0].IsIdent() {
		style = args[0].Text()
		cursor = 1
	}
	for cursor < len(args)-1 {
		result[args[cursor].Text()] = args[cursor+1].Text()
		cursor += 2
	}
	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

// extractText 拼接块内的字符串字面量，每个字面量占一行。
func extractText(body []*dsl.TextLine) string {
	var parts []string
	for _, ln := range body {
		if ln.Literal != nil {
			parts = append(parts, string(*ln.Literal))
		}
	}
	return strings.Join(parts, "\n")
}

// resolveColor 把颜色资源名换成其值；其余值原样透传，颜色语法由渲染端解释。
func resolveColor(value string, res ResourceSet) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultColor
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	return value
}

func parseFontWeight(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return 0
	case "normal", "regular":
		return 400
	case "medium":
		return 500
	case "bold":
		return 700
	}
	if v, err := strconv.Atoi(value); err == nil && v > 0 {
		return v
	}
	return 0
}

func normalizeAlign(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "center", "middle":
		return "center"
	case "right", "end":
		return "right"
	default:
		return "left"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.List != nil {
		out := make([]string, 0, len(val.List))
		for _, item := range val.List {
			if s := item.Text(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := val.Text(); s != "" {
		return []string{s}
	}
	return nil
}
