package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		// 长的写法在前，否则 #0F62FE 会被截成 #0F6。
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{4}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|mm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	bannerParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a banner description file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'banner' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section represents a top-level section (meta/resources/canvas).
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Canvas    *CanvasSection    `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Canvas != nil:
		return "canvas"
	default:
		return "unknown"
	}
}

// MetaSection holds `key: value` document metadata.
type MetaSection struct {
	Fields []*Field `parser:"'meta' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// ResourcesSection groups font, color and style declarations.
type ResourcesSection struct {
	Decls []*Resource `parser:"'resources' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Resource is one declaration inside `resources`.
type Resource struct {
	Font  *FontDecl  `parser:"  @@"`
	Color *ColorDecl `parser:"| @@"`
	Style *StyleDecl `parser:"| @@"`
}

// FontDecl: font Name { src: "..." style: "..." fallback: "..." }
type FontDecl struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Name   string         `parser:"'font' @Ident"`
	Fields []*Field       `parser:"( '{' Newline* ( @@ ( ';' | Newline )* )* '}' )?"`
}

// ColorDecl: color Name = #rrggbb
type ColorDecl struct {
	Name  string `parser:"'color' @Ident '='?"`
	Value *Value `parser:"@@"`
}

// StyleDecl: style Name [extends Parent] { key: value ... }
type StyleDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"'style' @Ident"`
	Extends string         `parser:"( 'extends' @Ident )?"`
	Fields  []*Field       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Field uses colon syntax (key: value).
type Field struct {
	Key   string `parser:"@Ident ':'"`
	Value *Value `parser:"Newline* @@"`
}

// CanvasSection is the banner surface: its logical size followed by background and text blocks.
type CanvasSection struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Spec  CanvasSpec     `parser:"'canvas' @@"`
	Items []*CanvasItem  `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// CanvasSpec is either `<width> <height>` or a named preset, optionally followed by an orientation.
type CanvasSpec struct {
	Width       string `parser:"(   @Number"`
	Height      string `parser:"    @Number"`
	Preset      string `parser:"  | @Ident )"`
	Orientation string `parser:"@( 'landscape' | 'portrait' )?"`
}

// CanvasItem is a drawable statement on the canvas.
type CanvasItem struct {
	Background *BackgroundDecl `parser:"  @@"`
	Text       *TextDecl       `parser:"| @@"`
}

// BackgroundDecl: background ["src"] key value ...
type BackgroundDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Src   *StringLiteral `parser:"'background' @String?"`
	Attrs []*Attr        `parser:"@@*"`
}

// Attr is a `key value` pair on a single line.
type Attr struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"@@"`
}

// TextDecl: text [Style] key value ... { "line" ... range start end color }
// 参数按原样保留：首个无配对的标识符是样式名，由构建阶段区分。
type TextDecl struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Args []*Value       `parser:"'text' @@*"`
	Body []*TextLine    `parser:"Newline* '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// TextLine is either a string literal (one text line) or a color range.
type TextLine struct {
	Literal *StringLiteral `parser:"  @String"`
	Range   *RangeDecl     `parser:"| @@"`
}

// RangeDecl: range <start> <end> <color>, offsets in characters of the text template.
type RangeDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Start int            `parser:"'range' @Number"`
	End   int            `parser:"@Number"`
	Color *Value         `parser:"@@"`
}

// Value is a scalar or list property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
	List   []*Value       `parser:"| '[' Newline* ( @@ ( ',' | Newline )* )* ']'"`
}

// Text returns the scalar as written (strings unquoted); lists yield "".
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// IsIdent reports whether the value is a bare identifier.
func (v *Value) IsIdent() bool { return v != nil && v.Ident != nil }

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return bannerParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return bannerParser.ParseString("", input)
}
