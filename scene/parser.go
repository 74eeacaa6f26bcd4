// Package scene 解析 mockup 场景文件，并把它应用到元素存储。
//
//	mockup tshirt {
//	  color: navy
//	  name: "Acme"
//	  logo "assets/logo.png" at 50 35 scale 1.2
//	  text "${brand.name}" at 50 78 font go color #ffffff weight 700 effect 3d rotate -8
//	}
package scene

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	sceneLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*|\d+[A-Za-z][A-Za-z0-9_-]*`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d+|\d+|\.\d+)`},
		{Name: "Punct", Pattern: `[:;{}]`},
	})

	sceneParser = participle.MustBuild[Scene](
		participle.Lexer(sceneLexer),
		participle.Elide("Whitespace", "LineComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Scene is the root node of a scene file.
type Scene struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Product    string         `parser:"Newline* 'mockup' @Ident"`
	Statements []*Statement   `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Statement is one line inside the scene block.
type Statement struct {
	Assignment *Assignment `parser:"  @@"`
	Logo       *LogoDecl   `parser:"| @@"`
	Text       *TextDecl   `parser:"| @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@"`
}

// LogoDecl places the logo.
type LogoDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Src     StringLiteral  `parser:"'logo' @String"`
	Options []*Option      `parser:"@@*"`
}

// TextDecl adds a text item.
type TextDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Content StringLiteral  `parser:"'text' @String"`
	Options []*Option      `parser:"@@*"`
}

// Option is either a position or a key/value setting.
type Option struct {
	At      *Coord   `parser:"  'at' @@"`
	Setting *Setting `parser:"| @@"`
}

// Coord is a percent-space position.
type Coord struct {
	X float64 `parser:"@Number"`
	Y float64 `parser:"@Number"`
}

// Setting is an inline option such as `scale 1.5` or `effect 3d`.
type Setting struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"@@"`
}

// Value represents generic option values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Color  *string        `parser:"| @Color"`
	Number *float64       `parser:"| @Number"`
	Ident  *string        `parser:"| @Ident"`
}

// Text returns the value as a string regardless of its lexical form.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Color != nil:
		return *v.Color
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Float returns the numeric value.
func (v *Value) Float() (float64, error) {
	if v == nil || v.Number == nil {
		return 0, fmt.Errorf("期望数字，实际 %q", v.Text())
	}
	return *v.Number, nil
}

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

// Parse parses a scene from an io.Reader.
func Parse(r io.Reader) (*Scene, error) {
	return sceneParser.Parse("", r)
}

// ParseString parses a scene from a string.
func ParseString(input string) (*Scene, error) {
	return sceneParser.ParseString("", input)
}
