package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	jobLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][,;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(jobLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Document is the root AST node for a label job file:
//
//	labels Shelf v1 {
//	  meta { title: "Shelf" }
//	  geometry preset "2x1-2col"
//	  options { caption: true }
//	  entries { entry "A-1" "Bolt" }
//	}
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'labels' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section represents a top-level section (meta/geometry/options/entries).
type Section struct {
	Meta     *MetaSection     `parser:"  @@"`
	Geometry *GeometrySection `parser:"| @@"`
	Options  *OptionsSection  `parser:"| @@"`
	Entries  *EntriesSection  `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Geometry != nil:
		return "geometry"
	case s.Options != nil:
		return "options"
	case s.Entries != nil:
		return "entries"
	default:
		return "unknown"
	}
}

// MetaSection captures metadata assignments.
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// GeometrySection selects the label stock: `geometry preset "2x1-2col"` or
// `geometry custom 100mm 50mm 2` (keyword form `width 100mm height 50mm columns 2`).
type GeometrySection struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Kind   string         `parser:"'geometry' @Ident"`
	Params []*Arg         `parser:"@@*"`
}

// OptionsSection holds render options as assignments.
type OptionsSection struct {
	Block *Block `parser:"'options' @@"`
}

// EntriesSection lists entry/range/csv commands and bare code literals.
type EntriesSection struct {
	Block *Block `parser:"'entries' @@"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement inside a block (assignment/command/literal).
type Statement struct {
	Assignment *Assignment `parser:"  @@"`
	Command    *Command    `parser:"| @@"`
	Literal    *Literal    `parser:"| @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"Newline* @@"`
}

// Command is a keyword followed by arguments up to the end of the line.
type Command struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"@Ident"`
	Args []*Arg         `parser:"@@*"`
}

// Literal is a bare `"code" "caption"` line inside an entries block.
type Literal struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Code    StringLiteral  `parser:"@String"`
	Caption *StringLiteral `parser:"@String?"`
}

// Arg is a single command argument.
type Arg struct {
	Pos    lexer.Position `parser:"" json:"-"`
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Ident  *string        `parser:"| @Ident"`
}

// Text returns the argument as written (strings unquoted).
func (a *Arg) Text() string {
	switch {
	case a == nil:
		return ""
	case a.String != nil:
		return string(*a.String)
	case a.Number != nil:
		return *a.Number
	case a.Ident != nil:
		return *a.Ident
	default:
		return ""
	}
}

// IsIdent reports whether the argument is a bare identifier.
func (a *Arg) IsIdent() bool { return a != nil && a.Ident != nil }

// Value represents assignment values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Ident  *string        `parser:"| @Ident"`
	Array  *ArrayValue    `parser:"| @@"`
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Text flattens scalar values; arrays are joined by ", ".
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Ident != nil:
		return *v.Ident
	case v.Array != nil:
		return strings.Join(v.Strings(), ", ")
	default:
		return ""
	}
}

// Strings returns array items as text, or the scalar as a one-element slice.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		return []string{v.Text()}
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		out = append(out, item.Text())
	}
	return out
}

// Bool interprets true/false/yes/no/on/off/1/0.
func (v *Value) Bool() (bool, error) {
	switch strings.ToLower(v.Text()) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("无法解析布尔值 %q", v.Text())
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

// Parse parses a job file from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a job file from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
