// Copyright © 2018 The ELPS authors

package token

import "fmt"

type Token struct {
	Type   Type
	Text   string
	Source *Location
	Span   Span

	// PrecedingNewlines counts the line breaks between this token and the
	// previous one.  The parser uses it to end expressions at line breaks.
	PrecedingNewlines int
}

type Type uint

// Type constants used for the zx lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	COMMENT

	// Atomic expressions & literals
	IDENT
	INT
	FLOAT
	STRING
	CHAR

	// Keywords
	keywordStart
	FN
	VAR
	CLASS
	RETURN
	IF
	ELSE
	WHILE
	FOR
	IN
	TRUE
	FALSE
	NULL
	keywordEnd

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	ASSIGN
	EQ
	NEQ
	LT
	GT
	LE
	GE
	AND
	OR
	NOT
	ARROW

	// Delimiters
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R
	COMMA
	COLON
	SEMICOLON
	DOT
	QUESTION

	numTokenTypes
)

var typeStrings = [numTokenTypes]string{
	INVALID:   "invalid",
	ERROR:     "error",
	EOF:       "EOF",
	COMMENT:   "//",
	IDENT:     "identifier",
	INT:       "int",
	FLOAT:     "float",
	STRING:    "string",
	CHAR:      "char",
	FN:        "fn",
	VAR:       "var",
	CLASS:     "class",
	RETURN:    "return",
	IF:        "if",
	ELSE:      "else",
	WHILE:     "while",
	FOR:       "for",
	IN:        "in",
	TRUE:      "true",
	FALSE:     "false",
	NULL:      "null",
	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	ASSIGN:    "=",
	EQ:        "==",
	NEQ:       "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	AND:       "&&",
	OR:        "||",
	NOT:       "!",
	ARROW:     "->",
	PAREN_L:   "(",
	PAREN_R:   ")",
	BRACE_L:   "{",
	BRACE_R:   "}",
	COMMA:     ",",
	COLON:     ":",
	SEMICOLON: ";",
	DOT:       ".",
	QUESTION:  "?",
}

func (typ Type) String() string {
	if typ >= numTokenTypes || typeStrings[typ] == "" {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsKeyword reports whether typ is a reserved word.
func (typ Type) IsKeyword() bool {
	return keywordStart < typ && typ < keywordEnd
}

var keywords map[string]Type

func init() {
	keywords = make(map[string]Type, keywordEnd-keywordStart)
	for typ := keywordStart + 1; typ < keywordEnd; typ++ {
		keywords[typeStrings[typ]] = typ
	}
}

// Lookup maps an identifier to its keyword type, or IDENT.
func Lookup(ident string) Type {
	if typ, ok := keywords[ident]; ok {
		return typ
	}
	return IDENT
}

// Span is a half-open range of byte offsets [Start, End) into a source text.
type Span struct {
	Start int
	End   int
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Len returns the number of bytes covered by s.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// Position computes the 1-based line and column of offset within src.
// Columns count runes.  Offsets beyond the end of src are clamped.
func Position(src []byte, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	line, col = 1, 1
	for _, c := range string(src[:max(offset, 0)]) {
		if c == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
