// Copyright © 2018 The ELPS authors

package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/luthersystems/zxc/parser/token"
)

type Lexer struct {
	scanner           *token.Scanner
	precedingNewlines int
}

func New(s *token.Scanner) *Lexer {
	return &Lexer{scanner: s}
}

// ReadToken returns the next token in the stream.  At the end of input
// ReadToken returns a token of type token.EOF on every call.
func (lex *Lexer) ReadToken() *token.Token {
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		if lex.scanner.EOF() {
			if err := lex.scanner.Err(); err != nil && err != io.EOF {
				return lex.emitError(err)
			}
			return lex.emit(token.EOF, "")
		}
		// ScanRune consumes the offending byte so that lexing can continue.
		return lex.emitError(lex.scanner.ScanRune())
	}
	switch c := lex.scanner.Rune(); c {
	case '(':
		return lex.emitText(token.PAREN_L)
	case ')':
		return lex.emitText(token.PAREN_R)
	case '{':
		return lex.emitText(token.BRACE_L)
	case '}':
		return lex.emitText(token.BRACE_R)
	case ',':
		return lex.emitText(token.COMMA)
	case ':':
		return lex.emitText(token.COLON)
	case ';':
		return lex.emitText(token.SEMICOLON)
	case '.':
		if isDigit(lex.peekRune()) {
			return lex.readFloatFraction()
		}
		return lex.emitText(token.DOT)
	case '?':
		return lex.emitText(token.QUESTION)
	case '+':
		return lex.emitText(token.PLUS)
	case '*':
		return lex.emitText(token.STAR)
	case '%':
		return lex.emitText(token.PERCENT)
	case '-':
		if lex.scanner.AcceptRune('>') {
			return lex.emitText(token.ARROW)
		}
		return lex.emitText(token.MINUS)
	case '/':
		if lex.scanner.AcceptRune('/') {
			lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
			return lex.emitText(token.COMMENT)
		}
		return lex.emitText(token.SLASH)
	case '=':
		if lex.scanner.AcceptRune('=') {
			return lex.emitText(token.EQ)
		}
		return lex.emitText(token.ASSIGN)
	case '!':
		if lex.scanner.AcceptRune('=') {
			return lex.emitText(token.NEQ)
		}
		return lex.emitText(token.NOT)
	case '<':
		if lex.scanner.AcceptRune('=') {
			return lex.emitText(token.LE)
		}
		return lex.emitText(token.LT)
	case '>':
		if lex.scanner.AcceptRune('=') {
			return lex.emitText(token.GE)
		}
		return lex.emitText(token.GT)
	case '&':
		if lex.scanner.AcceptRune('&') {
			return lex.emitText(token.AND)
		}
		return lex.errorf("unexpected text starting with %q", c)
	case '|':
		if lex.scanner.AcceptRune('|') {
			return lex.emitText(token.OR)
		}
		return lex.errorf("unexpected text starting with %q", c)
	case '"':
		return lex.readQuoted('"', token.STRING, "string")
	case '\'':
		return lex.readQuoted('\'', token.CHAR, "char")
	default:
		if isDigit(c) {
			return lex.readNumber()
		}
		if isWordStart(c) {
			return lex.readWord()
		}
		return lex.errorf("unexpected text starting with %q", c)
	}
}

func (lex *Lexer) emit(typ token.Type, text string) *token.Token {
	tok := &token.Token{
		Type:              typ,
		Text:              text,
		Source:            lex.scanner.LocStart(),
		Span:              lex.scanner.Span(),
		PrecedingNewlines: lex.precedingNewlines,
	}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) *token.Token {
	tok := lex.scanner.EmitToken(typ)
	tok.PrecedingNewlines = lex.precedingNewlines
	return tok
}

func (lex *Lexer) emitError(err error) *token.Token {
	if err == io.EOF {
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	return lex.emitError(fmt.Errorf(format, v...))
}

// readQuoted scans a string or character literal.  Escape sequences are
// validated by the parser.
func (lex *Lexer) readQuoted(quote rune, typ token.Type, what string) *token.Token {
	for {
		if lex.scanner.AcceptRune(quote) {
			return lex.emitText(typ)
		}
		if lex.scanner.AcceptRune('\n') || !lex.scanner.Accept(func(c rune) bool { return true }) {
			return lex.errorf("unterminated %s literal", what)
		}
		if lex.scanner.Rune() == '\\' {
			if !lex.scanner.Accept(func(c rune) bool { return c != '\n' }) {
				return lex.errorf("unterminated %s literal", what)
			}
		}
	}
}

func (lex *Lexer) readWord() *token.Token {
	lex.scanner.AcceptSeq(isWord)
	return lex.emitText(token.Lookup(lex.scanner.Text()))
}

func (lex *Lexer) readNumber() *token.Token {
	lex.scanner.AcceptSeqDigit() // the first digit already scanned
	switch {
	case lex.peekRune() == '.' && lex.peekDigitAfterDot():
		lex.scanner.AcceptRune('.')
		return lex.readFloatFraction()
	case lex.scanner.AcceptAny("eE"):
		return lex.readFloatExponent()
	default:
		if isWordStart(lex.peekRune()) {
			return lex.errorf("invalid integer literal starting: %v", lex.scanner.Text())
		}
		return lex.emitText(token.INT)
	}
	// the returned string may not actually be a usable number (overflow), but
	// we can find that out at parse time -- not scan time.
}

// peekDigitAfterDot distinguishes 1.5 from a member access such as 1.toStr().
func (lex *Lexer) peekDigitAfterDot() bool {
	src := lex.scanner.Source()
	i := lex.scanner.Loc().Pos + 1
	return i < len(src) && isDigit(rune(src[i]))
}

func (lex *Lexer) readFloatFraction() *token.Token {
	if lex.scanner.AcceptSeqDigit() == 0 {
		return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
	}
	if lex.scanner.AcceptAny("eE") {
		return lex.readFloatExponent()
	}
	return lex.emitText(token.FLOAT)
}

func (lex *Lexer) readFloatExponent() *token.Token {
	lex.scanner.AcceptAny("+-") // optional sign
	if lex.scanner.AcceptSeqDigit() == 0 {
		return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
	}
	return lex.emitText(token.FLOAT)
}

func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeqSpace() > 0 {
		lex.precedingNewlines = strings.Count(lex.scanner.Text(), "\n")
		lex.scanner.Ignore()
	} else {
		lex.precedingNewlines = 0
	}
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isWord(c rune) bool {
	return isWordStart(c) || unicode.IsDigit(c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
