// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"
	"unicode"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/types"
)

// symbolCompleter implements readline.AutoCompleter by enumerating the
// session's declarations, the builtins, keywords and type names.
type symbolCompleter struct {
	session *Session
}

var staticWords = []string{
	"fn", "var", "class", "return", "if", "else", "while", "for", "in",
	"true", "false", "null",
	types.KeywordString, types.KeywordInteger, types.KeywordChar,
	types.KeywordFloat, types.KeywordBool, types.KeywordVoid,
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the identifier being typed, backwards from the cursor.
	start := pos
	for start > 0 {
		ch := line[start-1]
		if !(ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)) {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		suffix := sym[len(prefix):]
		result = append(result, []rune(suffix))
	}
	return result, len(prefix)
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] && name != wrapper {
			seen[name] = true
			result = append(result, name)
		}
	}
	for _, sym := range c.session.Symbols() {
		add(sym.Name)
	}
	for _, sym := range analysis.Prelude().Symbols() {
		add(sym.Name)
	}
	for _, w := range staticWords {
		add(w)
	}
	sort.Strings(result)
	return result
}
