// Copyright © 2018 The ELPS authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	used := make(map[string]bool)
	for tok := Type(0); tok < numTokenTypes; tok++ {
		if tok == keywordStart || tok == keywordEnd {
			continue
		}
		str := tok.String()
		if str == "" {
			t.Errorf("token type %x has empty string value", tok)
			continue
		}
		if used[str] {
			t.Errorf("token type string used twice: %v", tok)
		}
		used[str] = true
	}
}

func TestLookup(t *testing.T) {
	assert.Equal(t, FN, Lookup("fn"))
	assert.Equal(t, NULL, Lookup("null"))
	assert.Equal(t, IDENT, Lookup("Int"))
	assert.Equal(t, IDENT, Lookup("fnord"))
	assert.True(t, CLASS.IsKeyword())
	assert.False(t, IDENT.IsKeyword())
}

func TestSpan(t *testing.T) {
	a := Span{Start: 4, End: 7}
	b := Span{Start: 10, End: 12}
	assert.Equal(t, Span{Start: 4, End: 12}, a.Join(b))
	assert.Equal(t, Span{Start: 4, End: 12}, b.Join(a))
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, "4..7", a.String())
}

func TestPosition(t *testing.T) {
	src := []byte("ab\ncdé\nf")
	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 3},
		{8, 3, 1},
		{100, 3, 2},
	}
	for _, test := range tests {
		line, col := Position(src, test.offset)
		assert.Equal(t, test.line, line, "offset %d", test.offset)
		assert.Equal(t, test.col, col, "offset %d", test.offset)
	}
}
