// Copyright © 2024 The ELPS authors

package parser_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/luthersystems/zxc/astutil"
	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/rdparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := []byte(`
class Point {
	var x: Int
}
fn origin(): Point { return Point() }
`)
	file, err := parser.Parse("point.zx", src)
	require.NoError(t, err)
	assert.Equal(t, "point.zx", file.Name)
	assert.Equal(t, src, file.Source)

	var buf bytes.Buffer
	require.NoError(t, astutil.Fprint(&buf, file))
	assert.Equal(t, `File point.zx
├── Class Point
|   ├── Variable x: Int
├── Function origin
|   ├── Return Type Point
|   ├── Block
|   |   ├── Return
|   |   |   ├── Call Point
`, buf.String())
}

func TestParse_Errors(t *testing.T) {
	file, err := parser.Parse("bad.zx", []byte("fn (\nvar ok = 1"))
	var errs rdparser.ErrorList
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "bad.zx:1:4: expected identifier but found '('", errs[0].Error())
	require.NotNil(t, file)
	assert.Len(t, file.Stmts, 2)
}
