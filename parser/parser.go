// Copyright © 2018 The ELPS authors

// Package parser provides the entry point to the zx front end.
package parser

import (
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/parser/rdparser"
	"github.com/luthersystems/zxc/parser/token"
)

// Parse parses src as the contents of the file called name.  When src
// contains syntax errors Parse returns a partial file along with an
// rdparser.ErrorList.
func Parse(name string, src []byte) (*ast.File, error) {
	s := token.NewScannerBytes(name, src)
	return rdparser.New(s).ParseFile()
}
