// Copyright © 2024 The ELPS authors

package ir

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented listing of code to w.
func Fprint(w io.Writer, code []Instr) error {
	return fprint(w, code, 0)
}

func fprint(w io.Writer, code []Instr, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, instr := range code {
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, instr); err != nil {
			return err
		}
		var err error
		switch instr := instr.(type) {
		case *Block:
			err = fprint(w, instr.Code, depth+1)
		case *If:
			err = fprint(w, instr.Then, depth+1)
			if err == nil && len(instr.Else) > 0 {
				if _, err = fmt.Fprintf(w, "%selse\n", indent); err == nil {
					err = fprint(w, instr.Else, depth+1)
				}
			}
		case *Loop:
			err = fprint(w, instr.Body, depth+1)
			if err == nil && len(instr.Post) > 0 {
				if _, err = fmt.Fprintf(w, "%spost\n", indent); err == nil {
					err = fprint(w, instr.Post, depth+1)
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
