// Copyright © 2024 The ELPS authors

package analysis

import "github.com/luthersystems/zxc/parser/token"

// Reference records a resolved symbol usage.  Span covers the identifier
// that named the symbol.
type Reference struct {
	Symbol *Symbol
	Span   token.Span
}

// ReferenceAt returns the reference whose span contains offset, or nil.
func (r *Result) ReferenceAt(offset int) *Reference {
	for _, ref := range r.References {
		if ref.Span.Start <= offset && offset < ref.Span.End {
			return ref
		}
	}
	return nil
}

// ReferencesTo returns the references that resolved to sym.
func (r *Result) ReferencesTo(sym *Symbol) []*Reference {
	var refs []*Reference
	for _, ref := range r.References {
		if ref.Symbol == sym {
			refs = append(refs, ref)
		}
	}
	return refs
}
