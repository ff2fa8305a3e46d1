// Copyright © 2024 The ELPS authors

package analysis

// Scopes is an insertion-ordered symbol table.
type Scopes struct {
	symbols []*Symbol
}

// NewScopes returns an empty table.
func NewScopes() *Scopes {
	return &Scopes{}
}

// Declare appends sym to the table.
func (s *Scopes) Declare(sym *Symbol) {
	s.symbols = append(s.symbols, sym)
}

// Lookup returns the first symbol named name in insertion order.  A
// successful lookup counts as a use of the symbol, so Lookup increments its
// Uses counter.
func (s *Scopes) Lookup(name string) (*Symbol, bool) {
	sym := s.LookupLocal(name)
	if sym == nil {
		return nil, false
	}
	sym.Uses++
	return sym, true
}

// LookupLocal returns the first symbol named name without counting a use.
// LookupLocal returns nil if there is no such symbol.
func (s *Scopes) LookupLocal(name string) *Symbol {
	if s == nil {
		return nil
	}
	for _, sym := range s.symbols {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Unused returns the symbols that have never been looked up.
func (s *Scopes) Unused() []*Symbol {
	var unused []*Symbol
	for _, sym := range s.Symbols() {
		if sym.Uses == 0 {
			unused = append(unused, sym)
		}
	}
	return unused
}

// Symbols returns the symbols of the table in declaration order.
func (s *Scopes) Symbols() []*Symbol {
	if s == nil {
		return nil
	}
	return s.symbols
}

// Len returns the number of symbols in the table.
func (s *Scopes) Len() int {
	if s == nil {
		return 0
	}
	return len(s.symbols)
}

// Stack is the chain of tables visible at a point in the program, searched
// innermost first.  A Stack is a value: Push and Member return new stacks
// and never modify the receiver, so a stack handed to a nested call cannot
// leak changes into sibling subtrees.
type Stack struct {
	tables []*Scopes // outermost first

	// guard holds names that may not be redeclared in the innermost table
	// even though they live in another table (function parameters).
	guard *Scopes

	// member is non-nil while resolving the continuation of a member-access
	// chain.  Names then resolve only in the class member table.
	member *Scopes
	class  *Symbol
}

// NewStack returns a stack containing tables, outermost first.
func NewStack(tables ...*Scopes) Stack {
	return Stack{tables: append([]*Scopes(nil), tables...)}
}

// Push returns a new lexical stack with table innermost.
func (s Stack) Push(table *Scopes) Stack {
	tables := make([]*Scopes, len(s.tables), len(s.tables)+1)
	copy(tables, s.tables)
	return Stack{tables: append(tables, table)}
}

// Member returns a stack that resolves names only in the members of class.
// The lexical tables are retained for Lexical.
func (s Stack) Member(class *Symbol) Stack {
	members := NewScopes()
	if k, ok := class.Kind.(*Class); ok {
		members = k.Members
	}
	return Stack{tables: s.tables, member: members, class: class}
}

// Lexical returns s without any member-access substitution.
func (s Stack) Lexical() Stack {
	return Stack{tables: s.tables, guard: s.guard}
}

// InMember reports whether s resolves names in a class member table and
// returns that class.
func (s Stack) InMember() (*Symbol, bool) {
	return s.class, s.member != nil
}

// Top returns the innermost lexical table.
func (s Stack) Top() *Scopes {
	if len(s.tables) == 0 {
		return nil
	}
	return s.tables[len(s.tables)-1]
}

// Depth returns the number of lexical tables in s.
func (s Stack) Depth() int {
	return len(s.tables)
}

// Lookup resolves name, counting a use of the symbol found.
func (s Stack) Lookup(name string) (*Symbol, bool) {
	if s.member != nil {
		return s.member.Lookup(name)
	}
	for i := len(s.tables) - 1; i >= 0; i-- {
		if sym, ok := s.tables[i].Lookup(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// Class returns the innermost class named name in the lexical tables, or
// nil.  Symbols of other kinds are skipped and no use is counted.
func (s Stack) Class(name string) *Symbol {
	for i := len(s.tables) - 1; i >= 0; i-- {
		if sym := s.tables[i].LookupLocal(name); sym != nil {
			if _, ok := sym.Kind.(*Class); ok {
				return sym
			}
		}
	}
	return nil
}

// Declared returns the symbol that a declaration of name in the innermost
// table would conflict with, or nil.
func (s Stack) Declared(name string) *Symbol {
	if sym := s.Top().LookupLocal(name); sym != nil {
		return sym
	}
	return s.guard.LookupLocal(name)
}

func (s Stack) withGuard(guard *Scopes) Stack {
	s.guard = guard
	return s
}
