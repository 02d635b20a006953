package tiny

// Symbol is one entry in the SymbolTable: a variable's dense index (its
// offset from the global-pointer register in emitted code) plus every
// location at which it was referenced.
type Symbol struct {
	Name      string
	Index     int
	Locations []Location
}

// SymbolTable maps identifier names to Symbols. Indices are assigned from a
// monotonically increasing counter on first insertion and never reused or
// changed by subsequent insertions of the same name.
type SymbolTable struct {
	entries map[string]*Symbol
	next    int
}

// NewSymbolTable constructs an empty SymbolTable.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string]*Symbol)}
}

// Insert records a reference to name at loc. The first insertion of a name
// assigns its dense index; later insertions only append a location.
func (t *SymbolTable) Insert(name string, loc Location) {
	if sym, ok := t.entries[name]; ok {
		sym.Locations = append(sym.Locations, loc)
		return
	}

	t.entries[name] = &Symbol{Name: name, Index: t.next, Locations: []Location{loc}}
	t.next++
}

// Lookup returns name's dense index, or -1 if it was never inserted.
func (t *SymbolTable) Lookup(name string) int {
	if sym, ok := t.entries[name]; ok {
		return sym.Index
	}
	return -1
}

// Len returns the number of distinct identifiers recorded.
func (t *SymbolTable) Len() int {
	return len(t.entries)
}

// Symbols returns every recorded symbol, in no particular order.
func (t *SymbolTable) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(t.entries))
	for _, sym := range t.entries {
		out = append(out, sym)
	}
	return out
}
