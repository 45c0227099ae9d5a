package asm

import "sort"

type symbolEntry struct {
	addr   int
	serial int
}

type temporary struct {
	typ  LabelType
	addr int
}

// A SymbolTable stores named symbols and the ordered list of temporary
// labels. Named symbols keep a serial number so the symbol dump can be
// printed in definition order.
type SymbolTable struct {
	symbols map[string]symbolEntry
	serial  int
	temps   []temporary
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]symbolEntry)}
}

// Define binds a label to an address. It returns false when a symbolic
// label of the same name already exists.
func (t *SymbolTable) Define(label Label, addr int) bool {
	switch label.Type {
	case LabelSymbolic:
		if _, ok := t.symbols[label.Name]; ok {
			return false
		}
		t.symbols[label.Name] = symbolEntry{addr: addr, serial: t.serial}
		t.serial++
		return true

	case LabelTemporary, LabelTemporaryForward, LabelTemporaryBackward:
		entry := temporary{typ: label.Type, addr: addr}
		if len(t.temps) == 0 || addr > t.temps[len(t.temps)-1].addr {
			t.temps = append(t.temps, entry)
			return true
		}
		i := sort.Search(len(t.temps), func(i int) bool { return t.temps[i].addr >= addr })
		if i < len(t.temps) && t.temps[i].addr == addr {
			return true
		}
		t.temps = append(t.temps, temporary{})
		copy(t.temps[i+1:], t.temps[i:])
		t.temps[i] = entry
		return true

	default:
		return true
	}
}

// Get looks up a named symbol.
func (t *SymbolTable) Get(name string) (int, bool) {
	entry, ok := t.symbols[name]
	return entry.addr, ok
}

// Temporary resolves a ±delta temporary label reference from the given
// address. Walking forward counts entries of type Temporary or
// TemporaryForward; walking backward counts Temporary or TemporaryBackward.
func (t *SymbolTable) Temporary(addr, delta int) (int, bool) {
	if delta == 0 {
		return 0, false
	}

	i := sort.Search(len(t.temps), func(i int) bool { return t.temps[i].addr >= addr })

	if delta > 0 {
		if i != len(t.temps) && t.temps[i].addr != addr {
			i--
		}
		for delta != 0 && i != len(t.temps) {
			i++
			if i == len(t.temps) {
				break
			}
			typ := t.temps[i].typ
			if typ == LabelTemporary || typ == LabelTemporaryForward {
				delta--
			}
		}
		if i != len(t.temps) {
			return t.temps[i].addr, true
		}
		return 0, false
	}

	for delta != 0 && i > 0 {
		i--
		typ := t.temps[i].typ
		if typ == LabelTemporary || typ == LabelTemporaryBackward {
			delta++
		}
	}
	if delta == 0 {
		return t.temps[i].addr, true
	}
	return 0, false
}

// NamedSymbol pairs a symbol name with its value for the symbol dump.
type NamedSymbol struct {
	Name string
	Addr int
}

// DefinitionOrder returns the named symbols sorted by definition order.
func (t *SymbolTable) DefinitionOrder() []NamedSymbol {
	type row struct {
		NamedSymbol
		serial int
	}
	rows := make([]row, 0, len(t.symbols))
	for name, entry := range t.symbols {
		rows = append(rows, row{NamedSymbol{Name: name, Addr: entry.addr}, entry.serial})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].serial < rows[j].serial })

	out := make([]NamedSymbol, len(rows))
	for i, r := range rows {
		out[i] = r.NamedSymbol
	}
	return out
}
