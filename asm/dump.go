package asm

import (
	"fmt"
	"io"
)

// DumpStatements writes an indented rendering of the statement list, one
// block per statement with its source location.
func DumpStatements(w io.Writer, context *Context) {
	for _, s := range context.Statements.Statements() {
		pos := s.Pos()
		fmt.Fprintf(w, "%s:%d\n", context.Source.ShortFilename(pos.FileIndex), pos.Line)
		s.Dump(w, 2)
	}
}

// WriteSymbols writes the named symbols in definition order.
func WriteSymbols(w io.Writer, context *Context) {
	for _, sym := range context.Symbols.DefinitionOrder() {
		fmt.Fprintf(w, "%s = %s\n", sym.Name, formatAddress(sym.Addr))
	}
}
