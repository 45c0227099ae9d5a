// Package asm implements a two-pass assembler for the MOS 6502 accepting
// the PowerAssembler source dialect and producing Commodore-compatible
// object code.
package asm

import (
	"io"

	"github.com/charmbracelet/log"
)

// A Context aggregates everything a compilation owns: the source stream,
// the statement list, the symbol table, the diagnostics, and the output
// buffers. It is passed into the passes and is the only coordination
// mechanism between them.
type Context struct {
	Source     *SourceStream
	Statements StatementList
	Symbols    *SymbolTable
	Messages   *MessageList
	Buffers    []*CodeBuffer
	Log        *log.Logger
}

func NewContext() *Context {
	return &Context{
		Source:   NewSourceStream(),
		Symbols:  NewSymbolTable(),
		Messages: &MessageList{},
		Log:      log.New(io.Discard),
	}
}

// Predefine seeds the symbol table before assembly, as the -D option does.
// It reports false when the name is already taken.
func (c *Context) Predefine(name string, value int) bool {
	return c.Symbols.Define(Label{Type: LabelSymbolic, Name: name}, value)
}

// Assemble parses the given files in order and runs both passes. Parse and
// pass diagnostics end up in the context's message list; the returned
// error reports only input failures.
func Assemble(context *Context, paths ...string) error {
	parser := NewParser(context)
	for _, path := range paths {
		if err := parser.File(path); err != nil {
			return err
		}
		if err := parser.Parse(); err != nil {
			return err
		}
	}
	runPasses(context)
	return nil
}

// AssembleSource assembles from an in-memory reader under the given name.
func AssembleSource(context *Context, name string, r io.Reader) error {
	parser := NewParser(context)
	context.Source.IncludeReader(name, r)
	if err := parser.Parse(); err != nil {
		return err
	}
	runPasses(context)
	return nil
}

// ParseOnly parses the given files without running the passes. Used by the
// statement dump.
func ParseOnly(context *Context, paths ...string) error {
	parser := NewParser(context)
	for _, path := range paths {
		if err := parser.File(path); err != nil {
			return err
		}
		if err := parser.Parse(); err != nil {
			return err
		}
	}
	return nil
}

func runPasses(context *Context) {
	RunDefinitionPass(context)
	if context.Messages.HasFatalError() {
		return
	}
	RunEmissionPass(context)
}
