package asm

import (
	"fmt"
	"io"
)

// A Statement is one element of the intermediate tree. Statements are
// created by the parser, given a program counter by the definition pass,
// and given an emitted byte range by the emission pass.
type Statement interface {
	Pos() SourcePos
	Label() Label
	SetLabel(label Label)
	PC() int
	SetPC(pc int)
	Skipped() bool
	SetSkipped(skipped bool)
	Range() CodeRange
	SetRange(rng CodeRange)
	SourceText() string

	Dump(w io.Writer, level int)
}

// statement carries the attributes shared by every variant.
type statement struct {
	pos     SourcePos
	line    *Line
	label   Label
	pc      int
	skipped bool
	rng     CodeRange
}

func (s *statement) Pos() SourcePos          { return s.pos }
func (s *statement) Label() Label            { return s.label }
func (s *statement) SetLabel(label Label)    { s.label = label }
func (s *statement) PC() int                 { return s.pc }
func (s *statement) SetPC(pc int)            { s.pc = pc }
func (s *statement) Skipped() bool           { return s.skipped }
func (s *statement) SetSkipped(skipped bool) { s.skipped = skipped }
func (s *statement) Range() CodeRange        { return s.rng }
func (s *statement) SetRange(rng CodeRange)  { s.rng = rng }

func (s *statement) SourceText() string {
	if s.line == nil {
		return ""
	}
	return s.line.Text
}

func (s *statement) dumpLabel(w io.Writer, level int) {
	if !s.label.IsEmpty() {
		fmt.Fprintf(w, "%sLabel: %s\n", indent(level), s.label)
	}
}

// A StatementList is the ordered intermediate tree.
type StatementList struct {
	statements []Statement
}

func (l *StatementList) Add(s Statement) {
	l.statements = append(l.statements, s)
}

func (l *StatementList) Len() int {
	return len(l.statements)
}

func (l *StatementList) Statements() []Statement {
	return l.statements
}

//
// Statement variants
//

// An EmptyStatement emits no code. A bare label line parses to one.
type EmptyStatement struct {
	statement
}

func (s *EmptyStatement) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sEmpty\n", indent(level))
}

// A SymbolDefinition binds a name to the value of an expression.
type SymbolDefinition struct {
	statement
	Name string
	Expr *Expression
}

func (s *SymbolDefinition) Dump(w io.Writer, level int) {
	fmt.Fprintf(w, "%sDefine: %s\n", indent(level), s.Name)
	s.Expr.Dump(w, level+2)
}

// A ProgramCounterAssignment sets the program counter, zero-filling the
// output to reach it when the current buffer already holds data.
type ProgramCounterAssignment struct {
	statement
	Expr *Expression
}

func (s *ProgramCounterAssignment) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sSet Program Counter:\n", indent(level))
	s.Expr.Dump(w, level+2)
}

// An ImpliedOperation is a one-byte instruction with no operand.
type ImpliedOperation struct {
	statement
	Ins *Instruction
}

func (s *ImpliedOperation) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sImplied Mode Instruction: %s\n", indent(level), s.Ins.Name())
}

// An AccumulatorOperation is a one-byte instruction operating on A.
type AccumulatorOperation struct {
	statement
	Ins *Instruction
}

func (s *AccumulatorOperation) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sAccumulator Mode Instruction: %s\n", indent(level), s.Ins.Name())
}

// An ImmediateOperation is a two-byte instruction whose operand byte is
// chosen from the expression result by the byte selector.
type ImmediateOperation struct {
	statement
	Ins      *Instruction
	Selector ByteSelector
	Expr     *Expression
}

func (s *ImmediateOperation) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sImmediate Mode Instruction: %s [%s]\n", indent(level), s.Ins.Name(), s.Selector)
	s.Expr.Dump(w, level+2)
}

// A DirectOperation addresses memory directly, in zero-page or absolute
// form. ForceAbsolute is set by a '!' prefix or latched by the definition
// pass when the operand could not be resolved on the first pass.
type DirectOperation struct {
	statement
	Ins           *Instruction
	Index         IndexRegister
	ForceAbsolute bool
	Expr          *Expression
}

func (s *DirectOperation) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sDirect Mode Instruction: %s [index=%s]\n", indent(level), s.Ins.Name(), s.Index)
	s.Expr.Dump(w, level+2)
}

// An IndirectOperation addresses memory through a pointer.
type IndirectOperation struct {
	statement
	Ins   *Instruction
	Index IndexRegister
	Expr  *Expression
}

func (s *IndirectOperation) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sIndirect Mode Instruction: %s [index=%s]\n", indent(level), s.Ins.Name(), s.Index)
	s.Expr.Dump(w, level+2)
}

// A BranchOperation is a relative branch to a target address.
type BranchOperation struct {
	statement
	Ins  *Instruction
	Expr *Expression
}

func (s *BranchOperation) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sBranch Instruction: %s\n", indent(level), s.Ins.Name())
	s.Expr.Dump(w, level+2)
}

// An OriginDirective sets the program counter without emitting anything.
type OriginDirective struct {
	statement
	Expr *Expression
}

func (s *OriginDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sOrigin:\n", indent(level))
	s.Expr.Dump(w, level+2)
}

// A BufferDirective reserves a run of zero bytes.
type BufferDirective struct {
	statement
	Expr *Expression
}

func (s *BufferDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sBuffer:\n", indent(level))
	s.Expr.Dump(w, level+2)
}

// An OffsetBeginDirective opens an offset scope: labels resolve against a
// new program counter while emission continues at the original offset.
type OffsetBeginDirective struct {
	statement
	Expr *Expression
}

func (s *OffsetBeginDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sOffset Begin:\n", indent(level))
	s.Expr.Dump(w, level+2)
}

// An OffsetEndDirective closes the innermost offset scope.
type OffsetEndDirective struct {
	statement
}

func (s *OffsetEndDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sOffset End\n", indent(level))
}

// An ObjectFileDirective names the output file of the current (or, when
// code was already emitted, a fresh) code buffer.
type ObjectFileDirective struct {
	statement
	Filename string
}

func (s *ObjectFileDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sObject File: %s\n", indent(level), s.Filename)
}

// A ByteElement is one value of a byte directive with its own optional
// byte selector.
type ByteElement struct {
	Selector ByteSelector
	Expr     *Expression
}

// A ByteDirective emits one byte per element.
type ByteDirective struct {
	statement
	Elements []ByteElement
}

func (s *ByteDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sByte Data:\n", indent(level))
	for _, e := range s.Elements {
		if e.Selector != SelectorUnspecified {
			fmt.Fprintf(w, "%sSelector: %s\n", indent(level+2), e.Selector)
		}
		e.Expr.Dump(w, level+2)
	}
}

// A WordDirective emits two little-endian bytes per expression.
type WordDirective struct {
	statement
	Exprs []*Expression
}

func (s *WordDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sWord Data:\n", indent(level))
	for _, e := range s.Exprs {
		e.Dump(w, level+2)
	}
}

// A StringDirective emits one byte per character in the chosen encoding.
type StringDirective struct {
	statement
	Encoding StringEncoding
	Text     string
}

func (s *StringDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sString [%s]: \"%s\"\n", indent(level), s.Encoding, s.Text)
}

// An IfDirective opens a conditional block assembling its body when the
// expression is nonzero.
type IfDirective struct {
	statement
	Expr *Expression
}

func (s *IfDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sIf:\n", indent(level))
	s.Expr.Dump(w, level+2)
}

// An IfdefDirective opens a conditional block assembling its body when the
// named symbol is defined.
type IfdefDirective struct {
	statement
	Name string
}

func (s *IfdefDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sIfdef: %s\n", indent(level), s.Name)
}

// An ElseDirective inverts the innermost conditional block.
type ElseDirective struct {
	statement
}

func (s *ElseDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sElse\n", indent(level))
}

// An EndifDirective closes the innermost conditional block.
type EndifDirective struct {
	statement
}

func (s *EndifDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sEndif\n", indent(level))
}

// An EndDirective stops all further assembly.
type EndDirective struct {
	statement
}

func (s *EndDirective) Dump(w io.Writer, level int) {
	s.dumpLabel(w, level)
	fmt.Fprintf(w, "%sEnd\n", indent(level))
}
