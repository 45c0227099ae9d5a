package asm

import "strings"

// An AddrMode identifies one of the 6502 addressing modes. The ordering
// matches the columns of the instruction table below.
type AddrMode int

const (
	ModeAccumulator AddrMode = iota
	ModeImmediate
	ModeImplied
	ModeRelative
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeIndirect
	ModeIndexedIndirect
	ModeIndirectIndexed

	numAddrModes
)

// absoluteMode maps an index register to the corresponding absolute mode.
func absoluteMode(index IndexRegister) AddrMode {
	switch index {
	case IndexX:
		return ModeAbsoluteX
	case IndexY:
		return ModeAbsoluteY
	default:
		return ModeAbsolute
	}
}

// zeroPageMode maps an index register to the corresponding zero-page mode.
func zeroPageMode(index IndexRegister) AddrMode {
	switch index {
	case IndexX:
		return ModeZeroPageX
	case IndexY:
		return ModeZeroPageY
	default:
		return ModeZeroPage
	}
}

// indirectMode maps an index register to the corresponding indirect mode.
func indirectMode(index IndexRegister) AddrMode {
	switch index {
	case IndexX:
		return ModeIndexedIndirect
	case IndexY:
		return ModeIndirectIndexed
	default:
		return ModeIndirect
	}
}

// An opcodeArray holds one opcode per addressing mode; -1 marks a mode the
// instruction does not support.
type opcodeArray [numAddrModes]int

// An Instruction describes one 6502 mnemonic and its opcodes.
type Instruction struct {
	name    string
	opcodes opcodeArray
}

func (i *Instruction) Name() string {
	return i.name
}

func (i *Instruction) opcode(mode AddrMode) int {
	return i.opcodes[mode]
}

// Supports reports whether the instruction has an opcode for the mode.
func (i *Instruction) Supports(mode AddrMode) bool {
	return i.opcodes[mode] >= 0
}

// IsRelative reports whether the instruction is a branch.
func (i *Instruction) IsRelative() bool {
	return i.Supports(ModeRelative)
}

// EncodeImplied emits the implied form. It returns the encoded size, or
// ok == false when the instruction has no implied form. A nil writer
// sizes without emitting; the same convention applies to all encoders.
func (i *Instruction) EncodeImplied(w *CodeWriter) (int, bool) {
	op := i.opcode(ModeImplied)
	if op < 0 {
		return 0, false
	}
	if w != nil {
		w.Byte(byte(op))
	}
	return 1, true
}

// EncodeAccumulator emits the accumulator form.
func (i *Instruction) EncodeAccumulator(w *CodeWriter) (int, bool) {
	op := i.opcode(ModeAccumulator)
	if op < 0 {
		return 0, false
	}
	if w != nil {
		w.Byte(byte(op))
	}
	return 1, true
}

// EncodeImmediate emits the immediate form with the given operand byte.
func (i *Instruction) EncodeImmediate(w *CodeWriter, value byte) (int, bool) {
	op := i.opcode(ModeImmediate)
	if op < 0 {
		return 0, false
	}
	if w != nil {
		w.Byte(byte(op))
		w.Byte(value)
	}
	return 2, true
}

// EncodeDirect emits a zero-page or absolute form. Zero page is preferred
// when the address fits, the zero-page variant exists, and absolute was
// not forced.
func (i *Instruction) EncodeDirect(w *CodeWriter, addr int, index IndexRegister, forceAbsolute bool) (int, bool) {
	if addr < 0x100 && !forceAbsolute {
		if op := i.opcode(zeroPageMode(index)); op >= 0 {
			if w != nil {
				w.Byte(byte(op))
				w.Byte(byte(addr))
			}
			return 2, true
		}
	}
	if op := i.opcode(absoluteMode(index)); op >= 0 {
		if w != nil {
			w.Byte(byte(op))
			w.Word(addr)
		}
		return 3, true
	}
	return 0, false
}

// EncodeIndirect emits one of the indirect forms. The indexed forms
// require a zero-page address.
func (i *Instruction) EncodeIndirect(w *CodeWriter, addr int, index IndexRegister) (int, bool) {
	mode := indirectMode(index)
	op := i.opcode(mode)
	if op < 0 {
		return 0, false
	}

	if mode == ModeIndirect {
		if w != nil {
			w.Byte(byte(op))
			w.Word(addr)
		}
		return 3, true
	}

	if addr > 0xff {
		return 0, false
	}
	if w != nil {
		w.Byte(byte(op))
		w.Byte(byte(addr))
	}
	return 2, true
}

// EncodeRelative emits a branch from one address to another. It fails when
// the delta does not fit in a signed byte.
func (i *Instruction) EncodeRelative(w *CodeWriter, from, to int) (int, bool) {
	op := i.opcode(ModeRelative)
	if op < 0 {
		return 0, false
	}

	delta := to - (from + 2)
	if delta < -128 || delta > 127 {
		return 0, false
	}
	if w != nil {
		w.Byte(byte(op))
		w.Byte(byte(delta))
	}
	return 2, true
}

const ____ = -1

type instructionDef struct {
	name    string
	opcodes opcodeArray
}

var instructionDefs = []instructionDef{
	// Mnemonic   Accum   Immed   Imply   Rel     Abs     AbsX    AbsY    zp      zp,x    zp,y    Indir   (a,x)   (a),y
	{"adc", opcodeArray{____, 0x69, ____, ____, 0x6d, 0x7d, 0x79, 0x65, 0x75, ____, ____, 0x61, 0x71}},
	{"and", opcodeArray{____, 0x29, ____, ____, 0x2d, 0x3d, 0x39, 0x25, 0x35, ____, ____, 0x21, 0x31}},
	{"asl", opcodeArray{0x0a, ____, ____, ____, 0x0e, 0x1e, ____, 0x06, 0x16, ____, ____, ____, ____}},
	{"bcc", opcodeArray{____, ____, ____, 0x90, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"bcs", opcodeArray{____, ____, ____, 0xb0, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"beq", opcodeArray{____, ____, ____, 0xf0, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"bit", opcodeArray{____, ____, ____, ____, 0x2c, ____, ____, 0x24, ____, ____, ____, ____, ____}},
	{"bmi", opcodeArray{____, ____, ____, 0x30, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"bne", opcodeArray{____, ____, ____, 0xd0, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"bpl", opcodeArray{____, ____, ____, 0x10, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"brk", opcodeArray{____, ____, 0x00, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"bvc", opcodeArray{____, ____, ____, 0x50, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"bvs", opcodeArray{____, ____, ____, 0x70, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"clc", opcodeArray{____, ____, 0x18, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"cld", opcodeArray{____, ____, 0xd8, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"cli", opcodeArray{____, ____, 0x58, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"clv", opcodeArray{____, ____, 0xb8, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"cmp", opcodeArray{____, 0xc9, ____, ____, 0xcd, 0xdd, 0xd9, 0xc5, 0xd5, ____, ____, 0xc1, 0xd1}},
	{"cpx", opcodeArray{____, 0xe0, ____, ____, 0xec, ____, ____, 0xe4, ____, ____, ____, ____, ____}},
	{"cpy", opcodeArray{____, 0xc0, ____, ____, 0xcc, ____, ____, 0xc4, ____, ____, ____, ____, ____}},
	{"dec", opcodeArray{____, ____, ____, ____, 0xce, 0xde, ____, 0xc6, 0xd6, ____, ____, ____, ____}},
	{"dex", opcodeArray{____, ____, 0xca, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"dey", opcodeArray{____, ____, 0x88, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"eor", opcodeArray{____, 0x49, ____, ____, 0x4d, 0x5d, 0x59, 0x45, 0x55, ____, ____, 0x41, 0x51}},
	{"inc", opcodeArray{____, ____, ____, ____, 0xee, 0xfe, ____, 0xe6, 0xf6, ____, ____, ____, ____}},
	{"inx", opcodeArray{____, ____, 0xe8, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"iny", opcodeArray{____, ____, 0xc8, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"jmp", opcodeArray{____, ____, ____, ____, 0x4c, ____, ____, ____, ____, ____, 0x6c, ____, ____}},
	{"jsr", opcodeArray{____, ____, ____, ____, 0x20, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"lda", opcodeArray{____, 0xa9, ____, ____, 0xad, 0xbd, 0xb9, 0xa5, 0xb5, ____, ____, 0xa1, 0xb1}},
	{"ldx", opcodeArray{____, 0xa2, ____, ____, 0xae, ____, 0xbe, 0xa6, ____, 0xb6, ____, ____, ____}},
	{"ldy", opcodeArray{____, 0xa0, ____, ____, 0xac, 0xbc, ____, 0xa4, 0xb4, ____, ____, ____, ____}},
	{"lsr", opcodeArray{0x4a, ____, ____, ____, 0x4e, 0x5e, ____, 0x46, 0x56, ____, ____, ____, ____}},
	{"nop", opcodeArray{____, ____, 0xea, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"ora", opcodeArray{____, 0x09, ____, ____, 0x0d, 0x1d, 0x19, 0x05, 0x15, ____, ____, 0x01, 0x11}},
	{"pha", opcodeArray{____, ____, 0x48, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"php", opcodeArray{____, ____, 0x08, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"pla", opcodeArray{____, ____, 0x68, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"plp", opcodeArray{____, ____, 0x28, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"rol", opcodeArray{0x2a, ____, ____, ____, 0x2e, 0x3e, ____, 0x26, 0x36, ____, ____, ____, ____}},
	{"ror", opcodeArray{0x6a, ____, ____, ____, 0x6e, 0x7e, ____, 0x66, 0x76, ____, ____, ____, ____}},
	{"rti", opcodeArray{____, ____, 0x40, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"rts", opcodeArray{____, ____, 0x60, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"sbc", opcodeArray{____, 0xe9, ____, ____, 0xed, 0xfd, 0xf9, 0xe5, 0xf5, ____, ____, 0xe1, 0xf1}},
	{"sec", opcodeArray{____, ____, 0x38, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"sed", opcodeArray{____, ____, 0xf8, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"sei", opcodeArray{____, ____, 0x78, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"sta", opcodeArray{____, ____, ____, ____, 0x8d, 0x9d, 0x99, 0x85, 0x95, ____, ____, 0x81, 0x91}},
	{"stx", opcodeArray{____, ____, ____, ____, 0x8e, ____, ____, 0x86, ____, 0x96, ____, ____, ____}},
	{"sty", opcodeArray{____, ____, ____, ____, 0x8c, ____, ____, 0x84, 0x94, ____, ____, ____, ____}},
	{"tax", opcodeArray{____, ____, 0xaa, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"tay", opcodeArray{____, ____, 0xa8, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"tsx", opcodeArray{____, ____, 0xba, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"txa", opcodeArray{____, ____, 0x8a, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"txs", opcodeArray{____, ____, 0x9a, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
	{"tya", opcodeArray{____, ____, 0x98, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____}},
}

var instructions = func() map[string]*Instruction {
	m := make(map[string]*Instruction, len(instructionDefs))
	for i := range instructionDefs {
		def := &instructionDefs[i]
		m[def.name] = &Instruction{name: def.name, opcodes: def.opcodes}
	}
	return m
}()

// InstructionNamed looks up an instruction by mnemonic. The lookup is
// case-insensitive and exact; anything else is a label or symbol name.
func InstructionNamed(name string) *Instruction {
	return instructions[strings.ToLower(name)]
}
