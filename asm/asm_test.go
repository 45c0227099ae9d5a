package asm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssemble(source string) *Context {
	context := NewContext()
	AssembleSource(context, "test", strings.NewReader(source))
	return context
}

func hexDump(b []byte) string {
	var sb strings.Builder
	for _, v := range b {
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}

func checkASM(t *testing.T, source, expected string) *Context {
	t.Helper()
	context := testAssemble(source)
	for _, msg := range context.Messages.Messages() {
		t.Logf("%s: %s", msg.Severity, msg.Summary)
	}
	require.Equal(t, 0, context.Messages.ErrorCount(), "unexpected errors")
	require.NotEmpty(t, context.Buffers)
	assert.Equal(t, expected, hexDump(context.Buffers[0].Bytes()))
	return context
}

func checkASMError(t *testing.T, source, expected string) {
	t.Helper()
	context := testAssemble(source)
	require.NotZero(t, context.Messages.ErrorCount(), "expected an error")
	found := false
	for _, msg := range context.Messages.Messages() {
		if strings.Contains(msg.Summary, expected) {
			found = true
		}
	}
	assert.True(t, found, "no diagnostic contains %q; got %v", expected, context.Messages.Messages())
}

func TestImmediate(t *testing.T) {
	context := checkASM(t, `
*=$c000
lda #$01
rts`, "A90160")
	assert.Equal(t, 0xc000, context.Buffers[0].Origin())
}

func TestSymbolOperands(t *testing.T) {
	checkASM(t, `
*=$1000
foo = $d020
lda foo
sta foo+1`, "AD20D08D21D0")
}

func TestBackwardTemporaryBranch(t *testing.T) {
	checkASM(t, `
*=$2000
- lda #0
bne -`, "A900D0FC")
}

func TestForwardTemporaryBranch(t *testing.T) {
	checkASM(t, `
*=$2000
beq +
lda #1
+ rts`, "F002A90160")
}

func TestTemporaryRunCounts(t *testing.T) {
	checkASM(t, `
*=$3000
- nop
- nop
jmp --`, "EAEA4C0030")
}

func TestBidirectionalTemporary(t *testing.T) {
	checkASM(t, `
*=$3000
/ nop
bne -
beq +
/ nop`, "EAD0FDF000EA")
}

func TestByteSelectorsAndWord(t *testing.T) {
	checkASM(t, `
*=$3000
.byte <$1234, >$1234, $ff
.word $1234`, "3412FF3412")
}

func TestZeroPageSelection(t *testing.T) {
	checkASM(t, `
*=$4000
lda $12`, "A512")

	checkASM(t, `
*=$4000
lda !$12`, "AD1200")
}

func TestConditionalElse(t *testing.T) {
	checkASM(t, `
.if 0
lda #1
.else
lda #2
.ife`, "A902")
}

func TestConditionalNested(t *testing.T) {
	checkASM(t, `
.if 1
.if 0
lda #1
.else
lda #2
.ife
.else
lda #3
.ife`, "A902")
}

func TestIfdef(t *testing.T) {
	checkASM(t, `
foo = 1
.ifdef foo
lda #1
.ife
.ifdef bar
lda #2
.ife`, "A901")
}

func TestForwardReferenceForcesAbsolute(t *testing.T) {
	checkASM(t, `
*=$5000
jmp forward
forward rts`, "4C035060")
}

func TestForwardReferenceZeroPageStillAbsolute(t *testing.T) {
	// The addressing decision is latched on the first pass even though
	// the symbol turns out to fit in zero page.
	checkASM(t, `
*=$5000
lda forward
forward = $12
rts`, "AD120060")
}

func TestProgramCounterFill(t *testing.T) {
	checkASM(t, `
*=$1000
.byte 1
*=$1004
.byte 2`, "0100000002")
}

func TestProgramCounterBackwardsIsError(t *testing.T) {
	checkASMError(t, `
*=$1000
.byte 1
*=$0fff`, "Invalid program counter assignment")
}

func TestOriginMovesWithoutFill(t *testing.T) {
	context := checkASM(t, `
*=$1000
.org $2000
lda #1`, "A901")
	assert.Equal(t, 0x2000, context.Buffers[0].Origin())
}

func TestBufferDirective(t *testing.T) {
	checkASM(t, `
*=$1000
.byte $ff
.buf 3
.byte $fe`, "FF000000FE")
}

func TestOffsetScope(t *testing.T) {
	context := checkASM(t, `
*=$1000
lda #1
.off $c000
target nop
.ofe
rts`, "A901EA60")
	addr, ok := context.Symbols.Get("target")
	require.True(t, ok)
	assert.Equal(t, 0xc000, addr)

	// rts lands right after the offset region's bytes.
	statements := context.Statements.Statements()
	last := statements[len(statements)-1]
	assert.Equal(t, 0x1003, last.PC())
}

func TestStatementChaining(t *testing.T) {
	checkASM(t, `
*=$1000
lda #1 : rts`, "A90160")
}

func TestStringDirectives(t *testing.T) {
	checkASM(t, `
*=$1000
.asc "AB"
.scr "ab"`, "C1C20102")
}

func TestCharacterLiteralOperand(t *testing.T) {
	checkASM(t, `
*=$1000
lda #"a"
lda #@'a'`, "A941A901")
}

func TestAccumulatorOperation(t *testing.T) {
	checkASM(t, `
*=$1000
asl
lsr`, "0A4A")
}

func TestIndirectModes(t *testing.T) {
	checkASM(t, `
*=$1000
jmp ($1234)
lda ($20,x)
lda ($20),y`, "6C3412A120B120")
}

func TestLeftToRightEvaluation(t *testing.T) {
	// No operator precedence: 2+3*4 folds as (2+3)*4.
	checkASM(t, `
*=$1000
.byte 2+3*4`, "14")
}

func TestDivision(t *testing.T) {
	checkASM(t, `
*=$1000
.byte $40/2/4`, "08")

	checkASMError(t, `
*=$1000
.byte 1/0`, "Division by zero")
}

func TestProgramCounterOperand(t *testing.T) {
	checkASM(t, `
*=$1000
.word *
.word *`, "00100210")
}

func TestEndDirective(t *testing.T) {
	checkASM(t, `
*=$1000
lda #1
.end
lda #2`, "A901")
}

func TestLegacyDirectiveWarns(t *testing.T) {
	context := checkASM(t, `
*=$1000
.mem
lda #1`, "A901")
	assert.Equal(t, 1, context.Messages.WarningCount())
}

func TestUnknownDirective(t *testing.T) {
	checkASMError(t, ".bogus", "Unknown directive")
}

func TestUnknownInstructionAfterLabel(t *testing.T) {
	checkASMError(t, "foo xyz", "Invalid instruction")
}

func TestDuplicateSymbol(t *testing.T) {
	checkASMError(t, `
foo = 1
foo = 2`, "Symbol already exists")

	checkASMError(t, `
foo = 1
foo rts`, "Symbol already exists")
}

func TestUndefinedSymbol(t *testing.T) {
	checkASMError(t, `
*=$1000
lda #undefined`, "Undefined symbol")
}

func TestBranchOutOfRange(t *testing.T) {
	checkASMError(t, `
*=$1000
bne $2000`, "Branch out of range")
}

func TestImmediateRange(t *testing.T) {
	checkASMError(t, `
*=$1000
lda #$1234`, "Expected a value between 0 and 255")
}

func TestExpressionRange(t *testing.T) {
	checkASMError(t, `
*=$1000
.word $ffff+1`, "Invalid expression result")
}

func TestImmediateNotSupported(t *testing.T) {
	checkASMError(t, `
*=$1000
sta #1`, "Immediate mode is not supported")
}

func TestUnsupportedAddressingMode(t *testing.T) {
	checkASMError(t, `
*=$1000
ldx $1234,x`, "Invalid addressing mode")
}

func TestAddressOverflowIsFatal(t *testing.T) {
	context := testAssemble(`
*=$ffff
lda #1
rts`)
	require.True(t, context.Messages.HasFatalError())
	// The emission pass is skipped entirely.
	require.Len(t, context.Buffers, 0)
}

func TestUnmatchedConditional(t *testing.T) {
	checkASMError(t, `
.if 1
lda #1`, "Missing matching 'ife'")

	checkASMError(t, ".ife", "Missing matching 'if'")
	checkASMError(t, ".else", "Missing matching 'if'")
}

func TestUnmatchedOffsetEnd(t *testing.T) {
	checkASMError(t, ".ofe", "Missing matching 'off'")
}

func TestObjectFileBuffers(t *testing.T) {
	context := testAssemble(`
.obj "first.prg"
*=$1000
lda #1
.obj "second.prg"
*=$2000
rts`)
	require.Equal(t, 0, context.Messages.ErrorCount())
	require.Len(t, context.Buffers, 2)
	assert.Equal(t, "first.prg", context.Buffers[0].Filename())
	assert.Equal(t, 0x1000, context.Buffers[0].Origin())
	assert.Equal(t, "A901", hexDump(context.Buffers[0].Bytes()))
	assert.Equal(t, "second.prg", context.Buffers[1].Filename())
	assert.Equal(t, 0x2000, context.Buffers[1].Origin())
	assert.Equal(t, "60", hexDump(context.Buffers[1].Bytes()))
}

func TestUnsafeObjectFilename(t *testing.T) {
	checkASMError(t, `.obj "../evil"`, "Unsafe object filename")
}

func TestPredefinedSymbols(t *testing.T) {
	context := NewContext()
	require.True(t, context.Predefine("base", 0x2000))
	AssembleSource(context, "test", strings.NewReader(`
*=$1000
jmp base`))
	require.Equal(t, 0, context.Messages.ErrorCount())
	assert.Equal(t, "4C0020", hexDump(context.Buffers[0].Bytes()))
}

func TestDeterminism(t *testing.T) {
	source := `
*=$1000
foo = $80
- lda foo
sta foo+1,x
bne -
.byte <foo, >foo
.word foo`
	a := testAssemble(source)
	b := testAssemble(source)
	require.Equal(t, 0, a.Messages.ErrorCount())
	assert.Equal(t, hexDump(a.Buffers[0].Bytes()), hexDump(b.Buffers[0].Bytes()))
}

func TestSymbolDumpOrder(t *testing.T) {
	context := testAssemble(`
zeta = 1
alpha = 2
mid rts`)
	require.Equal(t, 0, context.Messages.ErrorCount())
	symbols := context.Symbols.DefinitionOrder()
	require.Len(t, symbols, 3)
	assert.Equal(t, "zeta", symbols[0].Name)
	assert.Equal(t, "alpha", symbols[1].Name)
	assert.Equal(t, "mid", symbols[2].Name)

	var sb strings.Builder
	WriteSymbols(&sb, context)
	assert.Equal(t, "zeta = $0001\nalpha = $0002\nmid = $0000\n", sb.String())
}
