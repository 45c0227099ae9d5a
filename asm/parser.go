package asm

import (
	"strings"
)

// legacyDirectives are PowerAssembler statements with no meaning here.
// They parse to an empty statement and a warning.
var legacyDirectives = map[string]bool{
	"dvi":   true,
	"dvo":   true,
	"burst": true,
	"mem":   true,
	"dis":   true,
	"out":   true,
	"bas":   true,
	"link":  true,
	"loop":  true,
	"file":  true,
	"lst":   true,
	"top":   true,
	"sst":   true,
	"psu":   true,
	"fas":   true,
}

type directiveHandler func(p *Parser, r *LineReader, pos SourcePos, label Label) (Statement, error)

var directives = map[string]directiveHandler{
	"org":   (*Parser).parseOrg,
	"buf":   (*Parser).parseBuf,
	"off":   (*Parser).parseOffsetBegin,
	"ofe":   (*Parser).parseOffsetEnd,
	"obj":   (*Parser).parseObjectFile,
	"byte":  (*Parser).parseByte,
	"word":  (*Parser).parseWord,
	"asc":   (*Parser).parseAsc,
	"scr":   (*Parser).parseScr,
	"if":    (*Parser).parseIf,
	"ifdef": (*Parser).parseIfdef,
	"else":  (*Parser).parseElse,
	"ife":   (*Parser).parseEndif,
	"end":   (*Parser).parseEnd,
	"inc":   (*Parser).parseInclude,
}

// A Parser consumes tokens and builds the ordered statement list. Each
// source line yields one or more statements separated by ':'. Errors on a
// line are recorded and parsing resumes with the next line.
type Parser struct {
	context *Context
}

func NewParser(context *Context) *Parser {
	return &Parser{context: context}
}

// File pushes a source file onto the input stream.
func (p *Parser) File(path string) error {
	return p.context.Source.IncludeFile(path)
}

// Parse drains the source stream, appending statements to the context.
func (p *Parser) Parse() error {
	for {
		line, err := p.context.Source.NextLine()
		if err != nil {
			p.context.Messages.AddError(err)
			return err
		}
		if line == nil {
			return nil
		}
		p.parseLine(line)
	}
}

func (p *Parser) parseLine(line *Line) {
	reader := newLineReader(line)
	for {
		s, err := p.parseStatement(reader)
		if err != nil {
			p.context.Messages.AddError(err)
			return
		}
		if s != nil {
			p.context.Statements.Add(s)
		}

		token, err := reader.NextToken()
		if err != nil {
			p.context.Messages.AddError(err)
			return
		}
		if token.Type == TokenEnd {
			return
		}
		if token.Type == TokenPunctuator && token.Punct == ':' {
			continue
		}
		p.context.Messages.AddError(sourceError(token.Pos, "Expected end of statement"))
		return
	}
}

func (p *Parser) base(r *LineReader, pos SourcePos, label Label) statement {
	return statement{pos: pos, line: r.Line(), label: label}
}

// parseStatement parses one statement. It returns either a statement or an
// error; an include yields an empty statement that carries its label.
func (p *Parser) parseStatement(r *LineReader) (Statement, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case TokenEnd:
		r.Unget(token)
		return &EmptyStatement{statement: p.base(r, token.Pos, Label{})}, nil

	case TokenIdentifier:
		if ins := InstructionNamed(token.Text); ins != nil {
			return p.parseOperation(r, token.Pos, Label{}, ins)
		}

		name := token.Text
		next, err := r.NextToken()
		if err != nil {
			return nil, err
		}
		if next.Type == TokenPunctuator && next.Punct == '=' {
			expr, err := p.parseExpression(r)
			if err != nil {
				return nil, err
			}
			return &SymbolDefinition{statement: p.base(r, token.Pos, Label{}), Name: name, Expr: expr}, nil
		}
		r.Unget(next)
		return p.parseLabeled(r, token.Pos, Label{Type: LabelSymbolic, Name: name})

	case TokenPunctuator:
		switch token.Punct {
		case '.':
			return p.parseDirective(r, token.Pos, Label{})
		case '*':
			if err := r.ExpectPunctuator('='); err != nil {
				return nil, err
			}
			expr, err := p.parseExpression(r)
			if err != nil {
				return nil, err
			}
			return &ProgramCounterAssignment{statement: p.base(r, token.Pos, Label{}), Expr: expr}, nil
		case '+':
			return p.parseLabeled(r, token.Pos, Label{Type: LabelTemporaryForward})
		case '-':
			return p.parseLabeled(r, token.Pos, Label{Type: LabelTemporaryBackward})
		case '/':
			return p.parseLabeled(r, token.Pos, Label{Type: LabelTemporary})
		default:
			return nil, sourceError(token.Pos, "Unexpected character ('%c')", token.Punct)
		}
	}

	return nil, sourceError(token.Pos, "Expected an instruction, directive, or label")
}

// parseLabeled parses whatever may follow a label: an instruction, a
// directive, or nothing at all.
func (p *Parser) parseLabeled(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case TokenEnd:
		r.Unget(token)
		return &EmptyStatement{statement: p.base(r, pos, label)}, nil

	case TokenIdentifier:
		ins := InstructionNamed(token.Text)
		if ins == nil {
			return nil, sourceError(token.Pos, "Invalid instruction ('%s')", token.Text)
		}
		return p.parseOperation(r, pos, label, ins)

	case TokenPunctuator:
		switch token.Punct {
		case '.':
			return p.parseDirective(r, pos, label)
		case ':':
			r.Unget(token)
			return &EmptyStatement{statement: p.base(r, pos, label)}, nil
		}
	}

	return nil, sourceError(token.Pos, "Expected an instruction or directive")
}

// parseOperation parses the operand field of an instruction and selects
// the statement variant for its addressing family.
func (p *Parser) parseOperation(r *LineReader, pos SourcePos, label Label, ins *Instruction) (Statement, error) {
	if ins.IsRelative() {
		expr, err := p.parseExpression(r)
		if err != nil {
			return nil, err
		}
		return &BranchOperation{statement: p.base(r, pos, label), Ins: ins, Expr: expr}, nil
	}

	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}

	if token.Type == TokenEnd || (token.Type == TokenPunctuator && token.Punct == ':') {
		r.Unget(token)
		if ins.Supports(ModeImplied) {
			return &ImpliedOperation{statement: p.base(r, pos, label), Ins: ins}, nil
		}
		if ins.Supports(ModeAccumulator) {
			return &AccumulatorOperation{statement: p.base(r, pos, label), Ins: ins}, nil
		}
		return nil, sourceError(pos, "Invalid addressing mode for instruction '%s'", ins.Name())
	}

	if token.Type == TokenPunctuator {
		switch token.Punct {
		case '#':
			return p.parseImmediate(r, pos, label, ins)

		case '"', '@', '<', '>':
			r.Unget(token)
			return p.parseImmediate(r, pos, label, ins)

		case '(':
			return p.parseIndirect(r, pos, label, ins)

		case '!':
			return p.parseDirect(r, pos, label, ins, true)
		}
	}

	r.Unget(token)
	return p.parseDirect(r, pos, label, ins, false)
}

func (p *Parser) parseImmediate(r *LineReader, pos SourcePos, label Label, ins *Instruction) (Statement, error) {
	selector, err := p.optionalByteSelector(r)
	if err != nil {
		return nil, err
	}
	if !ins.Supports(ModeImmediate) {
		return nil, sourceError(pos, "Immediate mode is not supported by instruction '%s'", ins.Name())
	}
	expr, err := p.parseExpression(r)
	if err != nil {
		return nil, err
	}
	return &ImmediateOperation{statement: p.base(r, pos, label), Ins: ins, Selector: selector, Expr: expr}, nil
}

func (p *Parser) parseDirect(r *LineReader, pos SourcePos, label Label, ins *Instruction, forceAbsolute bool) (Statement, error) {
	expr, err := p.parseExpression(r)
	if err != nil {
		return nil, err
	}
	index, err := p.optionalIndex(r)
	if err != nil {
		return nil, err
	}
	return &DirectOperation{
		statement:     p.base(r, pos, label),
		Ins:           ins,
		Index:         index,
		ForceAbsolute: forceAbsolute,
		Expr:          expr,
	}, nil
}

func (p *Parser) parseIndirect(r *LineReader, pos SourcePos, label Label, ins *Instruction) (Statement, error) {
	expr, err := p.parseExpression(r)
	if err != nil {
		return nil, err
	}

	indexed, err := r.OptionalPunctuator(',')
	if err != nil {
		return nil, err
	}
	if indexed {
		// (addr,X)
		token, err := r.NextToken()
		if err != nil {
			return nil, err
		}
		if token.Type != TokenIdentifier || strings.ToLower(token.Text) != "x" {
			return nil, sourceError(token.Pos, "Expected 'x'")
		}
		if err := r.ExpectPunctuator(')'); err != nil {
			return nil, err
		}
		return &IndirectOperation{statement: p.base(r, pos, label), Ins: ins, Index: IndexX, Expr: expr}, nil
	}

	if err := r.ExpectPunctuator(')'); err != nil {
		return nil, err
	}

	indexed, err = r.OptionalPunctuator(',')
	if err != nil {
		return nil, err
	}
	if indexed {
		// (addr),Y
		token, err := r.NextToken()
		if err != nil {
			return nil, err
		}
		if token.Type != TokenIdentifier || strings.ToLower(token.Text) != "y" {
			return nil, sourceError(token.Pos, "Expected 'y'")
		}
		return &IndirectOperation{statement: p.base(r, pos, label), Ins: ins, Index: IndexY, Expr: expr}, nil
	}

	return &IndirectOperation{statement: p.base(r, pos, label), Ins: ins, Index: IndexNone, Expr: expr}, nil
}

// optionalIndex consumes a ',x' or ',y' suffix if present.
func (p *Parser) optionalIndex(r *LineReader) (IndexRegister, error) {
	indexed, err := r.OptionalPunctuator(',')
	if err != nil {
		return IndexNone, err
	}
	if !indexed {
		return IndexNone, nil
	}
	token, err := r.NextToken()
	if err != nil {
		return IndexNone, err
	}
	if token.Type == TokenIdentifier {
		switch strings.ToLower(token.Text) {
		case "x":
			return IndexX, nil
		case "y":
			return IndexY, nil
		}
	}
	return IndexNone, sourceError(token.Pos, "Expected 'x' or 'y'")
}

// optionalByteSelector consumes a '<' or '>' prefix if present.
func (p *Parser) optionalByteSelector(r *LineReader) (ByteSelector, error) {
	token, err := r.NextToken()
	if err != nil {
		return SelectorUnspecified, err
	}
	if token.Type == TokenPunctuator {
		switch token.Punct {
		case '<':
			return SelectorLow, nil
		case '>':
			return SelectorHigh, nil
		}
	}
	r.Unget(token)
	return SelectorUnspecified, nil
}

//
// Directives
//

func (p *Parser) parseDirective(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != TokenIdentifier {
		return nil, sourceError(token.Pos, "Expected a directive name")
	}

	name := strings.ToLower(token.Text)
	if legacyDirectives[name] {
		p.context.Messages.Warning(token.Pos, "Ignored unsupported statement")
		p.skipStatement(r)
		return &EmptyStatement{statement: p.base(r, pos, label)}, nil
	}

	handler, ok := directives[name]
	if !ok {
		return nil, sourceError(token.Pos, "Unknown directive '%s'", token.Text)
	}
	return handler(p, r, pos, label)
}

// skipStatement discards tokens up to the next statement separator or end
// of line.
func (p *Parser) skipStatement(r *LineReader) {
	for {
		token, err := r.NextToken()
		if err != nil {
			return
		}
		if token.Type == TokenEnd {
			r.Unget(token)
			return
		}
		if token.Type == TokenPunctuator && token.Punct == ':' {
			r.Unget(token)
			return
		}
	}
}

func (p *Parser) parseOrg(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	expr, err := p.parseExpression(r)
	if err != nil {
		return nil, err
	}
	return &OriginDirective{statement: p.base(r, pos, label), Expr: expr}, nil
}

func (p *Parser) parseBuf(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	expr, err := p.parseExpression(r)
	if err != nil {
		return nil, err
	}
	return &BufferDirective{statement: p.base(r, pos, label), Expr: expr}, nil
}

func (p *Parser) parseOffsetBegin(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	expr, err := p.parseExpression(r)
	if err != nil {
		return nil, err
	}
	return &OffsetBeginDirective{statement: p.base(r, pos, label), Expr: expr}, nil
}

func (p *Parser) parseOffsetEnd(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	return &OffsetEndDirective{statement: p.base(r, pos, label)}, nil
}

// objectFilenameSafe reports whether a filename is acceptable for an
// object file directive.
func objectFilenameSafe(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case isAlpha(c) || isDigit(c):
		case c == '_' || c == '-' || c == ' ' || c == '.':
		default:
			return false
		}
	}
	return true
}

func (p *Parser) parseObjectFile(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != TokenLiteral {
		return nil, sourceError(token.Pos, "Expected a quoted filename")
	}
	if !objectFilenameSafe(token.Text) {
		return nil, sourceError(token.Pos, "Unsafe object filename ('%s')", token.Text)
	}
	return &ObjectFileDirective{statement: p.base(r, pos, label), Filename: token.Text}, nil
}

func (p *Parser) parseByte(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	var elements []ByteElement
	for {
		selector, err := p.optionalByteSelector(r)
		if err != nil {
			return nil, err
		}
		expr, err := p.parseExpression(r)
		if err != nil {
			return nil, err
		}
		elements = append(elements, ByteElement{Selector: selector, Expr: expr})

		more, err := r.OptionalPunctuator(',')
		if err != nil {
			return nil, err
		}
		if !more {
			return &ByteDirective{statement: p.base(r, pos, label), Elements: elements}, nil
		}
	}
}

func (p *Parser) parseWord(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	exprs, err := p.parseExpressionList(r)
	if err != nil {
		return nil, err
	}
	return &WordDirective{statement: p.base(r, pos, label), Exprs: exprs}, nil
}

func (p *Parser) parseAsc(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	return p.parseString(r, pos, label, EncodingPetscii)
}

func (p *Parser) parseScr(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	return p.parseString(r, pos, label, EncodingScreen)
}

func (p *Parser) parseString(r *LineReader, pos SourcePos, label Label, encoding StringEncoding) (Statement, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != TokenLiteral {
		return nil, sourceError(token.Pos, "Expected a quoted string")
	}
	return &StringDirective{statement: p.base(r, pos, label), Encoding: encoding, Text: token.Text}, nil
}

func (p *Parser) parseIf(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	expr, err := p.parseExpression(r)
	if err != nil {
		return nil, err
	}
	return &IfDirective{statement: p.base(r, pos, label), Expr: expr}, nil
}

func (p *Parser) parseIfdef(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != TokenIdentifier {
		return nil, sourceError(token.Pos, "Expected a symbol name")
	}
	return &IfdefDirective{statement: p.base(r, pos, label), Name: token.Text}, nil
}

func (p *Parser) parseElse(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	return &ElseDirective{statement: p.base(r, pos, label)}, nil
}

func (p *Parser) parseEndif(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	return &EndifDirective{statement: p.base(r, pos, label)}, nil
}

func (p *Parser) parseEnd(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	return &EndDirective{statement: p.base(r, pos, label)}, nil
}

// parseInclude pushes the named file onto the source stream and returns an
// empty statement holding the directive's label; subsequent lines come from
// the included file. Duplicate inclusion is fatal.
func (p *Parser) parseInclude(r *LineReader, pos SourcePos, label Label) (Statement, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}
	if token.Type != TokenLiteral {
		return nil, sourceError(token.Pos, "Expected a quoted filename")
	}
	if err := p.context.Source.IncludeFile(token.Text); err != nil {
		if _, ok := err.(*SystemError); ok {
			return nil, sourceError(token.Pos, "%v", err)
		}
		return nil, fatalSourceError(token.Pos, "%v", err)
	}
	return &EmptyStatement{statement: p.base(r, pos, label)}, nil
}

//
// Expressions
//

// parseExpressionList parses one or more comma-separated expressions.
func (p *Parser) parseExpressionList(r *LineReader) ([]*Expression, error) {
	var exprs []*Expression
	for {
		expr, err := p.parseExpression(r)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)

		more, err := r.OptionalPunctuator(',')
		if err != nil {
			return nil, err
		}
		if !more {
			return exprs, nil
		}
	}
}

// parseExpression parses an expression with strictly left-to-right
// combination; there is no operator precedence in this dialect.
func (p *Parser) parseExpression(r *LineReader) (*Expression, error) {
	first, err := r.NextToken()
	if err != nil {
		return nil, err
	}
	r.Unget(first)

	root, err := p.parseOperand(r)
	if err != nil {
		return nil, err
	}

	for {
		token, err := r.NextToken()
		if err != nil {
			return nil, err
		}
		if token.Type != TokenPunctuator || !isExprOperator(token.Punct) {
			r.Unget(token)
			return &Expression{pos: first.Pos, root: root}, nil
		}

		right, err := p.parseOperand(r)
		if err != nil {
			return nil, err
		}
		root = &binaryNode{pos: token.Pos, op: token.Punct, left: root, right: right}
	}
}

func isExprOperator(c byte) bool {
	return c == '+' || c == '-' || c == '*' || c == '/'
}

func (p *Parser) parseOperand(r *LineReader) (exprNode, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case TokenNumber:
		return &constantNode{v: token.Number}, nil

	case TokenIdentifier:
		return &symbolNode{pos: token.Pos, name: token.Text}, nil

	case TokenLiteral:
		if len(token.Text) != 1 {
			return nil, sourceError(token.Pos, "Expected a single character literal")
		}
		return &constantNode{v: int(Petscii(token.Text[0]))}, nil

	case TokenPunctuator:
		switch token.Punct {
		case '*':
			return &pcNode{pos: token.Pos}, nil

		case '@':
			return p.parseScreenCodeOperand(r, token.Pos)

		case '+', '-':
			count, err := p.countTemporaryRun(r, token.Punct)
			if err != nil {
				return nil, err
			}
			delta := count
			if token.Punct == '-' {
				delta = -count
			}
			return &temporaryNode{pos: token.Pos, delta: delta}, nil
		}
	}

	return nil, sourceError(token.Pos, "Expected a valid operand")
}

// parseScreenCodeOperand handles the @'c' form, yielding the screen code
// of a single character.
func (p *Parser) parseScreenCodeOperand(r *LineReader, pos SourcePos) (exprNode, error) {
	token, err := r.NextToken()
	if err != nil {
		return nil, err
	}
	switch {
	case token.Type == TokenIdentifier && len(token.Text) == 3 &&
		token.Text[0] == '\'' && token.Text[2] == '\'':
		return &constantNode{v: int(ScreenCode(token.Text[1]))}, nil
	case token.Type == TokenLiteral && len(token.Text) == 1:
		return &constantNode{v: int(ScreenCode(token.Text[0]))}, nil
	}
	return nil, sourceError(pos, "Expected a character literal")
}

// countTemporaryRun counts a run of identical '+' or '-' punctuators; the
// run length selects which temporary label a reference resolves to.
func (p *Parser) countTemporaryRun(r *LineReader, c byte) (int, error) {
	count := 1
	for {
		more, err := r.OptionalPunctuator(c)
		if err != nil {
			return 0, err
		}
		if !more {
			break
		}
		count++
		if count > 3 {
			return 0, sourceError(r.pos(r.offset), "Invalid temporary symbol")
		}
	}
	return count, nil
}
