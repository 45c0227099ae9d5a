package asm

// The emissionPass walks the statement list a second time, evaluating all
// expressions strictly and writing bytes through a live writer. Program
// counters were fixed by the definition pass; this pass only restores them.
type emissionPass struct {
	context *Context
	writer  CodeWriter
	pc      int
}

// RunEmissionPass performs the second pass. The definition pass must have
// completed without a fatal error.
func RunEmissionPass(context *Context) bool {
	pass := &emissionPass{context: context}
	pass.newBuffer()
	return pass.run()
}

func (e *emissionPass) run() bool {
	e.context.Log.Debug("emission pass")

	for _, s := range e.context.Statements.Statements() {
		e.pc = s.PC()
		start := e.writer.Offset()
		buffer := e.writer.Buffer()

		if s.Skipped() {
			continue
		}

		err := e.visit(s)
		if e.writer.Buffer() != buffer {
			// The statement rolled over to a fresh buffer.
			start = 0
		}
		s.SetRange(CodeRange{Buffer: e.writer.Buffer(), Start: start, End: e.writer.Offset()})
		if err == nil {
			continue
		}
		srcErr, ok := err.(*SourceError)
		if !ok {
			e.context.Messages.AddError(err)
			continue
		}
		e.context.Messages.Add(SeverityError, srcErr.Pos, srcErr.Message, srcErr.Fatal)
		if srcErr.Fatal {
			return false
		}
	}
	return true
}

// willEmit captures the buffer origin just before its first byte.
func (e *emissionPass) willEmit() {
	if e.writer.Buffer().IsEmpty() {
		e.writer.Buffer().SetOrigin(e.pc)
	}
}

func (e *emissionPass) newBuffer() {
	buffer := &CodeBuffer{}
	e.writer.Attach(buffer)
	e.context.Buffers = append(e.context.Buffers, buffer)
	e.context.Log.Debug("new code buffer", "index", len(e.context.Buffers)-1)
}

func (e *emissionPass) eval(expr *Expression) (int, error) {
	return expr.Eval(e.pc, e.context.Symbols)
}

func (e *emissionPass) visit(s Statement) error {
	switch node := s.(type) {
	case *ProgramCounterAssignment:
		addr, err := e.eval(node.Expr)
		if err != nil {
			return err
		}
		if e.writer.Buffer().IsEmpty() {
			// Nothing written yet; only the origin moves.
			return nil
		}
		if addr < e.pc {
			return sourceError(node.Pos(), "Invalid program counter assignment (address %s < pc %s)",
				formatAddress(addr), formatAddress(e.pc))
		}
		e.writer.Fill(addr - e.pc)
		return nil

	case *ImpliedOperation:
		e.willEmit()
		if _, ok := node.Ins.EncodeImplied(&e.writer); !ok {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return nil

	case *AccumulatorOperation:
		e.willEmit()
		if _, ok := node.Ins.EncodeAccumulator(&e.writer); !ok {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return nil

	case *ImmediateOperation:
		e.willEmit()
		value, err := e.eval(node.Expr)
		if err != nil {
			return err
		}
		b, ok := selectByte(node.Selector, value)
		if !ok {
			return sourceError(node.Pos(), "Expected a value between 0 and 255; got %d", value)
		}
		if _, ok := node.Ins.EncodeImmediate(&e.writer, b); !ok {
			return sourceError(node.Pos(), "Immediate mode is not supported by instruction '%s'", node.Ins.Name())
		}
		return nil

	case *DirectOperation:
		e.willEmit()
		addr, err := e.eval(node.Expr)
		if err != nil {
			return err
		}
		if _, ok := node.Ins.EncodeDirect(&e.writer, addr, node.Index, node.ForceAbsolute); !ok {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return nil

	case *IndirectOperation:
		e.willEmit()
		addr, err := e.eval(node.Expr)
		if err != nil {
			return err
		}
		if node.Index != IndexNone && addr > 0xff {
			return sourceError(node.Pos(), "Expected a zero page address; got %s", formatAddress(addr))
		}
		if _, ok := node.Ins.EncodeIndirect(&e.writer, addr, node.Index); !ok {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return nil

	case *BranchOperation:
		e.willEmit()
		to, err := e.eval(node.Expr)
		if err != nil {
			return err
		}
		if _, ok := node.Ins.EncodeRelative(&e.writer, e.pc, to); !ok {
			return sourceError(node.Pos(), "Branch out of range")
		}
		return nil

	case *BufferDirective:
		e.willEmit()
		count, err := e.eval(node.Expr)
		if err != nil {
			return err
		}
		e.writer.Fill(count)
		return nil

	case *ObjectFileDirective:
		if !e.writer.Buffer().IsEmpty() {
			e.newBuffer()
		}
		e.writer.Buffer().SetFilename(node.Filename)
		return nil

	case *ByteDirective:
		e.willEmit()
		for _, element := range node.Elements {
			value, err := e.eval(element.Expr)
			if err != nil {
				return err
			}
			b, ok := selectByte(element.Selector, value)
			if !ok {
				return sourceError(element.Expr.Pos(), "Expected a value between 0 and 255; got %d", value)
			}
			e.writer.Byte(b)
		}
		return nil

	case *WordDirective:
		e.willEmit()
		for _, expr := range node.Exprs {
			value, err := e.eval(expr)
			if err != nil {
				return err
			}
			e.writer.Word(value)
		}
		return nil

	case *StringDirective:
		e.willEmit()
		for _, b := range EncodeString(node.Encoding, node.Text) {
			e.writer.Byte(b)
		}
		return nil
	}

	// Remaining variants manipulate only definition-pass state.
	return nil
}
