package asm

// An offsetScope remembers where the program counter must return when an
// offset region ends. The emission offset keeps advancing from returnPC
// while labels inside the scope resolve against the offset address.
type offsetScope struct {
	returnPC int
	startPC  int
}

// The definitionPass walks the statement list assigning program counters,
// sizing instructions, and populating the symbol table. Addressing-mode
// choices that depend on unresolved forward references are latched here
// and never retried.
type definitionPass struct {
	context *Context
	pc      int
	offsets []offsetScope
	conds   []bool
	ended   bool
}

// RunDefinitionPass performs the first pass. It returns false when a fatal
// error stopped the walk early.
func RunDefinitionPass(context *Context) bool {
	pass := &definitionPass{context: context}
	return pass.run()
}

func (d *definitionPass) run() bool {
	d.context.Log.Debug("definition pass")

	statements := d.context.Statements.Statements()
	for _, s := range statements {
		s.SetPC(d.pc)

		if d.ended {
			s.SetSkipped(true)
			continue
		}
		if d.skipping() && !isConditional(s) {
			s.SetSkipped(true)
			continue
		}

		err := d.visit(s)
		if err == nil {
			continue
		}
		srcErr, ok := err.(*SourceError)
		if !ok {
			d.context.Messages.AddError(err)
			continue
		}
		d.context.Messages.Add(SeverityError, srcErr.Pos, srcErr.Message, srcErr.Fatal)
		if srcErr.Fatal {
			return false
		}
	}

	if len(d.conds) > 0 {
		d.context.Messages.Error(lastPos(statements), "Missing matching 'ife'")
	}
	if len(d.offsets) > 0 {
		d.context.Messages.Error(lastPos(statements), "Missing matching 'ofe'")
	}
	return true
}

func lastPos(statements []Statement) SourcePos {
	if len(statements) == 0 {
		return invalidPos
	}
	return statements[len(statements)-1].Pos()
}

// skipping reports whether any enclosing conditional block is inactive.
func (d *definitionPass) skipping() bool {
	for _, active := range d.conds {
		if !active {
			return true
		}
	}
	return false
}

// isConditional reports whether a statement takes part in conditional
// block bookkeeping and must be visited even while skipping.
func isConditional(s Statement) bool {
	switch s.(type) {
	case *IfDirective, *IfdefDirective, *ElseDirective, *EndifDirective:
		return true
	}
	return false
}

func (d *definitionPass) visit(s Statement) error {
	switch node := s.(type) {
	case *EmptyStatement:
		return d.defineLabel(node)

	case *SymbolDefinition:
		value, err := node.Expr.Eval(d.pc, d.context.Symbols)
		if err != nil {
			return err
		}
		if !d.context.Symbols.Define(Label{Type: LabelSymbolic, Name: node.Name}, value) {
			return sourceError(node.Pos(), "Symbol already exists ('%s')", node.Name)
		}
		d.context.Log.Debug("define symbol", "name", node.Name, "value", formatAddress(value))
		return nil

	case *ProgramCounterAssignment:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		value, err := node.Expr.Eval(d.pc, d.context.Symbols)
		if err != nil {
			return err
		}
		d.pc = value
		return nil

	case *ImpliedOperation:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		size, ok := node.Ins.EncodeImplied(nil)
		if !ok {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return d.advance(node, size)

	case *AccumulatorOperation:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		size, ok := node.Ins.EncodeAccumulator(nil)
		if !ok {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return d.advance(node, size)

	case *ImmediateOperation:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		size, ok := node.Ins.EncodeImmediate(nil, 0)
		if !ok {
			return sourceError(node.Pos(), "Immediate mode is not supported by instruction '%s'", node.Ins.Name())
		}
		return d.advance(node, size)

	case *DirectOperation:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		// An unresolved forward reference cannot prove a zero-page
		// address, so the absolute form is latched for both passes.
		addr, ok, err := node.Expr.TryEval(d.pc, d.context.Symbols)
		if err != nil {
			return err
		}
		if !ok {
			node.ForceAbsolute = true
			addr = 0
		}
		size, ok := node.Ins.EncodeDirect(nil, addr, node.Index, node.ForceAbsolute)
		if !ok {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return d.advance(node, size)

	case *IndirectOperation:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		addr, _, err := node.Expr.TryEval(d.pc, d.context.Symbols)
		if err != nil {
			return err
		}
		size, ok := node.Ins.EncodeIndirect(nil, addr, node.Index)
		if !ok {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return d.advance(node, size)

	case *BranchOperation:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		if !node.Ins.IsRelative() {
			return sourceError(node.Pos(), "Invalid addressing mode for instruction '%s'", node.Ins.Name())
		}
		return d.advance(node, 2)

	case *OriginDirective:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		value, err := node.Expr.Eval(d.pc, d.context.Symbols)
		if err != nil {
			return err
		}
		d.pc = value
		return nil

	case *BufferDirective:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		count, err := node.Expr.Eval(d.pc, d.context.Symbols)
		if err != nil {
			return err
		}
		return d.advance(node, count)

	case *OffsetBeginDirective:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		value, err := node.Expr.Eval(d.pc, d.context.Symbols)
		if err != nil {
			return err
		}
		d.offsets = append(d.offsets, offsetScope{returnPC: d.pc, startPC: value})
		d.pc = value
		return nil

	case *OffsetEndDirective:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		if len(d.offsets) == 0 {
			return sourceError(node.Pos(), "Missing matching 'off'")
		}
		scope := d.offsets[len(d.offsets)-1]
		d.offsets = d.offsets[:len(d.offsets)-1]
		d.pc = scope.returnPC + (d.pc - scope.startPC)
		return nil

	case *ObjectFileDirective:
		return d.defineLabel(node)

	case *ByteDirective:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		return d.advance(node, len(node.Elements))

	case *WordDirective:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		return d.advance(node, 2*len(node.Exprs))

	case *StringDirective:
		if err := d.defineLabel(node); err != nil {
			return err
		}
		return d.advance(node, len(node.Text))

	case *IfDirective:
		if d.skipping() {
			// The condition may reference symbols that were never
			// defined; an inactive block must still nest correctly.
			d.conds = append(d.conds, false)
			s.SetSkipped(true)
			return nil
		}
		value, err := node.Expr.Eval(d.pc, d.context.Symbols)
		if err != nil {
			d.conds = append(d.conds, false)
			return err
		}
		d.conds = append(d.conds, value != 0)
		return nil

	case *IfdefDirective:
		if d.skipping() {
			d.conds = append(d.conds, false)
			s.SetSkipped(true)
			return nil
		}
		_, defined := d.context.Symbols.Get(node.Name)
		d.conds = append(d.conds, defined)
		return nil

	case *ElseDirective:
		if len(d.conds) == 0 {
			return sourceError(node.Pos(), "Missing matching 'if'")
		}
		d.conds[len(d.conds)-1] = !d.conds[len(d.conds)-1]
		return nil

	case *EndifDirective:
		if len(d.conds) == 0 {
			return sourceError(node.Pos(), "Missing matching 'if'")
		}
		d.conds = d.conds[:len(d.conds)-1]
		return nil

	case *EndDirective:
		d.ended = true
		return nil
	}

	return nil
}

// defineLabel records the statement's label, if any, at the current pc.
func (d *definitionPass) defineLabel(s Statement) error {
	label := s.Label()
	if label.IsEmpty() {
		return nil
	}
	if !d.context.Symbols.Define(label, d.pc) {
		return sourceError(s.Pos(), "Symbol already exists ('%s')", label.Name)
	}
	d.context.Log.Debug("define label", "label", label.String(), "pc", formatAddress(d.pc))
	return nil
}

// advance moves the program counter past a statement's emitted bytes,
// raising a fatal error when the address space overflows.
func (d *definitionPass) advance(s Statement, size int) error {
	if d.pc+size > 0x10000 {
		return fatalSourceError(s.Pos(), "16-bit address overflow")
	}
	d.pc += size
	return nil
}
