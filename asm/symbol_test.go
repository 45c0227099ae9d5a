package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolDefineAndGet(t *testing.T) {
	table := NewSymbolTable()

	require.True(t, table.Define(Label{Type: LabelSymbolic, Name: "foo"}, 0x1234))
	addr, ok := table.Get("foo")
	require.True(t, ok)
	assert.Equal(t, 0x1234, addr)

	_, ok = table.Get("bar")
	assert.False(t, ok)
}

func TestSymbolDuplicate(t *testing.T) {
	table := NewSymbolTable()

	require.True(t, table.Define(Label{Type: LabelSymbolic, Name: "foo"}, 1))
	assert.False(t, table.Define(Label{Type: LabelSymbolic, Name: "foo"}, 2))

	// The original binding wins.
	addr, _ := table.Get("foo")
	assert.Equal(t, 1, addr)
}

func TestEmptyLabelIgnored(t *testing.T) {
	table := NewSymbolTable()
	assert.True(t, table.Define(Label{}, 5))
	assert.Empty(t, table.DefinitionOrder())
}

func tempTable(entries ...temporary) *SymbolTable {
	table := NewSymbolTable()
	for _, e := range entries {
		table.Define(Label{Type: e.typ}, e.addr)
	}
	return table
}

func TestTemporaryForwardWalk(t *testing.T) {
	table := tempTable(
		temporary{LabelTemporaryForward, 0x1000},
		temporary{LabelTemporaryBackward, 0x1004},
		temporary{LabelTemporaryForward, 0x1008},
	)

	// +1 from 0x0ffe skips nothing; the first forward entry wins.
	addr, ok := table.Temporary(0x0ffe, 1)
	require.True(t, ok)
	assert.Equal(t, 0x1000, addr)

	// Backward-only entries don't count on a forward walk.
	addr, ok = table.Temporary(0x1002, 1)
	require.True(t, ok)
	assert.Equal(t, 0x1008, addr)

	_, ok = table.Temporary(0x1002, 2)
	assert.False(t, ok)
}

func TestTemporaryBackwardWalk(t *testing.T) {
	table := tempTable(
		temporary{LabelTemporaryBackward, 0x1000},
		temporary{LabelTemporaryForward, 0x1004},
		temporary{LabelTemporaryBackward, 0x1008},
	)

	addr, ok := table.Temporary(0x100a, -1)
	require.True(t, ok)
	assert.Equal(t, 0x1008, addr)

	// Forward-only entries don't count on a backward walk.
	addr, ok = table.Temporary(0x100a, -2)
	require.True(t, ok)
	assert.Equal(t, 0x1000, addr)

	_, ok = table.Temporary(0x100a, -3)
	assert.False(t, ok)
}

func TestTemporaryBidirectional(t *testing.T) {
	table := tempTable(
		temporary{LabelTemporary, 0x1000},
		temporary{LabelTemporary, 0x1008},
	)

	addr, ok := table.Temporary(0x1004, 1)
	require.True(t, ok)
	assert.Equal(t, 0x1008, addr)

	addr, ok = table.Temporary(0x1004, -1)
	require.True(t, ok)
	assert.Equal(t, 0x1000, addr)
}

func TestTemporaryZeroDelta(t *testing.T) {
	table := tempTable(temporary{LabelTemporary, 0x1000})
	_, ok := table.Temporary(0x1000, 0)
	assert.False(t, ok)
}

func TestTemporaryEmptyTable(t *testing.T) {
	table := NewSymbolTable()
	_, ok := table.Temporary(0x1000, 1)
	assert.False(t, ok)
	_, ok = table.Temporary(0x1000, -1)
	assert.False(t, ok)
}

func TestTemporaryOrderedInsert(t *testing.T) {
	table := tempTable(
		temporary{LabelTemporary, 0x1008},
		temporary{LabelTemporary, 0x1000},
		temporary{LabelTemporary, 0x1004},
	)
	assert.Equal(t, []temporary{
		{LabelTemporary, 0x1000},
		{LabelTemporary, 0x1004},
		{LabelTemporary, 0x1008},
	}, table.temps)
}
