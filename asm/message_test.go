package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageOrdering(t *testing.T) {
	list := &MessageList{}

	list.Warning(SourcePos{FileIndex: 0, Line: 1}, "early warning")
	list.Error(SourcePos{FileIndex: 0, Line: 9}, "late error")
	list.Error(SourcePos{FileIndex: 0, Line: 3}, "early error")
	list.Warning(SourcePos{FileIndex: 0, Line: 7}, "late warning")

	messages := list.Messages()
	require.Len(t, messages, 4)

	// Errors first, each group in source order.
	assert.Equal(t, "early error", messages[0].Summary)
	assert.Equal(t, "late error", messages[1].Summary)
	assert.Equal(t, "early warning", messages[2].Summary)
	assert.Equal(t, "late warning", messages[3].Summary)

	assert.Equal(t, 2, list.ErrorCount())
	assert.Equal(t, 2, list.WarningCount())
	assert.False(t, list.HasFatalError())
}

func TestMessageFatal(t *testing.T) {
	list := &MessageList{}
	list.Add(SeverityError, SourcePos{FileIndex: 0, Line: 1}, "16-bit address overflow", true)
	assert.True(t, list.HasFatalError())
	assert.Equal(t, 1, list.ErrorCount())
}

func TestMessageAddError(t *testing.T) {
	list := &MessageList{}
	list.AddError(sourceError(SourcePos{FileIndex: 0, Line: 2, Column: 4}, "Unexpected character ('%c')", '?'))

	messages := list.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Unexpected character ('?')", messages[0].Summary)
	assert.Equal(t, 2, messages[0].Pos.Line)
	assert.Equal(t, 4, messages[0].Pos.Column)
}

func TestSourcePosOrdering(t *testing.T) {
	a := SourcePos{FileIndex: 0, Line: 1, Column: 0}
	b := SourcePos{FileIndex: 0, Line: 1, Column: 5}
	c := SourcePos{FileIndex: 0, Line: 2, Column: 0}
	d := SourcePos{FileIndex: 1, Line: 1, Column: 0}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.True(t, c.Before(d))
	assert.False(t, d.Before(a))
}
