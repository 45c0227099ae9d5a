package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retrolabs/as64/asm"
	"github.com/retrolabs/as64/internal/ui/pretty"
)

func TestFormatMessageWithContext(t *testing.T) {
	styles := pretty.NewStyles(false)

	msg := asm.Message{
		Severity: asm.SeverityError,
		Pos:      asm.SourcePos{FileIndex: 0, Line: 3, Column: 4},
		Summary:  "Undefined symbol 'foo'",
	}

	out := styles.FormatMessage(msg, "main.asm:3:5", "lda foo", true)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "main.asm:3:5: error: Undefined symbol 'foo'", lines[0])
	assert.Equal(t, "  lda foo", lines[1])
	assert.Equal(t, "      ^", lines[2])
}

func TestFormatMessageWithoutLocation(t *testing.T) {
	styles := pretty.NewStyles(false)

	msg := asm.Message{Severity: asm.SeverityWarning, Summary: "Ignored unsupported statement"}
	out := styles.FormatMessage(msg, "", "", false)
	assert.Equal(t, "warning: Ignored unsupported statement\n", out)
}

func TestFormatSummary(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "assembly succeeded", styles.FormatSummary(0, 0))
	assert.Contains(t, styles.FormatSummary(2, 1), "2 error(s)")
	assert.Contains(t, styles.FormatSummary(0, 3), "3 warning(s)")
}

func TestIsColorEnabled(t *testing.T) {
	assert.True(t, pretty.IsColorEnabled("always", nil))
	assert.False(t, pretty.IsColorEnabled("never", nil))
	assert.False(t, pretty.IsColorEnabled("auto", &strings.Builder{}))
}
