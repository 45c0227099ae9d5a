package pretty

import (
	"fmt"
	"strings"

	"github.com/retrolabs/as64/asm"
)

// FormatMessage formats a single diagnostic for terminal output, with a
// two-line source context pointing a caret at the offending column.
func (s *Styles) FormatMessage(msg asm.Message, location, sourceLine string, showContext bool) string {
	var builder strings.Builder

	severity := s.FormatSeverity(msg.Severity)

	if location != "" {
		builder.WriteString(fmt.Sprintf("%s: %s: %s\n",
			s.FilePath.Render(location),
			severity,
			s.Message.Render(msg.Summary),
		))
	} else {
		builder.WriteString(fmt.Sprintf("%s: %s\n", severity, s.Message.Render(msg.Summary)))
	}

	if showContext && sourceLine != "" {
		builder.WriteString("  " + s.SourceLine.Render(sourceLine) + "\n")
		builder.WriteString("  " + strings.Repeat(" ", msg.Pos.Column) + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev asm.Severity) string {
	switch sev {
	case asm.SeverityError:
		return s.Error.Render("error")
	default:
		return s.Warning.Render("warning")
	}
}

// FormatSummary renders the closing error/warning tally.
func (s *Styles) FormatSummary(errors, warnings int) string {
	if errors == 0 && warnings == 0 {
		return s.Success.Render("assembly succeeded")
	}
	tally := fmt.Sprintf("%d error(s), %d warning(s)", errors, warnings)
	if errors > 0 {
		return s.Failure.Render(tally)
	}
	return s.Warning.Render(tally)
}
