package asm

import (
	"fmt"
	"sort"
)

// A Severity ranks a diagnostic. Higher severities sort first.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// A Message is one diagnostic produced during assembly.
type Message struct {
	Severity Severity
	Pos      SourcePos
	Summary  string
}

// messageLess orders messages by descending severity, then source position.
func messageLess(a, b Message) bool {
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	return a.Pos.Before(b.Pos)
}

// A MessageList collects diagnostics sorted by severity and position.
type MessageList struct {
	messages     []Message
	errorCount   int
	warningCount int
	fatal        bool
}

func (l *MessageList) Count() int {
	return len(l.messages)
}

func (l *MessageList) ErrorCount() int {
	return l.errorCount
}

func (l *MessageList) WarningCount() int {
	return l.warningCount
}

func (l *MessageList) HasFatalError() bool {
	return l.fatal
}

func (l *MessageList) Messages() []Message {
	return l.messages
}

// Add records a diagnostic, keeping the list sorted.
func (l *MessageList) Add(severity Severity, pos SourcePos, summary string, fatal bool) {
	message := Message{Severity: severity, Pos: pos, Summary: summary}
	i := sort.Search(len(l.messages), func(i int) bool { return messageLess(message, l.messages[i]) })
	l.messages = append(l.messages, Message{})
	copy(l.messages[i+1:], l.messages[i:])
	l.messages[i] = message

	if severity == SeverityError {
		l.errorCount++
	} else {
		l.warningCount++
	}
	if fatal {
		l.fatal = true
	}
}

// Error records a non-fatal error diagnostic.
func (l *MessageList) Error(pos SourcePos, format string, args ...any) {
	l.Add(SeverityError, pos, fmt.Sprintf(format, args...), false)
}

// Warning records a warning diagnostic.
func (l *MessageList) Warning(pos SourcePos, format string, args ...any) {
	l.Add(SeverityWarning, pos, fmt.Sprintf(format, args...), false)
}

// AddError records an error value, honoring SourceError positions and
// fatality. Non-source errors are attached without a position.
func (l *MessageList) AddError(err error) {
	switch e := err.(type) {
	case *SourceError:
		l.Add(SeverityError, e.Pos, e.Message, e.Fatal)
	default:
		l.Add(SeverityError, invalidPos, err.Error(), false)
	}
}
