package asm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// A SourcePos identifies a location within the assembly source. Positions
// order by (file, line, column) so diagnostics can be sorted.
type SourcePos struct {
	FileIndex int
	Line      int
	Column    int
}

// invalidPos marks a diagnostic with no source location.
var invalidPos = SourcePos{FileIndex: -1}

func (p SourcePos) IsValid() bool {
	return p.FileIndex >= 0 && p.Line > 0
}

// Before reports whether p precedes o in source order.
func (p SourcePos) Before(o SourcePos) bool {
	if p.FileIndex != o.FileIndex {
		return p.FileIndex < o.FileIndex
	}
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// A Line is one logical line of source text. Lines are created by the
// SourceStream and live until the end of the compilation.
type Line struct {
	FileIndex int
	Number    int
	Text      string
}

type fileInfo struct {
	path  string // normalized path as opened
	short string // base name, used in listings and messages
}

type sourceFrame struct {
	fileIndex  int
	file       io.Closer
	scanner    *bufio.Scanner
	lineNumber int
}

// A SourceStream lazily produces logical lines from a stack of open source
// files. Including a file pushes a new frame; reaching end of file pops it.
// A file may be included only once per compilation.
type SourceStream struct {
	files  []fileInfo
	frames []*sourceFrame
	seen   map[string]bool
	lines  []*Line
	byPos  map[lineKey]*Line
}

type lineKey struct {
	fileIndex int
	number    int
}

func NewSourceStream() *SourceStream {
	return &SourceStream{
		seen:  make(map[string]bool),
		byPos: make(map[lineKey]*Line),
	}
}

// LineText returns the text of the line a position refers to, if that
// line has been read.
func (s *SourceStream) LineText(pos SourcePos) (string, bool) {
	line, ok := s.byPos[lineKey{fileIndex: pos.FileIndex, number: pos.Line}]
	if !ok {
		return "", false
	}
	return line.Text, true
}

// Filename returns the full path of the file with the given index.
func (s *SourceStream) Filename(fileIndex int) string {
	if fileIndex < 0 || fileIndex >= len(s.files) {
		return ""
	}
	return s.files[fileIndex].path
}

// ShortFilename returns the base name of the file with the given index.
func (s *SourceStream) ShortFilename(fileIndex int) string {
	if fileIndex < 0 || fileIndex >= len(s.files) {
		return ""
	}
	return s.files[fileIndex].short
}

// IncludeFile opens a source file and pushes it onto the stream. The path
// is normalized before the duplicate-inclusion check.
func (s *SourceStream) IncludeFile(path string) error {
	norm := filepath.Clean(path)
	if s.seen[norm] {
		return fmt.Errorf("duplicate include of '%s'", norm)
	}

	file, err := os.Open(norm)
	if err != nil {
		return &SystemError{Path: norm, Err: err}
	}
	s.seen[norm] = true
	s.push(norm, file, file)
	return nil
}

// IncludeReader pushes an in-memory source onto the stream under the given
// name. Used by tests and by callers assembling generated text.
func (s *SourceStream) IncludeReader(name string, r io.Reader) {
	s.push(name, io.NopCloser(r), r)
}

func (s *SourceStream) push(path string, closer io.Closer, r io.Reader) {
	fileIndex := len(s.files)
	s.files = append(s.files, fileInfo{path: path, short: filepath.Base(path)})
	s.frames = append(s.frames, &sourceFrame{
		fileIndex: fileIndex,
		file:      closer,
		scanner:   bufio.NewScanner(r),
	})
}

// NextLine returns the next logical line from the topmost open file, popping
// exhausted files as needed. It returns nil when all input is consumed.
func (s *SourceStream) NextLine() (*Line, error) {
	for len(s.frames) > 0 {
		frame := s.frames[len(s.frames)-1]
		if frame.scanner.Scan() {
			frame.lineNumber++
			line := &Line{
				FileIndex: frame.fileIndex,
				Number:    frame.lineNumber,
				Text:      frame.scanner.Text(),
			}
			s.lines = append(s.lines, line)
			s.byPos[lineKey{fileIndex: line.FileIndex, number: line.Number}] = line
			return line, nil
		}

		err := frame.scanner.Err()
		path := s.files[frame.fileIndex].path
		frame.file.Close()
		s.frames = s.frames[:len(s.frames)-1]
		if err != nil {
			return nil, &SystemError{Path: path, Err: err}
		}
	}
	return nil, nil
}

// Close releases any files still open on the stack.
func (s *SourceStream) Close() {
	for _, frame := range s.frames {
		frame.file.Close()
	}
	s.frames = nil
}
