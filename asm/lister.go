package asm

import (
	"fmt"
	"io"
)

// WriteListing writes the assembly listing: one line per three-byte slice
// of each statement, with the program counter, the emitted bytes, and the
// source text on the first slice. The location column is padded to the
// widest filename.
func WriteListing(w io.Writer, context *Context) {
	statements := context.Statements.Statements()

	width := 0
	for _, s := range statements {
		loc := listingLocation(context, s)
		if len(loc) > width {
			width = len(loc)
		}
	}

	for _, s := range statements {
		loc := listingLocation(context, s)
		rng := s.Range()

		fmt.Fprintf(w, "%-*s [+%04x] %04x: %-8s    %s\n",
			width, loc, rng.Start, s.PC()&0xffff, sliceHex(rng, 0), s.SourceText())

		for offset := 3; offset < rng.Length(); offset += 3 {
			fmt.Fprintf(w, "%-*s [+%04x] %04x: %-8s\n",
				width, loc, rng.Start+offset, s.PC()&0xffff, sliceHex(rng, offset))
		}
	}
}

func listingLocation(context *Context, s Statement) string {
	pos := s.Pos()
	return fmt.Sprintf("%s:%d", context.Source.ShortFilename(pos.FileIndex), pos.Line)
}

// sliceHex renders up to three bytes of a range starting at offset.
func sliceHex(rng CodeRange, offset int) string {
	count := rng.Length() - offset
	if count > 3 {
		count = 3
	}
	switch count {
	case 1:
		return fmt.Sprintf("%02x", rng.At(offset))
	case 2:
		return fmt.Sprintf("%02x %02x", rng.At(offset), rng.At(offset+1))
	case 3:
		return fmt.Sprintf("%02x %02x %02x", rng.At(offset), rng.At(offset+1), rng.At(offset+2))
	default:
		return ""
	}
}
