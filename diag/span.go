package diag

import (
	"fmt"
	"go/token"
)

// Span is a range of source text. Start is inclusive and End is exclusive.
// Columns are byte-based, as in go/token.
type Span struct {
	Start token.Position
	End   token.Position
}

// SpanOf returns the span between the two given positions.
func SpanOf(start, end token.Position) Span {
	return Span{Start: start, End: end}
}

// At returns an empty span at the given position.
func At(pos token.Position) Span {
	return Span{Start: pos, End: pos}
}

// Filename returns the name of the file that contains the span.
func (s Span) Filename() string {
	return s.Start.Filename
}

// IsValid reports whether the span refers to an actual source location.
func (s Span) IsValid() bool {
	return s.Start.IsValid()
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	if s.Start.Filename != other.Start.Filename {
		return false
	}
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

func (s Span) String() string {
	if !s.IsValid() {
		return "-"
	}
	if s.End.Line == s.Start.Line && s.End.Column > s.Start.Column {
		return fmt.Sprintf("%s-%d", s.Start, s.End.Column)
	}
	return s.Start.String()
}
