package diag

import "fmt"

// Note is supplementary information attached to a diagnostic. Its span may be
// invalid when the note is not about a particular location.
type Note struct {
	Span Span
	Msg  string
}

// Diagnostic is a single report, anchored at a primary span.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Span
	Notes    []Note
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s[%s]: %s", d.Primary, d.Severity, d.Code, d.Message)
}
