package diag

// Code identifies the category of a diagnostic. Codes are stable and may be
// used by tooling to filter output.
type Code string

const (
	// UnknownCode is used when no better category applies.
	UnknownCode Code = "unknown"

	// AnnotationSyntax indicates annotation text in a doc comment that could
	// not be parsed.
	AnnotationSyntax Code = "annotation-syntax"
	// AnnotationMisplaced indicates a recognized annotation in a comment that
	// does not document an item that can carry annotations.
	AnnotationMisplaced Code = "annotation-misplaced"

	// DocFileSyntax indicates a file-reference annotation whose path is not
	// a string literal.
	DocFileSyntax Code = "docfile-syntax"
	// DocFilePath indicates a path literal that cannot name a file.
	DocFilePath Code = "docfile-path"
	// DocFileIO indicates a documentation file that could not be read.
	DocFileIO Code = "docfile-io"

	// RewriteSkipped indicates expanded documentation that could not be
	// written back into source.
	RewriteSkipped Code = "rewrite-skipped"

	// LoadError indicates a package or source file that could not be loaded.
	LoadError Code = "load-error"
)

func (c Code) String() string {
	if c == "" {
		return string(UnknownCode)
	}
	return string(c)
}
