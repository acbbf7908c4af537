package processor

import (
	"go/ast"

	"github.com/jhump/docfile"
	"github.com/jhump/docfile/expander"
	"github.com/jhump/docfile/parser"
)

// Element is a program element whose doc comment contains annotations. The
// embedded Item holds the element's annotations: those parsed from source
// followed by any documentation annotations that expansion produced.
type Element struct {
	expander.Item

	// File is the file in which the element is declared.
	File *File
	// Ident is the element's name in the AST. For packages, it is the name
	// in the package clause.
	Ident *ast.Ident
	// Doc is the comment group that holds the element's annotations.
	Doc *ast.CommentGroup
	// Owner is the name of the type that declares the element, for fields,
	// methods, and interface methods. It is empty otherwise.
	Owner string
	// Generic is true if the element is, or belongs to, a generic type or
	// function.
	Generic bool
	// Alias is true for type aliases, such as "type A = B".
	Alias bool

	text   *annotationText
	parsed int
}

// IsElementType returns true if this element is of the given type.
func (e *Element) IsElementType(et docfile.ElementType) bool {
	return e.Kind == et
}

// SourceAnnotations returns the annotations that were written in source.
func (e *Element) SourceAnnotations() []parser.Annotation {
	return e.Annotations[:e.parsed]
}

// Expansions returns the documentation annotations produced by expansion,
// in the order in which their file-reference annotations appear.
func (e *Element) Expansions() []parser.Annotation {
	return e.Annotations[e.parsed:]
}

// DocTexts returns the string values of the element's expansions.
func (e *Element) DocTexts() []string {
	var texts []string
	for _, a := range e.Expansions() {
		if s, ok := a.StringValue(); ok {
			texts = append(texts, s)
		}
	}
	return texts
}
