// Package docfile provides runtime access to documentation that was written
// in separate files and pulled into Go source by the docfile tool.
//
// Authors keep long-form documentation next to their code, for example in
// markdown files, and reference it from doc comments:
//
//	// Widget is a thing.
//	//
//	// @doc(file = "docs/widget.md")
//	type Widget struct{}
//
// The docfile tool (see cmd/docfile) expands these references. It can rewrite
// the doc comment in place so that godoc shows the file's text, and it can
// generate a <package>.docs.go file whose init function registers the text
// with this package. Programs can then query it:
//
//	text, ok := docfile.TypeDoc(reflect.TypeOf(Widget{}))
//
// Registration functions are meant to be called from generated code during
// package initialization. Registering documentation for the same element
// more than once appends a new paragraph to what was already registered.
//
// Queries are safe for concurrent use, including while registration is still
// in progress in other goroutines.
package docfile
