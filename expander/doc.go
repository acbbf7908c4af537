// Package expander turns file-reference annotations into documentation
// annotations.
//
// Two annotation shapes are recognized. The list shape names the file with a
// "file" entry:
//
//	// @doc(file = "docs/widget.md")
//	type Widget struct{}
//
// The direct shape uses the annotation value itself:
//
//	// @doc_file = "docs/widget.md"
//	func NewWidget() *Widget
//
// Paths are resolved against the directory of the source file that declares
// the item. The referenced file is read once and its verbatim contents become
// the value of a canonical documentation annotation (@doc = "...") appended
// to the item's annotations. Existing annotations are never removed.
//
// Expansion never fails outright. When an annotation is malformed or its file
// cannot be read, the item is returned unchanged and exactly one diagnostic
// is reported. A list-shape annotation without a "file" entry is not an
// error; the item is simply left as is.
//
// Expanders hold no state between calls, so items may be expanded
// concurrently as long as the diag.Reporter they share is safe for concurrent
// use.
package expander
