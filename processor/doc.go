// Package processor finds file-reference annotations in Go source, expands
// them, and hands the results to processors that write them somewhere
// useful.
//
// A run is described by a processor.Config: the packages to examine (loaded
// with Load or parsed with ParseDir), the expander.Registry that maps
// annotation names to expand functions, and the processors to invoke. Its
// Execute method does the work in two phases.
//
// # Expansion
//
// Every file of every package is examined, files in parallel. Annotations are
// read from the doc comments of the package clause, top-level types,
// functions, methods, variables and constants, as well as the fields of
// top-level struct types and the methods of top-level interfaces. The
// annotations in a doc comment start at the first line that begins with '@'
// and end at the next blank line or directive, such as //go:generate:
//
//	// Widget is a thing.
//	//
//	// @doc(file = "docs/widget.md")
//	type Widget struct{}
//
// In a grouped declaration, such as "var ( ... )", each spec must carry its
// own annotations. The declaration's doc comment is only used when it has a
// single spec.
//
// Each annotation whose name is registered is passed to its expand function,
// which may append a documentation annotation to the element. Problems, such
// as malformed annotation text or unreadable documentation files, are
// reported as diagnostics and never stop the run. Registered annotations in
// comments that are not examined, like comments inside function bodies, are
// reported as warnings.
//
// # Processors
//
// Once a package has been expanded, each configured Processor is invoked
// with a processor.Context for that package. The Context provides access to
// all annotated elements. Two processors are included: RewriteSources splices
// the documentation text into doc comments, so that godoc and IDEs show it,
// and GenerateRuntimeDocs generates code that registers the text with the
// docfile package, so that programs can query it at runtime. Both are
// registered by name, along with any added with RegisterProcessor, so that
// commands can select processors with LookupProcessor.
//
// Processors write through an OutputFactory, which decides where outputs go.
// DefaultOutputFactory writes next to the sources or under an output
// directory; WriterOutputFactory writes everything to a single io.Writer.
package processor
