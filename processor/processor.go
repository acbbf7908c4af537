package processor

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jhump/docfile"
	"github.com/jhump/docfile/diag"
	"github.com/jhump/docfile/expander"
	"github.com/jhump/docfile/parser"
)

// ErrorWithPosition is an error that has source position information associated
// with it. The position indicates the location in a source file where the error
// was encountered.
type ErrorWithPosition struct {
	err error
	pos token.Position
}

// Error implements the error interface. It includes position information in the
// returned message.
func (e *ErrorWithPosition) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.pos.Filename, e.pos.Line, e.pos.Column, e.err.Error())
}

// Underlying returns the underlying error.
func (e *ErrorWithPosition) Underlying() error {
	return e.err
}

func (e *ErrorWithPosition) Unwrap() error {
	return e.err
}

// Pos returns the location in source where the underlying error was
// encountered.
func (e *ErrorWithPosition) Pos() token.Position {
	return e.pos
}

// NewErrorWithPosition returns the given error, but associates it with the
// given source code location.
func NewErrorWithPosition(pos token.Position, err error) *ErrorWithPosition {
	return &ErrorWithPosition{err: err, pos: pos}
}

// Processor is a function that acts on expanded documentation. It is invoked
// once per package, after all annotations in the package have been expanded.
// RewriteSources and GenerateRuntimeDocs are the processors provided by this
// package.
//
// A processor should report problems with individual elements to
// ctx.Reporter. A returned error aborts the whole run.
type Processor func(ctx *Context, output OutputFactory) error

// Process loads the packages that match the given patterns, expands their
// annotations with the default registry, and invokes the given processors.
// If the given outputDir is blank, outputs are written next to the sources.
func Process(ctx context.Context, patterns []string, includeTests bool, outputDir string, procs ...Processor) (*Result, error) {
	cfg := Config{
		Patterns:      patterns,
		Load:          LoadConfig{Tests: includeTests},
		Processors:    procs,
		OutputFactory: DefaultOutputFactory(outputDir),
	}
	return cfg.Execute(ctx)
}

// Config represents the configuration for a run. Callers should configure the
// exported fields and then call the Execute method.
type Config struct {
	// Packages to process. If nil, packages are loaded from Patterns.
	Packages []*Package
	// Patterns are package patterns, such as "./...", used with Load.
	Patterns []string
	Load     LoadConfig
	// Registry maps annotation names to expand functions. If nil,
	// expander.DefaultRegistry is used.
	Registry      *expander.Registry
	Processors    []Processor
	OutputFactory OutputFactory
	// Jobs bounds how many files are processed concurrently. If zero or
	// negative, GOMAXPROCS is used.
	Jobs int
	// MaxDiagnostics bounds how many diagnostics are kept. If zero or
	// negative, there is no bound.
	MaxDiagnostics int
	// Logger receives debug output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Result is the outcome of a run.
type Result struct {
	// Contexts has one entry per processed package.
	Contexts []*Context
	// Diagnostics holds every problem found, sorted by position.
	Diagnostics *diag.Bag
}

// NumExpanded returns the number of documentation annotations produced
// across all packages.
func (r *Result) NumExpanded() int {
	n := 0
	for _, c := range r.Contexts {
		for _, el := range c.allElements {
			n += len(el.Expansions())
		}
	}
	return n
}

// Execute expands annotations in the configured packages and then invokes the
// configured processors, one package at a time.
//
// Problems with annotations do not cause Execute to fail: they are recorded
// in the result's diagnostics and the offending elements are left as they
// were. Execute returns an error if packages cannot be loaded, if ctx is
// cancelled, or if a processor fails.
func (cfg *Config) Execute(ctx context.Context) (*Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bag := diag.NewBag(cfg.MaxDiagnostics)

	pkgs := cfg.Packages
	if pkgs == nil {
		lc := cfg.Load
		if lc.Reporter == nil {
			lc.Reporter = bag
		}
		if lc.Logger == nil {
			lc.Logger = logger
		}
		var err error
		pkgs, err = Load(ctx, lc, cfg.Patterns...)
		if err != nil {
			return nil, err
		}
	}

	registry := cfg.Registry
	if registry == nil {
		registry = expander.DefaultRegistry("", logger)
	}
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	res := &Result{Diagnostics: bag}
	for _, pkg := range pkgs {
		c := newContext(pkg, registry, bag, logger)
		if err := c.computeAllAnnotations(ctx, jobs); err != nil {
			return nil, err
		}
		res.Contexts = append(res.Contexts, c)
	}
	for _, c := range res.Contexts {
		for _, proc := range cfg.Processors {
			if err := proc(c, cfg.OutputFactory); err != nil {
				return nil, err
			}
		}
	}
	bag.Sort()
	return res, nil
}

// Context represents the environment for a processor. It represents a single
// package and provides access to all annotated elements found in it.
type Context struct {
	Package  *Package
	Registry *expander.Registry
	// Reporter receives diagnostics. It is safe for concurrent use.
	Reporter diag.Reporter
	Logger   *slog.Logger

	allElements []*Element
	byType      map[docfile.ElementType][]*Element
}

func newContext(pkg *Package, registry *expander.Registry, rep diag.Reporter, logger *slog.Logger) *Context {
	return &Context{
		Package:  pkg,
		Registry: registry,
		Reporter: rep,
		Logger:   logger,
		byType:   map[docfile.ElementType][]*Element{},
	}
}

// NumElements returns the number of annotated elements in the package.
func (c *Context) NumElements() int {
	return len(c.allElements)
}

// GetElement returns the element at the given index. The given index must be
// greater than or equal to zero and less than c.NumElements().
func (c *Context) GetElement(index int) *Element {
	return c.allElements[index]
}

// ElementsOfType returns the annotated elements of the given type.
func (c *Context) ElementsOfType(t docfile.ElementType) []*Element {
	return c.byType[t]
}

// ExpandedElements returns the elements that gained at least one
// documentation annotation, in source order.
func (c *Context) ExpandedElements() []*Element {
	var els []*Element
	for _, el := range c.allElements {
		if len(el.Expansions()) > 0 {
			els = append(els, el)
		}
	}
	return els
}

func (c *Context) computeAllAnnotations(ctx context.Context, jobs int) error {
	files := c.Package.Files
	if len(files) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for _, f := range files {
		f := f
		// each file is only touched by its own goroutine
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fs := fileScope{c: c, file: f, processed: map[*ast.CommentGroup]struct{}{}}
			fs.computeAnnotationsFromFile()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, f := range files {
		for _, el := range f.Elements {
			c.allElements = append(c.allElements, el)
			c.byType[el.Kind] = append(c.byType[el.Kind], el)
		}
	}
	c.Logger.Debug("expanded package", "package", c.Package.ID, "elements", len(c.allElements))
	return nil
}

// fileScope holds the state for examining one file.
type fileScope struct {
	c         *Context
	file      *File
	processed map[*ast.CommentGroup]struct{}
}

func (fs *fileScope) fset() *token.FileSet {
	return fs.c.Package.Fset
}

func (fs *fileScope) computeAnnotationsFromFile() {
	file := fs.file.AST
	fs.newElement(docfile.Packages, file.Name, file.Name.Name, "", file.Doc, file, false)

	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			for _, s := range decl.Specs {
				doc := specDoc(decl, s)
				switch spec := s.(type) {
				case *ast.ValueSpec:
					et := docfile.Variables
					if decl.Tok == token.CONST {
						et = docfile.Constants
					}
					for _, id := range spec.Names {
						fs.newElement(et, id, id.Name, "", doc, spec, false)
					}
				case *ast.TypeSpec:
					fs.computeAnnotationsFromType(spec, doc)
				}
			}
		case *ast.FuncDecl:
			if decl.Recv == nil || len(decl.Recv.List) == 0 {
				generic := decl.Type.TypeParams != nil && len(decl.Type.TypeParams.List) > 0
				fs.newElement(docfile.Functions, decl.Name, decl.Name.Name, "", decl.Doc, decl, generic)
				continue
			}
			recv, generic := receiverTypeName(decl.Recv.List[0].Type)
			fs.newElement(docfile.Methods, decl.Name, recv+"."+decl.Name.Name, recv, decl.Doc, decl, generic)
		}
	}

	fs.checkMisplaced()
}

// specDoc returns the doc comment for a spec. The declaration's doc is only
// used when the declaration has a single spec, as in "type Foo struct{}"; in
// a grouped declaration it documents the group, not any one spec.
func specDoc(decl *ast.GenDecl, s ast.Spec) *ast.CommentGroup {
	var doc *ast.CommentGroup
	switch spec := s.(type) {
	case *ast.ValueSpec:
		doc = spec.Doc
	case *ast.TypeSpec:
		doc = spec.Doc
	}
	if (doc == nil || len(doc.List) == 0) && len(decl.Specs) == 1 {
		doc = decl.Doc
	}
	return doc
}

func (fs *fileScope) computeAnnotationsFromType(spec *ast.TypeSpec, doc *ast.CommentGroup) {
	name := spec.Name.Name
	generic := spec.TypeParams != nil && len(spec.TypeParams.List) > 0
	if el := fs.newElement(docfile.Types, spec.Name, name, "", doc, spec, generic); el != nil {
		el.Alias = spec.Assign.IsValid()
	}

	switch t := spec.Type.(type) {
	case *ast.InterfaceType:
		if t.Methods == nil {
			return
		}
		for _, method := range t.Methods.List {
			// embedded interfaces and type constraints have no names
			for _, n := range method.Names {
				fs.newElement(docfile.InterfaceMethods, n, name+"."+n.Name, name, method.Doc, method, generic)
			}
		}
	case *ast.StructType:
		if t.Fields == nil {
			return
		}
		for _, fld := range t.Fields.List {
			names := fld.Names
			if names == nil {
				// anonymous/embedded field
				if id := embeddedFieldName(fld.Type); id != nil {
					names = []*ast.Ident{id}
				}
			}
			for _, n := range names {
				fs.newElement(docfile.Fields, n, name+"."+n.Name, name, fld.Doc, fld, generic)
			}
		}
	}
}

func embeddedFieldName(expr ast.Expr) *ast.Ident {
	switch e := expr.(type) {
	case *ast.Ident:
		return e
	case *ast.StarExpr:
		return embeddedFieldName(e.X)
	case *ast.SelectorExpr:
		return e.Sel
	case *ast.IndexExpr:
		return embeddedFieldName(e.X)
	case *ast.IndexListExpr:
		return embeddedFieldName(e.X)
	default:
		return nil
	}
}

// receiverTypeName returns the name of a method receiver's base type and
// whether that type is generic.
func receiverTypeName(expr ast.Expr) (string, bool) {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name, false
	case *ast.StarExpr:
		return receiverTypeName(e.X)
	case *ast.ParenExpr:
		return receiverTypeName(e.X)
	case *ast.IndexExpr:
		name, _ := receiverTypeName(e.X)
		return name, true
	case *ast.IndexListExpr:
		name, _ := receiverTypeName(e.X)
		return name, true
	default:
		return "", false
	}
}

// newElement parses the annotations in doc and, if there are any, records an
// element for them and expands every annotation that has a registered expand
// function. It returns nil if no element was recorded.
func (fs *fileScope) newElement(et docfile.ElementType, id *ast.Ident, name, owner string, doc *ast.CommentGroup, node ast.Node, generic bool) *Element {
	if doc == nil {
		return nil
	}
	fs.processed[doc] = struct{}{}
	text := extractAnnotations(fs.fset(), doc)
	if text == nil {
		return nil
	}
	annos, perr := parser.ParseAnnotations("", text.buf)
	if perr != nil {
		pos := text.adjuster.adjustPosition(perr.Pos())
		diag.ReportError(fs.c.Reporter, diag.AnnotationSyntax, diag.At(pos),
			fmt.Sprintf("malformed annotation on %s: %v", name, perr.Underlying())).Emit()
		return nil
	}
	for i := range annos {
		annos[i].Remap(text.adjuster.adjustPosition)
	}

	el := &Element{
		Item: expander.Item{
			Name:        name,
			Kind:        et,
			Span:        diag.SpanOf(fs.fset().Position(node.Pos()), fs.fset().Position(node.End())),
			Annotations: annos,
		},
		File:    fs.file,
		Ident:   id,
		Doc:     doc,
		Owner:   owner,
		Generic: generic,
		text:    text,
		parsed:  len(annos),
	}
	for _, a := range annos {
		fn, ok := fs.c.Registry.Lookup(a.Name.String())
		if !ok {
			continue
		}
		el.Item = fn(el.Item, a, diag.SpanOf(a.At, a.End()), fs.c.Reporter)
	}
	fs.c.Logger.Debug("found annotated element", "element", name, "kind", et.String(),
		"annotations", el.parsed, "expansions", len(el.Expansions()))
	fs.file.Elements = append(fs.file.Elements, el)
	return el
}

// checkMisplaced warns about registered annotations in comments that are not
// examined, such as comments inside function bodies or on grouped
// declarations.
func (fs *fileScope) checkMisplaced() {
	grouped := map[*ast.CommentGroup]struct{}{}
	for _, decl := range fs.file.AST.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Doc != nil && len(gd.Specs) != 1 {
			grouped[gd.Doc] = struct{}{}
		}
	}
	for _, cg := range fs.file.AST.Comments {
		if _, ok := fs.processed[cg]; ok {
			continue
		}
		if _, ok := hasAnnotationLine(cg); !ok {
			continue
		}
		text := extractAnnotations(fs.fset(), cg)
		if text == nil {
			continue
		}
		annos, perr := parser.ParseAnnotations("", text.buf)
		if perr != nil {
			// not annotation syntax, just prose
			continue
		}
		_, isGroup := grouped[cg]
		for _, a := range annos {
			if _, ok := fs.c.Registry.Lookup(a.Name.String()); !ok {
				continue
			}
			a.Remap(text.adjuster.adjustPosition)
			msg := fmt.Sprintf("annotation @%s is ignored: it is not in the doc comment of a package, declaration, field, or interface method", a.Name)
			if isGroup {
				msg = fmt.Sprintf("annotation @%s is ignored: it documents a grouped declaration; annotate the individual specs instead", a.Name)
			}
			diag.ReportWarning(fs.c.Reporter, diag.AnnotationMisplaced, diag.SpanOf(a.At, a.End()), msg).Emit()
		}
	}
}

// OutputFactory is a function that creates a writer for an output file with
// the given name, for the given package. Output factories typically use
// os.OpenFile to create files but this function allows the behavior to be
// customized.
type OutputFactory func(pkg *Package, name string) (io.WriteCloser, error)
