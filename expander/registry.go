package expander

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jhump/docfile/diag"
	"github.com/jhump/docfile/parser"
)

// ExpandFunc is invoked for each occurrence of a registered annotation. It
// has the same contract as Expander.Expand.
type ExpandFunc func(item Item, anno parser.Annotation, loc diag.Span, rep diag.Reporter) Item

// Registry maps annotation names to the functions that expand them. It is
// safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]ExpandFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: map[string]ExpandFunc{}}
}

// Register associates fn with the annotation name. Registering the same name
// twice replaces the earlier function.
func (r *Registry) Register(name string, fn ExpandFunc) {
	if fn == nil {
		panic(fmt.Sprintf("nil expand func registered for %q", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the function registered for name.
func (r *Registry) Lookup(name string) (ExpandFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered annotation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegisterShape registers an Expander of the given shape under name.
func (r *Registry) RegisterShape(name string, shape ShapeKind, docName string, logger *slog.Logger) {
	e := &Expander{Shape: shape, DocName: docName, Logger: logger}
	r.Register(name, e.Expand)
}

// DefaultRegistry returns a registry with the conventional names: "doc" for
// the list shape and "doc_file" for the direct shape.
func DefaultRegistry(docName string, logger *slog.Logger) *Registry {
	r := NewRegistry()
	r.RegisterShape(DefaultListName, ShapeList, docName, logger)
	r.RegisterShape(DefaultDirectName, ShapeDirect, docName, logger)
	return r
}
