package processor

import (
	"context"
	"crypto/sha256"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/tools/go/packages"

	"github.com/jhump/docfile/diag"
)

// Package is a Go package whose files are examined for annotations.
type Package struct {
	// ID is the package's unique identifier, as reported by the build
	// system. For test variants, this differs from PkgPath.
	ID      string
	Name    string
	PkgPath string
	// Dir is the directory that contains the package's sources.
	Dir   string
	Fset  *token.FileSet
	Files []*File
}

// File is a single source file of a package.
type File struct {
	// Name is the absolute path to the file.
	Name string
	AST  *ast.File
	// Elements are the annotated elements found in the file, in source
	// order. They are computed by Config.Execute.
	Elements []*Element
	// Hash is the SHA-256 of the content that was parsed. It is zero if
	// unknown, in which case only the file size is checked before rewriting.
	Hash [sha256.Size]byte
}

// IsTest returns true if the file is a _test.go file.
func (f *File) IsTest() bool {
	return strings.HasSuffix(f.Name, "_test.go")
}

// LoadConfig controls how packages are loaded.
type LoadConfig struct {
	// Dir is the directory in which to run the build system. If empty, the
	// current directory is used. Exclude patterns are relative to it.
	Dir string
	// Tests indicates whether _test.go files are loaded.
	Tests bool
	// Exclude holds doublestar glob patterns, such as "internal/**/*_gen.go".
	// Files that match any of them are not examined.
	Exclude []string
	// BuildFlags are passed to the build system, for example "-tags=foo".
	BuildFlags []string
	// Reporter receives load errors. If nil, they are discarded.
	Reporter diag.Reporter
	// Logger receives debug output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (cfg *LoadConfig) logger() *slog.Logger {
	if cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}

func (cfg *LoadConfig) reporter() diag.Reporter {
	if cfg.Reporter == nil {
		return diag.NopReporter{}
	}
	return cfg.Reporter
}

// excluded returns true if the given file matches an exclude pattern.
func (cfg *LoadConfig) excluded(baseDir, filename string) (bool, error) {
	if len(cfg.Exclude) == 0 {
		return false, nil
	}
	rel, err := filepath.Rel(baseDir, filename)
	if err != nil {
		rel = filename
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range cfg.Exclude {
		match, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// Load loads the packages that match the given patterns, such as "./...".
// Only syntax is loaded; packages are not type-checked. A file that belongs
// to more than one loaded package, as happens with test variants, is only
// included in the first.
//
// Problems reported by the build system for individual packages are sent to
// cfg.Reporter as load-error diagnostics and do not cause Load to fail.
func Load(ctx context.Context, cfg LoadConfig, patterns ...string) ([]*Package, error) {
	baseDir := cfg.Dir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not determine working directory: %w", err)
		}
		baseDir = wd
	}
	fset := token.NewFileSet()
	// ParseFile is called concurrently
	var hashesMu sync.Mutex
	hashes := map[string][sha256.Size]byte{}
	pcfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedSyntax | packages.NeedModule,
		Dir:        cfg.Dir,
		Tests:      cfg.Tests,
		BuildFlags: cfg.BuildFlags,
		Fset:       fset,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			sum := sha256.Sum256(src)
			hashesMu.Lock()
			hashes[filename] = sum
			hashesMu.Unlock()
			return goparser.ParseFile(fset, filename, src, goparser.ParseComments)
		},
	}
	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	seen := map[string]struct{}{}
	var result []*Package
	for _, p := range pkgs {
		for _, e := range p.Errors {
			diag.ReportError(cfg.reporter(), diag.LoadError, loadErrorSpan(e), e.Msg).Emit()
		}
		if strings.HasSuffix(p.ID, ".test") {
			// synthesized test main
			continue
		}
		goFiles := map[string]struct{}{}
		for _, f := range p.GoFiles {
			goFiles[f] = struct{}{}
		}
		pkg := &Package{ID: p.ID, Name: p.Name, PkgPath: p.PkgPath, Fset: fset}
		for _, f := range p.Syntax {
			filename := fset.Position(f.Package).Filename
			if _, ok := goFiles[filename]; !ok {
				// generated by cgo
				continue
			}
			if _, ok := seen[filename]; ok {
				continue
			}
			seen[filename] = struct{}{}
			skip, err := cfg.excluded(baseDir, filename)
			if err != nil {
				return nil, err
			}
			if skip {
				cfg.logger().Debug("excluding file", "file", filename)
				continue
			}
			pkg.Files = append(pkg.Files, &File{Name: filename, AST: f, Hash: hashes[filename]})
		}
		if len(p.GoFiles) > 0 {
			pkg.Dir = filepath.Dir(p.GoFiles[0])
		}
		if len(pkg.Files) == 0 {
			continue
		}
		cfg.logger().Debug("loaded package", "package", pkg.ID, "files", len(pkg.Files))
		result = append(result, pkg)
	}
	return result, nil
}

// loadErrorSpan extracts a position from the "file:line:col" prefix that the
// build system puts on package errors.
func loadErrorSpan(e packages.Error) diag.Span {
	var nums []int
	rest := e.Pos
	for len(nums) < 2 {
		i := strings.LastIndexByte(rest, ':')
		if i < 0 {
			break
		}
		n, err := strconv.Atoi(rest[i+1:])
		if err != nil {
			break
		}
		nums = append(nums, n)
		rest = rest[:i]
	}
	if rest == "" || rest == "-" || len(nums) == 0 {
		return diag.Span{}
	}
	pos := token.Position{Filename: rest}
	if len(nums) == 2 {
		pos.Line, pos.Column = nums[1], nums[0]
	} else {
		pos.Line = nums[0]
	}
	return diag.At(pos)
}

// ParseDir parses the Go files in a single directory, without involving the
// build system. The given import path is assigned to all packages found. Test
// files are included only if tests is true. Packages are returned sorted by
// name, so a package and its external test package come out in a stable
// order.
func ParseDir(dir, pkgPath string, tests bool) ([]*Package, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	byName := map[string]*Package{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if !tests && strings.HasSuffix(name, "_test.go") {
			continue
		}
		filename := filepath.Join(absDir, name)
		src, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		f, err := goparser.ParseFile(fset, filename, src, goparser.ParseComments)
		if err != nil {
			return nil, err
		}
		pkg := byName[f.Name.Name]
		if pkg == nil {
			path := pkgPath
			if strings.HasSuffix(f.Name.Name, "_test") {
				path += "_test"
			}
			pkg = &Package{ID: path, Name: f.Name.Name, PkgPath: path, Dir: absDir, Fset: fset}
			byName[f.Name.Name] = pkg
		}
		pkg.Files = append(pkg.Files, &File{Name: filename, AST: f, Hash: sha256.Sum256(src)})
	}
	pkgs := make([]*Package, 0, len(byName))
	for _, pkg := range byName {
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool {
		return pkgs[i].Name < pkgs[j].Name
	})
	return pkgs, nil
}
