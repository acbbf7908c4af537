package processor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultOutputFactory returns the default OutputFactory used by Process. If
// the given rootDir is blank, outputs are written into the package's source
// directory, next to (or, when rewriting, over) its sources. Otherwise the
// path will be <rootDir>/<import path>/<name>.
//
// After computing the destination path, os.OpenFile is used to open the file
// for writing (creating the file if necessary, truncating it if it already
// exists).
func DefaultOutputFactory(rootDir string) OutputFactory {
	return func(pkg *Package, name string) (io.WriteCloser, error) {
		dest, err := determineOutputDir(rootDir, pkg)
		if err != nil {
			return nil, err
		}
		dest = filepath.Join(dest, filepath.Base(name))
		return os.OpenFile(dest, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	}
}

func determineOutputDir(root string, pkg *Package) (string, error) {
	if root == "" {
		if pkg.Dir == "" {
			return "", fmt.Errorf("could not determine output directory for package %q", pkg.PkgPath)
		}
		return pkg.Dir, nil
	}
	out := filepath.Join(root, filepath.FromSlash(pkg.PkgPath))
	if err := os.MkdirAll(out, os.ModePerm); err != nil {
		return "", fmt.Errorf("could not create output directory %s: %w", out, err)
	}
	return out, nil
}

// WriterOutputFactory returns an OutputFactory that sends every output to w,
// each preceded by a header line naming the file. Closing an output does not
// close w.
func WriterOutputFactory(w io.Writer) OutputFactory {
	return func(pkg *Package, name string) (io.WriteCloser, error) {
		path := filepath.Join(pkg.Dir, filepath.Base(name))
		if _, err := fmt.Fprintf(w, "// ==> %s <==\n", path); err != nil {
			return nil, err
		}
		return nopCloser{w}, nil
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
