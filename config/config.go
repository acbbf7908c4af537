// Package config provides configuration loading for the docfile command.
package config

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/jhump/docfile/expander"
)

// Config is the complete docfile configuration.
type Config struct {
	Annotations AnnotationsConfig `yaml:"annotations" toml:"annotations"`
	Load        LoadConfig        `yaml:"load" toml:"load"`
	Output      OutputConfig      `yaml:"output" toml:"output"`
	// Jobs bounds how many files are processed concurrently (0 = GOMAXPROCS).
	Jobs int `yaml:"jobs" toml:"jobs"`
	// MaxDiagnostics bounds how many diagnostics are kept (0 = no bound).
	MaxDiagnostics int `yaml:"max_diagnostics" toml:"max_diagnostics"`
	// Color is one of "auto", "on", or "off".
	Color string `yaml:"color" toml:"color"`
}

// AnnotationsConfig names the recognized annotations.
type AnnotationsConfig struct {
	// List names annotations of the form @doc(file = "path").
	List []string `yaml:"list" toml:"list"`
	// Direct names annotations of the form @doc_file = "path".
	Direct []string `yaml:"direct" toml:"direct"`
	// DocName is the name of the produced documentation annotation.
	DocName string `yaml:"doc_name" toml:"doc_name"`
}

// LoadConfig controls which files are examined.
type LoadConfig struct {
	Tests bool `yaml:"tests" toml:"tests"`
	// Exclude holds doublestar globs, relative to the working directory.
	Exclude    []string `yaml:"exclude" toml:"exclude"`
	BuildFlags []string `yaml:"build_flags" toml:"build_flags"`
}

// OutputConfig controls what is written.
type OutputConfig struct {
	// Dir is where outputs go. Empty means next to the sources.
	Dir string `yaml:"dir" toml:"dir"`
	// Rewrite splices documentation into source files.
	Rewrite bool `yaml:"rewrite" toml:"rewrite"`
	// Runtime generates <package>.docs.go files that register documentation.
	Runtime bool `yaml:"runtime" toml:"runtime"`
}

// DefaultConfig returns a Config with the default annotation names.
func DefaultConfig() *Config {
	return &Config{
		Annotations: AnnotationsConfig{
			List:    []string{expander.DefaultListName},
			Direct:  []string{expander.DefaultDirectName},
			DocName: expander.DefaultDocName,
		},
		Color: "auto",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	seen := map[string]string{}
	check := func(kind string, names []string) error {
		for _, name := range names {
			if !validAnnotationName(name) {
				return fmt.Errorf("annotations.%s: invalid annotation name %q", kind, name)
			}
			if other, ok := seen[name]; ok {
				return fmt.Errorf("annotations.%s: %q is already listed in annotations.%s", kind, name, other)
			}
			seen[name] = kind
		}
		return nil
	}
	if err := check("list", c.Annotations.List); err != nil {
		return err
	}
	if err := check("direct", c.Annotations.Direct); err != nil {
		return err
	}
	if len(seen) == 0 {
		return fmt.Errorf("annotations: at least one annotation name is required")
	}
	if !validAnnotationName(c.Annotations.DocName) {
		return fmt.Errorf("annotations.doc_name: invalid annotation name %q", c.Annotations.DocName)
	}
	// a produced @doc = "..." is a no-op for a list-shape handler of the
	// same name, but a direct-shape handler would read the text as a path
	if seen[c.Annotations.DocName] == "direct" {
		return fmt.Errorf("annotations.doc_name: %q is also a direct-shape annotation", c.Annotations.DocName)
	}
	for _, pattern := range c.Load.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("load.exclude: invalid pattern %q", pattern)
		}
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative")
	}
	if c.MaxDiagnostics < 0 {
		return fmt.Errorf("max_diagnostics must not be negative")
	}
	switch c.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("color must be one of auto, on, or off; got %q", c.Color)
	}
	return nil
}

// validAnnotationName accepts a name or a package-qualified name, such as
// "doc_file" or "docfile.doc_file".
func validAnnotationName(name string) bool {
	pkg, n, qualified := strings.Cut(name, ".")
	if qualified {
		return token.IsIdentifier(pkg) && token.IsIdentifier(n)
	}
	return token.IsIdentifier(name)
}

// Registry returns an expander registry for the configured annotation names.
func (c *Config) Registry(logger *slog.Logger) *expander.Registry {
	r := expander.NewRegistry()
	for _, name := range c.Annotations.List {
		r.RegisterShape(name, expander.ShapeList, c.Annotations.DocName, logger)
	}
	for _, name := range c.Annotations.Direct {
		r.RegisterShape(name, expander.ShapeDirect, c.Annotations.DocName, logger)
	}
	return r
}

// LoadFromFile loads configuration from a YAML or, if the file name ends in
// ".toml", TOML file. Settings missing from the file keep their defaults.
// Unknown keys are an error.
func LoadFromFile(path string) (*Config, error) {
	fileConfig, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Merge(fileConfig)
	return config, nil
}

// decodeFile reads only the settings present in the given file.
func decodeFile(path string) (*Config, error) {
	var config Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		meta, err := toml.DecodeFile(path, &config)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
		return &config, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: failed to parse config file: %w", path, err)
	}
	return &config, nil
}

// Merge merges another config into this one. Non-zero values in other take
// precedence; boolean settings can be turned on but not off.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Annotations
	if len(other.Annotations.List) > 0 {
		c.Annotations.List = other.Annotations.List
	}
	if len(other.Annotations.Direct) > 0 {
		c.Annotations.Direct = other.Annotations.Direct
	}
	if other.Annotations.DocName != "" {
		c.Annotations.DocName = other.Annotations.DocName
	}

	// Load
	if other.Load.Tests {
		c.Load.Tests = true
	}
	if len(other.Load.Exclude) > 0 {
		c.Load.Exclude = append(c.Load.Exclude, other.Load.Exclude...)
	}
	if len(other.Load.BuildFlags) > 0 {
		c.Load.BuildFlags = other.Load.BuildFlags
	}

	// Output
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.Rewrite {
		c.Output.Rewrite = true
	}
	if other.Output.Runtime {
		c.Output.Runtime = true
	}

	if other.Jobs != 0 {
		c.Jobs = other.Jobs
	}
	if other.MaxDiagnostics != 0 {
		c.MaxDiagnostics = other.MaxDiagnostics
	}
	if other.Color != "" {
		c.Color = other.Color
	}
}
