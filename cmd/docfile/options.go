package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jhump/docfile/config"
	"github.com/jhump/docfile/diag"
)

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file to use instead of searching for .docfile.yaml/.docfile.toml")
	flags.String("color", "auto", "colorize diagnostics (auto|on|off)")
	flags.String("format", "text", "diagnostics format (text|json|msgpack)")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0=unlimited)")
	flags.Int("jobs", 0, "max files processed in parallel (0=auto)")
	flags.BoolP("verbose", "v", false, "log progress to stderr")
	flags.Bool("tests", false, "also process _test.go files")
	flags.StringSlice("exclude", nil, "glob of files to skip, relative to the working directory (repeatable)")
	flags.StringArray("build-flag", nil, "flag passed to the build system when loading packages (repeatable)")
	flags.StringSlice("list-name", nil, `annotation names of the form @name(file = "path")`)
	flags.StringSlice("direct-name", nil, `annotation names of the form @name = "path"`)
	flags.String("doc-name", "", "name of the produced documentation annotation")
}

// options are the settings for one run, after layering config files and
// flags.
type options struct {
	config *config.Config
	format string
	logger *slog.Logger
}

// loadOptions loads config files and applies flags that were set explicitly
// on top of them.
func loadOptions(cmd *cobra.Command) (*options, error) {
	flags := cmd.Flags()
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	loader := config.NewLoader(logger)
	var cfg *config.Config
	if path, _ := flags.GetString("config"); path != "" {
		cfg, err = loader.LoadFile(path)
	} else {
		cfg, err = loader.Load(".")
	}
	if err != nil {
		return nil, err
	}

	var override config.Config
	if flags.Changed("color") {
		override.Color, _ = flags.GetString("color")
	}
	if flags.Changed("max-diagnostics") {
		override.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if flags.Changed("jobs") {
		override.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("tests") {
		// an explicit --tests=false wins over config files
		cfg.Load.Tests, _ = flags.GetBool("tests")
	}
	if flags.Changed("exclude") {
		override.Load.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("build-flag") {
		override.Load.BuildFlags, _ = flags.GetStringArray("build-flag")
	}
	if flags.Changed("list-name") {
		override.Annotations.List, _ = flags.GetStringSlice("list-name")
		if len(override.Annotations.List) == 0 {
			cfg.Annotations.List = nil
		}
	}
	if flags.Changed("direct-name") {
		override.Annotations.Direct, _ = flags.GetStringSlice("direct-name")
		if len(override.Annotations.Direct) == 0 {
			cfg.Annotations.Direct = nil
		}
	}
	if flags.Changed("doc-name") {
		override.Annotations.DocName, _ = flags.GetString("doc-name")
	}
	cfg.Merge(&override)

	// command-specific flags
	if f := flags.Lookup("runtime"); f != nil && f.Changed {
		cfg.Output.Runtime, _ = flags.GetBool("runtime")
	}
	if f := flags.Lookup("rewrite"); f != nil && f.Changed {
		cfg.Output.Rewrite, _ = flags.GetBool("rewrite")
	}
	if f := flags.Lookup("output-dir"); f != nil && f.Changed {
		cfg.Output.Dir, _ = flags.GetString("output-dir")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	format, err := flags.GetString("format")
	if err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "text", "json", "msgpack":
	default:
		return nil, fmt.Errorf("unsupported format %q (must be text, json, or msgpack)", format)
	}
	return &options{config: cfg, format: format, logger: logger}, nil
}

// printDiagnostics writes the diagnostics of a run in the selected format.
func (o *options) printDiagnostics(w io.Writer, bag *diag.Bag) error {
	items := bag.Items()
	switch o.format {
	case "json":
		return diag.WriteJSON(w, items)
	case "msgpack":
		return diag.WriteMsgpack(w, items)
	}
	if err := diag.Pretty(w, items, diag.PrettyOpts{Color: o.useColor(w), Context: true}); err != nil {
		return err
	}
	if dropped := bag.Dropped(); dropped > 0 {
		_, err := fmt.Fprintf(w, "... and %d more diagnostics\n", dropped)
		return err
	}
	return nil
}

func (o *options) useColor(w io.Writer) bool {
	switch o.config.Color {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
