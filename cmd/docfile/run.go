package main

import (
	"context"
	"io"

	"github.com/jhump/docfile/processor"
)

// execute loads and expands the packages that match patterns, runs the
// given processors, and prints diagnostics to diagOut. It returns
// errDiagnostics if any errors were reported, or if any warnings were and
// strict is true.
func (o *options) execute(ctx context.Context, patterns []string, procs []processor.Processor, output processor.OutputFactory, diagOut io.Writer, strict bool) (*processor.Result, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := o.config
	run := processor.Config{
		Patterns: patterns,
		Load: processor.LoadConfig{
			Tests:      cfg.Load.Tests,
			Exclude:    cfg.Load.Exclude,
			BuildFlags: cfg.Load.BuildFlags,
			Logger:     o.logger,
		},
		Registry:       cfg.Registry(o.logger),
		Processors:     procs,
		OutputFactory:  output,
		Jobs:           cfg.Jobs,
		MaxDiagnostics: cfg.MaxDiagnostics,
		Logger:         o.logger,
	}
	res, err := run.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := o.printDiagnostics(diagOut, res.Diagnostics); err != nil {
		return nil, err
	}
	if res.Diagnostics.HasErrors() || (strict && res.Diagnostics.HasWarnings()) {
		return res, errDiagnostics
	}
	return res, nil
}
