package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhump/docfile/processor"
)

func newExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand [flags] [packages]",
		Short: "Expand file-reference annotations",
		Long: `Expand reads the documentation files referenced by annotations in the given packages (default ./...).

By default the rewritten source files are printed to stdout. With -w they are
written back in place, or under --output-dir. With --runtime, a
<package>.docs.go file is generated that registers the documentation so that
it can be looked up at runtime.`,
		RunE: runExpand,
	}
	cmd.Flags().BoolP("write", "w", false, "write results to files instead of stdout")
	cmd.Flags().String("output-dir", "", "write results under this directory, organized by import path (implies -w)")
	cmd.Flags().Bool("rewrite", false, "splice documentation into source files (default unless --runtime is set)")
	cmd.Flags().Bool("runtime", false, "generate <package>.docs.go files that register documentation at runtime")
	cmd.Flags().StringSlice("processor", nil, "additional registered processor to run (repeatable)")
	cmd.Flags().Bool("warnings-as-errors", false, "exit with an error status if warnings are reported")
	return cmd
}

func runExpand(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return fmt.Errorf("failed to get write flag: %w", err)
	}
	strict, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}

	extra, err := cmd.Flags().GetStringSlice("processor")
	if err != nil {
		return fmt.Errorf("failed to get processor flag: %w", err)
	}

	cfg := opts.config
	var names []string
	if cfg.Output.Rewrite || (!cfg.Output.Runtime && len(extra) == 0) {
		names = append(names, processor.RewriteProcessorName)
	}
	if cfg.Output.Runtime {
		names = append(names, processor.RuntimeProcessorName)
	}
	names = append(names, extra...)
	procs := make([]processor.Processor, 0, len(names))
	for _, name := range names {
		proc, ok := processor.LookupProcessor(name)
		if !ok {
			return fmt.Errorf("unknown processor %q (known: %s)", name, strings.Join(processor.RegisteredProcessorNames(), ", "))
		}
		procs = append(procs, proc)
	}

	output := processor.WriterOutputFactory(cmd.OutOrStdout())
	if write || cfg.Output.Dir != "" {
		output = processor.DefaultOutputFactory(cfg.Output.Dir)
	}

	res, err := opts.execute(cmd.Context(), args, procs, output, cmd.ErrOrStderr(), strict)
	if res != nil {
		opts.logger.Info("expansion complete", "packages", len(res.Contexts), "expanded", res.NumExpanded())
	}
	return err
}
