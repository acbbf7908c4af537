// Command docfile expands file-reference annotations in Go doc comments.
//
//	docfile expand ./...          # print rewritten files
//	docfile expand -w ./...       # rewrite files in place
//	docfile expand --runtime -w . # generate <package>.docs.go
//	docfile check ./...           # only report problems
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errDiagnostics is returned when a run reported errors. They have already
// been printed.
var errDiagnostics = errors.New("errors were reported")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "docfile",
		Short:         "Expand file-reference annotations in Go doc comments",
		Long:          `docfile finds annotations such as @doc(file = "widget.md") and @doc_file = "widget.md" in Go doc comments and appends the contents of the referenced files after them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = buildVersion()

	addGlobalFlags(rootCmd)
	rootCmd.AddCommand(newExpandCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "docfile: %v\n", err)
		}
		os.Exit(1)
	}
}
