package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [packages]",
		Short: "Report problems with file-reference annotations without writing anything",
		RunE:  runCheck,
	}
	cmd.Flags().Bool("warnings-as-errors", false, "exit with an error status if warnings are reported")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	strict, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	res, err := opts.execute(cmd.Context(), args, nil, nil, cmd.OutOrStdout(), strict)
	if res != nil && opts.format == "text" && res.Diagnostics.Len() == 0 {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d documentation files expanded, no problems found\n", res.NumExpanded())
	}
	return err
}
