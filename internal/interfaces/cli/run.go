package cli

import (
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command: clean then compile in one process.
func NewRunCmd() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean every source, then compile the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			defer cliCtx.Finish()

			ctx, cancel := cliCtx.runContext(cmd.Context())
			defer cancel()

			reports, err := runClean(ctx, cliCtx, nil, "")
			printCleanSummary(cmd, reports)
			if err != nil {
				return err
			}
			return runCompile(ctx, cmd, cliCtx, output, format)
		},
	}

	addOutputFlags(cmd, &output, &format)
	return cmd
}

//Personal.AI order the ending
