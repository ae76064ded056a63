package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/SubstanceWatch/internal/application/reconcile"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
)

// NewCompileCmd creates the compile command.
func NewCompileCmd() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Reconcile the treated tables into the CMR/PE report",
		Long: "Load the canonical substance list, apply every update pass in its fixed\n" +
			"order, and write the substances flagged as CMR or potential endocrine\n" +
			"disruptors.  The format follows --format, then output.format, then the\n" +
			"output file extension (.csv, .xlsx, .db/.sqlite).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			defer cliCtx.Finish()

			ctx, cancel := cliCtx.runContext(cmd.Context())
			defer cancel()

			return runCompile(ctx, cmd, cliCtx, output, format)
		},
	}

	addOutputFlags(cmd, &output, &format)
	return cmd
}

func addOutputFlags(cmd *cobra.Command, output, format *string) {
	cmd.Flags().StringVarP(output, "output", "o", "", "report path (overrides paths.output)")
	cmd.Flags().StringVarP(format, "format", "f", "", "report format: csv|xlsx|sqlite (default: from the file extension)")
}

// runCompile builds the registry, emits the report and writes it.
func runCompile(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext, output, format string) error {
	cfg := cliCtx.Config
	timer := cliCtx.Metrics.StageTimer(reconcile.StageCompile)

	path, f, err := outputTarget(cfg, output, format)
	if err != nil {
		return err
	}
	plan, err := buildPlan(cfg)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(cfg)
	if err != nil {
		return err
	}

	driver := reconcile.NewDriver(tabular.FileOpener{}, cliCtx.Logger, cliCtx.Metrics, policy)
	out, err := driver.Compile(ctx, plan)
	if err != nil {
		cliCtx.Logger.Error("compilation aborted", logging.Err(err))
		return err
	}

	w, err := tabular.NewWriter(f, path, tabular.WriterOptions{Sheet: cfg.Output.Sheet, TableName: cfg.Output.Table})
	if err != nil {
		return err
	}
	if err := w.Write(out.Report); err != nil {
		return err
	}

	elapsed := timer.ObserveDuration()
	cliCtx.Logger.Info("report written",
		logging.String("path", path),
		logging.String("format", string(f)),
		logging.Int("rows", len(out.Report.Rows)),
		logging.Duration("elapsed", elapsed))

	printCompileSummary(cmd, out)
	PrintSuccess(cmd, fmt.Sprintf("wrote %d substances to %s (%s)", len(out.Report.Rows), path, f))
	return nil
}

func printCompileSummary(cmd *cobra.Command, out *reconcile.Outcome) {
	rows := make([][]string, 0, len(out.Passes)+1)
	rows = append(rows, []string{
		"(base)",
		strconv.Itoa(out.Base.Rows),
		strconv.Itoa(out.Base.Loaded),
		strconv.Itoa(out.Base.Duplicates),
		"", "", "",
		strconv.Itoa(out.Base.Invalid),
		"",
	})
	for _, p := range out.Passes {
		rows = append(rows, []string{
			p.Name,
			strconv.Itoa(p.Rows),
			strconv.Itoa(p.Matched),
			"",
			strconv.Itoa(p.Unmatched),
			strconv.Itoa(p.Inserted),
			strconv.Itoa(p.Skipped),
			strconv.Itoa(p.Invalid),
			strconv.Itoa(p.Conflicts),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), FormatTable(
		[]string{"STEP", "ROWS", "MATCHED", "FOLDED", "UNMATCHED", "INSERTED", "SKIPPED", "INVALID", "CONFLICTS"},
		rows,
	))
}

//Personal.AI order the ending
