package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/SubstanceWatch/internal/application/cleaning"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
)

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	var (
		sources    []string
		treatedDir string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize raw regulatory exports into treated tables",
		Long: "Read every configured raw source, split multi-valued identifier cells,\n" +
			"validate CAS and EC numbers, and write one <name>-treated.csv per source\n" +
			"into the treated directory.  Substances without any identifier are\n" +
			"listed at the end.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			defer cliCtx.Finish()

			ctx, cancel := cliCtx.runContext(cmd.Context())
			defer cancel()

			if workers > 0 {
				cliCtx.Config.Clean.Workers = workers
			}
			reports, err := runClean(ctx, cliCtx, sources, treatedDir)
			printCleanSummary(cmd, reports)
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, "clean only the named sources (repeatable)")
	cmd.Flags().StringVar(&treatedDir, "treated-dir", "", "directory for the treated tables (overrides paths.treated)")
	cmd.Flags().IntVar(&workers, "workers", 0, "sources cleaned concurrently (overrides clean.workers)")
	return cmd
}

// runClean cleans the selected sources into the treated directory.  The
// reports of the sources cleaned before a failure are returned with it.
func runClean(ctx context.Context, cliCtx *CLIContext, names []string, treatedDir string) ([]cleaning.Report, error) {
	cfg := cliCtx.Config
	if treatedDir != "" {
		cfg.Paths.Treated = treatedDir
	}

	sources, err := buildSources(cfg, names)
	if err != nil {
		return nil, err
	}

	cleaner := cleaning.NewCleaner(tabular.FileOpener{}, cliCtx.Logger, cliCtx.Metrics).WithWorkers(cfg.Clean.Workers)
	reports, err := cleaner.CleanAll(ctx, sources, cfg.Paths.Treated)
	if err != nil {
		cliCtx.Logger.Error("cleaning aborted", logging.Err(err))
		return reports, err
	}
	cliCtx.Logger.Info("cleaning finished",
		logging.Int("sources", len(reports)),
		logging.String("dir", cfg.Paths.Treated))
	return reports, nil
}

func printCleanSummary(cmd *cobra.Command, reports []cleaning.Report) {
	if len(reports) == 0 {
		return
	}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.Source,
			strconv.Itoa(r.RowsRead),
			strconv.Itoa(r.RowsEmitted),
			strconv.Itoa(r.RowsShort),
			strconv.Itoa(r.MalformedCAS),
			strconv.Itoa(r.MalformedEC),
			strconv.Itoa(r.MalformedValues),
			strconv.Itoa(len(r.Unidentified)),
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, FormatTable(
		[]string{"SOURCE", "READ", "EMITTED", "SHORT", "BAD CAS", "BAD EC", "BAD VALUES", "UNIDENTIFIED"},
		rows,
	))

	if names := cleaning.Unidentified(reports); len(names) > 0 {
		fmt.Fprintf(out, "\nUnidentified substances (%d):\n", len(names))
		for _, n := range names {
			fmt.Fprintf(out, "  %s\n", n)
		}
	}
}

//Personal.AI order the ending
