package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/SubstanceWatch/internal/application/reconcile"
	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// NewCheckCmd creates the check command, which validates the CAS column of
// the canonical list.
func NewCheckCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "List base-list rows whose CAS number is malformed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			defer cliCtx.Finish()

			ctx, cancel := cliCtx.runContext(cmd.Context())
			defer cancel()

			plan, err := buildPlan(cliCtx.Config)
			if err != nil {
				return err
			}
			driver := reconcile.NewDriver(tabular.FileOpener{}, cliCtx.Logger, cliCtx.Metrics, substance.DefaultInclusionPolicy())
			findings, rows, err := driver.CheckBase(ctx, plan.Base)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(findings) > 0 {
				table := make([][]string, 0, len(findings))
				for _, f := range findings {
					table = append(table, []string{strconv.Itoa(f.Line), f.Name, f.Value, errors.GetCode(f.Err).String()})
				}
				fmt.Fprint(out, FormatTable([]string{"LINE", "NAME", "VALUE", "CODE"}, table))
			}
			fmt.Fprintf(out, "%d of %d rows in %s have a malformed CAS number\n", len(findings), rows, plan.Base.File)
			cliCtx.Logger.Info("base list checked",
				logging.String("file", plan.Base.File),
				logging.Int("rows", rows),
				logging.Int("malformed", len(findings)))

			if strict && len(findings) > 0 {
				return errors.Newf(errors.ErrCodeMalformedIdentifier, "%d malformed CAS numbers in %s", len(findings), plan.Base.File)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any row is malformed")
	return cmd
}

//Personal.AI order the ending
