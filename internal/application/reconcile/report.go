package reconcile

import (
	"context"
	"strings"

	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
)

// ReportHeader is the fixed header of the compiled report.
var ReportHeader = []string{"Name", "Other names", "CAS", "CMR", "PE"}

// OtherNamesSeparator joins aliases in the report.
const OtherNamesSeparator = " / "

// Emit renders every included substance in registry order.
func Emit(reg *substance.Registry, policy substance.InclusionPolicy) tabular.Table {
	t := tabular.Table{Header: append([]string(nil), ReportHeader...)}
	for _, s := range reg.All() {
		if !policy.ShouldBeIncluded(s) {
			continue
		}
		t.Rows = append(t.Rows, []string{
			s.Name,
			strings.Join(s.OtherNames, OtherNamesSeparator),
			s.CASString(),
			yes(s.IsCMR()),
			yes(s.IsPE()),
		})
	}
	return t
}

func yes(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// Finding is one base-list row whose CAS number does not validate.
type Finding struct {
	Line  int
	Name  string
	Value string
	Err   error
}

// CheckBase validates the CAS column of the canonical list without
// building a registry.
func (d *Driver) CheckBase(ctx context.Context, base BaseSource) ([]Finding, int, error) {
	var findings []Finding
	rows := 0
	err := tabular.ForEach(d.opener, base.File, base.Read, func(row tabular.Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows++
		raw := strings.TrimSpace(row.Cell(base.CASColumn))
		if _, err := substance.ParseCAS(raw); err != nil {
			findings = append(findings, Finding{
				Line:  row.Line,
				Name:  strings.TrimSpace(row.Cell(base.NameColumn)),
				Value: raw,
				Err:   err,
			})
		}
		return nil
	})
	if err != nil {
		return nil, rows, err
	}
	return findings, rows, nil
}

//Personal.AI order the ending
