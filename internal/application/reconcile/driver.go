// Package reconcile builds the substance registry from the canonical list,
// folds every update pass into it in a fixed order, and emits the CMR/PE
// report.
package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// Stage names passed to Metrics.ObserveStage.  StageCompile covers a whole
// compilation including the report write.
const (
	StageBase    = "base"
	StagePass    = "pass"
	StageEmit    = "emit"
	StageCompile = "compile"
)

// Metrics records reconciliation counters.
type Metrics interface {
	PassMatches(pass string, n int)
	PassInsert(pass string)
	MergeConflict()
	RegistrySize(n int)
	ReportSize(n int)
	ObserveStage(stage string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) PassMatches(string, int)            {}
func (noopMetrics) PassInsert(string)                  {}
func (noopMetrics) MergeConflict()                     {}
func (noopMetrics) RegistrySize(int)                   {}
func (noopMetrics) ReportSize(int)                     {}
func (noopMetrics) ObserveStage(string, time.Duration) {}

// Driver runs the reconciliation state machine.  Passes run strictly one
// after the other; the registry has a single writer.
type Driver struct {
	opener  tabular.Opener
	logger  logging.Logger
	metrics Metrics
	policy  substance.InclusionPolicy
}

// NewDriver returns a Driver.  opener, logger and metrics may be nil.
func NewDriver(opener tabular.Opener, logger logging.Logger, metrics Metrics, policy substance.InclusionPolicy) *Driver {
	if opener == nil {
		opener = tabular.FileOpener{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Driver{opener: opener, logger: logger.Named("compile"), metrics: metrics, policy: policy}
}

// Outcome is the result of Compile.
type Outcome struct {
	Registry *substance.Registry
	Base     BaseReport
	Passes   []PassReport
	Report   tabular.Table
}

// Compile loads the base list, applies every pass in order and emits the
// report.  A source read failure aborts the run.
func (d *Driver) Compile(ctx context.Context, plan Plan) (*Outcome, error) {
	reg := substance.NewRegistry()
	out := &Outcome{Registry: reg}

	base, err := d.LoadBase(ctx, plan.Base, reg)
	if err != nil {
		return nil, err
	}
	out.Base = base

	for _, p := range plan.Passes {
		rep, err := d.ApplyPass(ctx, p, reg)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "pass "+p.Name+" failed")
		}
		out.Passes = append(out.Passes, rep)
	}
	d.metrics.RegistrySize(reg.Len())

	start := time.Now()
	out.Report = Emit(reg, d.policy)
	d.metrics.ReportSize(len(out.Report.Rows))
	d.metrics.ObserveStage(StageEmit, time.Since(start))
	d.logger.Info("report compiled",
		logging.Int("substances", reg.Len()),
		logging.Int("rows", len(out.Report.Rows)))
	return out, nil
}

// LoadBase streams the canonical list into reg.  Rows with an invalid CAS
// number are logged and skipped; repeated CAS numbers are folded.
func (d *Driver) LoadBase(ctx context.Context, base BaseSource, reg *substance.Registry) (BaseReport, error) {
	start := time.Now()
	log := d.logger.With(logging.String("source", base.File))
	var rep BaseReport

	err := tabular.ForEach(d.opener, base.File, base.Read, func(row tabular.Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.Rows++
		raw := strings.TrimSpace(row.Cell(base.CASColumn))
		cas, err := substance.ParseCAS(raw)
		if err != nil {
			rep.Invalid++
			log.Warn("invalid CAS number in base list",
				logging.Int("line", row.Line),
				logging.String("value", raw),
				logging.Err(err))
			return nil
		}
		s := substance.New(row.Cell(base.NameColumn)).WithCAS(cas)
		if base.NCSColumn >= 0 {
			s.NCS = strings.TrimSpace(row.Cell(base.NCSColumn))
		}
		_, inserted, err := reg.Upsert(s)
		if err != nil {
			d.conflict(log, err, row.Line)
		}
		if inserted {
			rep.Loaded++
		} else {
			rep.Duplicates++
			log.Debug("duplicate base entry folded",
				logging.Int("line", row.Line),
				logging.String("cas", cas.String()))
		}
		return nil
	})
	if err != nil {
		return rep, err
	}

	d.metrics.RegistrySize(reg.Len())
	d.metrics.ObserveStage(StageBase, time.Since(start))
	log.Info("base list loaded",
		logging.Int("rows", rep.Rows),
		logging.Int("loaded", rep.Loaded),
		logging.Int("invalid", rep.Invalid))
	return rep, nil
}

// ApplyPass folds one update table into reg.  Every entity matching a row's
// CAS number is updated; rows without a CAS number match by EC number.  A
// row matching nothing is ignored unless the pass inserts on miss.
func (d *Driver) ApplyPass(ctx context.Context, p Pass, reg *substance.Registry) (PassReport, error) {
	start := time.Now()
	log := d.logger.With(logging.String("pass", p.Name))
	rep := PassReport{Name: p.Name}

	err := tabular.ForEach(d.opener, p.File, p.Read, func(row tabular.Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.applyRow(log, p, reg, row, &rep)
		return nil
	})
	if err != nil {
		return rep, err
	}

	d.metrics.PassMatches(p.Name, rep.Matched)
	d.metrics.ObserveStage(StagePass, time.Since(start))
	log.Info("pass applied",
		logging.Int("rows", rep.Rows),
		logging.Int("matched", rep.Matched),
		logging.Int("inserted", rep.Inserted),
		logging.Int("skipped", rep.Skipped))
	return rep, nil
}

func (d *Driver) applyRow(log logging.Logger, p Pass, reg *substance.Registry, row tabular.Row, rep *PassReport) {
	rep.Rows++
	if !p.Predicate.Keep(row.Fields) {
		rep.Skipped++
		return
	}
	values := p.values(row.Fields)
	if p.RequireValue && (len(values) == 0 || values[0] == "") {
		rep.Skipped++
		return
	}

	name := strings.TrimSpace(row.Cell(p.NameColumn))
	cas := d.parseCAS(log, row, row.Cell(p.CASColumn), rep)
	var ec *substance.EC
	if p.ECColumn != nil {
		ec = d.parseEC(log, row, row.Cell(*p.ECColumn), rep)
	}
	if cas == nil && ec == nil {
		rep.Unidentified++
		return
	}

	apply := func(s *substance.Substance) {
		p.Attribute.Apply(s, values...)
		if p.AddNames {
			substance.AddName(name, s)
		}
		// adopts a missing EC; a different one is refused and both are kept
		if ec != nil {
			if err := reg.Merge(s, &substance.Substance{EC: ec}); err != nil {
				rep.Conflicts++
				d.conflict(log, err, row.Line)
			}
		}
	}

	var n int
	if cas != nil {
		n = reg.ForEachMatch(*cas, apply)
	} else {
		n = reg.ForEachMatchEC(*ec, apply)
	}
	rep.Matched += n
	if n > 0 {
		return
	}
	if !p.InsertOnMiss {
		rep.Unmatched++
		return
	}

	s := substance.New(name)
	s.CAS, s.EC = cas, ec
	p.Attribute.Apply(s, values...)
	_, inserted, err := reg.Upsert(s)
	if err != nil {
		rep.Conflicts++
		d.conflict(log, err, row.Line)
	}
	if inserted {
		rep.Inserted++
		d.metrics.PassInsert(p.Name)
	}
}

func (d *Driver) parseCAS(log logging.Logger, row tabular.Row, raw string, rep *PassReport) *substance.CAS {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	c, err := substance.ParseCAS(raw)
	if err != nil {
		rep.Invalid++
		log.Warn("malformed CAS number", logging.Int("line", row.Line), logging.String("value", raw), logging.Err(err))
		return nil
	}
	return &c
}

func (d *Driver) parseEC(log logging.Logger, row tabular.Row, raw string, rep *PassReport) *substance.EC {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	e, err := substance.ParseEC(raw)
	if err != nil {
		rep.Invalid++
		log.Warn("malformed EC number", logging.Int("line", row.Line), logging.String("value", raw), logging.Err(err))
		return nil
	}
	return &e
}

func (d *Driver) conflict(log logging.Logger, err error, line int) {
	d.metrics.MergeConflict()
	log.Error("conflicting merge refused",
		logging.Int("line", line),
		logging.String("code", errors.GetCode(err).String()),
		logging.Err(err))
}

//Personal.AI order the ending
