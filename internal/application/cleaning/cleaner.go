package cleaning

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Label values passed to Metrics.
const (
	KindCAS            = "cas"
	KindEC             = "ec"
	KindClassification = "classification"
	StageClean         = "clean"
)

// Metrics records cleaning counters.
type Metrics interface {
	SourceRow(source string)
	MalformedIdentifier(source, kind string)
	Unidentified(source string)
	ObserveStage(stage string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) SourceRow(string)                   {}
func (noopMetrics) MalformedIdentifier(string, string) {}
func (noopMetrics) Unidentified(string)                {}
func (noopMetrics) ObserveStage(string, time.Duration) {}

// RecordShaper builds one normalized output row from the chosen name and
// identifiers plus the raw record.
type RecordShaper func(name, cas string, record []string, ec string) []string

// ColumnShaper returns the standard [name, cas, extra..., ec?] shaper.
func ColumnShaper(extra []int, withEC bool) RecordShaper {
	return func(name, cas string, record []string, ec string) []string {
		row := make([]string, 0, 3+len(extra))
		row = append(row, name, cas)
		for _, i := range extra {
			row = append(row, tabular.Cell(record, i))
		}
		if withEC {
			row = append(row, ec)
		}
		return row
	}
}

// Source describes one raw table and how to normalize it.
type Source struct {
	Name string
	File string
	Read tabular.Options

	NameColumn int
	CASColumn  int
	// ECColumn is nil when the source has no EC column.
	ECColumn *int

	Dialect Dialect
	// ECDialect defaults to Dialect.
	ECDialect *Dialect

	Headers []string
	// Shape defaults to ColumnShaper(nil, ECColumn != nil).
	Shape RecordShaper

	// AllowedValues maps a raw column to the values it may hold.  Other
	// values are reported as malformed classifications but kept.
	AllowedValues map[int][]string

	TrackUnidentified bool
	// CarryForward fills a blank name or CAS cell from the last non-blank
	// one seen earlier in the same file.
	CarryForward bool
}

func (s Source) ecDialect() Dialect {
	if s.ECDialect != nil {
		return *s.ECDialect
	}
	return s.Dialect
}

func (s Source) shape() RecordShaper {
	if s.Shape != nil {
		return s.Shape
	}
	return ColumnShaper(nil, s.ECColumn != nil)
}

func (s Source) widest() int {
	w := s.NameColumn
	if s.CASColumn > w {
		w = s.CASColumn
	}
	if s.ECColumn != nil && *s.ECColumn > w {
		w = *s.ECColumn
	}
	return w
}

// Report summarizes one cleaning pass.
type Report struct {
	Source          string
	RowsRead        int
	RowsEmitted     int
	RowsShort       int
	MalformedCAS    int
	MalformedEC     int
	MalformedValues int
	Unidentified    []string
}

// Result is the normalized table with its report.
type Result struct {
	Table  tabular.Table
	Report Report
}

// Cleaner normalizes sources.  Each source is cleaned by one goroutine;
// CleanAll runs up to workers of them at once.
type Cleaner struct {
	opener  tabular.Opener
	logger  logging.Logger
	metrics Metrics
	workers int
}

// NewCleaner returns a Cleaner reading through opener.  logger and metrics
// may be nil.
func NewCleaner(opener tabular.Opener, logger logging.Logger, metrics Metrics) *Cleaner {
	if opener == nil {
		opener = tabular.FileOpener{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Cleaner{opener: opener, logger: logger.Named("clean"), metrics: metrics, workers: 1}
}

// WithWorkers sets how many sources CleanAll cleans concurrently.  Values
// below 1 mean 1.
func (c *Cleaner) WithWorkers(n int) *Cleaner {
	if n < 1 {
		n = 1
	}
	c.workers = n
	return c
}

// carryState is the per-file fallback for blank multi-line continuation
// cells.
type carryState struct {
	enabled bool
	name    string
	cas     string
}

func (c *carryState) apply(name, cas string) (string, string) {
	if !c.enabled {
		return name, cas
	}
	if strings.TrimSpace(name) == "" {
		name = c.name
	} else {
		c.name = name
	}
	if strings.TrimSpace(cas) == "" {
		cas = c.cas
	} else {
		c.cas = cas
	}
	return name, cas
}

// Clean reads src and returns its normalized table.  Row-level problems are
// logged and counted; only a source read failure is returned as an error.
func (c *Cleaner) Clean(ctx context.Context, src Source) (*Result, error) {
	start := time.Now()
	log := c.logger.With(logging.String("source", src.Name))
	res := &Result{
		Table:  tabular.Table{Header: src.Headers},
		Report: Report{Source: src.Name},
	}
	state := &carryState{enabled: src.CarryForward}

	err := tabular.ForEach(c.opener, src.File, src.Read, func(row tabular.Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.cleanRow(log, src, row, state, res)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if n := len(res.Report.Unidentified); n > 0 {
		log.Info("unidentified substances",
			logging.Int("count", n),
			logging.Strings("names", res.Report.Unidentified))
	}
	log.Info("source cleaned",
		logging.Int("rows_read", res.Report.RowsRead),
		logging.Int("rows_emitted", res.Report.RowsEmitted),
		logging.Int("malformed_cas", res.Report.MalformedCAS),
		logging.Int("malformed_ec", res.Report.MalformedEC))
	c.metrics.ObserveStage(StageClean, time.Since(start))
	return res, nil
}

func (c *Cleaner) cleanRow(log logging.Logger, src Source, row tabular.Row, state *carryState, res *Result) {
	rep := &res.Report
	rep.RowsRead++
	c.metrics.SourceRow(src.Name)

	if len(row.Fields) <= src.widest() {
		rep.RowsShort++
		log.Warn("row is missing columns",
			logging.Int("line", row.Line),
			logging.Int("fields", len(row.Fields)),
			logging.String("code", errors.ErrCodeSourceColumnMissing.String()))
		return
	}

	name, casCell := state.apply(row.Cell(src.NameColumn), row.Cell(src.CASColumn))
	name = strings.TrimSpace(name)

	casTokens := src.Dialect.Split(casCell)
	ecTokens := []string{""}
	ecEmpty := true
	if src.ECColumn != nil {
		ecTokens = src.ecDialect().Split(row.Cell(*src.ECColumn))
		ecEmpty = len(ecTokens) == 0
	}
	if len(casTokens) == 0 && ecEmpty {
		if src.TrackUnidentified {
			entry := name
			if entry == "" {
				entry = fmt.Sprintf("%s:%d", src.File, row.Line)
			}
			rep.Unidentified = append(rep.Unidentified, entry)
			c.metrics.Unidentified(src.Name)
			log.Debug("substance has no identifier",
				logging.Int("line", row.Line),
				logging.String("name", name),
				logging.String("code", errors.ErrCodeUnidentifiedSubstance.String()))
		}
		return
	}
	if len(casTokens) == 0 {
		casTokens = []string{""}
	}
	if len(ecTokens) == 0 {
		ecTokens = []string{""}
	}

	c.checkAllowed(log, src, row, rep)

	cas := make([]string, len(casTokens))
	for i, tok := range casTokens {
		cas[i] = c.validCAS(log, src, row, tok, rep)
	}
	ec := make([]string, len(ecTokens))
	for i, tok := range ecTokens {
		ec[i] = c.validEC(log, src, row, tok, rep)
	}

	shape := src.shape()
	for _, cv := range cas {
		for _, ev := range ec {
			res.Table.Rows = append(res.Table.Rows, shape(name, cv, row.Fields, ev))
			rep.RowsEmitted++
		}
	}
}

func (c *Cleaner) validCAS(log logging.Logger, src Source, row tabular.Row, tok string, rep *Report) string {
	if tok == "" {
		return ""
	}
	id, err := substance.ParseCAS(tok)
	if err != nil {
		rep.MalformedCAS++
		c.metrics.MalformedIdentifier(src.Name, KindCAS)
		log.Warn("malformed CAS number",
			logging.Int("line", row.Line),
			logging.String("value", tok),
			logging.Err(err))
		return ""
	}
	return id.String()
}

func (c *Cleaner) validEC(log logging.Logger, src Source, row tabular.Row, tok string, rep *Report) string {
	if tok == "" {
		return ""
	}
	id, err := substance.ParseEC(tok)
	if err != nil {
		rep.MalformedEC++
		c.metrics.MalformedIdentifier(src.Name, KindEC)
		log.Warn("malformed EC number",
			logging.Int("line", row.Line),
			logging.String("value", tok),
			logging.Err(err))
		return ""
	}
	return id.String()
}

func (c *Cleaner) checkAllowed(log logging.Logger, src Source, row tabular.Row, rep *Report) {
	for col, allowed := range src.AllowedValues {
		v := strings.TrimSpace(row.Cell(col))
		if contains(allowed, v) {
			continue
		}
		rep.MalformedValues++
		c.metrics.MalformedIdentifier(src.Name, KindClassification)
		log.Warn("malformed classification",
			logging.Int("line", row.Line),
			logging.Int("column", col),
			logging.String("value", v))
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// TreatedPath returns where the normalized table for file is written inside
// dir: "<dir>/<base>-treated.csv".
func TreatedPath(dir, file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"-treated.csv")
}

// CleanToDir cleans src and writes the table to TreatedPath(dir, src.File).
func (c *Cleaner) CleanToDir(ctx context.Context, src Source, dir string) (*Result, string, error) {
	res, err := c.Clean(ctx, src)
	if err != nil {
		return nil, "", err
	}
	path := TreatedPath(dir, src.File)
	w := &tabular.CSVWriter{Path: path}
	if err := w.Write(res.Table); err != nil {
		return nil, "", err
	}
	return res, path, nil
}

// CleanAll cleans every source into dir and stops at the first failure.
// Reports come back in source order; on failure only the reports of the
// sources that completed are returned with the error.
func (c *Cleaner) CleanAll(ctx context.Context, sources []Source, dir string) ([]Report, error) {
	if c.workers <= 1 {
		reports := make([]Report, 0, len(sources))
		for _, src := range sources {
			res, _, err := c.CleanToDir(ctx, src, dir)
			if err != nil {
				return reports, err
			}
			reports = append(reports, res.Report)
		}
		return reports, nil
	}

	results := make([]*Result, len(sources))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range sources {
		i := i
		g.Go(func() error {
			res, _, err := c.CleanToDir(gCtx, sources[i], dir)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()

	reports := make([]Report, 0, len(sources))
	for _, res := range results {
		if res != nil {
			reports = append(reports, res.Report)
		}
	}
	return reports, err
}

// Unidentified concatenates the unidentified names of reports in order.
func Unidentified(reports []Report) []string {
	var out []string
	for _, r := range reports {
		out = append(out, r.Unidentified...)
	}
	return out
}

//Personal.AI order the ending
