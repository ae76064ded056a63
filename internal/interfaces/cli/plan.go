package cli

import (
	"path/filepath"
	"strings"

	"github.com/turtacn/SubstanceWatch/internal/application/cleaning"
	"github.com/turtacn/SubstanceWatch/internal/application/reconcile"
	"github.com/turtacn/SubstanceWatch/internal/config"
	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// resolve joins a relative file onto dir.
func resolve(dir, file string) string {
	if filepath.IsAbs(file) || dir == "" {
		return file
	}
	return filepath.Join(dir, file)
}

func readOptions(rc config.ReadConfig) (tabular.Options, error) {
	delim, err := config.ParseDelimiter(rc.Delimiter)
	if err != nil {
		return tabular.Options{}, err
	}
	return tabular.Options{Delimiter: delim, FromLine: rc.FromLine, Encoding: rc.Encoding}, nil
}

// buildSources turns the configured sources into cleaning sources.  With
// names set only those sources are returned, in configuration order.
func buildSources(cfg *config.Config, names []string) ([]cleaning.Source, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := cfg.Source(n); !ok {
			return nil, errors.InvalidConfig("unknown source " + n)
		}
		want[n] = true
	}

	out := make([]cleaning.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		if len(want) > 0 && !want[sc.Name] {
			continue
		}
		src, err := buildSource(cfg.Paths.Sources, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func buildSource(dir string, sc config.SourceConfig) (cleaning.Source, error) {
	read, err := readOptions(sc.Read)
	if err != nil {
		return cleaning.Source{}, err
	}
	dialect, ok := cleaning.LookupDialect(sc.Dialect)
	if !ok {
		return cleaning.Source{}, errors.InvalidConfig("unknown dialect " + sc.Dialect).WithDetail(sc.Name)
	}

	src := cleaning.Source{
		Name:              sc.Name,
		File:              resolve(dir, sc.File),
		Read:              read,
		NameColumn:        sc.NameColumn,
		CASColumn:         sc.CASColumn,
		ECColumn:          sc.ECColumn,
		Dialect:           dialect,
		Headers:           sc.Headers,
		Shape:             cleaning.ColumnShaper(sc.ExtraColumns, sc.ECColumn != nil),
		TrackUnidentified: sc.TrackUnidentified,
		CarryForward:      sc.CarryForward,
	}
	if sc.ECDialect != "" {
		ecDialect, ok := cleaning.LookupDialect(sc.ECDialect)
		if !ok {
			return cleaning.Source{}, errors.InvalidConfig("unknown dialect " + sc.ECDialect).WithDetail(sc.Name)
		}
		src.ECDialect = &ecDialect
	}
	if len(sc.AllowedValues) > 0 {
		src.AllowedValues = make(map[int][]string, len(sc.AllowedValues))
		for _, a := range sc.AllowedValues {
			src.AllowedValues[a.Column] = append(src.AllowedValues[a.Column], a.Values...)
		}
	}
	return src, nil
}

// buildPlan turns the configured base list and passes into a compilation
// plan.  Pass files resolve against the treated directory.
func buildPlan(cfg *config.Config) (reconcile.Plan, error) {
	baseRead, err := readOptions(cfg.Base.Read)
	if err != nil {
		return reconcile.Plan{}, err
	}
	plan := reconcile.Plan{
		Base: reconcile.BaseSource{
			File:       resolve(cfg.Paths.Sources, cfg.Base.File),
			Read:       baseRead,
			CASColumn:  cfg.Base.CASColumn,
			NameColumn: cfg.Base.NameColumn,
			NCSColumn:  -1,
		},
	}
	if cfg.Base.NCSColumn != nil {
		plan.Base.NCSColumn = *cfg.Base.NCSColumn
	}

	for _, pc := range cfg.Passes {
		p, err := buildPass(cfg.Paths.Treated, pc)
		if err != nil {
			return reconcile.Plan{}, err
		}
		plan.Passes = append(plan.Passes, p)
	}
	return plan, nil
}

func buildPass(dir string, pc config.PassConfig) (reconcile.Pass, error) {
	read, err := readOptions(pc.Read)
	if err != nil {
		return reconcile.Pass{}, err
	}
	attr, err := substance.ParseAttribute(pc.Attribute)
	if err != nil {
		return reconcile.Pass{}, err
	}
	p := reconcile.Pass{
		Name:         pc.Name,
		File:         resolve(dir, pc.File),
		Read:         read,
		NameColumn:   pc.NameColumn,
		CASColumn:    pc.CASColumn,
		ECColumn:     pc.ECColumn,
		Attribute:    attr,
		ValueColumns: pc.ValueColumns,
		RequireValue: pc.RequireValue,
		AddNames:     pc.AddNames,
		InsertOnMiss: pc.InsertOnMiss,
	}
	if pc.Predicate != nil {
		pred, err := reconcile.NewPredicate(pc.Predicate.Column, pc.Predicate.Pattern, reconcile.PredicateMode(pc.Predicate.Mode))
		if err != nil {
			return reconcile.Pass{}, err
		}
		p.Predicate = pred
	}
	return p, nil
}

// buildPolicy parses the configured inclusion rules.
func buildPolicy(cfg *config.Config) (substance.InclusionPolicy, error) {
	policy := substance.InclusionPolicy{
		ProhibitedCategory: cfg.Policy.ProhibitedCategory,
		ExcludeNCS:         cfg.Policy.ExcludeNCS,
	}
	for _, raw := range cfg.Policy.ExcludedCAS {
		c, err := substance.ParseCAS(strings.TrimSpace(raw))
		if err != nil {
			return substance.InclusionPolicy{}, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid excluded CAS number")
		}
		policy.ExcludedCAS = append(policy.ExcludedCAS, c)
	}
	return policy, nil
}

// outputTarget resolves the report path and format: an explicit format
// wins, then the configured one, then the file extension.
func outputTarget(cfg *config.Config, path, format string) (string, tabular.Format, error) {
	if path == "" {
		path = cfg.Paths.Output
	}
	if format == "" {
		format = cfg.Output.Format
	}
	if format == "" {
		return path, tabular.FormatFromPath(path), nil
	}
	f, err := tabular.ParseFormat(format)
	if err != nil {
		return "", "", err
	}
	return path, f, nil
}

//Personal.AI order the ending
