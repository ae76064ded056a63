package reconcile

import (
	"regexp"
	"strings"

	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// PredicateMode says what a matching predicate does to a row.
type PredicateMode string

const (
	// PredicateRequire keeps only rows whose column matches.
	PredicateRequire PredicateMode = "require"
	// PredicateSkip drops rows whose column matches.
	PredicateSkip PredicateMode = "skip"
)

// Predicate is a content-based row filter on one column, evaluated before
// any identifier lookup.  A skipped row is skipped entirely.
type Predicate struct {
	Column  int
	Pattern *regexp.Regexp
	Mode    PredicateMode
}

// NewPredicate compiles pattern case-insensitively.
func NewPredicate(column int, pattern string, mode PredicateMode) (*Predicate, error) {
	if mode != PredicateRequire && mode != PredicateSkip {
		return nil, errors.InvalidConfig("unknown predicate mode " + string(mode))
	}
	if column < 0 {
		return nil, errors.InvalidConfig("predicate column must not be negative")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid predicate pattern").WithDetail(pattern)
	}
	return &Predicate{Column: column, Pattern: re, Mode: mode}, nil
}

// MustPredicate is NewPredicate for built-in literals.
func MustPredicate(column int, pattern string, mode PredicateMode) *Predicate {
	p, err := NewPredicate(column, pattern, mode)
	if err != nil {
		panic(err)
	}
	return p
}

// Keep reports whether fields passes the predicate.  A nil predicate keeps
// everything.
func (p *Predicate) Keep(fields []string) bool {
	if p == nil {
		return true
	}
	matched := p.Pattern.MatchString(tabular.Cell(fields, p.Column))
	if p.Mode == PredicateSkip {
		return !matched
	}
	return matched
}

// Pass is one update source applied to the registry.
type Pass struct {
	Name string
	File string
	Read tabular.Options

	NameColumn int
	CASColumn  int
	// ECColumn is nil when the table carries no EC column.
	ECColumn *int

	Attribute substance.Attribute
	// ValueColumns feed Attribute.Apply in order.
	ValueColumns []int

	Predicate *Predicate
	// RequireValue skips rows whose first value column is blank.
	RequireValue bool
	// AddNames feeds the row's name to the Alias Resolver of every match.
	AddNames bool
	// InsertOnMiss creates a Substance when the row matches nothing.
	InsertOnMiss bool
}

func (p Pass) values(fields []string) []string {
	out := make([]string, len(p.ValueColumns))
	for i, c := range p.ValueColumns {
		out[i] = strings.TrimSpace(tabular.Cell(fields, c))
	}
	return out
}

// PassReport counts what one pass did.
type PassReport struct {
	Name string
	Rows int
	// Skipped counts rows dropped by the predicate or RequireValue.
	Skipped int
	// Unidentified counts rows without a usable CAS or EC number.
	Unidentified int
	// Invalid counts identifier cells that failed validation.
	Invalid int
	// Matched counts entity updates; one row may update several entities.
	Matched   int
	Unmatched int
	Inserted  int
	Conflicts int
}

// BaseSource is the canonical substance list.
type BaseSource struct {
	File       string
	Read       tabular.Options
	CASColumn  int
	NameColumn int
	// NCSColumn is negative when the list has no NCS column.
	NCSColumn int
}

// BaseReport counts what the base load did.
type BaseReport struct {
	Rows       int
	Loaded     int
	Duplicates int
	Invalid    int
}

// Plan is a full compilation: the base list then the passes in order.
type Plan struct {
	Base   BaseSource
	Passes []Pass
}

//Personal.AI order the ending
