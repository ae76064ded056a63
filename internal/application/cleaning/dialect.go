// Package cleaning turns raw regulatory exports into normalized tables of
// [name, cas, extra..., ec] rows.  The per-source text conventions live in
// Dialects; the Cleaner is the same for every source.
package cleaning

import (
	"regexp"
	"sort"
	"strings"
)

var (
	reFootnote  = regexp.MustCompile(`-?\[\d+\]`)
	reQualifier = regexp.MustCompile(`\([a-zA-Z]+\)`)
)

// Replacement rewrites matches of Pattern with With.  Only the first match
// is replaced unless All is set.
type Replacement struct {
	Pattern *regexp.Regexp
	With    string
	All     bool
}

func (r Replacement) apply(s string) string {
	if r.All {
		return r.Pattern.ReplaceAllString(s, r.With)
	}
	loc := r.Pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	dst := r.Pattern.ExpandString(nil, r.With, s, loc)
	return s[:loc[0]] + string(dst) + s[loc[1]:]
}

// Dialect describes how one source writes identifier cells.  Every dialect
// runs through the same pipeline:
//
//	cell:  trim?  -> cell replacements -> split on delimiters
//	token: strip footnotes? -> remove spaces? -> strip qualifiers?
//	       -> trim? -> token replacements -> drop empty
type Dialect struct {
	Name string

	TrimCell         bool
	CellReplacements []Replacement
	// Delimiters are split on longest first, so "/r" is consumed before "/".
	Delimiters []string

	StripFootnotes    bool
	RemoveSpaces      bool
	StripQualifiers   bool
	TrimTokens        bool
	TokenReplacements []Replacement

	// EmptySentinels are whole-cell values that mean "no identifier".  The
	// empty string is always one.
	EmptySentinels []string
}

// IsEmpty reports whether the whole cell is an empty sentinel.
func (d Dialect) IsEmpty(cell string) bool {
	c := strings.TrimSpace(cell)
	if c == "" {
		return true
	}
	for _, s := range d.EmptySentinels {
		if c == s {
			return true
		}
	}
	return false
}

// Split turns one cell into its candidate tokens.  Empty tokens are
// dropped, and a sentinel cell yields no tokens at all.  Split never fails.
func (d Dialect) Split(cell string) []string {
	if d.IsEmpty(cell) {
		return []string{}
	}
	if d.TrimCell {
		cell = strings.TrimSpace(cell)
	}
	for _, r := range d.CellReplacements {
		cell = r.apply(cell)
	}

	parts := []string{cell}
	for _, delim := range d.delimiters() {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, delim)...)
		}
		parts = next
	}

	out := make([]string, 0, len(parts))
	for _, tok := range parts {
		if d.StripFootnotes {
			tok = reFootnote.ReplaceAllString(tok, "")
		}
		if d.RemoveSpaces {
			tok = strings.ReplaceAll(tok, " ", "")
		}
		if d.StripQualifiers {
			tok = reQualifier.ReplaceAllString(tok, "")
		}
		if d.TrimTokens {
			tok = strings.TrimSpace(tok)
		}
		for _, r := range d.TokenReplacements {
			tok = r.apply(tok)
		}
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func (d Dialect) delimiters() []string {
	ds := append([]string(nil), d.Delimiters...)
	sort.SliceStable(ds, func(i, j int) bool { return len(ds[i]) > len(ds[j]) })
	return ds
}

// Dialect names.
const (
	DialectECHA           = "echa"
	DialectECHAEC         = "echa-ec"
	DialectCIRC           = "circ"
	DialectEDList         = "ed-list"
	DialectIFRARestricted = "ifra-restricted"
	DialectCoRAP          = "corap"
	DialectRaw            = "raw"
)

func replace(pattern, with string) Replacement {
	return Replacement{Pattern: regexp.MustCompile(pattern), With: with}
}

func replaceAll(pattern, with string) Replacement {
	return Replacement{Pattern: regexp.MustCompile(pattern), With: with, All: true}
}

var echaDialect = Dialect{
	Name:            DialectECHA,
	TrimCell:        true,
	Delimiters:      []string{"\n", "/", ";", ",", "/r"},
	StripFootnotes:  true,
	RemoveSpaces:    true,
	StripQualifiers: true,
	EmptySentinels:  []string{"-"},
}

var dialects = map[string]Dialect{
	DialectECHA: echaDialect,
	DialectECHAEC: func() Dialect {
		d := echaDialect
		d.Name = DialectECHAEC
		d.TokenReplacements = []Replacement{
			replace(`^_$`, ""),
			replace(`^—$`, ""),
			replace(`^â€”$`, ""),
		}
		return d
	}(),
	DialectCIRC: {
		Name:            DialectCIRC,
		Delimiters:      []string{"\n", "/", ",", "/r"},
		StripFootnotes:  true,
		RemoveSpaces:    true,
		StripQualifiers: true,
	},
	DialectEDList: {
		Name:             DialectEDList,
		CellReplacements: []Replacement{replace(`^-$`, "")},
		Delimiters:       []string{","},
		TrimTokens:       true,
	},
	DialectIFRARestricted: {
		Name: DialectIFRARestricted,
		CellReplacements: []Replacement{
			replace(`e\.g\.: `, ""),
			replace(`\(mixed isomers\)`, ""),
			replaceAll(`Restriction and Specification of.*?: `, ""),
			replaceAll(`(Prohibition|Specification) of.*?: `, ""),
			replace(`Not applicable\.`, ""),
		},
		Delimiters:      []string{" ", "/", ",", "/r"},
		StripFootnotes:  true,
		StripQualifiers: true,
	},
	DialectCoRAP: {
		Name:             DialectCoRAP,
		CellReplacements: []Replacement{replace(`^-`, "")},
		TrimTokens:       true,
	},
	DialectRaw: {
		Name:       DialectRaw,
		TrimTokens: true,
	},
}

// LookupDialect returns the named dialect.
func LookupDialect(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}

// DialectNames lists the built-in dialects, sorted.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

//Personal.AI order the ending
