package substance

import (
	"regexp"
	"strings"
)

var (
	reCMRText      = regexp.MustCompile(`(?i)carc|muta|repr|lact|CMR`)
	reEndocrineTxt = regexp.MustCompile(`(?i)endocrin`)
)

// circCMRStandards are the monograph groups that count as a CMR signal.
var circCMRStandards = map[string]bool{"1": true, "2A": true, "2B": true, "3": true}

// Attributes are the regulatory facts gathered from the update sources.
// Boolean flags are sticky: once true they stay true.  Text fields keep the
// last non-empty value written.
type Attributes struct {
	// NCS is the marker column of the canonical base list.
	NCS string

	// Cosmetic regulation.
	ForbiddenInEU       bool
	CosmeticRestriction string

	// Carcinogen / mutagen / reprotoxic sources.
	CLPClassification string
	CIRCStandard      string
	SelfClassified    bool

	// Endocrine disruption.
	EndocrineDisruptor         bool
	DeductedEndocrineDisruptor bool

	// REACH.
	CoRAPConcern          string
	ReachIntentionConcern string

	// Fragrance-industry standards.
	IFRARestriction string
	IFRAAmendment   string
}

// mergeFrom folds o into a following the sticky-true / last-non-empty rules.
func (a *Attributes) mergeFrom(o Attributes) {
	setText(&a.NCS, o.NCS)
	a.ForbiddenInEU = a.ForbiddenInEU || o.ForbiddenInEU
	setText(&a.CosmeticRestriction, o.CosmeticRestriction)
	setText(&a.CLPClassification, o.CLPClassification)
	setText(&a.CIRCStandard, o.CIRCStandard)
	a.SelfClassified = a.SelfClassified || o.SelfClassified
	a.EndocrineDisruptor = a.EndocrineDisruptor || o.EndocrineDisruptor
	a.DeductedEndocrineDisruptor = a.DeductedEndocrineDisruptor || o.DeductedEndocrineDisruptor
	setText(&a.CoRAPConcern, o.CoRAPConcern)
	setText(&a.ReachIntentionConcern, o.ReachIntentionConcern)
	setText(&a.IFRARestriction, o.IFRARestriction)
	setText(&a.IFRAAmendment, o.IFRAAmendment)
}

func setText(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Substance is the unit of reconciliation: one chemical, however many
// sources mention it.  It is created once and mutated in place by every
// update pass that matches it; the Registry owns it.
type Substance struct {
	CAS *CAS
	EC  *EC

	// Name is the canonical name; OtherNames holds the aliases that are not
	// similar to it or to each other.
	Name       string
	OtherNames []string

	Attributes
}

// New returns a Substance with the given canonical name and no identifiers.
func New(name string) *Substance {
	return &Substance{Name: strings.TrimSpace(name)}
}

// WithCAS sets the CAS number and returns s for chaining.
func (s *Substance) WithCAS(c CAS) *Substance {
	s.CAS = &c
	return s
}

// WithEC sets the EC number and returns s for chaining.
func (s *Substance) WithEC(e EC) *Substance {
	s.EC = &e
	return s
}

// HasIdentifier reports whether s carries a CAS or an EC number.
func (s *Substance) HasIdentifier() bool {
	return s.CAS != nil || s.EC != nil
}

// CASString renders the CAS number, or "" when absent.
func (s *Substance) CASString() string {
	if s.CAS == nil {
		return ""
	}
	return s.CAS.String()
}

// IsCMR reports whether any carcinogen, mutagen or reprotoxic source flags s.
func (s *Substance) IsCMR() bool {
	return reCMRText.MatchString(s.CLPClassification) ||
		reCMRText.MatchString(s.CoRAPConcern) ||
		circCMRStandards[strings.ToUpper(strings.TrimSpace(s.CIRCStandard))] ||
		s.SelfClassified
}

// IsPE reports whether s is a potential endocrine disruptor.
func (s *Substance) IsPE() bool {
	return s.EndocrineDisruptor ||
		s.DeductedEndocrineDisruptor ||
		reEndocrineTxt.MatchString(s.CoRAPConcern) ||
		reEndocrineTxt.MatchString(s.ReachIntentionConcern)
}

//Personal.AI order the ending
