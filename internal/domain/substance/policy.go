package substance

import "strings"

// DefaultExcludedCAS lists substances dropped from the report regardless of
// their flags.  Ethanol is the usual solvent carrier.
var DefaultExcludedCAS = []string{"64-17-5"}

// DefaultProhibitedCategory is the restriction category that marks a
// prohibited ingredient.
const DefaultProhibitedCategory = "P"

// InclusionPolicy decides which substances reach the compiled report.
type InclusionPolicy struct {
	ExcludedCAS        []CAS
	ProhibitedCategory string
	ExcludeNCS         bool
}

// DefaultInclusionPolicy returns the built-in policy.
func DefaultInclusionPolicy() InclusionPolicy {
	p := InclusionPolicy{ProhibitedCategory: DefaultProhibitedCategory}
	for _, raw := range DefaultExcludedCAS {
		p.ExcludedCAS = append(p.ExcludedCAS, MustParseCAS(raw))
	}
	return p
}

// ShouldBeIncluded applies the exclusion rules, then keeps s only when it is
// CMR or PE.
func (p InclusionPolicy) ShouldBeIncluded(s *Substance) bool {
	if s.ForbiddenInEU {
		return false
	}
	if p.ProhibitedCategory != "" &&
		(isCategory(s.IFRARestriction, p.ProhibitedCategory) || isCategory(s.CosmeticRestriction, p.ProhibitedCategory)) {
		return false
	}
	if p.ExcludeNCS && strings.TrimSpace(s.NCS) != "" {
		return false
	}
	if s.CAS != nil {
		for _, c := range p.ExcludedCAS {
			if s.CAS.Equal(c) {
				return false
			}
		}
	}
	return s.IsCMR() || s.IsPE()
}

func isCategory(v, category string) bool {
	return strings.TrimSpace(v) == category
}

//Personal.AI order the ending
