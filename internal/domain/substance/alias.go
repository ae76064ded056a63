package substance

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// SimilarityThreshold is the edit distance below which two names are
// considered the same name.
const SimilarityThreshold = 3

// Distance is the fuzzy-distance primitive used by IsSimilar.
var Distance = levenshtein.ComputeDistance

// IsSimilar reports whether a and b are case-insensitively equal or within
// SimilarityThreshold-1 edits of each other.
func IsSimilar(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return true
	}
	return Distance(la, lb) < SimilarityThreshold
}

// AddName records name on s.  Names similar to the canonical name or to an
// existing alias are ignored.  A new name strictly shorter than the canonical
// one becomes canonical and the previous canonical name is demoted to the
// aliases; otherwise the name is appended to the aliases.
//
// The outcome depends on the order names arrive in, so callers must feed
// sources in a fixed order.
func AddName(name string, s *Substance) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if s.Name == "" {
		s.Name = name
		return
	}
	if IsSimilar(name, s.Name) {
		return
	}
	for _, other := range s.OtherNames {
		if IsSimilar(name, other) {
			return
		}
	}
	if utf8.RuneCountInString(name) < utf8.RuneCountInString(s.Name) {
		s.OtherNames = append(s.OtherNames, s.Name)
		s.Name = name
		return
	}
	s.OtherNames = append(s.OtherNames, name)
}

//Personal.AI order the ending
