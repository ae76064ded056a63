// Package substance holds the reconciliation domain: chemical identifiers,
// the Substance entity with its regulatory attributes, the alias resolver and
// the in-memory Registry that folds per-source records into one entity per
// substance.
package substance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

var (
	reCAS = regexp.MustCompile(`^\d{2,7}-\d{2}-\d{1,2}$`)
	reEC  = regexp.MustCompile(`^\d{3}-\d{3}-\d$`)
)

// Key is the truncated identity of an identifier: the first two segments.
// The trailing check digit is derived from them and never takes part in
// equality.
type Key struct {
	Head int
	Body int
}

// ─────────────────────────────────────────────────────────────────────────────
// CAS Registry Number
// ─────────────────────────────────────────────────────────────────────────────

// CAS is a validated CAS Registry Number.  The zero value is not valid; use
// ParseCAS.
type CAS struct {
	parts [3]int
}

// ParseCAS validates raw against the CAS pattern and check digit.
//
// The check digit is the sum of every digit of the first two segments
// weighted by its position counted from the right (rightmost weight 1),
// modulo 10.  Pattern failures return ErrCodeMalformedIdentifier, check
// digit failures ErrCodeInvalidChecksum.
func ParseCAS(raw string) (CAS, error) {
	if !reCAS.MatchString(raw) {
		return CAS{}, errors.MalformedIdentifier(raw).WithDetail("expected CAS number NN…N-NN-N")
	}
	segs := strings.Split(raw, "-")
	want := CASCheckDigit(segs[0] + segs[1])
	check, _ := strconv.Atoi(segs[2])
	if want != check {
		return CAS{}, errors.InvalidChecksum(raw, want)
	}

	var c CAS
	for i, s := range segs {
		c.parts[i], _ = strconv.Atoi(s)
	}
	return c, nil
}

// MustParseCAS is ParseCAS for literals known to be valid.  It panics on error.
func MustParseCAS(raw string) CAS {
	c, err := ParseCAS(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// CASCheckDigit computes the check digit for the concatenated digits of the
// first two CAS segments.
func CASCheckDigit(digits string) int {
	sum := 0
	n := len(digits)
	for i := 0; i < n; i++ {
		sum += int(digits[n-1-i]-'0') * (i + 1)
	}
	return sum % 10
}

// String renders the canonical form, zero-padding the middle segment to two
// digits regardless of how the number was written in the source.
func (c CAS) String() string {
	return fmt.Sprintf("%d-%02d-%d", c.parts[0], c.parts[1], c.parts[2])
}

// Parts returns the three numeric segments.
func (c CAS) Parts() [3]int { return c.parts }

// Key returns the truncated identity used for equality and indexing.
func (c CAS) Key() Key { return Key{Head: c.parts[0], Body: c.parts[1]} }

// Equal compares the first two segments only.
func (c CAS) Equal(o CAS) bool { return c.Key() == o.Key() }

// ─────────────────────────────────────────────────────────────────────────────
// EC number
// ─────────────────────────────────────────────────────────────────────────────

// EC is a European Community inventory number.  It has the same three-part
// shape as a CAS number but carries no check digit validation.
type EC struct {
	parts [3]int
}

// ParseEC validates raw against the EC pattern NNN-NNN-N.
func ParseEC(raw string) (EC, error) {
	if !reEC.MatchString(raw) {
		return EC{}, errors.MalformedIdentifier(raw).WithDetail("expected EC number NNN-NNN-N")
	}
	var e EC
	for i, s := range strings.Split(raw, "-") {
		e.parts[i], _ = strconv.Atoi(s)
	}
	return e, nil
}

// MustParseEC is ParseEC for literals known to be valid.  It panics on error.
func MustParseEC(raw string) EC {
	e, err := ParseEC(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e EC) String() string {
	return fmt.Sprintf("%03d-%03d-%d", e.parts[0], e.parts[1], e.parts[2])
}

// Key returns the truncated identity used for equality and indexing.
func (e EC) Key() Key { return Key{Head: e.parts[0], Body: e.parts[1]} }

// Equal compares the first two segments only.
func (e EC) Equal(o EC) bool { return e.Key() == o.Key() }

//Personal.AI order the ending
