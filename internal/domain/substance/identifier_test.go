package substance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

func TestParseCAS_Valid(t *testing.T) {
	cases := []string{
		"50-00-0",   // formaldehyde
		"64-17-5",   // ethanol
		"7732-18-5", // water
		"78-70-6",   // linalool
		"5392-40-5", // citral
	}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			c, err := ParseCAS(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, c.String())
		})
	}
}

func TestParseCAS_Malformed(t *testing.T) {
	cases := []string{"", "abc", "5-00-0", "50-0-0", "50-000-0", "12345678-00-0", "50_00_0", " 50-00-0"}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseCAS(raw)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedIdentifier))
		})
	}
}

func TestParseCAS_InvalidChecksum(t *testing.T) {
	_, err := ParseCAS("123-45-0")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidChecksum))
	assert.Contains(t, err.Error(), "expected check digit 5")

	_, err = ParseCAS("50-00-1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidChecksum))
}

func TestCASCheckDigit(t *testing.T) {
	assert.Equal(t, 0, CASCheckDigit("5000"))
	assert.Equal(t, 5, CASCheckDigit("6417"))
	assert.Equal(t, 5, CASCheckDigit("12345"))
	assert.Equal(t, 5, CASCheckDigit("773218"))
}

func TestCAS_Equal(t *testing.T) {
	a := MustParseCAS("64-17-5")
	b := MustParseCAS("64-17-5")
	c := MustParseCAS("50-00-0")

	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
	assert.Equal(t, Key{Head: 64, Body: 17}, a.Key())
	assert.Equal(t, [3]int{64, 17, 5}, a.Parts())
}

func TestCAS_EqualIgnoresCheckDigit(t *testing.T) {
	a := CAS{parts: [3]int{123, 45, 6}}
	b := CAS{parts: [3]int{123, 45, 9}}
	assert.True(t, a.Equal(b))
}

func TestCAS_StringPadsMiddleSegment(t *testing.T) {
	c := CAS{parts: [3]int{7440, 5, 3}}
	assert.Equal(t, "7440-05-3", c.String())
}

func TestMustParseCAS_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseCAS("50-00-1") })
}

func TestParseEC(t *testing.T) {
	e, err := ParseEC("200-001-8")
	require.NoError(t, err)
	assert.Equal(t, "200-001-8", e.String())
	assert.Equal(t, Key{Head: 200, Body: 1}, e.Key())

	// no check digit validation
	e2, err := ParseEC("200-001-0")
	require.NoError(t, err)
	assert.True(t, e.Equal(e2))

	for _, raw := range []string{"", "200-01-8", "2000-001-8", "200-001-88", "-"} {
		_, err := ParseEC(raw)
		assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedIdentifier), raw)
	}
}

//Personal.AI order the ending
