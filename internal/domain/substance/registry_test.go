package substance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

func newCAS(name, cas string) *Substance {
	return New(name).WithCAS(MustParseCAS(cas))
}

func TestRegistry_AddAndFind(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(newCAS("Formaldehyde", "50-00-0")))
	require.NoError(t, r.Add(newCAS("Ethanol", "64-17-5")))
	require.NoError(t, r.Add(New("Unknown resin").WithEC(MustParseEC("500-033-5"))))

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, "Formaldehyde", r.Find(MustParseCAS("50-00-0")).Name)
	assert.Nil(t, r.Find(MustParseCAS("7732-18-5")))
	assert.Equal(t, "Unknown resin", r.FindEC(MustParseEC("500-033-5")).Name)
	assert.Nil(t, r.FindEC(MustParseEC("200-001-8")))

	names := []string{}
	for _, s := range r.All() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Formaldehyde", "Ethanol", "Unknown resin"}, names)
}

func TestRegistry_AddDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(newCAS("Formaldehyde", "50-00-0")))

	err := r.Add(newCAS("Methanal", "50-00-0"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicateSubstance))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_UpsertMerges(t *testing.T) {
	r := NewRegistry()
	base := newCAS("Formaldehyde", "50-00-0")
	require.NoError(t, r.Add(base))

	in := newCAS("Formaldehyde solution", "50-00-0").WithEC(MustParseEC("200-001-8"))
	in.CLPClassification = "Carc. 1B"
	got, inserted, err := r.Upsert(in)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Same(t, base, got)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "Carc. 1B", base.CLPClassification)
	assert.Equal(t, []string{"Formaldehyde solution"}, base.OtherNames)

	// adopted EC is indexed
	assert.Same(t, base, r.FindEC(MustParseEC("200-001-8")))
}

func TestRegistry_UpsertInsertsOnMiss(t *testing.T) {
	r := NewRegistry()
	s := newCAS("Citral", "5392-40-5")
	got, inserted, err := r.Upsert(s)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_MergeConflict(t *testing.T) {
	r := NewRegistry()
	ethanol := newCAS("Ethanol", "64-17-5")
	formaldehyde := newCAS("Formaldehyde", "50-00-0")
	require.NoError(t, r.Add(ethanol))
	require.NoError(t, r.Add(formaldehyde))

	err := r.Merge(ethanol, formaldehyde)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflictingMerge))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "Ethanol", ethanol.Name)
	assert.Empty(t, ethanol.OtherNames)
	assert.Equal(t, "64-17-5", ethanol.CASString())
	assert.Equal(t, "Formaldehyde", formaldehyde.Name)
	assert.Equal(t, "50-00-0", formaldehyde.CASString())
	assert.Same(t, ethanol, r.Find(MustParseCAS("64-17-5")))
	assert.Same(t, formaldehyde, r.Find(MustParseCAS("50-00-0")))
}

func TestRegistry_MergeConflictOnEC(t *testing.T) {
	r := NewRegistry()
	a := New("A").WithEC(MustParseEC("200-001-8"))
	b := New("B").WithEC(MustParseEC("200-578-6"))
	err := r.Merge(a, b)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflictingMerge))
	assert.Equal(t, "A", a.Name)
}

func TestRegistry_UpsertConflictKeepsBoth(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(newCAS("Formaldehyde", "50-00-0").WithEC(MustParseEC("200-001-8"))))

	// same EC, different CAS
	in := newCAS("Ethanol", "64-17-5").WithEC(MustParseEC("200-001-8"))
	got, inserted, err := r.Upsert(in)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflictingMerge))
	assert.True(t, inserted)
	assert.Same(t, in, got)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_MergeSelf(t *testing.T) {
	r := NewRegistry()
	s := newCAS("Formaldehyde", "50-00-0")
	require.NoError(t, r.Add(s))
	assert.NoError(t, r.Merge(s, s))
	assert.Empty(t, s.OtherNames)
}

func TestRegistry_ForEachMatch(t *testing.T) {
	r := NewRegistry()
	// isomer group sharing a CAS root; Add would refuse the second entry
	a := newCAS("Ionone", "8013-90-9")
	b := newCAS("Ionone mixture", "8013-90-9")
	r.insert(a)
	r.insert(b)

	var seen []string
	n := r.ForEachMatch(MustParseCAS("8013-90-9"), func(s *Substance) {
		seen = append(seen, s.Name)
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Ionone", "Ionone mixture"}, seen)

	n = r.ForEachMatch(MustParseCAS("50-00-0"), func(*Substance) { t.Fatal("unexpected match") })
	assert.Zero(t, n)
	assert.Zero(t, r.ForEachMatchEC(MustParseEC("200-001-8"), func(*Substance) {}))
}

func TestRegistry_UpdatePassIdempotent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(newCAS("Formaldehyde", "50-00-0")))

	pass := func() {
		r.ForEachMatch(MustParseCAS("50-00-0"), func(s *Substance) {
			AttrCLPClassification.Apply(s, "Carc. 1B")
			AttrEndocrineDisruptor.Apply(s)
			AddName("Methanal", s)
		})
	}
	pass()
	first := *r.Find(MustParseCAS("50-00-0"))
	first.OtherNames = append([]string(nil), first.OtherNames...)
	pass()
	assert.Equal(t, first, *r.Find(MustParseCAS("50-00-0")))
}

//Personal.AI order the ending
