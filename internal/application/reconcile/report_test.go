package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

func TestEmit(t *testing.T) {
	reg := substance.NewRegistry()

	cmr := substance.New("Formaldehyde").WithCAS(substance.MustParseCAS("50-00-0"))
	cmr.CLPClassification = "Carc. 1B"
	cmr.OtherNames = []string{"Methanal", "Formalin"}

	pe := substance.New("Linalool").WithCAS(substance.MustParseCAS("78-70-6"))
	pe.EndocrineDisruptor = true

	both := substance.New("Unknown isomer").WithEC(substance.MustParseEC("200-001-8"))
	both.CIRCStandard = "2b"
	both.ReachIntentionConcern = "Endocrine disrupting properties"

	plain := substance.New("Water").WithCAS(substance.MustParseCAS("7732-18-5"))

	forbidden := substance.New("Banned").WithCAS(substance.MustParseCAS("5392-40-5"))
	forbidden.CLPClassification = "Muta. 2"
	forbidden.ForbiddenInEU = true

	prohibited := substance.New("Prohibited").WithCAS(substance.MustParseCAS("100-51-6"))
	prohibited.SelfClassified = true
	prohibited.IFRARestriction = "P"

	for _, s := range []*substance.Substance{cmr, pe, both, plain, forbidden, prohibited} {
		require.NoError(t, reg.Add(s))
	}

	got := Emit(reg, substance.DefaultInclusionPolicy())
	assert.Equal(t, []string{"Name", "Other names", "CAS", "CMR", "PE"}, got.Header)
	assert.Equal(t, [][]string{
		{"Formaldehyde", "Methanal / Formalin", "50-00-0", "yes", ""},
		{"Linalool", "", "78-70-6", "", "yes"},
		{"Unknown isomer", "", "", "yes", "yes"},
	}, got.Rows)
}

func TestEmit_ExcludeNCS(t *testing.T) {
	reg := substance.NewRegistry()
	s := substance.New("Rosemary oil").WithCAS(substance.MustParseCAS("8000-25-7"))
	s.NCS = "NCS"
	s.SelfClassified = true
	require.NoError(t, reg.Add(s))

	assert.Len(t, Emit(reg, substance.DefaultInclusionPolicy()).Rows, 1)

	policy := substance.DefaultInclusionPolicy()
	policy.ExcludeNCS = true
	assert.Empty(t, Emit(reg, policy).Rows)
}

func TestEmit_HeaderNotShared(t *testing.T) {
	got := Emit(substance.NewRegistry(), substance.DefaultInclusionPolicy())
	got.Header[0] = "changed"
	assert.Equal(t, "Name", ReportHeader[0])
	assert.Empty(t, got.Rows)
}

func TestCheckBase(t *testing.T) {
	opener := tabular.MemOpener{"sources/ifra.csv": "CAS,Name,NCS\n" +
		"50-00-0,Formaldehyde,\n" +
		"50-00-1,Typo,\n" +
		"not a cas,Blend,\n" +
		"64-17-5,Ethanol,\n"}
	d := NewDriver(opener, nil, nil, substance.DefaultInclusionPolicy())

	findings, rows, err := d.CheckBase(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, 4, rows)
	require.Len(t, findings, 2)

	assert.Equal(t, 3, findings[0].Line)
	assert.Equal(t, "Typo", findings[0].Name)
	assert.Equal(t, "50-00-1", findings[0].Value)
	assert.True(t, errors.IsCode(findings[0].Err, errors.ErrCodeInvalidChecksum))

	assert.Equal(t, 4, findings[1].Line)
	assert.True(t, errors.IsCode(findings[1].Err, errors.ErrCodeMalformedIdentifier))
}

func TestCheckBase_AgreesWithLoadBase(t *testing.T) {
	opener := tabular.MemOpener{"sources/ifra.csv": "CAS,Name,NCS\n" +
		" 50-00-0 ,Formaldehyde,\n" +
		"64-17-5\t,Ethanol,\n"}
	d := NewDriver(opener, nil, nil, substance.DefaultInclusionPolicy())

	findings, rows, err := d.CheckBase(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Empty(t, findings)

	reg := substance.NewRegistry()
	rep, err := d.LoadBase(context.Background(), base, reg)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Loaded)
}

func TestCheckBase_MissingFile(t *testing.T) {
	d := NewDriver(tabular.MemOpener{}, nil, nil, substance.DefaultInclusionPolicy())
	_, _, err := d.CheckBase(context.Background(), base)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSourceReadFailure))
}

func TestCheckBase_Cancelled(t *testing.T) {
	d := NewDriver(tabular.MemOpener{"sources/ifra.csv": ifraCSV}, nil, nil, substance.DefaultInclusionPolicy())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := d.CheckBase(ctx, base)
	assert.Error(t, err)
}

//Personal.AI order the ending
