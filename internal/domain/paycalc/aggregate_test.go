package paycalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTaxesNewJersey(t *testing.T) {
	m := TaxFieldMap{
		"njStateIncomeTax": dec("40"),
		"njSUI":            dec("5"),
		"njSDI":            dec("3"),
		"njFLI":            dec("2"),
		"federalIncomeTax": dec("120"),
		"socialSecurity":   dec("62"),
		"medicare":         dec("14.50"),
	}

	breakdown := AggregateTaxes(m, "NJ", ClassificationEmployee)

	assert.Equal(t, "50.00", breakdown.JurisdictionTotal.StringFixed(2))
	assert.Equal(t, "196.50", breakdown.FederalTotal.StringFixed(2))
	assert.Equal(t, "246.50", breakdown.Total.StringFixed(2))

	require.Len(t, breakdown.JurisdictionLines, 4)
	assert.Equal(t, "njStateIncomeTax", breakdown.JurisdictionLines[0].Field)
	assert.Equal(t, "njSUI", breakdown.JurisdictionLines[1].Field)
	assert.Equal(t, "njSDI", breakdown.JurisdictionLines[2].Field)
	assert.Equal(t, "njFLI", breakdown.JurisdictionLines[3].Field)
	assert.Equal(t, "NJ Family Leave Insurance", breakdown.JurisdictionLines[3].Label)

	require.Len(t, breakdown.FederalLines, 3)
	assert.Equal(t, "Federal Income Tax", breakdown.FederalLines[0].Label)
}

func TestAggregateTaxesIgnoresOtherJurisdictions(t *testing.T) {
	m := TaxFieldMap{
		"ilStateIncomeTax": dec("55"),
		"caStateIncomeTax": dec("999"),
		"caSDI":            dec("999"),
	}

	breakdown := AggregateTaxes(m, "IL", ClassificationEmployee)

	assert.Equal(t, "55.00", breakdown.JurisdictionTotal.StringFixed(2))
	require.Len(t, breakdown.JurisdictionLines, 1)
	assert.Equal(t, "ilStateIncomeTax", breakdown.JurisdictionLines[0].Field)
	assert.Equal(t, "IL State Income Tax", breakdown.JurisdictionLines[0].Label)
}

func TestAggregateTaxesZeroComponentsOmitted(t *testing.T) {
	m := TaxFieldMap{
		"nyStateIncomeTax": dec("80"),
		"nySDI":            dec("0"),
		"nyPFL":            dec("4.25"),
	}

	breakdown := AggregateTaxes(m, "NY", ClassificationEmployee)

	assert.Equal(t, "84.25", breakdown.JurisdictionTotal.StringFixed(2))
	require.Len(t, breakdown.JurisdictionLines, 2)
	assert.Equal(t, "nyStateIncomeTax", breakdown.JurisdictionLines[0].Field)
	assert.Equal(t, "nyPFL", breakdown.JurisdictionLines[1].Field)
}

func TestAggregateTaxesNoTaxState(t *testing.T) {
	m := TaxFieldMap{
		"federalIncomeTax": dec("100"),
		"socialSecurity":   dec("50"),
		"medicare":         dec("12"),
	}

	breakdown := AggregateTaxes(m, "TX", ClassificationEmployee)

	assert.True(t, breakdown.JurisdictionTotal.IsZero())
	assert.Nil(t, breakdown.JurisdictionLines)
	assert.Equal(t, "162.00", breakdown.Total.StringFixed(2))
}

func TestAggregateTaxesWashingtonHasNoIncomeTaxComponent(t *testing.T) {
	m := TaxFieldMap{
		"waPaidLeave": dec("9.80"),
		"waCares":     dec("5.22"),
	}

	breakdown := AggregateTaxes(m, "WA", ClassificationEmployee)

	assert.Equal(t, "15.02", breakdown.JurisdictionTotal.StringFixed(2))
	require.Len(t, breakdown.JurisdictionLines, 2)
	assert.Equal(t, "waPaidLeave", breakdown.JurisdictionLines[0].Field)
}

func TestAggregateTaxesUnknownCodeFallsBack(t *testing.T) {
	m := TaxFieldMap{"zzStateIncomeTax": dec("33")}

	breakdown := AggregateTaxes(m, "ZZ", ClassificationEmployee)

	assert.Equal(t, "33.00", breakdown.JurisdictionTotal.StringFixed(2))
	require.Len(t, breakdown.JurisdictionLines, 1)
	assert.Equal(t, "zzStateIncomeTax", breakdown.JurisdictionLines[0].Field)
	assert.Equal(t, "ZZ State Income Tax", breakdown.JurisdictionLines[0].Label)
}

func TestAggregateTaxesContractor(t *testing.T) {
	m := TaxFieldMap{
		"njStateIncomeTax": dec("40"),
		"federalIncomeTax": dec("120"),
		"socialSecurity":   dec("62"),
	}

	breakdown := AggregateTaxes(m, "NJ", ClassificationContractor)

	assert.True(t, breakdown.Total.IsZero())
	assert.True(t, breakdown.FederalTotal.IsZero())
	assert.True(t, breakdown.JurisdictionTotal.IsZero())
	assert.Nil(t, breakdown.FederalLines)
	assert.Nil(t, breakdown.JurisdictionLines)
}

func TestAggregateTaxesMissingFieldsZeroFill(t *testing.T) {
	breakdown := AggregateTaxes(TaxFieldMap{}, "CA", ClassificationEmployee)
	assert.True(t, breakdown.Total.IsZero())
	assert.Nil(t, breakdown.FederalLines)
}

func TestCombineMarylandPrefersResidentRate(t *testing.T) {
	m := TaxFieldMap{
		"mdStateIncomeTax":   dec("70"),
		"mdResidentLocalTax": dec("21"),
		"mdWorkLocalTax":     dec("18"),
	}

	breakdown := AggregateTaxes(m, "MD", ClassificationEmployee)

	assert.Equal(t, "91.00", breakdown.JurisdictionTotal.StringFixed(2))
	require.Len(t, breakdown.JurisdictionLines, 2)
	assert.Equal(t, "mdResidentLocalTax", breakdown.JurisdictionLines[1].Field)
}

func TestCombineMarylandFallsBackToWorkRate(t *testing.T) {
	m := TaxFieldMap{
		"mdStateIncomeTax": dec("70"),
		"mdWorkLocalTax":   dec("18"),
	}

	breakdown := AggregateTaxes(m, "MD", ClassificationEmployee)

	assert.Equal(t, "88.00", breakdown.JurisdictionTotal.StringFixed(2))
	require.Len(t, breakdown.JurisdictionLines, 2)
	assert.Equal(t, "mdWorkLocalTax", breakdown.JurisdictionLines[1].Field)
}

func TestDescriptorFor(t *testing.T) {
	d, known := DescriptorFor("nj")
	assert.True(t, known)
	assert.Equal(t, []string{"njStateIncomeTax", "njSUI", "njSDI", "njFLI"}, d.Fields)

	d, known = DescriptorFor("ZZ")
	assert.False(t, known)
	assert.Equal(t, []string{"zzStateIncomeTax"}, d.Fields)

	d, known = DescriptorFor("FL")
	assert.True(t, known)
	assert.Empty(t, d.Fields)
}

func TestRequiresLocality(t *testing.T) {
	assert.True(t, RequiresLocality("MD"))
	assert.True(t, RequiresLocality("md"))
	assert.False(t, RequiresLocality("NJ"))
}
