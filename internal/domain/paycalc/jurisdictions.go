package paycalc

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Descriptor lists the ordered component fields that compose one
// jurisdiction's total withholding. Jurisdictions with a non-standard
// aggregation carry a Combine override; everything else is a plain sum.
// Adding a jurisdiction is a data change here, not a code change.
type Descriptor struct {
	Fields  []string
	Combine func(m TaxFieldMap) (decimal.Decimal, []TaxLine)
}

// FederalFields are shared by every jurisdiction and always aggregated
// separately from the jurisdiction components.
var FederalFields = []string{"federalIncomeTax", "socialSecurity", "medicare"}

func single(code string) Descriptor {
	return Descriptor{Fields: []string{strings.ToLower(code) + "StateIncomeTax"}}
}

// none marks jurisdictions with no employee-paid wage withholding at all.
func none() Descriptor {
	return Descriptor{}
}

var jurisdictions = map[string]Descriptor{
	"AL": single("AL"),
	"AK": none(),
	"AZ": single("AZ"),
	"AR": single("AR"),
	"CA": {Fields: []string{"caStateIncomeTax", "caSDI"}},
	"CO": {Fields: []string{"coStateIncomeTax", "coFAMLI"}},
	"CT": {Fields: []string{"ctStateIncomeTax", "ctPaidLeave"}},
	"DE": single("DE"),
	"DC": single("DC"),
	"FL": none(),
	"GA": single("GA"),
	"HI": {Fields: []string{"hiStateIncomeTax", "hiTDI"}},
	"ID": single("ID"),
	"IL": single("IL"),
	"IN": single("IN"),
	"IA": single("IA"),
	"KS": single("KS"),
	"KY": single("KY"),
	"LA": single("LA"),
	"ME": single("ME"),
	"MD": {
		Fields:  []string{"mdStateIncomeTax", "mdResidentLocalTax", "mdWorkLocalTax"},
		Combine: combineMaryland,
	},
	"MA": {Fields: []string{"maStateIncomeTax", "maPFML"}},
	"MI": single("MI"),
	"MN": single("MN"),
	"MS": single("MS"),
	"MO": single("MO"),
	"MT": single("MT"),
	"NE": single("NE"),
	"NV": none(),
	"NH": none(),
	"NJ": {Fields: []string{"njStateIncomeTax", "njSUI", "njSDI", "njFLI"}},
	"NM": single("NM"),
	"NY": {Fields: []string{"nyStateIncomeTax", "nySDI", "nyPFL"}},
	"NC": single("NC"),
	"ND": single("ND"),
	"OH": single("OH"),
	"OK": single("OK"),
	"OR": {Fields: []string{"orStateIncomeTax", "orPaidLeave", "orTransitTax"}},
	"PA": {Fields: []string{"paStateIncomeTax", "paSUI"}},
	"RI": {Fields: []string{"riStateIncomeTax", "riTDI"}},
	"SC": single("SC"),
	"SD": none(),
	"TN": none(),
	"TX": none(),
	"UT": single("UT"),
	"VT": single("VT"),
	"VA": single("VA"),
	"WA": {Fields: []string{"waPaidLeave", "waCares"}},
	"WV": single("WV"),
	"WI": single("WI"),
	"WY": none(),
}

// DescriptorFor looks up a jurisdiction's descriptor. Unknown codes fall
// back to the single-field <lowercased-code>StateIncomeTax convention.
func DescriptorFor(code string) (Descriptor, bool) {
	d, ok := jurisdictions[strings.ToUpper(strings.TrimSpace(code))]
	if ok {
		return d, true
	}
	return single(code), false
}

// RequiresLocality reports whether a jurisdiction needs a sub-jurisdiction
// (locality) code before estimation can run.
func RequiresLocality(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), "MD")
}

// combineMaryland resolves the residence/work locality pair: the resident
// county rate is preferred when nonzero, otherwise the work county rate.
// This tie-break is specific to Maryland and deliberately not generalized.
func combineMaryland(m TaxFieldMap) (decimal.Decimal, []TaxLine) {
	var lines []TaxLine
	state := m.Amount("mdStateIncomeTax")
	if !state.IsZero() {
		lines = append(lines, TaxLine{Field: "mdStateIncomeTax", Label: labelFor("mdStateIncomeTax"), Amount: state})
	}

	localField := "mdResidentLocalTax"
	local := m.Amount(localField)
	if local.IsZero() {
		localField = "mdWorkLocalTax"
		local = m.Amount(localField)
	}
	if !local.IsZero() {
		lines = append(lines, TaxLine{Field: localField, Label: labelFor(localField), Amount: local})
	}
	return state.Add(local), lines
}

var fieldLabels = map[string]string{
	"federalIncomeTax":   "Federal Income Tax",
	"socialSecurity":     "Social Security",
	"medicare":           "Medicare",
	"caSDI":              "CA Disability Insurance",
	"coFAMLI":            "CO Paid Family Leave",
	"ctPaidLeave":        "CT Paid Leave",
	"hiTDI":              "HI Disability Insurance",
	"maPFML":             "MA Paid Family Medical Leave",
	"mdResidentLocalTax": "MD Local Tax (Residence)",
	"mdWorkLocalTax":     "MD Local Tax (Work)",
	"njSUI":              "NJ Unemployment Insurance",
	"njSDI":              "NJ Disability Insurance",
	"njFLI":              "NJ Family Leave Insurance",
	"nySDI":              "NY Disability Insurance",
	"nyPFL":              "NY Paid Family Leave",
	"orPaidLeave":        "OR Paid Leave",
	"orTransitTax":       "OR Transit Tax",
	"paSUI":              "PA Unemployment Insurance",
	"riTDI":              "RI Disability Insurance",
	"waPaidLeave":        "WA Paid Family Medical Leave",
	"waCares":            "WA Cares Fund",
}

func labelFor(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	if prefix, found := strings.CutSuffix(field, "StateIncomeTax"); found && len(prefix) == 2 {
		return strings.ToUpper(prefix) + " State Income Tax"
	}
	return field
}
