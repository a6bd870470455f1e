package records

import "strings"

// saveFields are required before progress can be saved.
var saveFields = []struct {
	name  string
	value func(HeaderData) string
}{
	{"system", func(h HeaderData) string { return h.System }},
	{"testCycle", func(h HeaderData) string { return h.TestCycle }},
	{"testCase", func(h HeaderData) string { return h.TestCase }},
	{"testType", func(h HeaderData) string { return h.TestType }},
	{"testTypeValue", func(h HeaderData) string { return h.TestTypeValue }},
}

// ValidateForSave checks the fields needed to persist progress. The verdict
// (TestName) is not required.
func ValidateForSave(h HeaderData) Validation {
	missing := []string{}
	for _, f := range saveFields {
		if strings.TrimSpace(f.value(h)) == "" {
			missing = append(missing, f.name)
		}
	}
	return Validation{IsValid: len(missing) == 0, MissingFields: missing}
}

// ValidateForPDF checks the fields needed to generate a report: everything
// ValidateForSave needs plus the verdict.
func ValidateForPDF(h HeaderData) Validation {
	v := ValidateForSave(h)
	if strings.TrimSpace(h.TestName) == "" {
		v.MissingFields = append([]string{"testName"}, v.MissingFields...)
	}
	v.IsValid = len(v.MissingFields) == 0
	return v
}
