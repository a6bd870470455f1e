package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidation(t *testing.T) {
	full := fullHeader()
	noVerdict := full
	noVerdict.TestName = ""
	blankCase := full
	blankCase.TestCase = "   "

	tests := []struct {
		name        string
		header      HeaderData
		saveMissing []string
		pdfMissing  []string
	}{
		{"complete", full, []string{}, []string{}},
		{"verdict only missing", noVerdict, []string{}, []string{"testName"}},
		{"whitespace counts as empty", blankCase, []string{"testCase"}, []string{"testCase"}},
		{
			"empty header",
			HeaderData{},
			[]string{"system", "testCycle", "testCase", "testType", "testTypeValue"},
			[]string{"testName", "system", "testCycle", "testCase", "testType", "testTypeValue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			save := ValidateForSave(tt.header)
			assert.Equal(t, tt.saveMissing, save.MissingFields)
			assert.Equal(t, len(tt.saveMissing) == 0, save.IsValid)

			pdf := ValidateForPDF(tt.header)
			assert.Equal(t, tt.pdfMissing, pdf.MissingFields)
			assert.Equal(t, len(tt.pdfMissing) == 0, pdf.IsValid)

			// Anything valid for a report is valid for saving.
			if pdf.IsValid {
				assert.True(t, save.IsValid)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("done").Valid())
}
