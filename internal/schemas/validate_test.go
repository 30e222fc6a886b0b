package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ParsedJob(t *testing.T) {
	doc := []byte(`{
		"company": "Acme",
		"role_title": "Senior Engineer",
		"requirements": [
			{"text": "5 years of Go", "category": "required", "keywords": ["go"]}
		]
	}`)
	require.NoError(t, Validate("parsed_job", doc))
}

func TestValidate_ParsedJob_BadCategory(t *testing.T) {
	doc := []byte(`{
		"company": "Acme",
		"role_title": "Senior Engineer",
		"requirements": [
			{"text": "5 years of Go", "category": "mandatory"}
		]
	}`)

	err := Validate("parsed_job", doc)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parsed_job", verr.Schema)
	assert.NotEmpty(t, verr.Errors)
}

func TestValidate_ParsedJob_NoRequirements(t *testing.T) {
	doc := []byte(`{"company": "Acme", "role_title": "Engineer", "requirements": []}`)

	var verr *ValidationError
	require.ErrorAs(t, Validate("parsed_job", doc), &verr)
}

func TestValidate_FactCheckReport(t *testing.T) {
	doc := []byte(`{
		"findings": [
			{"claim": "Led a team of 40", "verdict": "inflated", "evidence": "master resume says 4", "document": "resume"}
		]
	}`)
	require.NoError(t, Validate("fact_check_report", doc))

	bad := []byte(`{"findings": [{"claim": "x", "verdict": "dubious"}]}`)
	var verr *ValidationError
	require.ErrorAs(t, Validate("fact_check_report", bad), &verr)
}

func TestValidate_TailoredResume_EmptyMarkdown(t *testing.T) {
	var verr *ValidationError
	require.ErrorAs(t, Validate("tailored_resume", []byte(`{"markdown": ""}`)), &verr)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("no_such_schema", []byte(`{}`))
	require.Error(t, err)

	var lerr *SchemaLoadError
	assert.ErrorAs(t, err, &lerr)
}
