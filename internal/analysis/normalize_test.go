package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorwatch/internal/model"
)

const validPayload = `{
  "vendorName": "Acme Corp",
  "securityPostureScore": 80,
  "threatExposureScore": 60,
  "summary": "Solid posture, moderate exposure.",
  "riskFactors": [
    {"name": "SSL/TLS Configuration", "score": 85, "summary": "Modern TLS.", "references": ["TLS 1.3 supported"]},
    {"name": "Known Breach", "score": 70, "summary": "No recent breaches."}
  ],
  "recommendations": ["Enable DMARC enforcement"]
}`

func TestNormalizeValidPayload(t *testing.T) {
	result, err := Normalize(validPayload, weights(70, 30))
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", result.VendorName)
	assert.Equal(t, 80.0, result.SecurityPostureScore)
	assert.Equal(t, 60.0, result.ThreatExposureScore)
	assert.Len(t, result.RiskFactors, 2)
	assert.Equal(t, []string{"Enable DMARC enforcement"}, result.Recommendations)
	// 80*0.7 + 60*0.3
	assert.Equal(t, 74.0, result.OverallScore)
}

func TestNormalizeStripsFence(t *testing.T) {
	fenced := "Here is the report:\n```json\n" + validPayload + "\n```\nLet me know if you need more."
	result, err := Normalize(fenced, weights(70, 30))
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", result.VendorName)

	bare := "```\n" + validPayload + "\n```"
	result, err = Normalize(bare, weights(70, 30))
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", result.VendorName)
}

func TestNormalizeParseError(t *testing.T) {
	_, err := Normalize(`{"vendorName": "Acme",}`, weights(70, 30))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestNormalizeValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{
			"missing vendor name",
			`{"securityPostureScore": 80, "threatExposureScore": 60, "summary": "s", "riskFactors": [{"name": "n", "score": 1, "summary": "s"}]}`,
			"vendorName",
		},
		{
			"missing posture score",
			`{"vendorName": "Acme", "threatExposureScore": 60, "summary": "s", "riskFactors": [{"name": "n", "score": 1, "summary": "s"}]}`,
			"securityPostureScore",
		},
		{
			"empty risk factors",
			`{"vendorName": "Acme", "securityPostureScore": 80, "threatExposureScore": 60, "summary": "s", "riskFactors": []}`,
			"riskFactors",
		},
		{
			"factor missing summary",
			`{"vendorName": "Acme", "securityPostureScore": 80, "threatExposureScore": 60, "summary": "s", "riskFactors": [{"name": "n", "score": 1}]}`,
			"riskFactors[0].summary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.payload, weights(70, 30))
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestNormalizeClampsScores(t *testing.T) {
	payload := `{
	  "vendorName": "Acme",
	  "securityPostureScore": 120,
	  "threatExposureScore": -10,
	  "summary": "s",
	  "riskFactors": [{"name": "DNS Health", "score": 105, "summary": "s"}]
	}`
	result, err := Normalize(payload, weights(100, 0))
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.SecurityPostureScore)
	assert.Equal(t, 0.0, result.ThreatExposureScore)
	assert.Equal(t, 100.0, result.RiskFactors[0].Score)
}

func TestNormalizeIgnoresBackendOverallScore(t *testing.T) {
	payload := `{
	  "vendorName": "Acme",
	  "overallScore": 3,
	  "securityPostureScore": 80,
	  "threatExposureScore": 60,
	  "summary": "s",
	  "riskFactors": [{"name": "n", "score": 90, "summary": "s"}]
	}`
	result, err := Normalize(payload, weights(70, 30))
	require.NoError(t, err)
	assert.Equal(t, 74.0, result.OverallScore)
}

func TestDedupSources(t *testing.T) {
	sources := []model.Source{
		{Title: "First", URI: "https://a.example"},
		{Title: "Second", URI: "https://b.example"},
		{Title: "Duplicate of first", URI: "https://a.example"},
	}
	deduped := DedupSources(sources)
	require.Len(t, deduped, 2)
	assert.Equal(t, "First", deduped[0].Title)
	assert.Equal(t, "Second", deduped[1].Title)
}

func TestNormalizeContract(t *testing.T) {
	payload := `{
	  "strengths": ["48 hour breach notification"],
	  "weaknesses": ["low liability cap"],
	  "overallAssessment": "Moderate protection."
	}`
	result, err := NormalizeContract(payload)
	require.NoError(t, err)
	assert.Equal(t, "Moderate protection.", result.OverallAssessment)

	_, err = NormalizeContract(`{"strengths": [], "weaknesses": []}`)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "overallAssessment", validationErr.Field)
}
