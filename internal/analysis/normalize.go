package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"vendorwatch/internal/model"
)

var fenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripFence removes an optional fenced-code wrapper around the JSON
// payload and trims surrounding whitespace.
func stripFence(raw string) string {
	if m := fenceRegex.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// Raw shapes use pointers so missing fields are distinguishable from
// zero values during validation.
type rawRiskFactor struct {
	Name       *string  `json:"name"`
	Score      *float64 `json:"score"`
	Summary    *string  `json:"summary"`
	References []string `json:"references"`
}

type rawAnalysis struct {
	VendorName           *string               `json:"vendorName"`
	SecurityPostureScore *float64              `json:"securityPostureScore"`
	ThreatExposureScore  *float64              `json:"threatExposureScore"`
	Summary              *string               `json:"summary"`
	RiskFactors          []rawRiskFactor       `json:"riskFactors"`
	Compliance           *model.ComplianceInfo `json:"compliance"`
	Recommendations      []string              `json:"recommendations"`
}

// Normalize parses raw backend output, validates it against the
// canonical schema, and computes the composite overall score. Scores
// outside [0,100] are clamped rather than rejected: backend output is
// advisory, not adversarial. Never mutates settings, never persists.
func Normalize(raw string, settings model.Settings) (*model.AnalysisResult, error) {
	payload := stripFence(raw)

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &ValidationError{Field: typeErr.Field}
		}
		return nil, &ParseError{Err: err}
	}

	switch {
	case parsed.VendorName == nil || *parsed.VendorName == "":
		return nil, &ValidationError{Field: "vendorName"}
	case parsed.SecurityPostureScore == nil:
		return nil, &ValidationError{Field: "securityPostureScore"}
	case parsed.ThreatExposureScore == nil:
		return nil, &ValidationError{Field: "threatExposureScore"}
	case parsed.Summary == nil:
		return nil, &ValidationError{Field: "summary"}
	case len(parsed.RiskFactors) == 0:
		return nil, &ValidationError{Field: "riskFactors"}
	}

	factors := make([]model.RiskFactor, 0, len(parsed.RiskFactors))
	for i, f := range parsed.RiskFactors {
		switch {
		case f.Name == nil || *f.Name == "":
			return nil, &ValidationError{Field: fmt.Sprintf("riskFactors[%d].name", i)}
		case f.Score == nil:
			return nil, &ValidationError{Field: fmt.Sprintf("riskFactors[%d].score", i)}
		case f.Summary == nil:
			return nil, &ValidationError{Field: fmt.Sprintf("riskFactors[%d].summary", i)}
		}
		factors = append(factors, model.RiskFactor{
			Name:       *f.Name,
			Score:      clampScore(*f.Score),
			Summary:    *f.Summary,
			References: f.References,
		})
	}

	result := &model.AnalysisResult{
		VendorName:           *parsed.VendorName,
		SecurityPostureScore: clampScore(*parsed.SecurityPostureScore),
		ThreatExposureScore:  clampScore(*parsed.ThreatExposureScore),
		Summary:              *parsed.Summary,
		RiskFactors:          factors,
		Compliance:           parsed.Compliance,
		Recommendations:      parsed.Recommendations,
	}
	result.OverallScore = overallScore(result, settings)
	return result, nil
}

// NormalizeContract parses and validates a contract-review response.
func NormalizeContract(raw string) (*model.ContractAnalysisResult, error) {
	payload := stripFence(raw)

	var parsed struct {
		Strengths         []string `json:"strengths"`
		Weaknesses        []string `json:"weaknesses"`
		OverallAssessment *string  `json:"overallAssessment"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &ValidationError{Field: typeErr.Field}
		}
		return nil, &ParseError{Err: err}
	}
	if parsed.OverallAssessment == nil {
		return nil, &ValidationError{Field: "overallAssessment"}
	}

	return &model.ContractAnalysisResult{
		Strengths:         parsed.Strengths,
		Weaknesses:        parsed.Weaknesses,
		OverallAssessment: *parsed.OverallAssessment,
	}, nil
}

// DedupSources drops citations whose URI was already seen, preserving
// encounter order. The first occurrence wins.
func DedupSources(sources []model.Source) []model.Source {
	seen := make(map[string]bool, len(sources))
	deduped := make([]model.Source, 0, len(sources))
	for _, s := range sources {
		if seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		deduped = append(deduped, s)
	}
	return deduped
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
