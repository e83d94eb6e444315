package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vendorwatch/internal/model"
)

func weights(posture, exposure float64) model.Settings {
	return model.Settings{PostureWeight: posture, ExposureWeight: exposure}
}

func TestOverallScoreWeightedMean(t *testing.T) {
	tests := []struct {
		name     string
		posture  float64
		threat   float64
		settings model.Settings
		want     float64
	}{
		{"equal scores", 90, 90, weights(70, 30), 90.0},
		{"posture dominant", 80, 60, weights(70, 30), 74.0},
		{"even split rounds to one decimal", 85, 70, weights(50, 50), 77.5},
		{"weights need not sum to 100", 80, 60, weights(7, 3), 74.0},
		{"exposure only", 80, 60, weights(0, 100), 60.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &model.AnalysisResult{
				SecurityPostureScore: tt.posture,
				ThreatExposureScore:  tt.threat,
				RiskFactors: []model.RiskFactor{
					{Name: "SSL/TLS Configuration", Score: 95},
				},
			}
			require.Equal(t, tt.want, overallScore(result, tt.settings))
		})
	}
}

func TestOverallScoreCriticalFindingOverride(t *testing.T) {
	result := &model.AnalysisResult{
		SecurityPostureScore: 90,
		ThreatExposureScore:  90,
		RiskFactors: []model.RiskFactor{
			{Name: "Known Breach", Score: 20},
		},
	}
	require.Equal(t, 50.0, overallScore(result, weights(70, 30)))

	result.RiskFactors = []model.RiskFactor{
		{Name: "Information Leak", Score: 39},
	}
	require.Equal(t, 50.0, overallScore(result, weights(70, 30)))
}

func TestOverallScoreOverrideDoesNotRaise(t *testing.T) {
	// The override caps the score, it never lifts a weaker one.
	result := &model.AnalysisResult{
		SecurityPostureScore: 30,
		ThreatExposureScore:  30,
		RiskFactors: []model.RiskFactor{
			{Name: "Known Breach", Score: 10},
		},
	}
	require.Equal(t, 30.0, overallScore(result, weights(70, 30)))
}

func TestOverallScoreCriticalFactorAtThreshold(t *testing.T) {
	// Exactly 40 is not a critical finding.
	result := &model.AnalysisResult{
		SecurityPostureScore: 90,
		ThreatExposureScore:  90,
		RiskFactors: []model.RiskFactor{
			{Name: "Known Breach", Score: 40},
		},
	}
	require.Equal(t, 90.0, overallScore(result, weights(70, 30)))
}

func TestOverallScoreZeroWeightsNeutral(t *testing.T) {
	result := &model.AnalysisResult{
		SecurityPostureScore: 95,
		ThreatExposureScore:  5,
		RiskFactors: []model.RiskFactor{
			{Name: "Known Breach", Score: 5},
		},
	}
	require.Equal(t, 50.0, overallScore(result, weights(0, 0)))
}
