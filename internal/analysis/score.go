package analysis

import (
	"math"

	"vendorwatch/internal/model"
)

// overallScore composes the posture and exposure sub-scores into the
// final 0-100 risk score, rounded to one decimal place.
//
// When both weights are zero the score is a neutral 50.0 (there is
// nothing to weigh, and it avoids division by zero). A "Known Breach"
// or "Information Leak" factor scoring below 40 caps the result at 50
// regardless of how strong the weighted mean is.
func overallScore(result *model.AnalysisResult, settings model.Settings) float64 {
	totalWeight := settings.PostureWeight + settings.ExposureWeight
	if totalWeight == 0 {
		return 50.0
	}

	weighted := result.SecurityPostureScore*(settings.PostureWeight/totalWeight) +
		result.ThreatExposureScore*(settings.ExposureWeight/totalWeight)

	if hasCriticalFinding(result.RiskFactors) {
		weighted = math.Min(weighted, 50.0)
	}

	return math.Round(weighted*10) / 10
}

func hasCriticalFinding(factors []model.RiskFactor) bool {
	for _, f := range factors {
		if (f.Name == factorKnownBreach || f.Name == factorInformationLeak) && f.Score < 40 {
			return true
		}
	}
	return false
}
