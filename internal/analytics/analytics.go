// Package analytics derives portfolio statistics from a user's stored
// report collection. Everything here is a pure function over the input
// slice: no store access, no errors, zero values on empty input.
package analytics

import (
	"sort"
	"time"

	"vendorwatch/internal/model"
)

type FactorAverage struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ScoreDistribution buckets unique vendors by their latest overall
// score: low risk >= 80, medium 50-79, high < 50.
type ScoreDistribution struct {
	LowRisk    int `json:"lowRisk"`
	MediumRisk int `json:"mediumRisk"`
	HighRisk   int `json:"highRisk"`
}

// TrendPoint is one calendar month of scoring history. VendorScores
// only lists vendors that were actually scanned that month.
type TrendPoint struct {
	Month        string             `json:"month"`
	AverageScore float64            `json:"averageScore"`
	VendorScores map[string]float64 `json:"vendorScores"`
}

type VendorPerformance struct {
	Name          string                `json:"name"`
	Domain        string                `json:"domain"`
	LastScore     float64               `json:"lastScore"`
	SecurityScore float64               `json:"securityScore"`
	ThreatScore   float64               `json:"threatScore"`
	ReportsCount  int                   `json:"reportsCount"`
	LatestReport  model.Report          `json:"latestReport"`
	Compliance    *model.ComplianceInfo `json:"compliance,omitempty"`
}

type Summary struct {
	TotalReports          int                 `json:"totalReports"`
	AverageOverallScore   float64             `json:"averageOverallScore"`
	RiskFactorAverages    []FactorAverage     `json:"riskFactorAverages"`
	ScoreDistribution     ScoreDistribution   `json:"scoreDistribution"`
	BestPerformingVendor  *model.Report       `json:"bestPerformingVendor,omitempty"`
	WorstPerformingVendor *model.Report       `json:"worstPerformingVendor,omitempty"`
	ScoreTrend            []TrendPoint        `json:"scoreTrend"`
	VendorPerformance     []VendorPerformance `json:"vendorPerformance"`
}

// Compute aggregates the full report collection into portfolio views.
// Repeated re-scans of the same vendor count once in the distribution
// and best/worst stats (latest report wins); the trend series uses
// every report.
func Compute(reports []model.Report) Summary {
	s := Summary{
		TotalReports:       len(reports),
		RiskFactorAverages: []FactorAverage{},
		ScoreTrend:         []TrendPoint{},
		VendorPerformance:  []VendorPerformance{},
	}
	if len(reports) == 0 {
		return s
	}

	var totalScore float64
	for _, r := range reports {
		totalScore += r.Result.OverallScore
	}
	s.AverageOverallScore = totalScore / float64(len(reports))

	s.RiskFactorAverages = factorAverages(reports)

	latest := latestPerVendor(reports)
	for _, r := range latest {
		switch {
		case r.Result.OverallScore >= 80:
			s.ScoreDistribution.LowRisk++
		case r.Result.OverallScore >= 50:
			s.ScoreDistribution.MediumRisk++
		default:
			s.ScoreDistribution.HighRisk++
		}
	}

	s.BestPerformingVendor, s.WorstPerformingVendor = bestAndWorst(latest)
	s.ScoreTrend = scoreTrend(reports)
	s.VendorPerformance = vendorPerformance(reports, latest)

	return s
}

// factorAverages averages every risk factor entry across all reports by
// name, weakest factor first.
func factorAverages(reports []model.Report) []FactorAverage {
	type acc struct {
		total float64
		count int
	}
	totals := make(map[string]*acc)
	var order []string

	for _, r := range reports {
		for _, f := range r.Result.RiskFactors {
			a, ok := totals[f.Name]
			if !ok {
				a = &acc{}
				totals[f.Name] = a
				order = append(order, f.Name)
			}
			a.total += f.Score
			a.count++
		}
	}

	averages := make([]FactorAverage, 0, len(order))
	for _, name := range order {
		a := totals[name]
		averages = append(averages, FactorAverage{Name: name, Score: a.total / float64(a.count)})
	}
	sort.SliceStable(averages, func(i, j int) bool {
		return averages[i].Score < averages[j].Score
	})
	return averages
}

// latestPerVendor keeps only the maximum-timestamp report per vendor
// identity, in first-appearance order of the vendors.
func latestPerVendor(reports []model.Report) []model.Report {
	idx := make(map[string]int)
	var latest []model.Report

	for _, r := range reports {
		key := r.VendorKey()
		i, ok := idx[key]
		if !ok {
			idx[key] = len(latest)
			latest = append(latest, r)
			continue
		}
		if r.Timestamp > latest[i].Timestamp {
			latest[i] = r
		}
	}
	return latest
}

func bestAndWorst(latest []model.Report) (best, worst *model.Report) {
	if len(latest) == 0 {
		return nil, nil
	}
	b, w := latest[0], latest[0]
	for _, r := range latest[1:] {
		if r.Result.OverallScore > b.Result.OverallScore {
			b = r
		}
		if r.Result.OverallScore < w.Result.OverallScore {
			w = r
		}
	}
	return &b, &w
}

const monthLayout = "Jan 06"

// scoreTrend buckets every report by calendar month, months ordered by
// first appearance over the ascending distinct timestamps. Each point
// carries the month-wide average plus per-vendor averages for vendors
// scanned in that month.
func scoreTrend(reports []model.Report) []TrendPoint {
	timestamps := make(map[int64]bool)
	for _, r := range reports {
		timestamps[r.Timestamp] = true
	}
	sorted := make([]int64, 0, len(timestamps))
	for ts := range timestamps {
		sorted = append(sorted, ts)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var months []string
	seen := make(map[string]bool)
	for _, ts := range sorted {
		month := time.UnixMilli(ts).Format(monthLayout)
		if !seen[month] {
			seen[month] = true
			months = append(months, month)
		}
	}

	byMonth := make(map[string][]model.Report)
	for _, r := range reports {
		month := r.Time().Format(monthLayout)
		byMonth[month] = append(byMonth[month], r)
	}

	trend := make([]TrendPoint, 0, len(months))
	for _, month := range months {
		monthReports := byMonth[month]

		var total float64
		vendorTotals := make(map[string]float64)
		vendorCounts := make(map[string]int)
		for _, r := range monthReports {
			total += r.Result.OverallScore
			key := r.VendorKey()
			vendorTotals[key] += r.Result.OverallScore
			vendorCounts[key]++
		}

		vendorScores := make(map[string]float64, len(vendorTotals))
		for key, sum := range vendorTotals {
			vendorScores[key] = sum / float64(vendorCounts[key])
		}

		trend = append(trend, TrendPoint{
			Month:        month,
			AverageScore: total / float64(len(monthReports)),
			VendorScores: vendorScores,
		})
	}
	return trend
}

// vendorPerformance summarizes each distinct vendor by its latest
// report, with the total (not deduped) report count, alphabetically.
func vendorPerformance(reports []model.Report, latest []model.Report) []VendorPerformance {
	counts := make(map[string]int)
	for _, r := range reports {
		counts[r.VendorKey()]++
	}

	perf := make([]VendorPerformance, 0, len(latest))
	for _, r := range latest {
		key := r.VendorKey()
		perf = append(perf, VendorPerformance{
			Name:          key,
			Domain:        r.Domain,
			LastScore:     r.Result.OverallScore,
			SecurityScore: r.Result.SecurityPostureScore,
			ThreatScore:   r.Result.ThreatExposureScore,
			ReportsCount:  counts[key],
			LatestReport:  r,
			Compliance:    r.Result.Compliance,
		})
	}
	sort.Slice(perf, func(i, j int) bool { return perf[i].Name < perf[j].Name })
	return perf
}
